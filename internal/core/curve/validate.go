package curve

// Report is the result of Validate.
type Report struct {
	Sorted bool
	Unique bool
}

// OK reports whether the keys satisfy the sampling preconditions.
func (r Report) OK() bool { return r.Sorted && r.Unique }

// Validate checks that keys are sorted by ascending value and that no value
// appears twice.
func Validate(keys []Key) Report {
	r := Report{Sorted: true, Unique: true}
	if len(keys) == 0 {
		return r
	}
	seen := make(map[float64]struct{}, len(keys))
	seen[keys[0].Value] = struct{}{}
	for i := 1; i < len(keys); i++ {
		if _, dup := seen[keys[i].Value]; dup {
			r.Unique = false
		}
		seen[keys[i].Value] = struct{}{}
		if keys[i].Value < keys[i-1].Value {
			r.Sorted = false
		}
	}
	return r
}
