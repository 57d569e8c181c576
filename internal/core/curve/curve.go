// Package curve samples authored distance curves: monotonic float curves that
// map cumulative travel distance onto a time position inside an animation.
package curve

import (
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

// Key is one authored point on a distance curve.
type Key struct {
	Value float64 `json:"value" yaml:"value"`
	Time  float64 `json:"time" yaml:"time"`
}

// Curve is a named, ordered list of keys. Values are expected to be strictly
// increasing.
type Curve struct {
	Name string `json:"name" yaml:"name"`
	Keys []Key  `json:"keys" yaml:"keys"`
}

// Sample maps distance onto a time position. Keys must be sorted by ascending
// value with unique values; the result extrapolates through the nearest
// bracket outside the key range. Fewer than two keys yield 0.
func Sample(keys []Key, distance float64) float64 {
	n := len(keys)
	if n < 2 {
		return 0
	}

	// lower bound over keys[1:n-1]
	first := 1
	count := n - 1 - first
	for count > 0 {
		step := count / 2
		middle := first + step
		if distance > keys[middle].Value {
			first = middle + 1
			count -= step + 1
		} else {
			count = step
		}
	}

	a := keys[first-1]
	b := keys[first]
	diff := b.Value - a.Value
	alpha := 0.0
	if !physics.IsNearlyZero(diff) {
		alpha = (distance - a.Value) / diff
	}
	return physics.Lerp(a.Time, b.Time, alpha)
}

// Sample samples the curve. Builds tagged animdebug verify the key ordering
// first and log a warning through l when it is broken.
func (c *Curve) Sample(distance float64, l log.Log) float64 {
	if c == nil {
		return 0
	}
	if debugChecks {
		if r := Validate(c.Keys); !r.OK() {
			log.OrNop(l).Warn("bad distance curve",
				log.String("curve", c.Name),
				log.Bool("sorted", r.Sorted),
				log.Bool("unique", r.Unique),
			)
		}
	}
	return Sample(c.Keys, distance)
}

// Len returns the number of keys.
func (c *Curve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Keys)
}
