package predict

// Reason says why a prediction ended.
type Reason uint8

const (
	ReasonNone Reason = iota
	// ReasonStopped: braking brought the velocity to rest.
	ReasonStopped
	// ReasonLanded: a falling prediction hit walkable floor.
	ReasonLanded
	// ReasonDegenerateStep: the step was below MinTickTime.
	ReasonDegenerateStep
	// ReasonAccelerating: acceleration points along the velocity.
	ReasonAccelerating
	// ReasonNoDecay: neither acceleration nor friction can slow the body.
	ReasonNoDecay
	// ReasonNoFloor: a fall was predicted without a floor query.
	ReasonNoFloor
	// ReasonBudgetExhausted: the iteration budget ran out first.
	ReasonBudgetExhausted
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonStopped:
		return "stopped"
	case ReasonLanded:
		return "landed"
	case ReasonDegenerateStep:
		return "degenerate_step"
	case ReasonAccelerating:
		return "accelerating"
	case ReasonNoDecay:
		return "no_decay"
	case ReasonNoFloor:
		return "no_floor"
	case ReasonBudgetExhausted:
		return "budget_exhausted"
	default:
		return "unknown"
	}
}

// Skipped reports whether the prediction never ran because its inputs were
// unusable, as opposed to running out of iterations.
func (r Reason) Skipped() bool {
	switch r {
	case ReasonDegenerateStep, ReasonAccelerating, ReasonNoDecay, ReasonNoFloor:
		return true
	default:
		return false
	}
}
