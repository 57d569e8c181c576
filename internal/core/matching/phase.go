package matching

import "fmt"

// Phase is the movement phase published to the animation layer.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAccelerating
	PhaseDecelerating
	PhaseFalling
	PhaseLanding
)

var phaseNames = [...]string{
	PhaseIdle:         "idle",
	PhaseAccelerating: "accelerating",
	PhaseDecelerating: "decelerating",
	PhaseFalling:      "falling",
	PhaseLanding:      "landing",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, n := range phaseNames {
		if n == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
