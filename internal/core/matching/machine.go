// Package matching drives distance-matched animation cursors from the
// character's movement phase.
//
// The machine edge-detects grounded/falling and accelerating/decelerating
// changes each tick. Entering an accelerating phase anchors the target at the
// current location; entering a decelerating phase predicts where the
// character will come to rest and anchors there. Every tick the active
// cursor follows the animation's distance curve when that runs ahead of it
// and real time otherwise.
package matching

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/anim"
	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/predict"
	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

const (
	DefaultLandingThreshold = 80.0
	// idleSpeedSquared separates Idle from Decelerating for reporting.
	idleSpeedSquared = 1.0
)

// Config tunes the machine.
type Config struct {
	LandingThreshold float64
	MaxIterations    int
	BrakingSubStep   float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		LandingThreshold: DefaultLandingThreshold,
		MaxIterations:    predict.DefaultMaxIterations,
		BrakingSubStep:   predict.MaxBrakingSubStep,
	}
}

// Bindings are the distance-matched sequences. Start and Stop drive the
// grounded cursors, JumpStart and FallLand the airborne ones. Stop and
// FallLand curves are authored counting up to zero at the plant, so they are
// sampled at the negated distance.
type Bindings struct {
	Start     *anim.Sequence
	Stop      *anim.Sequence
	JumpStart *anim.Sequence
	FallLand  *anim.Sequence
}

// State is the published matching state.
type State struct {
	Phase        Phase
	Accelerating bool
	Falling      bool
	Landing      bool

	Target      mgl64.Vec3
	TargetValid bool
	Prediction  predict.Reason

	StartCursor float64
	StopCursor  float64
}

// Machine owns one character's matching state. It is not safe for concurrent
// use; each character ticks its own machine.
type Machine struct {
	cfg   Config
	bind  Bindings
	log   log.Log
	state State
}

// New builds a machine. Zero config fields take their defaults and a nil
// logger discards output.
func New(cfg Config, bind Bindings, l log.Log) *Machine {
	if cfg.LandingThreshold <= 0 {
		cfg.LandingThreshold = DefaultLandingThreshold
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = predict.DefaultMaxIterations
	}
	return &Machine{cfg: cfg, bind: bind, log: log.OrNop(l)}
}

func (m *Machine) State() State       { return m.state }
func (m *Machine) Bindings() Bindings { return m.bind }
func (m *Machine) Config() Config     { return m.cfg }

// SetBindings swaps the bound sequences without touching the cursors.
func (m *Machine) SetBindings(b Bindings) { m.bind = b }

// Reset anchors the machine at the sample's location with cursors at zero.
func (m *Machine) Reset(s movement.Sample) {
	m.state = State{
		Falling:     s.Falling,
		Target:      s.Location,
		TargetValid: true,
	}
	m.state.Phase = m.phase(s)
}

// Update runs edge detection for this tick and reports whether the phase
// changed.
func (m *Machine) Update(s movement.Sample, floor movement.FloorQuery) bool {
	st := &m.state
	prev := st.Phase

	if s.Falling != st.Falling {
		st.Falling = s.Falling
		if s.Falling {
			// make the vertical edge below fire on takeoff
			st.Accelerating = !ascending(s)
		} else {
			st.Accelerating = true
			st.Landing = false
		}
	}

	accelerating := ascending(s)
	if !st.Falling {
		accelerating = physics.DistSquaredXY(s.Acceleration, physics.Zero) > 0
	}

	if accelerating != st.Accelerating {
		st.Accelerating = accelerating
		if accelerating {
			st.StartCursor = 0
			st.Target = s.Location
			st.TargetValid = true
			st.Prediction = predict.ReasonNone
		} else {
			st.StopCursor = 0
			m.predictTarget(s, floor)
		}
	}

	st.Landing = st.Falling &&
		m.distance(s) < m.cfg.LandingThreshold &&
		s.Velocity[2] > 0

	st.Phase = m.phase(s)
	return st.Phase != prev
}

// Evaluate advances the active cursor by dt. With no sequence bound for the
// active cursor nothing moves.
func (m *Machine) Evaluate(s movement.Sample, dt float64) {
	st := &m.state
	if dt < 0 {
		dt = 0
	}

	seq, cursor := m.active()
	if seq == nil {
		return
	}

	d := m.distance(s)
	if !st.Accelerating {
		d = -d
	}
	t := seq.DistanceTime(d, m.log)

	if t > *cursor {
		*cursor = t
	} else {
		*cursor += dt
	}
	*cursor = seq.Clamp(*cursor)
}

// Active reports the sequence the current state plays and its cursor.
func (m *Machine) Active() (*anim.Sequence, float64) {
	seq, cur := m.active()
	return seq, *cur
}

func (m *Machine) active() (*anim.Sequence, *float64) {
	st := &m.state
	switch {
	case st.Falling && st.Accelerating:
		return m.bind.JumpStart, &st.StartCursor
	case st.Falling:
		return m.bind.FallLand, &st.StopCursor
	case st.Accelerating:
		return m.bind.Start, &st.StartCursor
	default:
		return m.bind.Stop, &st.StopCursor
	}
}

// distance to the target: horizontal on the ground, full 3D in the air.
func (m *Machine) distance(s movement.Sample) float64 {
	if m.state.Falling {
		return physics.Dist(s.Location, m.state.Target)
	}
	return physics.DistXY(s.Location, m.state.Target)
}

func (m *Machine) predictTarget(s movement.Sample, floor movement.FloorQuery) {
	st := &m.state
	params := predict.Params{
		Friction:      s.BrakingFriction,
		Deceleration:  s.MaxBrakingDeceleration,
		Step:          s.MaxSimulationTimeStep,
		MaxIterations: m.cfg.MaxIterations,
		SubStep:       m.cfg.BrakingSubStep,
	}

	var r predict.Result
	if st.Falling {
		r = predict.PredictFall(s.Location, s.Velocity, s.Acceleration, predict.FallParams{
			Params:     params,
			GravityZ:   s.GravityZ,
			HalfHeight: s.HalfHeight,
		}, floor)
	} else {
		r = predict.Predict(s.Location, s.Velocity, s.Acceleration, params)
	}

	st.Prediction = r.Reason
	if r.OK {
		st.Target = r.Location
		st.TargetValid = true
		return
	}

	st.TargetValid = false
	if !r.Reason.Skipped() {
		m.log.Debug("stop prediction failed",
			log.String("reason", r.Reason.String()),
			log.Bool("falling", st.Falling),
			log.Int("iterations", r.Iterations),
			log.Vec3("location", s.Location),
			log.Vec3("velocity", s.Velocity),
		)
	}
}

func (m *Machine) phase(s movement.Sample) Phase {
	st := &m.state
	switch {
	case st.Falling && st.Landing:
		return PhaseLanding
	case st.Falling:
		return PhaseFalling
	case st.Accelerating:
		return PhaseAccelerating
	case physics.SizeSquared(physics.Horizontal(s.Velocity)) > idleSpeedSquared:
		return PhaseDecelerating
	default:
		return PhaseIdle
	}
}

func ascending(s movement.Sample) bool { return s.Velocity[2] > 0 }
