// Package predict forward-simulates a character's movement to find where it
// will come to rest, either by braking on the ground or by landing after a
// fall.
package predict

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

const (
	// MinTickTime is the smallest step the simulation will take.
	MinTickTime = 1e-6
	// MaxBrakingSubStep bounds each braking sub-step so exponential friction
	// stays stable at low frame rates.
	MaxBrakingSubStep = 1.0 / 33.0
	// DefaultMaxIterations is the iteration budget hosts normally use.
	DefaultMaxIterations = 100
)

// Params are the braking inputs of one prediction.
type Params struct {
	Friction      float64
	Deceleration  float64
	Step          float64
	MaxIterations int
	// SubStep overrides MaxBrakingSubStep when positive.
	SubStep float64
}

func (p Params) subStep() float64 {
	if p.SubStep > 0 {
		return p.SubStep
	}
	return MaxBrakingSubStep
}

// Result describes a finished prediction. Location is the input location
// unless OK is set.
type Result struct {
	Location   mgl64.Vec3
	OK         bool
	Reason     Reason
	Iterations int
}

// Stop predicts where braking brings the character to rest on the ground.
func Stop(location, velocity, acceleration mgl64.Vec3, p Params) (mgl64.Vec3, bool) {
	r := Predict(location, velocity, acceleration, p)
	return r.Location, r.OK
}

// Predict is Stop with the full result.
func Predict(location, velocity, acceleration mgl64.Vec3, p Params) Result {
	res := Result{Location: location}
	if p.Step < MinTickTime {
		res.Reason = ReasonDegenerateStep
		return res
	}

	zeroAccel := physics.IsZero(acceleration)
	if acceleration.Dot(velocity) > 0 {
		res.Reason = ReasonAccelerating
		return res
	}

	friction := math.Max(p.Friction, 0)
	decel := math.Max(p.Deceleration, 0)
	if zeroAccel && friction == 0 {
		res.Reason = ReasonNoDecay
		return res
	}

	v := velocity
	if !zeroAccel {
		v = physics.ProjectOnToNormal(velocity, physics.SafeNormal(acceleration))
	}
	v[2] = 0

	loc := location
	for res.Iterations < p.MaxIterations {
		res.Iterations++
		old := v

		if zeroAccel {
			v = brake(v, friction, decel, p.Step, p.subStep())
		} else {
			v = accelerate(v, acceleration, friction, p.Step)
		}

		loc = loc.Add(v.Mul(p.Step))

		if physics.SizeSquared(v) <= 1 || v.Dot(old) <= 0 {
			res.Location = loc
			res.OK = true
			res.Reason = ReasonStopped
			return res
		}
	}

	res.Reason = ReasonBudgetExhausted
	return res
}

// brake applies friction and braking deceleration over dt, sub-stepped, and
// never lets the velocity reverse.
func brake(v mgl64.Vec3, friction, decel, dt, maxSub float64) mgl64.Vec3 {
	old := v
	zeroFriction := friction == 0
	zeroBraking := decel == 0

	rev := physics.Zero
	if !zeroBraking {
		rev = physics.SafeNormal(v).Mul(-decel)
	}

	remaining := dt
	for remaining >= MinTickTime {
		// zero friction is constant deceleration, one step is exact
		sub := remaining
		if remaining > maxSub && !zeroFriction {
			sub = math.Min(maxSub, remaining*0.5)
		}
		remaining -= sub

		v = v.Add(v.Mul(-friction).Add(rev).Mul(sub))

		if v.Dot(old) <= 0 {
			return physics.Zero
		}
	}

	sq := physics.SizeSquared(v)
	if sq <= 1 || (!zeroBraking && sq <= 100) {
		return physics.Zero
	}
	return v
}

// accelerate applies input acceleration plus the friction that pulls the
// velocity toward the acceleration direction.
func accelerate(v, acceleration mgl64.Vec3, friction, dt float64) mgl64.Vec3 {
	total := physics.Horizontal(acceleration)
	dir := physics.SafeNormal(total)
	speed := v.Len()
	total = total.Sub(v.Sub(dir.Mul(speed)).Mul(friction))
	return v.Add(total.Mul(dt))
}
