package predict

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

// FallParams extend Params with the airborne terms.
type FallParams struct {
	Params
	// GravityZ is the signed vertical acceleration, negative for down.
	GravityZ float64
	// HalfHeight lifts the landing point from the floor to the capsule centre.
	HalfHeight float64
}

// FallStop predicts where a falling character lands.
func FallStop(location, velocity, acceleration mgl64.Vec3, p FallParams, floor movement.FloorQuery) (mgl64.Vec3, bool) {
	r := PredictFall(location, velocity, acceleration, p, floor)
	return r.Location, r.OK
}

// PredictFall integrates horizontal braking or acceleration plus gravity and
// probes the floor after every step. It ends on the first walkable hit; there
// is no velocity based early exit.
func PredictFall(location, velocity, acceleration mgl64.Vec3, p FallParams, floor movement.FloorQuery) Result {
	res := Result{Location: location}
	if p.Step < MinTickTime {
		res.Reason = ReasonDegenerateStep
		return res
	}
	if floor == nil {
		res.Reason = ReasonNoFloor
		return res
	}

	friction := math.Max(p.Friction, 0)
	decel := math.Max(p.Deceleration, 0)
	zeroAccel := physics.IsZero(physics.Horizontal(acceleration))

	v := velocity
	loc := location
	for res.Iterations < p.MaxIterations {
		res.Iterations++

		vz := v[2]
		h := physics.Horizontal(v)
		if zeroAccel {
			h = brake(h, friction, decel, p.Step, p.subStep())
		} else {
			h = accelerate(h, acceleration, friction, p.Step)
		}
		v = h
		v[2] = vz + p.GravityZ*p.Step

		loc = loc.Add(v.Mul(p.Step))

		hit := floor.FindFloor(loc)
		if hit.Walkable {
			nav := floor.FindNavigableFloor(hit.ImpactPoint)
			res.Location = nav.Add(mgl64.Vec3{0, 0, p.HalfHeight})
			res.OK = true
			res.Reason = ReasonLanded
			return res
		}
	}

	res.Reason = ReasonBudgetExhausted
	return res
}
