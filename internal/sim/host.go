// Package sim is a small kinematic stand-in for a character movement
// component on a flat floor. It follows a scripted input timeline and exposes
// the movement.Reader and movement.FloorQuery views the locomotion core reads.
package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/movement"
	"github.com/zeusync/locomotion/internal/core/systems/physics"
)

var (
	_ movement.Reader     = (*Host)(nil)
	_ movement.FloorQuery = (*Host)(nil)
)

// Params are the movement tunables.
type Params struct {
	MaxSpeed               float64 `yaml:"maxSpeed" json:"maxSpeed"`
	BrakingFriction        float64 `yaml:"brakingFriction" json:"brakingFriction"`
	MaxBrakingDeceleration float64 `yaml:"maxBrakingDeceleration" json:"maxBrakingDeceleration"`
	MaxSimulationTimeStep  float64 `yaml:"maxSimulationTimeStep" json:"maxSimulationTimeStep"`
	AirControl             float64 `yaml:"airControl" json:"airControl"`
	GravityZ               float64 `yaml:"gravityZ" json:"gravityZ"`
	HalfHeight             float64 `yaml:"halfHeight" json:"halfHeight"`
	FloorZ                 float64 `yaml:"floorZ" json:"floorZ"`
}

// DefaultParams mirror a stock walking character.
func DefaultParams() Params {
	return Params{
		MaxSpeed:               600,
		BrakingFriction:        2,
		MaxBrakingDeceleration: 2048,
		MaxSimulationTimeStep:  0.05,
		AirControl:             0.35,
		GravityZ:               -980,
		HalfHeight:             88,
		FloorZ:                 0,
	}
}

// Host is a scripted character. It is not safe for concurrent use.
type Host struct {
	params Params
	script *Script

	loc, vel, acc mgl64.Vec3
	yaw           float64
	falling       bool

	elapsed float64
	segment int
}

// NewHost places a character standing on the floor at (x, y).
func NewHost(p Params, x, y float64, script *Script) *Host {
	if script == nil {
		script = &Script{}
	}
	return &Host{
		params:  p,
		script:  script,
		loc:     mgl64.Vec3{x, y, p.FloorZ + p.HalfHeight},
		segment: -1,
	}
}

func (h *Host) Location() mgl64.Vec3            { return h.loc }
func (h *Host) Velocity() mgl64.Vec3            { return h.vel }
func (h *Host) CurrentAcceleration() mgl64.Vec3 { return h.acc }
func (h *Host) Yaw() float64                    { return h.yaw }
func (h *Host) BrakingFriction() float64        { return h.params.BrakingFriction }
func (h *Host) MaxBrakingDeceleration() float64 { return h.params.MaxBrakingDeceleration }
func (h *Host) MaxSimulationTimeStep() float64  { return h.params.MaxSimulationTimeStep }
func (h *Host) IsFalling() bool                 { return h.falling }
func (h *Host) GravityZ() float64               { return h.params.GravityZ }
func (h *Host) HalfHeight() float64             { return h.params.HalfHeight }

func (h *Host) floor() movement.FlatFloor {
	return movement.FlatFloor{Z: h.params.FloorZ, Clearance: h.params.HalfHeight}
}

func (h *Host) FindFloor(p mgl64.Vec3) movement.FloorResult { return h.floor().FindFloor(p) }

func (h *Host) FindNavigableFloor(p mgl64.Vec3) mgl64.Vec3 {
	return h.floor().FindNavigableFloor(p)
}

// Elapsed is the scripted time consumed so far.
func (h *Host) Elapsed() float64 { return h.elapsed }

// Done reports whether the script has run out.
func (h *Host) Done() bool { return h.elapsed >= h.script.Duration() }

// Step advances the character by dt.
func (h *Host) Step(dt float64) {
	if dt <= 0 {
		return
	}
	idx, seg := h.script.At(h.elapsed)
	if idx != h.segment {
		h.segment = idx
		if seg.Jump > 0 && !h.falling {
			h.vel[2] = seg.Jump
			h.falling = true
		}
	}
	h.elapsed += dt

	h.acc = physics.Horizontal(seg.Input)
	if h.falling {
		h.stepAir(dt)
	} else {
		h.stepGround(dt)
	}
	h.loc = h.loc.Add(h.vel.Mul(dt))

	if h.falling && h.vel[2] <= 0 && h.floor().FindFloor(h.loc).Walkable {
		h.loc[2] = h.params.FloorZ + h.params.HalfHeight
		h.vel[2] = 0
		h.falling = false
	}

	if hv := physics.Horizontal(h.vel); physics.SizeSquared(hv) > 1 {
		h.yaw = mgl64.RadToDeg(math.Atan2(hv[1], hv[0]))
	}
}

func (h *Host) stepGround(dt float64) {
	v := physics.Horizontal(h.vel)
	if physics.IsZero(h.acc) {
		old := v
		rev := physics.SafeNormal(v).Mul(-h.params.MaxBrakingDeceleration)
		v = v.Add(v.Mul(-h.params.BrakingFriction).Add(rev).Mul(dt))
		if v.Dot(old) <= 0 || physics.SizeSquared(v) <= 1 {
			v = physics.Zero
		}
	} else {
		v = v.Add(h.acc.Mul(dt))
	}
	h.vel = clampSpeed(v, h.params.MaxSpeed)
}

func (h *Host) stepAir(dt float64) {
	vz := h.vel[2]
	v := physics.Horizontal(h.vel).Add(h.acc.Mul(dt * h.params.AirControl))
	v = clampSpeed(v, h.params.MaxSpeed)
	v[2] = vz + h.params.GravityZ*dt
	h.vel = v
}

func clampSpeed(v mgl64.Vec3, limit float64) mgl64.Vec3 {
	if limit <= 0 {
		return v
	}
	if sq := physics.SizeSquared(v); sq > limit*limit {
		return v.Mul(limit / math.Sqrt(sq))
	}
	return v
}
