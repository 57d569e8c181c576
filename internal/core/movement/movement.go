// Package movement defines the capabilities the locomotion core reads from the
// host's movement component and world geometry.
package movement

import "github.com/go-gl/mathgl/mgl64"

// Reader exposes the physical state of a moving character. The core only
// reads through it.
type Reader interface {
	Location() mgl64.Vec3
	Velocity() mgl64.Vec3
	// CurrentAcceleration is the input acceleration, not the integrated one.
	CurrentAcceleration() mgl64.Vec3
	// Yaw is the facing direction in degrees.
	Yaw() float64

	BrakingFriction() float64
	MaxBrakingDeceleration() float64
	MaxSimulationTimeStep() float64

	IsFalling() bool
	GravityZ() float64
	// HalfHeight of the collision envelope, used to lift a predicted landing
	// point to the capsule centre.
	HalfHeight() float64
}

// FloorResult is the outcome of a floor probe.
type FloorResult struct {
	Walkable    bool
	ImpactPoint mgl64.Vec3
}

// FloorQuery answers synchronous ground probes.
type FloorQuery interface {
	FindFloor(point mgl64.Vec3) FloorResult
	FindNavigableFloor(point mgl64.Vec3) mgl64.Vec3
}

// Sample is one tick's snapshot of a Reader.
type Sample struct {
	Location     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3
	Yaw          float64

	BrakingFriction        float64
	MaxBrakingDeceleration float64
	MaxSimulationTimeStep  float64

	Falling    bool
	GravityZ   float64
	HalfHeight float64
}

// Read snapshots r.
func Read(r Reader) Sample {
	return Sample{
		Location:               r.Location(),
		Velocity:               r.Velocity(),
		Acceleration:           r.CurrentAcceleration(),
		Yaw:                    r.Yaw(),
		BrakingFriction:        r.BrakingFriction(),
		MaxBrakingDeceleration: r.MaxBrakingDeceleration(),
		MaxSimulationTimeStep:  r.MaxSimulationTimeStep(),
		Falling:                r.IsFalling(),
		GravityZ:               r.GravityZ(),
		HalfHeight:             r.HalfHeight(),
	}
}

// FlatFloor is a FloorQuery for an infinite walkable plane at height Z.
// Probe points are capsule centres, so a point counts as grounded once it is
// within Clearance of the plane.
type FlatFloor struct {
	Z         float64
	Clearance float64
}

func (f FlatFloor) FindFloor(p mgl64.Vec3) FloorResult {
	if p[2]-f.Clearance > f.Z {
		return FloorResult{}
	}
	return FloorResult{Walkable: true, ImpactPoint: mgl64.Vec3{p[0], p[1], f.Z}}
}

func (f FlatFloor) FindNavigableFloor(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{p[0], p[1], f.Z}
}
