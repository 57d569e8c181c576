// Package lean turns successive facing samples into a smoothed turn rate the
// animation layer blends lean poses with.
package lean

import "github.com/zeusync/locomotion/internal/core/systems/physics"

// DefaultInterpSpeed is the smoothing speed used when none is configured.
const DefaultInterpSpeed = 6.0

const minDeltaTime = 1e-6

// Estimator keeps the smoothed yaw rate in degrees per second.
type Estimator struct {
	InterpSpeed float64

	yawRate float64
	lastYaw float64
}

// New returns an estimator smoothing at speed; non-positive speeds fall back
// to DefaultInterpSpeed.
func New(speed float64) *Estimator {
	if speed <= 0 {
		speed = DefaultInterpSpeed
	}
	return &Estimator{InterpSpeed: speed}
}

// Reset seeds the last facing and clears the rate.
func (e *Estimator) Reset(yaw float64) {
	e.lastYaw = yaw
	e.yawRate = 0
}

// Update folds in this tick's facing. Ticks shorter than a microsecond are
// ignored entirely.
func (e *Estimator) Update(yaw, dt float64) {
	if dt < minDeltaTime {
		return
	}
	delta := physics.FindDeltaAngleDegrees(yaw, e.lastYaw)
	e.yawRate = physics.FInterpTo(e.yawRate, delta/dt, dt, e.InterpSpeed)
	e.lastYaw = yaw
}

func (e *Estimator) YawRate() float64        { return e.yawRate }
func (e *Estimator) InverseYawRate() float64 { return -e.yawRate }
func (e *Estimator) LastYaw() float64        { return e.lastYaw }
