package physics

import "math"

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}

// FindDeltaAngleDegrees returns the shortest signed rotation from a1 to a2.
func FindDeltaAngleDegrees(a1, a2 float64) float64 {
	return NormalizeAxis(a2 - a1)
}

// FInterpTo moves current toward target at a rate proportional to the
// remaining distance. A non-positive speed snaps straight to target.
func FInterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < SmallNumber {
		return target
	}
	alpha := dt * speed
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	return current + dist*alpha
}
