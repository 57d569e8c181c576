// Package physics holds the small amount of vector and angle math the
// locomotion core needs on top of mgl64. World space is Z up, units are
// centimetres, angles are degrees.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SmallNumber is the squared-length tolerance used by SafeNormal.
	SmallNumber = 1e-8
	// KindaSmallNumber is the default IsNearlyZero tolerance.
	KindaSmallNumber = 1e-4
)

// Zero is the zero vector.
var Zero = mgl64.Vec3{}

// Up is the world up axis.
var Up = mgl64.Vec3{0, 0, 1}

// IsNearlyZero reports whether |f| <= KindaSmallNumber.
func IsNearlyZero(f float64) bool { return math.Abs(f) <= KindaSmallNumber }

// IsZero reports whether every component is exactly zero.
func IsZero(v mgl64.Vec3) bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

// SizeSquared returns |v|².
func SizeSquared(v mgl64.Vec3) float64 { return v.Dot(v) }

// SafeNormal returns v normalised, or the zero vector when v is too short to
// normalise reliably.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	sq := SizeSquared(v)
	if sq == 1 {
		return v
	}
	if sq < SmallNumber {
		return Zero
	}
	return v.Mul(1 / math.Sqrt(sq))
}

// ProjectOnToNormal projects v onto the unit vector n.
func ProjectOnToNormal(v, n mgl64.Vec3) mgl64.Vec3 {
	return n.Mul(v.Dot(n))
}

// Horizontal returns v with Z cleared.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	v[2] = 0
	return v
}

// DistSquaredXY is the squared distance between a and b ignoring Z.
func DistSquaredXY(a, b mgl64.Vec3) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return dx*dx + dy*dy
}

// DistXY is the distance between a and b ignoring Z.
func DistXY(a, b mgl64.Vec3) float64 { return math.Sqrt(DistSquaredXY(a, b)) }

// Dist is the full 3D distance between a and b.
func Dist(a, b mgl64.Vec3) float64 { return b.Sub(a).Len() }

// Lerp interpolates linearly between a and b. Alpha 0 and 1 return a and b
// exactly.
func Lerp(a, b, alpha float64) float64 { return (1-alpha)*a + alpha*b }
