package sal

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// Angle is a radian measure, reusing `s1.Angle` from the golang/geo
// geometry library.
type Angle = s1.Angle

// Handedness fixes the sign convention used when a Point is rotated by a
// Quaternion. Every Receiver picks one; rotation sites must say which.
type Handedness int

const (
	RightHanded Handedness = iota
	LeftHanded
)

// Point is a 3-tuple of coordinates in meters.
type Point struct {
	v r3.Vector
}

// NewPoint constructs a Point with explicit coordinates.
func NewPoint(x, y, z float64) Point {
	return Point{r3.Vector{X: x, Y: y, Z: z}}
}

// Origin is the zero point.
func Origin() Point {
	return Point{}
}

func (p Point) X() float64 { return p.v.X }
func (p Point) Y() float64 { return p.v.Y }
func (p Point) Z() float64 { return p.v.Z }

// Norm returns the Euclidean length of the point treated as a vector.
func (p Point) Norm() float64 {
	return p.v.Norm()
}

// Normalized returns a new point with Norm() == 1. The zero point is
// returned unchanged, matching the degenerate case of a zero-length axis.
func (p Point) Normalized() Point {
	if p.v.Norm() == 0 {
		return p
	}
	return Point{p.v.Normalize()}
}

// Dot returns the dot product of a and b.
func Dot(a, b Point) float64 {
	return a.v.Dot(b.v)
}

// Cross returns the cross product a x b.
func Cross(a, b Point) Point {
	return Point{a.v.Cross(b.v)}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return Sub(a, b).Norm()
}

// Sum returns a+b, coordinate-wise.
func Sum(a, b Point) Point {
	return Point{a.v.Add(b.v)}
}

// Sub returns a-b, coordinate-wise.
func Sub(a, b Point) Point {
	return Point{a.v.Sub(b.v)}
}

// Scale returns p scaled by k.
func Scale(p Point, k float64) Point {
	return Point{p.v.Mul(k)}
}

// IsEqual reports whether a and b are equal to within precision.
func IsEqual(a, b Point, precision float64) bool {
	return Distance(a, b) <= precision
}

// Azimuth is the angle in the x-y plane measured from the positive x-axis
// toward the positive y-axis (the convention every directivity uses:
// "facing direction is the x-axis").
func (p Point) Azimuth() Angle {
	return s1.Angle(math.Atan2(p.v.Y, p.v.X))
}

// Polar is the angle from the positive z-axis (0 at the north pole, pi at
// the south pole), the convention used by the spherical-head model.
func (p Point) Polar() Angle {
	n := p.Norm()
	if n == 0 {
		return 0
	}
	return s1.Angle(math.Acos(clamp(p.v.Z/n, -1, 1)))
}

// AngleBetween returns the unsigned angle between a and b as vectors,
// undefined (returns 0) if either is the zero vector.
func AngleBetween(a, b Point) Angle {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	cosTheta := clamp(Dot(a, b)/(na*nb), -1, 1)
	return s1.Angle(math.Acos(cosTheta))
}

// PointOnLine returns the point on the line from a to b at the given
// distance from a (which may exceed the a-b separation).
func PointOnLine(a, b Point, distance float64) Point {
	direction := Sub(b, a)
	n := direction.Norm()
	if n == 0 {
		return a
	}
	return Sum(a, Scale(direction, distance/n))
}

// PointSpherical constructs a point from spherical coordinates. (r,0,0)
// corresponds to the z-axis and (r, pi/2, 0) to the x-axis, right-hand rule,
// matching the original SAL convention.
func PointSpherical(radius float64, polar, azimuth Angle) Point {
	sp, cp := math.Sincos(float64(polar))
	sa, ca := math.Sincos(float64(azimuth))
	return NewPoint(radius*sp*ca, radius*sp*sa, radius*cp)
}

// RotateAboutX rotates p about the x-axis by angle using the right-hand rule.
func RotateAboutX(p Point, angle Angle) Point {
	s, c := math.Sincos(float64(angle))
	return NewPoint(p.X(), c*p.Y()-s*p.Z(), s*p.Y()+c*p.Z())
}

// RotateAboutY rotates p about the y-axis by angle using the right-hand rule.
func RotateAboutY(p Point, angle Angle) Point {
	s, c := math.Sincos(float64(angle))
	return NewPoint(c*p.X()+s*p.Z(), p.Y(), -s*p.X()+c*p.Z())
}

// RotateAboutZ rotates p about the z-axis by angle using the right-hand rule.
func RotateAboutZ(p Point, angle Angle) Point {
	s, c := math.Sincos(float64(angle))
	return NewPoint(c*p.X()-s*p.Y(), s*p.X()+c*p.Y(), p.Z())
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
