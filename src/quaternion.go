package sal

import "math"

// Quaternion is a unit quaternion used to express a Receiver's orientation.
// Composition and rotation follow Hamilton convention.
type Quaternion struct {
	w, x, y, z float64
}

// IdentityQuaternion is the no-op orientation.
func IdentityQuaternion() Quaternion {
	return Quaternion{w: 1}
}

// AxisAngleQuaternion builds a quaternion representing a rotation of angle
// radians about axis (axis need not be normalized).
func AxisAngleQuaternion(axis Point, angle Angle) Quaternion {
	n := axis.Normalized()
	half := float64(angle) / 2
	s, c := math.Sincos(half)
	return Quaternion{w: c, x: n.X() * s, y: n.Y() * s, z: n.Z() * s}
}

// Mul composes two rotations: applying q.Mul(r) rotates by r first, then q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		w: q.w*r.w - q.x*r.x - q.y*r.y - q.z*r.z,
		x: q.w*r.x + q.x*r.w + q.y*r.z - q.z*r.y,
		y: q.w*r.y - q.x*r.z + q.y*r.w + q.z*r.x,
		z: q.w*r.z + q.x*r.y - q.y*r.x + q.z*r.w,
	}
}

// Inverse returns the conjugate of q, which for a unit quaternion is also
// its inverse.
func (q Quaternion) Inverse() Quaternion {
	return Quaternion{w: q.w, x: -q.x, y: -q.y, z: -q.z}
}

// Normalized returns q scaled to unit norm; the identity is returned if q
// is degenerate (all-zero).
func (q Quaternion) Normalized() Quaternion {
	n := math.Sqrt(q.w*q.w + q.x*q.x + q.y*q.y + q.z*q.z)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{q.w / n, q.x / n, q.y / n, q.z / n}
}

// Rotate rotates point by q. With LeftHanded handedness the rotation's sense
// is mirrored, matching the receiver's own reference-system convention
// so handedness is always explicit at the rotation site.
func (q Quaternion) Rotate(point Point, handedness Handedness) Point {
	p := Quaternion{w: 0, x: point.X(), y: point.Y(), z: point.Z()}
	if handedness == LeftHanded {
		p.z = -p.z
	}
	r := q.Mul(p).Mul(q.Inverse())
	out := NewPoint(r.x, r.y, r.z)
	if handedness == LeftHanded {
		out = NewPoint(out.X(), out.Y(), -out.Z())
	}
	return out
}
