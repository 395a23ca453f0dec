package math

import "math"

// Quat represents a rotation quaternion. W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Normalize returns the unit quaternion, or identity for a zero quaternion.
func (q Quat) Normalize() Quat {
	l := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if l <= Epsilon {
		return QuatIdentity()
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// AxisAngle converts q to an axis and an angle in degrees.
// A rotation close to identity returns angle 0, meaning "no rotation".
func (q Quat) AxisAngle() (axis Vec3, angleDeg float32) {
	q = q.Normalize()
	if q.W < 0 {
		q = Quat{-q.X, -q.Y, -q.Z, -q.W}
	}
	s := float32(math.Sqrt(float64(max(0, 1-q.W*q.W))))
	if s <= 1e-6 {
		return Vec3{0, 0, 1}, 0
	}
	angle := 2 * math.Acos(float64(min(q.W, 1)))
	return Vec3{q.X / s, q.Y / s, q.Z / s}, float32(angle * 180 / math.Pi)
}

// QuatFromMat4 extracts the rotation of m. The upper 3x3 block must be a pure
// rotation, so divide out any scale first.
func QuatFromMat4(m Mat4) Quat {
	r00, r01, r02 := m[0], m[4], m[8]
	r10, r11, r12 := m[1], m[5], m[9]
	r20, r21, r22 := m[2], m[6], m[10]

	sqrt := func(v float32) float32 { return float32(math.Sqrt(float64(max(v, 0)))) }

	var q Quat
	switch trace := r00 + r11 + r22; {
	case trace > 0:
		s := sqrt(trace+1) * 2
		q = Quat{(r21 - r12) / s, (r02 - r20) / s, (r10 - r01) / s, s / 4}
	case r00 > r11 && r00 > r22:
		s := sqrt(1+r00-r11-r22) * 2
		q = Quat{s / 4, (r01 + r10) / s, (r02 + r20) / s, (r21 - r12) / s}
	case r11 > r22:
		s := sqrt(1+r11-r00-r22) * 2
		q = Quat{(r01 + r10) / s, s / 4, (r12 + r21) / s, (r02 - r20) / s}
	default:
		s := sqrt(1+r22-r00-r11) * 2
		q = Quat{(r02 + r20) / s, (r12 + r21) / s, s / 4, (r10 - r01) / s}
	}
	return q.Normalize()
}
