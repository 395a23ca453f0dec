// Package math provides the vector, matrix and bounding box types used by the
// mesh pipeline. All values are float32, matching the vertex data they describe.
package math

import "math"

// Epsilon is the single precision machine epsilon (C's FLT_EPSILON).
// Every normalization in the pipeline guards its divisor against it.
const Epsilon float32 = 1.1920929e-07

// Vec3 is a 3D point or direction.
type Vec3 struct {
	X, Y, Z float32
}

// V3 is shorthand for Vec3{x, y, z}.
func V3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// LengthSquared returns v·v.
func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

// Length returns the magnitude. The sum of squares is taken in float64 so
// short vectors do not underflow to zero.
func (v Vec3) Length() float32 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return float32(math.Sqrt(x*x + y*y + z*z))
}

// Normalize returns v scaled to unit length and true, or v unchanged and
// false when its length does not exceed Epsilon.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Length()
	if l <= Epsilon {
		return v, false
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}, true
}

// Direction returns v scaled to unit length however short v is. It reports
// false only for a zero or non-finite vector, which has no direction.
func (v Vec3) Direction() (Vec3, bool) {
	if !v.IsFinite() {
		return v, false
	}
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	l := math.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return v, false
	}
	return Vec3{float32(x / l), float32(y / l), float32(z / l)}, true
}

// Min returns the componentwise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{min(v.X, other.X), min(v.Y, other.Y), min(v.Z, other.Z)}
}

// Max returns the componentwise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{max(v.X, other.X), max(v.Y, other.Y), max(v.Z, other.Z)}
}

// MaxAbs returns the largest absolute component.
func (v Vec3) MaxAbs() float32 {
	return max(absf(v.X), absf(v.Y), absf(v.Z))
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range [3]float32{v.X, v.Y, v.Z} {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
