package math

// AABB is an axis-aligned bounding box. The zero value is the empty box:
// it has no volume and is the identity element of Union.
type AABB struct {
	Min, Max Vec3
	valid    bool
}

// EmptyAABB returns the uninitialized box.
func EmptyAABB() AABB {
	return AABB{}
}

// NewAABB returns the box spanning the given corners in any order.
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b), valid: true}
}

// PointAABB returns a zero-volume box containing only p.
func PointAABB(p Vec3) AABB {
	return AABB{Min: p, Max: p, valid: true}
}

// IsEmpty reports whether the box was never initialized.
func (b AABB) IsEmpty() bool {
	return !b.valid
}

// Extend returns the box grown to include p.
func (b AABB) Extend(p Vec3) AABB {
	if !b.valid {
		return PointAABB(p)
	}
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p), valid: true}
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	switch {
	case !other.valid:
		return b
	case !b.valid:
		return other
	}
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max), valid: true}
}

// Size returns the extent along each axis, zero for an empty box.
func (b AABB) Size() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint, zero for an empty box.
func (b AABB) Center() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Corners returns the eight corners of the box.
func (b AABB) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z},
		{lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z},
		{lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
}

// Transform maps all eight corners through m and returns their bounding box.
func (b AABB) Transform(m Mat4) AABB {
	if !b.valid {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.Extend(m.TransformPoint(c))
	}
	return out
}

// TransformExtremes maps only the min and max corners through m. Under a
// rotation that is not axis-aligned the result does not enclose the rotated box.
func (b AABB) TransformExtremes(m Mat4) AABB {
	if !b.valid {
		return b
	}
	return NewAABB(m.TransformPoint(b.Min), m.TransformPoint(b.Max))
}
