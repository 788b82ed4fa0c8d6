package crowd

import "math"

// Vec3 is a position, velocity or acceleration in world units.
// All hot-path math stays in float32.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// LenSq returns the squared length of v.
func (v Vec3) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the length of v.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSq())))
}

// Normalized returns v scaled to unit length.
// A zero-length vector normalizes to the zero vector, never NaN.
func (v Vec3) Normalized() Vec3 {
	lsq := v.LenSq()
	if lsq == 0 {
		return Vec3{}
	}
	inv := 1 / float32(math.Sqrt(float64(lsq)))
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
