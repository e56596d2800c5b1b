// Package vmath holds the small amount of 3D math the match rules need:
// vectors, quaternions, axis-aligned boxes and the smoothing filters used by
// the cameras.
package vmath

import "math"

const epsilon = 1e-9

type Vec2 struct {
	X, Y float64
}

func (v Vec2) SqrLen() float64 { return v.X*v.X + v.Y*v.Y }

type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero    = Vec3{}
	Up      = Vec3{Y: 1}
	Down    = Vec3{Y: -1}
	Forward = Vec3{Z: 1}
	Right   = Vec3{X: 1}
)

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) SqrLen() float64      { return v.Dot(v) }
func (v Vec3) Len() float64         { return math.Sqrt(v.SqrLen()) }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector, or Zero for a degenerate input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < epsilon {
		return Zero
	}
	return v.Scale(1 / l)
}

// Flat drops the vertical component.
func (v Vec3) Flat() Vec3 { return Vec3{v.X, 0, v.Z} }

func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// InverseLerp maps v from [a, b] to [0, 1], clamped.
func InverseLerp(a, b, v float64) float64 {
	if math.Abs(b-a) < epsilon {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}
