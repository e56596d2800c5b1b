package vmath

import "math"

// Quat is a unit rotation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

var Identity = Quat{W: 1}

func AxisAngle(axis Vec3, degrees float64) Quat {
	axis = axis.Normalize()
	half := degrees * math.Pi / 360
	s := math.Sin(half)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(half)}
}

// Euler builds a rotation from pitch (x), yaw (y) and roll (z) in degrees,
// applied in z, x, y order.
func Euler(pitch, yaw, roll float64) Quat {
	return AxisAngle(Up, yaw).Mul(AxisAngle(Right, pitch)).Mul(AxisAngle(Forward, roll))
}

func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

func (q Quat) Dot(o Quat) float64 { return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W }

func (q Quat) normalize() Quat {
	l := math.Sqrt(q.Dot(q))
	if l < epsilon {
		return Identity
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

func (q Quat) Forward() Vec3 { return q.Rotate(Forward) }
func (q Quat) Right() Vec3   { return q.Rotate(Right) }

// Angle returns the angle between two rotations in degrees.
func (q Quat) Angle(o Quat) float64 {
	d := math.Min(math.Abs(q.Dot(o)), 1)
	return 2 * math.Acos(d) * 180 / math.Pi
}

// LookRotation returns the rotation whose forward axis points along dir with
// up as close to Up as possible. A zero direction yields Identity.
func LookRotation(dir Vec3) Quat {
	f := dir.Normalize()
	if f == Zero {
		return Identity
	}
	r := Up.Cross(f).Normalize()
	if r == Zero {
		// Looking straight up or down.
		r = Right
	}
	u := f.Cross(r)

	// Rotation matrix columns r, u, f to quaternion.
	m00, m11, m22 := r.X, u.Y, f.Z
	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{(u.Z - f.Y) / s, (f.X - r.Z) / s, (r.Y - u.X) / s, s / 4}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{s / 4, (u.X + r.Y) / s, (f.X + r.Z) / s, (u.Z - f.Y) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{(u.X + r.Y) / s, s / 4, (f.Y + u.Z) / s, (f.X - r.Z) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{(f.X + r.Z) / s, (f.Y + u.Z) / s, s / 4, (r.Y - u.X) / s}
	}
	return q.normalize()
}

// Slerp interpolates from a to b by t, clamped to [0, 1].
func Slerp(a, b Quat, t float64) Quat {
	t = Clamp01(t)
	d := a.Dot(b)
	if d < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
		d = -d
	}
	if d > 0.9995 {
		return Quat{
			Lerp(a.X, b.X, t),
			Lerp(a.Y, b.Y, t),
			Lerp(a.Z, b.Z, t),
			Lerp(a.W, b.W, t),
		}.normalize()
	}
	theta := math.Acos(d)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quat{
		a.X*wa + b.X*wb,
		a.Y*wa + b.Y*wb,
		a.Z*wa + b.Z*wb,
		a.W*wa + b.W*wb,
	}.normalize()
}
