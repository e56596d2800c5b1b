package vmath

import "math"

// AABB is an axis-aligned box given by its min and max corners.
type AABB struct {
	Min, Max Vec3
}

// Box builds an AABB from a center and full size.
func Box(center, size Vec3) AABB {
	h := size.Scale(0.5)
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

// PointBox is a zero-size box at p, the seed for Encapsulate.
func PointBox(p Vec3) AABB { return AABB{Min: p, Max: p} }

func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }
func (b AABB) Size() Vec3   { return b.Max.Sub(b.Min) }

// Encapsulate grows b to contain p.
func (b AABB) Encapsulate(p Vec3) AABB {
	return AABB{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

func (b AABB) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Raycast intersects the ray origin+t*dir (dir normalized) with b using the
// slab method and returns the entry distance.
func (b AABB) Raycast(origin, dir Vec3, maxDist float64) (float64, bool) {
	tmin, tmax := 0.0, maxDist
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < epsilon {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
