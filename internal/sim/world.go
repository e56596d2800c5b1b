// Package sim is a small headless physics host for the match rules: gravity,
// box colliders, trigger volumes and ray/sphere casts. It is not a general
// engine; bodies are axis-aligned capsule bounds and only collide with static
// geometry.
package sim

import (
	"math"

	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/vmath"
)

var DefaultGravity = vmath.V3(0, -9.81, 0)

// Static is immovable level geometry.
type Static struct {
	Name  string
	Box   vmath.AABB
	Layer match.Layer
}

type trigger struct {
	name   string
	box    vmath.AABB
	inside map[*Body]bool
	enter  func(*Body)
}

type World struct {
	Gravity vmath.Vec3

	statics  []Static
	bodies   []*Body
	triggers []*trigger
}

func NewWorld() *World {
	return &World{Gravity: DefaultGravity}
}

func (w *World) AddStatic(s Static) {
	if s.Layer == 0 {
		s.Layer = match.LayerWorld
	}
	w.statics = append(w.statics, s)
}

func (w *World) Statics() []Static { return w.statics }

func (w *World) AddBody(b *Body) {
	w.bodies = append(w.bodies, b)
}

func (w *World) RemoveBody(b *Body) {
	for i, o := range w.bodies {
		if o == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	for _, t := range w.triggers {
		delete(t.inside, b)
	}
}

func (w *World) Bodies() []*Body { return w.bodies }

// AddTrigger registers a volume whose enter callback fires on the first step
// a collidable body overlaps it.
func (w *World) AddTrigger(name string, box vmath.AABB, enter func(*Body)) {
	w.triggers = append(w.triggers, &trigger{
		name:   name,
		box:    box,
		inside: make(map[*Body]bool),
		enter:  enter,
	})
}

// Step integrates dynamic bodies, resolves them out of static geometry and
// then dispatches trigger enters.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.kinematic {
			continue
		}
		b.vel = b.vel.Add(w.Gravity.Scale(dt))
		b.pos = b.pos.Add(b.vel.Scale(dt))
		b.grounded = false
		if b.collision {
			w.resolve(b)
		}
	}
	w.dispatchTriggers()
}

// resolve pushes b out of every static it overlaps along the axis of least
// penetration and cancels velocity into the contact.
func (w *World) resolve(b *Body) {
	for _, s := range w.statics {
		bb := b.Bounds()
		if !overlapStrict(bb, s.Box) {
			continue
		}
		push := [3]float64{
			axisPush(bb.Min.X, bb.Max.X, s.Box.Min.X, s.Box.Max.X),
			axisPush(bb.Min.Y, bb.Max.Y, s.Box.Min.Y, s.Box.Max.Y),
			axisPush(bb.Min.Z, bb.Max.Z, s.Box.Min.Z, s.Box.Max.Z),
		}
		axis := 0
		for i := 1; i < 3; i++ {
			if math.Abs(push[i]) < math.Abs(push[axis]) {
				axis = i
			}
		}
		switch axis {
		case 0:
			b.pos.X += push[0]
			if push[0]*b.vel.X < 0 {
				b.vel.X = 0
			}
		case 1:
			b.pos.Y += push[1]
			if push[1]*b.vel.Y < 0 {
				b.vel.Y = 0
			}
			if push[1] > 0 {
				b.grounded = true
			}
		case 2:
			b.pos.Z += push[2]
			if push[2]*b.vel.Z < 0 {
				b.vel.Z = 0
			}
		}
	}
}

func (w *World) dispatchTriggers() {
	type entry struct {
		t *trigger
		b *Body
	}
	var entered []entry
	for _, t := range w.triggers {
		for _, b := range w.bodies {
			in := b.collision && t.box.Overlaps(b.Bounds())
			if in && !t.inside[b] {
				entered = append(entered, entry{t, b})
			}
			if in {
				t.inside[b] = true
			} else {
				delete(t.inside, b)
			}
		}
	}
	// Callbacks may kill, revive or teleport bodies.
	for _, e := range entered {
		if e.t.enter != nil {
			e.t.enter(e.b)
		}
	}
}

// Raycast returns the nearest static or body hit. Bodies whose bounds
// contain the origin, and bodies with collision off, are ignored.
func (w *World) Raycast(origin, dir vmath.Vec3, maxDist float64, mask match.Layer) (match.Hit, bool) {
	dir = dir.Normalize()
	if dir == vmath.Zero {
		return match.Hit{}, false
	}
	best := match.Hit{Distance: math.Inf(1)}
	found := false
	for _, s := range w.statics {
		if s.Layer&mask == 0 {
			continue
		}
		if d, ok := s.Box.Raycast(origin, dir, maxDist); ok && d < best.Distance {
			best = match.Hit{Name: s.Name, Distance: d}
			found = true
		}
	}
	for _, b := range w.bodies {
		if !w.castable(b, origin, mask) {
			continue
		}
		if d, ok := b.Bounds().Raycast(origin, dir, maxDist); ok && d < best.Distance {
			best = match.Hit{Body: b, Name: b.Name, Distance: d}
			found = true
		}
	}
	if !found {
		return match.Hit{}, false
	}
	best.Point = origin.Add(dir.Scale(best.Distance))
	return best, true
}

// SphereCast sweeps a sphere along dir and reports whether it touches
// anything within dist. Boxes are grown by the radius.
func (w *World) SphereCast(origin vmath.Vec3, radius float64, dir vmath.Vec3, dist float64, mask match.Layer) bool {
	dir = dir.Normalize()
	if dir == vmath.Zero {
		return false
	}
	grow := vmath.V3(radius, radius, radius)
	inflate := func(b vmath.AABB) vmath.AABB {
		return vmath.AABB{Min: b.Min.Sub(grow), Max: b.Max.Add(grow)}
	}
	for _, s := range w.statics {
		if s.Layer&mask == 0 {
			continue
		}
		if _, ok := inflate(s.Box).Raycast(origin, dir, dist); ok {
			return true
		}
	}
	for _, b := range w.bodies {
		if !w.castable(b, origin, mask) {
			continue
		}
		if _, ok := inflate(b.Bounds()).Raycast(origin, dir, dist); ok {
			return true
		}
	}
	return false
}

func (w *World) castable(b *Body, origin vmath.Vec3, mask match.Layer) bool {
	return b.collision && b.Layer&mask != 0 && !b.Bounds().Contains(origin)
}

func overlapStrict(a, b vmath.AABB) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y &&
		a.Min.Z < b.Max.Z && a.Max.Z > b.Min.Z
}

// axisPush is the signed shift that separates [amin, amax] from [bmin, bmax]
// along one axis, choosing the shorter side.
func axisPush(amin, amax, bmin, bmax float64) float64 {
	left := bmin - amax
	right := bmax - amin
	if -left < right {
		return left
	}
	return right
}

var (
	_ match.Body    = (*Body)(nil)
	_ match.Physics = (*World)(nil)
	_ match.Stepper = (*World)(nil)
)
