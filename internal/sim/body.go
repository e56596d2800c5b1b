package sim

import (
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/vmath"
)

// Body is an upright box-approximated capsule with unit mass. Rotation is
// driven by gameplay only; angular velocity is stored but not integrated.
type Body struct {
	Name   string
	Layer  match.Layer
	Center vmath.Vec3
	Radius float64
	Height float64

	pos       vmath.Vec3
	rot       vmath.Quat
	vel       vmath.Vec3
	angVel    vmath.Vec3
	kinematic bool
	collision bool
	grounded  bool
}

// NewBody returns a dynamic, collidable body on the player layer.
func NewBody(name string, capsule match.Capsule) *Body {
	return &Body{
		Name:      name,
		Layer:     match.LayerPlayer,
		Center:    capsule.Center,
		Radius:    capsule.Radius,
		Height:    capsule.Height,
		rot:       vmath.Identity,
		collision: true,
	}
}

func (b *Body) Position() vmath.Vec3            { return b.pos }
func (b *Body) SetPosition(p vmath.Vec3)        { b.pos = p }
func (b *Body) Rotation() vmath.Quat            { return b.rot }
func (b *Body) SetRotation(q vmath.Quat)        { b.rot = q }
func (b *Body) Velocity() vmath.Vec3            { return b.vel }
func (b *Body) SetVelocity(v vmath.Vec3)        { b.vel = v }
func (b *Body) SetAngularVelocity(v vmath.Vec3) { b.angVel = v }
func (b *Body) SetKinematic(k bool)             { b.kinematic = k }
func (b *Body) SetCollision(c bool)             { b.collision = c }
func (b *Body) AddImpulse(j vmath.Vec3)         { b.vel = b.vel.Add(j) }

// WakeUp exists for the host contract; bodies never sleep.
func (b *Body) WakeUp() {}

func (b *Body) Kinematic() bool { return b.kinematic }
func (b *Body) Collision() bool { return b.collision }

// Grounded reports whether the last step resolved a floor contact.
func (b *Body) Grounded() bool { return b.grounded }

// Bounds is the world-space box around the capsule.
func (b *Body) Bounds() vmath.AABB {
	d := 2 * b.Radius
	h := max(b.Height, d)
	return vmath.Box(b.pos.Add(b.Center), vmath.V3(d, h, d))
}
