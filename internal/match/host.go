package match

import "github.com/playperu/sniperrun/internal/vmath"

// The interfaces below are the host engine capabilities the rules consume.
// internal/sim and internal/room provide the server-side implementations.

// Body is a physics body owned by the host.
type Body interface {
	Position() vmath.Vec3
	SetPosition(vmath.Vec3)
	Rotation() vmath.Quat
	SetRotation(vmath.Quat)
	Velocity() vmath.Vec3
	SetVelocity(vmath.Vec3)
	SetAngularVelocity(vmath.Vec3)
	SetKinematic(bool)
	AddImpulse(vmath.Vec3)
	SetCollision(bool)
	WakeUp()
}

// Layer is a collision layer bit mask.
type Layer uint32

const (
	LayerWorld  Layer = 1 << 0
	LayerPlayer Layer = 1 << 1
	LayerAll    Layer = ^Layer(0)
)

// Hit describes a ray cast result. Body is nil when static geometry was hit.
type Hit struct {
	Body     Body
	Name     string
	Point    vmath.Vec3
	Distance float64
}

// Physics answers scene queries. Casts ignore bodies that contain the cast
// origin.
type Physics interface {
	SphereCast(origin vmath.Vec3, radius float64, dir vmath.Vec3, dist float64, mask Layer) bool
	Raycast(origin, dir vmath.Vec3, maxDist float64, mask Layer) (Hit, bool)
}

// Stepper advances the host physics simulation by one fixed step, including
// trigger volume callbacks.
type Stepper interface {
	Step(dt float64)
}

// Visual is the renderable part of a player.
type Visual interface {
	SetVisible(bool)
	SetTint(Color)
}

// Animator receives animation parameters. Optional.
type Animator interface {
	SetBool(name string, v bool)
	SetTrigger(name string)
}

type Action string

const (
	ActionMove   Action = "Move"
	ActionLook   Action = "Look"
	ActionJump   Action = "Jump"
	ActionAttack Action = "Attack"
)

// Controls are the action bindings of one input device.
type Controls interface {
	Bound(a Action) bool
	Vector(a Action) vmath.Vec2
	WasPressed(a Action) bool
	IsHeld(a Action) bool
}

// Keyboard is raw "any key" polling across every connected device.
type Keyboard interface {
	AnyPressed() bool
}

type Clip string

const (
	ClipRunnerSpawn Clip = "runner_spawn"
	ClipRunnerDeath Clip = "runner_death"
	ClipSniperShot  Clip = "sniper_shot"
)

// Audio plays fire-and-forget one-shot clips.
type Audio interface {
	PlayOneShot(Clip)
}

// Display toggles named UI objects.
type Display interface {
	SetVisible(name string, visible bool)
}

// SceneLoader loads a scene by build index.
type SceneLoader interface {
	LoadScene(index int)
}

// Pose is anything with a world position and rotation.
type Pose interface {
	Position() vmath.Vec3
	Rotation() vmath.Quat
}

type Transform struct {
	Position vmath.Vec3
	Rotation vmath.Quat
}

type Color struct {
	R, G, B, A float64
}

type nopAudio struct{}

func (nopAudio) PlayOneShot(Clip) {}
