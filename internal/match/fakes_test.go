package match

import (
	"io"
	"log/slog"

	"github.com/playperu/sniperrun/internal/vmath"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBody struct {
	pos       vmath.Vec3
	rot       vmath.Quat
	vel       vmath.Vec3
	angVel    vmath.Vec3
	kinematic bool
	collision bool
	impulses  []vmath.Vec3
	wakes     int
}

func newFakeBody() *fakeBody {
	return &fakeBody{rot: vmath.Identity, collision: true}
}

func (b *fakeBody) Position() vmath.Vec3            { return b.pos }
func (b *fakeBody) SetPosition(p vmath.Vec3)        { b.pos = p }
func (b *fakeBody) Rotation() vmath.Quat            { return b.rot }
func (b *fakeBody) SetRotation(q vmath.Quat)        { b.rot = q }
func (b *fakeBody) Velocity() vmath.Vec3            { return b.vel }
func (b *fakeBody) SetVelocity(v vmath.Vec3)        { b.vel = v }
func (b *fakeBody) SetAngularVelocity(v vmath.Vec3) { b.angVel = v }
func (b *fakeBody) SetKinematic(k bool)             { b.kinematic = k }
func (b *fakeBody) SetCollision(c bool)             { b.collision = c }
func (b *fakeBody) WakeUp()                         { b.wakes++ }
func (b *fakeBody) AddImpulse(v vmath.Vec3) {
	b.impulses = append(b.impulses, v)
	b.vel = b.vel.Add(v)
}

type fakeVisual struct {
	visible bool
	tint    Color
	tinted  int
}

func (v *fakeVisual) SetVisible(on bool) { v.visible = on }
func (v *fakeVisual) SetTint(c Color)    { v.tint = c; v.tinted++ }

type fakeControls struct {
	move, look vmath.Vec2
	pressed    map[Action]bool
	held       map[Action]bool
	unbound    map[Action]bool
}

func newFakeControls() *fakeControls {
	return &fakeControls{
		pressed: map[Action]bool{},
		held:    map[Action]bool{},
		unbound: map[Action]bool{},
	}
}

func (c *fakeControls) Bound(a Action) bool { return !c.unbound[a] }

func (c *fakeControls) Vector(a Action) vmath.Vec2 {
	switch a {
	case ActionMove:
		return c.move
	case ActionLook:
		return c.look
	}
	return vmath.Vec2{}
}

func (c *fakeControls) WasPressed(a Action) bool { return c.pressed[a] }
func (c *fakeControls) IsHeld(a Action) bool     { return c.held[a] }

// fakePhysics reports grounded from a flag and returns a scripted ray hit.
type fakePhysics struct {
	grounded bool
	hit      *Hit
	rays     int
	lastDir  vmath.Vec3
}

func (f *fakePhysics) SphereCast(vmath.Vec3, float64, vmath.Vec3, float64, Layer) bool {
	return f.grounded
}

func (f *fakePhysics) Raycast(_, dir vmath.Vec3, _ float64, _ Layer) (Hit, bool) {
	f.rays++
	f.lastDir = dir
	if f.hit == nil {
		return Hit{}, false
	}
	return *f.hit, true
}

type recordAudio struct {
	clips []Clip
}

func (a *recordAudio) PlayOneShot(c Clip) { a.clips = append(a.clips, c) }

func (a *recordAudio) count(c Clip) int {
	n := 0
	for _, got := range a.clips {
		if got == c {
			n++
		}
	}
	return n
}

type fakeDisplay struct {
	visible map[string]bool
}

func newFakeDisplay() *fakeDisplay { return &fakeDisplay{visible: map[string]bool{}} }

func (d *fakeDisplay) SetVisible(name string, on bool) { d.visible[name] = on }

type fakeScenes struct {
	loaded []int
}

func (s *fakeScenes) LoadScene(i int) { s.loaded = append(s.loaded, i) }

type fakeKeyboard struct{ pressed bool }

func (k *fakeKeyboard) AnyPressed() bool { return k.pressed }

// testPlayer builds a player with fake parts.
func testPlayer(id string) (*Player, *fakeBody, *fakeVisual) {
	body := newFakeBody()
	visual := &fakeVisual{visible: true}
	p := NewPlayer(id, id, PlayerParts{
		Body:         body,
		Visual:       visual,
		Capsule:      &Capsule{Radius: 0.5, Height: 2},
		AnchorOffset: vmath.V3(0, 0.8, 0),
	}, DefaultMovementTuning(), discardLogger())
	return p, body, visual
}

func testSlots(n int) ([]Transform, []Color) {
	slots := make([]Transform, n)
	colors := make([]Color, n)
	for i := range slots {
		slots[i] = Transform{Position: vmath.V3(float64(i)*2, 1, 0), Rotation: vmath.Identity}
		colors[i] = Color{R: float64(i) / float64(n), A: 1}
	}
	return slots, colors
}

func testConfig(n int) Config {
	slots, colors := testSlots(n)
	return Config{
		Slots:         slots,
		Colors:        colors,
		JoinLockDelay: 5,
		Movement:      DefaultMovementTuning(),
		Camera:        DefaultCameraTuning(),
		Sniper:        DefaultSniperTuning(),
	}
}
