package match

import (
	"math"
	"testing"

	"github.com/playperu/sniperrun/internal/vmath"
)

func runner(t *testing.T, id string) (*Player, *fakeBody, *fakeVisual) {
	t.Helper()
	p, body, visual := testPlayer(id)
	p.AssignNumber(2)
	return p, body, visual
}

func TestDieIsIdempotent(t *testing.T) {
	audio := &recordAudio{}
	p, body, visual := runner(t, "p2")
	p.audio = audio
	body.vel = vmath.V3(3, -1, 2)

	p.Die()
	first := *body
	firstVisible := visual.visible

	p.Die()
	if body.pos != first.pos || body.vel != first.vel || body.kinematic != first.kinematic || body.collision != first.collision {
		t.Fatalf("second Die changed body: %+v -> %+v", first, *body)
	}
	if visual.visible != firstVisible {
		t.Fatal("second Die changed visibility")
	}
	if p.Alive() {
		t.Fatal("player alive after Die")
	}
	if body.vel != vmath.Zero || body.collision || visual.visible {
		t.Fatalf("Die left vel=%+v collision=%v visible=%v", body.vel, body.collision, visual.visible)
	}
	if n := audio.count(ClipRunnerDeath); n != 1 {
		t.Fatalf("death clip played %d times, want 1", n)
	}
}

func TestReviveRestoresState(t *testing.T) {
	p, body, visual := runner(t, "p2")
	p.Die()

	pos := vmath.V3(4, 2, 9)
	rot := vmath.AxisAngle(vmath.Up, 45)
	p.ReviveAt(pos, rot)

	if !p.Alive() {
		t.Fatal("not alive after revive")
	}
	if body.pos != pos || body.rot != rot {
		t.Fatalf("pose = %+v %+v, want %+v %+v", body.pos, body.rot, pos, rot)
	}
	if !body.collision || body.kinematic || !visual.visible {
		t.Fatalf("collision=%v kinematic=%v visible=%v", body.collision, body.kinematic, visual.visible)
	}
	if body.wakes != 1 {
		t.Fatalf("wakes = %d, want 1", body.wakes)
	}
}

func TestReviveAtNilPointIsIgnored(t *testing.T) {
	p, _, _ := runner(t, "p2")
	p.Die()
	p.ReviveAtPoint(nil)
	if p.Alive() {
		t.Fatal("revived with a nil point")
	}
}

func TestDeadPlayerDoesNotMove(t *testing.T) {
	p, body, _ := runner(t, "p2")
	c := newFakeControls()
	c.move = vmath.Vec2{X: 1}
	p.AssignControls(c)
	p.Die()

	p.FixedUpdate(0.02)
	if body.vel != vmath.Zero {
		t.Fatalf("dead player velocity = %+v", body.vel)
	}
}

func TestMovementSetsHorizontalVelocityAndKeepsVertical(t *testing.T) {
	tests := []struct {
		name     string
		grounded bool
		wantX    float64
	}{
		{"grounded", true, 6},
		{"airborne", false, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, body, _ := runner(t, "p2")
			p.physics = &fakePhysics{grounded: tt.grounded}
			c := newFakeControls()
			c.move = vmath.Vec2{X: 1}
			p.AssignControls(c)
			body.vel = vmath.V3(0, -4, 0)

			p.FixedUpdate(0.02)

			if math.Abs(body.vel.X-tt.wantX) > 1e-9 {
				t.Errorf("vx = %f, want %f", body.vel.X, tt.wantX)
			}
			if body.vel.Y != -4 {
				t.Errorf("vy = %f, want -4 (gravity untouched)", body.vel.Y)
			}
			if body.rot == vmath.Identity {
				t.Errorf("player did not turn toward movement")
			}
		})
	}
}

func TestMovementIsCameraRelative(t *testing.T) {
	p, body, _ := runner(t, "p2")
	p.physics = &fakePhysics{grounded: true}
	c := newFakeControls()
	c.move = vmath.Vec2{Y: 1}
	p.AssignControls(c)
	// Camera yawed 90 degrees: its forward is world +X.
	p.SetMoveReference(NewCameraRig(vmath.Zero, vmath.AxisAngle(vmath.Up, 90), 60))

	p.FixedUpdate(0.02)
	if math.Abs(body.vel.X-6) > 1e-6 || math.Abs(body.vel.Z) > 1e-6 {
		t.Fatalf("velocity = %+v, want (6, _, 0)", body.vel)
	}
}

func TestJumpIsBufferedAndNeedsGround(t *testing.T) {
	p, body, _ := runner(t, "p2")
	phys := &fakePhysics{grounded: false}
	p.physics = phys
	c := newFakeControls()
	p.AssignControls(c)

	c.pressed[ActionJump] = true
	p.Update(1.0 / 60)
	c.pressed[ActionJump] = false

	// Airborne: the buffered jump is consumed without effect.
	p.FixedUpdate(0.02)
	if len(body.impulses) != 0 {
		t.Fatalf("jumped while airborne")
	}
	phys.grounded = true
	p.FixedUpdate(0.02)
	if len(body.impulses) != 0 {
		t.Fatalf("jump buffer survived more than one physics tick")
	}

	body.vel = vmath.V3(0, -2, 0)
	c.pressed[ActionJump] = true
	p.Update(1.0 / 60)
	p.FixedUpdate(0.02)
	if len(body.impulses) != 1 {
		t.Fatalf("impulses = %d, want 1", len(body.impulses))
	}
	if body.vel.Y != 5 {
		t.Fatalf("vy after jump = %f, want 5 (downward velocity cleared first)", body.vel.Y)
	}
}

func TestMissingControlsDoNotPanic(t *testing.T) {
	p, body, _ := runner(t, "p2")
	p.AssignControls(nil)
	p.Update(0.016)
	p.FixedUpdate(0.02)
	if body.vel.X != 0 || body.vel.Z != 0 {
		t.Fatalf("moved without controls: %+v", body.vel)
	}
}
