package match

import (
	"math"
	"testing"

	"github.com/playperu/sniperrun/internal/vmath"
)

func sniperWithControls(t *testing.T) (*Player, *fakeBody, *fakeControls) {
	t.Helper()
	p, body, _ := testPlayer("sniper")
	p.AssignNumber(1)
	c := newFakeControls()
	p.AssignControls(c)
	return p, body, c
}

func TestSniperLookYawAndPitch(t *testing.T) {
	p, body, c := sniperWithControls(t)
	look := NewSniperLook(DefaultSniperTuning(), discardLogger())

	c.look = vmath.Vec2{X: 750, Y: 100}
	look.Update(p)

	if got := body.rot.Angle(vmath.AxisAngle(vmath.Up, 90)); got > 1e-3 {
		t.Fatalf("body yaw off by %f degrees", got)
	}
	if math.Abs(look.Pitch()-(-12)) > 1e-9 {
		t.Fatalf("pitch = %f, want -12", look.Pitch())
	}
	// Mouse up raises the view.
	if fwd := p.Anchor().Rotation().Forward(); fwd.Y <= 0 {
		t.Fatalf("anchor forward = %+v, want looking up", fwd)
	}
}

func TestSniperPitchIsClamped(t *testing.T) {
	p, _, c := sniperWithControls(t)
	look := NewSniperLook(DefaultSniperTuning(), discardLogger())

	c.look = vmath.Vec2{Y: -10000}
	look.Update(p)
	if look.Pitch() != 80 {
		t.Fatalf("pitch = %f, want 80", look.Pitch())
	}
	c.look = vmath.Vec2{Y: 100000}
	look.Update(p)
	if look.Pitch() != -80 {
		t.Fatalf("pitch = %f, want -80", look.Pitch())
	}
}

func TestSniperShootKillsHitRunner(t *testing.T) {
	sniper, _, c := sniperWithControls(t)
	roster := NewRoster()
	roster.Add(sniper)
	target, targetBody, _ := testPlayer("runner")
	target.AssignNumber(2)
	roster.Add(target)

	phys := &fakePhysics{hit: &Hit{Body: targetBody, Name: "runner", Distance: 12}}
	audio := &recordAudio{}
	clock := &Clock{}
	shoot := NewSniperShoot(DefaultSniperTuning(), phys, roster, clock, audio, discardLogger())
	shoot.Camera = NewCameraRig(vmath.Zero, vmath.AxisAngle(vmath.Up, 90), 60)

	c.pressed[ActionAttack] = true
	if !shoot.Update(sniper) {
		t.Fatal("did not fire")
	}
	if target.Alive() {
		t.Fatal("hit runner still alive")
	}
	if !vmathNear(phys.lastDir, vmath.Right) {
		t.Fatalf("shot direction = %+v, want camera forward", phys.lastDir)
	}
	if audio.count(ClipSniperShot) != 1 {
		t.Fatalf("shot clips = %d, want 1", audio.count(ClipSniperShot))
	}
}

func TestSniperShootCooldown(t *testing.T) {
	sniper, _, c := sniperWithControls(t)
	phys := &fakePhysics{}
	audio := &recordAudio{}
	clock := &Clock{}
	shoot := NewSniperShoot(DefaultSniperTuning(), phys, NewRoster(), clock, audio, discardLogger())
	shoot.Camera = NewCameraRig(vmath.Zero, vmath.Identity, 60)
	c.pressed[ActionAttack] = true

	if !shoot.Update(sniper) {
		t.Fatal("first shot did not fire")
	}
	clock.Advance(0.1)
	if shoot.Update(sniper) {
		t.Fatal("fired during cooldown")
	}
	clock.Advance(0.2)
	if !shoot.Update(sniper) {
		t.Fatal("did not fire after cooldown")
	}
	// A miss still plays the shot.
	if audio.count(ClipSniperShot) != 2 || phys.rays != 2 {
		t.Fatalf("clips = %d rays = %d, want 2 and 2", audio.count(ClipSniperShot), phys.rays)
	}
}

func TestSniperShootHitOnStaticGeometry(t *testing.T) {
	sniper, _, c := sniperWithControls(t)
	roster := NewRoster()
	roster.Add(sniper)
	phys := &fakePhysics{hit: &Hit{Name: "wall", Distance: 3}}
	shoot := NewSniperShoot(DefaultSniperTuning(), phys, roster, &Clock{}, nil, discardLogger())
	shoot.Camera = NewCameraRig(vmath.Zero, vmath.Identity, 60)
	c.pressed[ActionAttack] = true

	if !shoot.Update(sniper) {
		t.Fatal("did not fire")
	}
	if !sniper.Alive() {
		t.Fatal("static hit killed the shooter")
	}
}

func TestSniperShootNeedsCameraAndTrigger(t *testing.T) {
	sniper, _, c := sniperWithControls(t)
	shoot := NewSniperShoot(DefaultSniperTuning(), &fakePhysics{}, NewRoster(), &Clock{}, nil, discardLogger())

	c.pressed[ActionAttack] = true
	if shoot.Update(sniper) {
		t.Fatal("fired without a camera")
	}
	shoot.Camera = NewCameraRig(vmath.Zero, vmath.Identity, 60)
	c.pressed[ActionAttack] = false
	c.held[ActionAttack] = true
	if shoot.Update(sniper) {
		t.Fatal("held trigger fired in press mode")
	}
}

func TestSniperHoldToFire(t *testing.T) {
	sniper, _, c := sniperWithControls(t)
	tuning := DefaultSniperTuning()
	tuning.HoldToFire = true
	clock := &Clock{}
	shoot := NewSniperShoot(tuning, &fakePhysics{}, NewRoster(), clock, nil, discardLogger())
	shoot.Camera = NewCameraRig(vmath.Zero, vmath.Identity, 60)

	c.held[ActionAttack] = true
	fired := 0
	for i := 0; i < 60; i++ {
		if shoot.Update(sniper) {
			fired++
		}
		clock.Advance(1.0 / 60)
	}
	// One second of held trigger at a 0.25s cooldown.
	if fired != 4 {
		t.Fatalf("shots = %d, want 4", fired)
	}
}

func vmathNear(a, b vmath.Vec3) bool {
	return a.Sub(b).Len() < 1e-6
}
