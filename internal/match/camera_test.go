package match

import (
	"math"
	"testing"

	"github.com/playperu/sniperrun/internal/vmath"
)

func TestGroupCameraHoldsPoseWithNoLivingRunners(t *testing.T) {
	s, _, _, roster := newTestSpawner(3)
	ps := joinAll(t, s, "sniper", "a", "b")
	ps[1].Die()
	ps[2].Die()

	rig := NewCameraRig(vmath.V3(1, 2, 3), vmath.AxisAngle(vmath.Up, 30), 60)
	cam := NewGroupFollower(rig, DefaultCameraTuning(), roster)
	before := *rig
	for i := 0; i < 10; i++ {
		cam.Update(1.0 / 60)
	}
	if *rig != before {
		t.Fatalf("rig moved with nobody to frame: %+v -> %+v", before, *rig)
	}
}

func TestGroupCameraFramesLivingRunners(t *testing.T) {
	s, _, _, roster := newTestSpawner(3)
	joinAll(t, s, "sniper", "a", "b")

	tuning := DefaultCameraTuning()
	rig := NewCameraRig(vmath.Zero, vmath.Identity, tuning.MinFOV)
	cam := NewGroupFollower(rig, tuning, roster)
	for i := 0; i < 600; i++ {
		cam.Update(1.0 / 60)
	}

	// Runners sit at x=2 and x=4.
	want := vmath.V3(3, 1, 0).Add(tuning.Offset)
	if d := rig.Pos.Sub(want).Len(); d > 0.01 {
		t.Fatalf("rig pos = %+v, want ~%+v", rig.Pos, want)
	}
	look := rig.Rot.Forward()
	toCenter := vmath.V3(3, 1, 0).Sub(rig.Pos).Normalize()
	if look.Dot(toCenter) < 0.999 {
		t.Fatalf("camera looks along %+v, want %+v", look, toCenter)
	}
	// Spread of 2 is under SpreadMin.
	if d := rig.FOV - tuning.MinFOV; d > 0.01 || d < -0.01 {
		t.Fatalf("fov = %f, want %f", rig.FOV, tuning.MinFOV)
	}
}

func TestGroupCameraWidensWithSpread(t *testing.T) {
	roster := NewRoster()
	for i, x := range []float64{0, 30} {
		p, body, _ := testPlayer(string(rune('a' + i)))
		p.AssignNumber(i + 2)
		body.pos = vmath.V3(x, 0, 0)
		roster.Add(p)
	}
	tuning := DefaultCameraTuning()
	rig := NewCameraRig(vmath.Zero, vmath.Identity, tuning.MinFOV)
	cam := NewGroupFollower(rig, tuning, roster)
	for i := 0; i < 600; i++ {
		cam.Update(1.0 / 60)
	}
	if rig.FOV < tuning.MaxFOV-0.01 {
		t.Fatalf("fov = %f, want ~%f", rig.FOV, tuning.MaxFOV)
	}
}

func TestSingleTargetMode(t *testing.T) {
	p, body, _ := testPlayer("a")
	body.pos = vmath.V3(5, 0, 5)
	tuning := DefaultCameraTuning()
	rig := NewCameraRig(vmath.Zero, vmath.Identity, 60)
	cam := NewGroupFollower(rig, tuning, NewRoster())
	cam.GroupMode = false
	cam.Target = p
	for i := 0; i < 600; i++ {
		cam.Update(1.0 / 60)
	}
	want := body.pos.Add(tuning.Offset)
	if d := rig.Pos.Sub(want).Len(); d > 0.01 {
		t.Fatalf("rig pos = %+v, want ~%+v", rig.Pos, want)
	}
}

func TestSniperFollowerCopiesPose(t *testing.T) {
	p, body, _ := testPlayer("s")
	body.pos = vmath.V3(1, 2, 3)
	body.rot = vmath.AxisAngle(vmath.Up, 45)
	p.Anchor().Local = vmath.Euler(10, 0, 0)

	f := &SniperFollower{Rig: NewCameraRig(vmath.Zero, vmath.Identity, 60), Target: p.Anchor()}
	f.Update(0.016)
	if f.Rig.Pos != p.Anchor().Position() || f.Rig.Rot != p.Anchor().Rotation() {
		t.Fatalf("rig = %+v, want anchor pose", *f.Rig)
	}
	if math.Abs(f.Rig.Pos.Y-2.8) > 1e-9 {
		t.Fatalf("anchor height = %f, want 2.8", f.Rig.Pos.Y)
	}
}
