package match

import (
	"math"

	"github.com/playperu/sniperrun/internal/vmath"
)

// CameraRig is the pose and field of view of one camera.
type CameraRig struct {
	Pos vmath.Vec3
	Rot vmath.Quat
	FOV float64
}

func NewCameraRig(pos vmath.Vec3, rot vmath.Quat, fov float64) *CameraRig {
	return &CameraRig{Pos: pos, Rot: rot, FOV: fov}
}

func (c *CameraRig) Position() vmath.Vec3 { return c.Pos }
func (c *CameraRig) Rotation() vmath.Quat { return c.Rot }

type CameraTuning struct {
	Offset             vmath.Vec3
	PositionSmoothTime float64
	RotationRate       float64
	LookAtTarget       bool

	MinFOV        float64
	MaxFOV        float64
	SpreadMin     float64
	SpreadMax     float64
	FOVSmoothTime float64
}

func DefaultCameraTuning() CameraTuning {
	return CameraTuning{
		Offset:             vmath.V3(0, 10, -15),
		PositionSmoothTime: 0.20,
		RotationRate:       10,
		LookAtTarget:       true,
		MinFOV:             55,
		MaxFOV:             80,
		SpreadMin:          6,
		SpreadMax:          30,
		FOVSmoothTime:      0.15,
	}
}

// GroupFollower frames every living runner. With Target set and GroupMode
// off it follows that single player instead.
type GroupFollower struct {
	Rig       *CameraRig
	Tuning    CameraTuning
	GroupMode bool
	Target    *Player

	roster *Roster
	posVel vmath.Vec3
	fovVel float64
}

func NewGroupFollower(rig *CameraRig, tuning CameraTuning, roster *Roster) *GroupFollower {
	return &GroupFollower{
		Rig:       rig,
		Tuning:    tuning,
		GroupMode: true,
		roster:    roster,
	}
}

func (f *GroupFollower) Update(dt float64) {
	if f.Rig == nil {
		return
	}
	if f.GroupMode {
		f.followGroup(dt)
		return
	}
	f.followTarget(dt)
}

func (f *GroupFollower) followTarget(dt float64) {
	if f.Target == nil {
		return
	}
	target := f.Target.Position()
	f.Rig.Pos = vmath.SmoothDampVec3(f.Rig.Pos, target.Add(f.Tuning.Offset), &f.posVel, f.Tuning.PositionSmoothTime, dt)
	f.lookAt(target, dt)
}

func (f *GroupFollower) followGroup(dt float64) {
	var (
		box   vmath.AABB
		found bool
	)
	for _, p := range f.roster.Runners() {
		if !p.Alive() {
			continue
		}
		if !found {
			box = vmath.PointBox(p.Position())
			found = true
			continue
		}
		box = box.Encapsulate(p.Position())
	}
	// Nobody to frame: hold the last pose.
	if !found {
		return
	}

	center := box.Center()
	f.Rig.Pos = vmath.SmoothDampVec3(f.Rig.Pos, center.Add(f.Tuning.Offset), &f.posVel, f.Tuning.PositionSmoothTime, dt)
	f.lookAt(center, dt)

	size := box.Size()
	spread := math.Max(size.X, size.Z)
	t := vmath.InverseLerp(f.Tuning.SpreadMin, f.Tuning.SpreadMax, spread)
	desired := vmath.Lerp(f.Tuning.MinFOV, f.Tuning.MaxFOV, t)
	if dt > 0 {
		f.Rig.FOV = vmath.SmoothDamp(f.Rig.FOV, desired, &f.fovVel, f.Tuning.FOVSmoothTime, dt)
	}
}

func (f *GroupFollower) lookAt(point vmath.Vec3, dt float64) {
	if !f.Tuning.LookAtTarget {
		return
	}
	dir := point.Sub(f.Rig.Pos)
	if dir.SqrLen() < 1e-9 {
		return
	}
	f.Rig.Rot = vmath.Slerp(f.Rig.Rot, vmath.LookRotation(dir), f.Tuning.RotationRate*dt)
}

// SniperFollower copies its target's pose every frame with no smoothing.
type SniperFollower struct {
	Rig    *CameraRig
	Target Pose
}

func (f *SniperFollower) Update(float64) {
	if f.Rig == nil || f.Target == nil {
		return
	}
	f.Rig.Pos = f.Target.Position()
	f.Rig.Rot = f.Target.Rotation()
}
