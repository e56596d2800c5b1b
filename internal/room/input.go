package room

import (
	"math"

	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/protocol"
	"github.com/playperu/sniperrun/internal/vmath"
)

// inputState turns a stream of client input messages into per-frame
// match.Controls. Press edges and look deltas accumulate until the end of
// the next variable frame.
type inputState struct {
	move    vmath.Vec2
	look    vmath.Vec2
	pressed map[match.Action]bool
	held    map[match.Action]bool
	anyKey  bool
}

func newInputState() *inputState {
	return &inputState{
		pressed: make(map[match.Action]bool),
		held:    make(map[match.Action]bool),
	}
}

func (s *inputState) apply(in protocol.Input) {
	s.move = clampStick(in.MoveX, in.MoveY)
	if finite(in.LookX) && finite(in.LookY) {
		s.look.X += in.LookX
		s.look.Y += in.LookY
	}
	if in.Jump {
		s.pressed[match.ActionJump] = true
	}
	if in.Attack {
		s.pressed[match.ActionAttack] = true
	}
	s.held[match.ActionAttack] = in.AttackHeld
	if in.AnyKey || in.Jump || in.Attack {
		s.anyKey = true
	}
}

// endFrame clears everything that is only valid for one frame.
func (s *inputState) endFrame() {
	s.look = vmath.Vec2{}
	clear(s.pressed)
	s.anyKey = false
}

func (s *inputState) Bound(match.Action) bool { return true }

func (s *inputState) Vector(a match.Action) vmath.Vec2 {
	switch a {
	case match.ActionMove:
		return s.move
	case match.ActionLook:
		return s.look
	}
	return vmath.Vec2{}
}

func (s *inputState) WasPressed(a match.Action) bool { return s.pressed[a] }
func (s *inputState) IsHeld(a match.Action) bool     { return s.held[a] || s.pressed[a] }

// clampStick limits a move vector to the unit circle.
func clampStick(x, y float64) vmath.Vec2 {
	if !finite(x) || !finite(y) {
		return vmath.Vec2{}
	}
	v := vmath.Vec2{X: x, Y: y}
	if l := math.Sqrt(v.SqrLen()); l > 1 {
		v.X /= l
		v.Y /= l
	}
	return v
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
