package match

import (
	"log/slog"

	"github.com/playperu/sniperrun/internal/vmath"
)

// Role selects which behaviour processes a player each tick.
type Role uint8

const (
	RoleNone Role = iota
	RoleSniper
	RoleRunner
)

func (r Role) String() string {
	switch r {
	case RoleSniper:
		return "sniper"
	case RoleRunner:
		return "runner"
	default:
		return "none"
	}
}

// RoleFor maps a 1-based player number to its role.
func RoleFor(number int) Role {
	switch {
	case number == 1:
		return RoleSniper
	case number >= 2:
		return RoleRunner
	default:
		return RoleNone
	}
}

type MovementTuning struct {
	MoveSpeed           float64
	JumpImpulse         float64
	AirControl          float64
	GroundCheckDistance float64
	TurnRate            float64
	GroundMask          Layer
}

func DefaultMovementTuning() MovementTuning {
	return MovementTuning{
		MoveSpeed:           6,
		JumpImpulse:         5,
		AirControl:          0.5,
		GroundCheckDistance: 0.15,
		TurnRate:            15,
		GroundMask:          LayerAll,
	}
}

// Capsule is the player's collision capsule relative to its body position.
type Capsule struct {
	Center vmath.Vec3
	Radius float64
	Height float64
}

// Anchor is a head/camera mount on a body. Its local rotation carries pitch
// separately from the body's yaw.
type Anchor struct {
	body   Body
	Offset vmath.Vec3
	Local  vmath.Quat
}

func (a *Anchor) Position() vmath.Vec3 {
	return a.body.Position().Add(a.body.Rotation().Rotate(a.Offset))
}

func (a *Anchor) Rotation() vmath.Quat {
	return a.body.Rotation().Mul(a.Local)
}

// PlayerParts are the host objects that make up one player.
type PlayerParts struct {
	Body     Body
	Visual   Visual
	Animator Animator
	Capsule  *Capsule
	Physics  Physics
	Audio    Audio
	// AnchorOffset places the camera anchor relative to the body.
	AnchorOffset vmath.Vec3
}

// Player is the per-participant entity. Death is a flag; the entity lives
// until its join is rejected or the scene is torn down.
type Player struct {
	ID   string
	Name string

	number int
	color  Color
	dead   bool
	doJump bool

	body     Body
	visual   Visual
	anim     Animator
	capsule  *Capsule
	physics  Physics
	audio    Audio
	controls Controls
	moveRef  Pose
	anchor   *Anchor
	tuning   MovementTuning
	logger   *slog.Logger
}

func NewPlayer(id, name string, parts PlayerParts, tuning MovementTuning, logger *slog.Logger) *Player {
	p := &Player{
		ID:      id,
		Name:    name,
		body:    parts.Body,
		visual:  parts.Visual,
		anim:    parts.Animator,
		capsule: parts.Capsule,
		physics: parts.Physics,
		audio:   parts.Audio,
		tuning:  tuning,
		logger:  logger.With("player", id),
	}
	if p.audio == nil {
		p.audio = nopAudio{}
	}
	if p.body != nil {
		p.anchor = &Anchor{body: p.body, Offset: parts.AnchorOffset, Local: vmath.Identity}
	}
	return p
}

func (p *Player) Number() int        { return p.number }
func (p *Player) Role() Role         { return RoleFor(p.number) }
func (p *Player) Color() Color       { return p.color }
func (p *Player) Alive() bool        { return !p.dead }
func (p *Player) Body() Body         { return p.body }
func (p *Player) Anchor() *Anchor    { return p.anchor }
func (p *Player) Controls() Controls { return p.controls }

func (p *Player) Position() vmath.Vec3 {
	if p.body == nil {
		return vmath.Zero
	}
	return p.body.Position()
}

func (p *Player) Rotation() vmath.Quat {
	if p.body == nil {
		return vmath.Identity
	}
	return p.body.Rotation()
}

func (p *Player) AssignNumber(n int) { p.number = n }

func (p *Player) AssignColor(c Color) {
	p.color = c
	if p.visual == nil {
		p.logger.Warn("no visual to tint")
		return
	}
	p.visual.SetTint(c)
}

// AssignControls binds the player's input device.
func (p *Player) AssignControls(c Controls) {
	p.controls = c
	if c == nil || !c.Bound(ActionMove) || !c.Bound(ActionJump) {
		p.logger.Error("could not find Move/Jump actions")
	}
}

// SetMoveReference makes movement relative to ref's ground-plane basis.
func (p *Player) SetMoveReference(ref Pose) { p.moveRef = ref }

// Die stops the player and hides it. Calling it on a dead player does nothing.
func (p *Player) Die() {
	if p.dead {
		return
	}
	p.dead = true
	p.doJump = false

	if p.body != nil {
		p.body.SetVelocity(vmath.Zero)
		p.body.SetAngularVelocity(vmath.Zero)
		p.body.SetKinematic(true)
		p.body.SetCollision(false)
	}
	if p.visual != nil {
		p.visual.SetVisible(false)
	}
	if p.anim != nil {
		p.anim.SetBool("IsMoving", false)
	}
	if p.Role() == RoleRunner {
		p.audio.PlayOneShot(ClipRunnerDeath)
	}
	p.logger.Info("player died", "number", p.number)
}

// ReviveAtPoint revives at a spawn transform; a nil point is logged and ignored.
func (p *Player) ReviveAtPoint(t *Transform) {
	if t == nil {
		p.logger.Warn("revive called with no spawn point")
		return
	}
	p.ReviveAt(t.Position, t.Rotation)
}

// ReviveAt marks the player alive, teleports the body and restores collision
// and visuals, in that order.
func (p *Player) ReviveAt(pos vmath.Vec3, rot vmath.Quat) {
	p.dead = false

	if p.body != nil {
		p.body.SetKinematic(true)
		p.body.SetVelocity(vmath.Zero)
		p.body.SetAngularVelocity(vmath.Zero)
		p.body.SetPosition(pos)
		p.body.SetRotation(rot)
		p.body.SetKinematic(false)
		p.body.WakeUp()
		p.body.SetCollision(true)
	}
	if p.visual != nil {
		p.visual.SetVisible(true)
	}
	if p.anim != nil {
		p.anim.SetBool("IsMoving", false)
	}
	if p.Role() == RoleRunner {
		p.audio.PlayOneShot(ClipRunnerSpawn)
	}
	p.logger.Info("player revived", "number", p.number)
}

// place puts the player at a spawn slot without touching its alive state.
func (p *Player) place(t Transform) {
	if p.body == nil {
		return
	}
	p.body.SetPosition(t.Position)
	p.body.SetRotation(t.Rotation)
	p.body.SetVelocity(vmath.Zero)
	p.body.SetAngularVelocity(vmath.Zero)
}

// Update samples edge-triggered input on the variable tick.
func (p *Player) Update(float64) {
	if p.dead || p.controls == nil {
		return
	}
	if p.controls.Bound(ActionJump) && p.controls.WasPressed(ActionJump) {
		p.doJump = true
	}
}

// FixedUpdate integrates runner movement on the physics tick.
func (p *Player) FixedUpdate(dt float64) {
	if p.dead {
		return
	}
	if p.body == nil {
		p.logger.Warn("no body to move")
		return
	}

	var move vmath.Vec2
	if p.controls != nil && p.controls.Bound(ActionMove) {
		move = p.controls.Vector(ActionMove)
	}
	moving := move.SqrLen() > 0.001
	if p.anim != nil {
		p.anim.SetBool("IsMoving", moving)
	}

	desired := vmath.Vec3{X: move.X, Z: move.Y}
	if p.moveRef != nil {
		rot := p.moveRef.Rotation()
		fwd := rot.Forward().Flat().Normalize()
		right := rot.Right().Flat().Normalize()
		desired = right.Scale(move.X).Add(fwd.Scale(move.Y))
	}

	if desired.SqrLen() > 0.001 {
		target := vmath.LookRotation(desired.Flat())
		p.body.SetRotation(vmath.Slerp(p.body.Rotation(), target, p.tuning.TurnRate*dt))
	}

	grounded := p.grounded()
	if p.anim != nil {
		p.anim.SetBool("IsGrounded", grounded)
	}

	control := 1.0
	if !grounded {
		control = p.tuning.AirControl
	}
	horizontal := desired.Scale(p.tuning.MoveSpeed * control)
	vel := p.body.Velocity()
	vel.X = horizontal.X
	vel.Z = horizontal.Z
	p.body.SetVelocity(vel)

	if !p.doJump {
		return
	}
	p.doJump = false
	if !grounded {
		return
	}
	if p.anim != nil {
		p.anim.SetTrigger("Jump")
	}
	vel = p.body.Velocity()
	if vel.Y < 0 {
		vel.Y = 0
		p.body.SetVelocity(vel)
	}
	p.body.AddImpulse(vmath.Up.Scale(p.tuning.JumpImpulse))
}

// grounded casts a short sphere down from the bottom of the capsule.
func (p *Player) grounded() bool {
	if p.capsule == nil || p.physics == nil {
		return false
	}
	center := p.body.Position().Add(p.body.Rotation().Rotate(p.capsule.Center))
	radius := max(0.01, p.capsule.Radius)
	half := max(p.capsule.Height*0.5, radius)
	bottom := center.Add(vmath.Down.Scale(half - radius))

	origin := bottom.Add(vmath.Up.Scale(0.01))
	return p.physics.SphereCast(origin, radius*0.95, vmath.Down, p.tuning.GroundCheckDistance+0.01, p.tuning.GroundMask)
}
