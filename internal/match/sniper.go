package match

import (
	"log/slog"

	"github.com/playperu/sniperrun/internal/vmath"
)

type SniperTuning struct {
	Sensitivity float64
	MinPitch    float64
	MaxPitch    float64

	MaxDistance float64
	Cooldown    float64
	HoldToFire  bool
	HitMask     Layer
}

func DefaultSniperTuning() SniperTuning {
	return SniperTuning{
		Sensitivity: 0.12,
		MinPitch:    -80,
		MaxPitch:    80,
		MaxDistance: 10000,
		Cooldown:    0.25,
		HitMask:     LayerAll,
	}
}

// SniperLook turns the body with yaw and the camera anchor with pitch.
type SniperLook struct {
	tuning SniperTuning
	pitch  float64
	logger *slog.Logger
}

func NewSniperLook(tuning SniperTuning, logger *slog.Logger) *SniperLook {
	return &SniperLook{tuning: tuning, logger: logger}
}

func (l *SniperLook) Pitch() float64 { return l.pitch }

func (l *SniperLook) Update(p *Player) {
	c := p.Controls()
	if p.Anchor() == nil || c == nil || !c.Bound(ActionLook) {
		return
	}
	look := c.Vector(ActionLook)

	yaw := look.X * l.tuning.Sensitivity
	if yaw != 0 {
		p.body.SetRotation(p.body.Rotation().Mul(vmath.AxisAngle(vmath.Up, yaw)))
	}

	l.pitch -= look.Y * l.tuning.Sensitivity
	l.pitch = vmath.Clamp(l.pitch, l.tuning.MinPitch, l.tuning.MaxPitch)
	p.Anchor().Local = vmath.Euler(l.pitch, 0, 0)
}

// SniperShoot fires hit-scan shots from the sniper camera.
type SniperShoot struct {
	// Camera is the view the shot leaves from. Nil disables shooting.
	Camera Pose

	tuning   SniperTuning
	nextFire float64

	physics Physics
	roster  *Roster
	clock   *Clock
	audio   Audio
	logger  *slog.Logger
}

func NewSniperShoot(tuning SniperTuning, physics Physics, roster *Roster, clock *Clock, audio Audio, logger *slog.Logger) *SniperShoot {
	if audio == nil {
		audio = nopAudio{}
	}
	return &SniperShoot{
		tuning:  tuning,
		physics: physics,
		roster:  roster,
		clock:   clock,
		audio:   audio,
		logger:  logger,
	}
}

// Update fires when the trigger input allows it and reports whether a shot
// went off.
func (s *SniperShoot) Update(p *Player) bool {
	c := p.Controls()
	if s.Camera == nil || c == nil || !c.Bound(ActionAttack) {
		return false
	}

	pulled := c.WasPressed(ActionAttack)
	if s.tuning.HoldToFire {
		pulled = c.IsHeld(ActionAttack)
	}
	if !pulled || s.clock.Now() < s.nextFire {
		return false
	}
	s.nextFire = s.clock.Now() + s.tuning.Cooldown
	s.audio.PlayOneShot(ClipSniperShot)

	if s.physics == nil {
		return true
	}
	origin := s.Camera.Position()
	dir := s.Camera.Rotation().Forward()
	hit, ok := s.physics.Raycast(origin, dir, s.tuning.MaxDistance, s.tuning.HitMask)
	if !ok {
		s.logger.Debug("shot missed")
		return true
	}
	s.logger.Debug("shot hit", "collider", hit.Name, "distance", hit.Distance)

	if target := s.roster.ByBody(hit.Body); target != nil {
		target.Die()
	}
	return true
}
