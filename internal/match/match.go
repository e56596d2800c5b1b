// Package match is the rules layer of the sniper-vs-runners game: role
// assignment on join, alive/dead state, trigger zones, the outcome latch,
// the cameras and the sniper's look and shoot handlers.
//
// Everything here runs on one simulation goroutine. The host calls
// OnVariableTick once per rendered frame and OnFixedTick once per physics
// step; nothing blocks.
package match

import (
	"log/slog"

	"github.com/playperu/sniperrun/internal/vmath"
)

type Config struct {
	Slots         []Transform
	Colors        []Color
	JoinLockDelay float64
	RestartScene  int

	Movement MovementTuning
	Camera   CameraTuning
	Sniper   SniperTuning
}

// Host bundles the engine capabilities a match needs.
type Host struct {
	Physics  Physics
	Stepper  Stepper
	Display  Display
	Scenes   SceneLoader
	Keyboard Keyboard
	Audio    Audio
}

type Match struct {
	Roster  *Roster
	Gate    *JoinGate
	Timers  *Timers
	Clock   *Clock
	Spawner *Spawner
	Flow    *Flow

	RunnerCam *GroupFollower
	SniperCam *SniperFollower
	Look      *SniperLook
	Shoot     *SniperShoot

	cfg    Config
	host   Host
	zones  []Zone
	logger *slog.Logger
}

func New(cfg Config, host Host, logger *slog.Logger) *Match {
	if host.Audio == nil {
		host.Audio = nopAudio{}
	}
	m := &Match{
		Roster: NewRoster(),
		Gate:   NewJoinGate(),
		Timers: &Timers{},
		Clock:  &Clock{},
		cfg:    cfg,
		host:   host,
		logger: logger,
	}
	m.Spawner = NewSpawner(cfg.Slots, cfg.Colors, cfg.JoinLockDelay, m.Gate, m.Timers, m.Roster, logger)
	m.Flow = NewFlow(host.Display, host.Scenes, cfg.RestartScene, logger)

	m.RunnerCam = NewGroupFollower(NewCameraRig(cfg.Camera.Offset, vmath.Identity, cfg.Camera.MinFOV), cfg.Camera, m.Roster)
	m.SniperCam = &SniperFollower{Rig: NewCameraRig(vmath.Zero, vmath.Identity, cfg.Camera.MinFOV)}
	m.Look = NewSniperLook(cfg.Sniper, logger)
	m.Shoot = NewSniperShoot(cfg.Sniper, host.Physics, m.Roster, m.Clock, host.Audio, logger)

	m.Spawner.OnSniper = func(p *Player) {
		if p.Anchor() == nil {
			m.logger.Warn("sniper has no camera anchor", "player", p.ID)
			return
		}
		m.SniperCam.Target = p.Anchor()
		m.Shoot.Camera = m.SniperCam.Rig
	}
	return m
}

// NewPlayer builds an entity wired to this match's host, with runner
// movement relative to the runner camera.
func (m *Match) NewPlayer(id, name string, parts PlayerParts) *Player {
	if parts.Physics == nil {
		parts.Physics = m.host.Physics
	}
	if parts.Audio == nil {
		parts.Audio = m.host.Audio
	}
	p := NewPlayer(id, name, parts, m.cfg.Movement, m.logger)
	p.SetMoveReference(m.RunnerCam.Rig)
	return p
}

// Join runs the spawn coordinator for p.
func (m *Match) Join(p *Player, c Controls) error {
	p.AssignControls(c)
	return m.Spawner.Join(p)
}

// Leave removes a player from the roster. Its slot is not reused.
func (m *Match) Leave(id string) {
	if m.Roster.Remove(id) {
		m.logger.Info("player left", "player", id)
	}
}

func (m *Match) AddZone(z Zone) { m.zones = append(m.zones, z) }

func (m *Match) Zones() []Zone { return m.zones }

// EnterZone routes a host trigger event for body b into z.
func (m *Match) EnterZone(z Zone, b Body) {
	if p := m.Roster.ByBody(b); p != nil {
		z.Enter(p)
	}
}

// OnVariableTick runs once per rendered frame.
func (m *Match) OnVariableTick(dt float64) {
	m.Clock.Advance(dt)

	for _, p := range m.Roster.All() {
		switch p.Role() {
		case RoleSniper:
			if !p.Alive() {
				continue
			}
			m.Look.Update(p)
			m.Shoot.Update(p)
		case RoleRunner:
			p.Update(dt)
		}
	}

	m.Timers.Tick(dt)
	m.Flow.CheckRunnersEliminated(m.Roster, m.Gate)
	m.Flow.Update(m.host.Keyboard != nil && m.host.Keyboard.AnyPressed())

	m.RunnerCam.Update(dt)
	m.SniperCam.Update(dt)
}

// OnFixedTick runs once per physics step.
func (m *Match) OnFixedTick(dt float64) {
	for _, p := range m.Roster.All() {
		if p.Role() == RoleRunner {
			p.FixedUpdate(dt)
		}
	}
	if m.host.Stepper != nil {
		m.host.Stepper.Step(dt)
	}
}
