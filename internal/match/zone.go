package match

import "log/slog"

// Zone is a trigger volume rule. The host calls Enter when a player's body
// starts overlapping the volume.
type Zone interface {
	Name() string
	Enter(p *Player)
}

// DeathZone kills anything that enters, regardless of role.
type DeathZone struct {
	name string
}

func NewDeathZone(name string) *DeathZone { return &DeathZone{name: name} }

func (z *DeathZone) Name() string { return z.name }

func (z *DeathZone) Enter(p *Player) { p.Die() }

// RespawnZone revives every dead runner when a living runner walks in.
type RespawnZone struct {
	name     string
	points   []Transform
	cooldown float64

	nextAllowed float64
	nextPoint   int

	roster *Roster
	clock  *Clock
	logger *slog.Logger
}

func NewRespawnZone(name string, points []Transform, cooldown float64, roster *Roster, clock *Clock, logger *slog.Logger) *RespawnZone {
	return &RespawnZone{
		name:     name,
		points:   append([]Transform(nil), points...),
		cooldown: cooldown,
		roster:   roster,
		clock:    clock,
		logger:   logger,
	}
}

func (z *RespawnZone) Name() string { return z.name }

func (z *RespawnZone) Enter(p *Player) {
	if z.clock.Now() < z.nextAllowed {
		return
	}
	if p.Role() != RoleRunner || !p.Alive() {
		return
	}
	if len(z.points) == 0 {
		z.logger.Warn("respawn zone has no points", "zone", z.name)
		return
	}

	revived := 0
	for _, r := range z.roster.Runners() {
		if r.Alive() {
			continue
		}
		point := z.points[z.nextPoint%len(z.points)]
		z.nextPoint++
		r.ReviveAtPoint(&point)
		revived++
	}

	// Cooldown only arms once somebody came back.
	if revived > 0 {
		z.nextAllowed = z.clock.Now() + z.cooldown
		z.logger.Info("runners revived", "zone", z.name, "count", revived, "by", p.ID)
	}
}

// VictoryZone ends the match in the runners' favour.
type VictoryZone struct {
	name string
	flow *Flow
}

func NewVictoryZone(name string, flow *Flow) *VictoryZone {
	return &VictoryZone{name: name, flow: flow}
}

func (z *VictoryZone) Name() string { return z.name }

func (z *VictoryZone) Enter(p *Player) {
	if p.Role() != RoleRunner {
		return
	}
	if z.flow == nil {
		return
	}
	z.flow.DeclareRunnersWon()
}

// CheckpointZone moves the spawn slots forward and briefly reopens joining.
type CheckpointZone struct {
	name    string
	targets []Transform
	window  float64
	rejoin  *Countdown

	spawner *Spawner
	gate    *JoinGate
	timers  *Timers
	logger  *slog.Logger
}

func NewCheckpointZone(name string, targets []Transform, window float64, spawner *Spawner, gate *JoinGate, timers *Timers, logger *slog.Logger) *CheckpointZone {
	return &CheckpointZone{
		name:    name,
		targets: append([]Transform(nil), targets...),
		window:  window,
		spawner: spawner,
		gate:    gate,
		timers:  timers,
		logger:  logger,
	}
}

func (z *CheckpointZone) Name() string { return z.name }

// RejoinOpen reports whether this zone's rejoin window is running.
func (z *CheckpointZone) RejoinOpen() bool { return z.rejoin.Active() }

func (z *CheckpointZone) Enter(p *Player) {
	if p.Role() != RoleRunner {
		return
	}
	z.logger.Debug("checkpoint triggered", "zone", z.name, "by", p.ID)

	if !z.spawner.RelocateSlots(z.targets) {
		z.logger.Warn("not enough spawn slots to relocate", "zone", z.name, "targets", len(z.targets))
	}

	if z.rejoin.Active() {
		return
	}
	z.gate.Enable()
	z.rejoin = z.timers.Start(z.window, func() {
		z.gate.Disable()
		z.logger.Info("rejoin window closed", "zone", z.name)
	})
	z.logger.Info("rejoin window opened", "zone", z.name, "seconds", z.window)
}
