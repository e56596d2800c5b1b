package room

import (
	"log/slog"
	"time"

	"github.com/playperu/sniperrun/internal/level"
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/sim"
	"github.com/playperu/sniperrun/internal/vmath"
)

const (
	defaultAnchorHeight    = 1.6
	defaultRejoinWindow    = 5.0
	defaultRespawnCooldown = 1.0
)

// arena is one loaded run of the course: a fresh physics world and match.
type arena struct {
	world   *sim.World
	match   *match.Match
	display *display
	capsule match.Capsule
	anchor  vmath.Vec3

	looks  map[string]*appearance
	bodies map[string]*sim.Body
	alive  map[string]bool

	loadedAt time.Time
	lockedAt time.Time

	// onZone observes every zone entry after the zone rule has run.
	onZone func(z match.Zone, p *match.Player)
}

func newArena(lvl *level.Level, joinLockDelay float64, host match.Host, now time.Time, logger *slog.Logger) *arena {
	w := sim.NewWorld()
	for _, s := range lvl.Statics {
		w.AddStatic(sim.Static{Name: s.Name, Box: s.Box(), Layer: match.LayerWorld})
	}

	d := newDisplay()
	host.Physics = w
	host.Stepper = w
	host.Display = d
	m := match.New(lvl.MatchConfig(joinLockDelay), host, logger)

	anchor := lvl.Player.AnchorHeight
	if anchor <= 0 {
		anchor = defaultAnchorHeight
	}
	a := &arena{
		world:    w,
		match:    m,
		display:  d,
		capsule:  lvl.Player.Capsule(),
		anchor:   vmath.V3(0, anchor, 0),
		looks:    make(map[string]*appearance),
		bodies:   make(map[string]*sim.Body),
		alive:    make(map[string]bool),
		loadedAt: now,
	}

	for _, z := range lvl.Zones {
		var zone match.Zone
		switch z.Kind {
		case level.ZoneDeath:
			zone = match.NewDeathZone(z.Name)
		case level.ZoneRespawn:
			cooldown := z.Cooldown
			if cooldown <= 0 {
				cooldown = defaultRespawnCooldown
			}
			zone = match.NewRespawnZone(z.Name, z.Transforms(), cooldown, m.Roster, m.Clock, logger)
		case level.ZoneCheckpoint:
			window := z.Window
			if window <= 0 {
				window = defaultRejoinWindow
			}
			zone = match.NewCheckpointZone(z.Name, z.Transforms(), window, m.Spawner, m.Gate, m.Timers, logger)
		case level.ZoneVictory:
			zone = match.NewVictoryZone(z.Name, m.Flow)
		default:
			logger.Warn("skipping zone of unknown kind", "zone", z.Name, "kind", z.Kind)
			continue
		}
		m.AddZone(zone)
		w.AddTrigger(z.Name, z.Box(), func(b *sim.Body) { a.enterZone(zone, b) })
	}
	return a
}

func (a *arena) enterZone(z match.Zone, b *sim.Body) {
	p := a.match.Roster.ByBody(b)
	if p == nil {
		return
	}
	a.match.EnterZone(z, b)
	if a.onZone != nil {
		a.onZone(z, p)
	}
}

// addPlayer runs a device join. On rejection nothing is left in the world.
func (a *arena) addPlayer(id, name string, controls match.Controls) (*match.Player, error) {
	capsule := a.capsule
	body := sim.NewBody(id, capsule)
	look := newAppearance()
	p := a.match.NewPlayer(id, name, match.PlayerParts{
		Body:         body,
		Visual:       look,
		Animator:     look,
		Capsule:      &capsule,
		AnchorOffset: a.anchor,
	})
	if err := a.match.Join(p, controls); err != nil {
		return nil, err
	}
	a.world.AddBody(body)
	a.looks[id] = look
	a.bodies[id] = body
	a.alive[id] = p.Alive()
	return p, nil
}

func (a *arena) removePlayer(id string) {
	a.match.Leave(id)
	if b, ok := a.bodies[id]; ok {
		a.world.RemoveBody(b)
	}
	delete(a.bodies, id)
	delete(a.looks, id)
	delete(a.alive, id)
}

// startedAt is when joining first locked, or the load time if it never did.
func (a *arena) startedAt() time.Time {
	if !a.lockedAt.IsZero() {
		return a.lockedAt
	}
	return a.loadedAt
}
