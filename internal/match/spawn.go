package match

import (
	"errors"
	"log/slog"
)

var (
	ErrNoSpawnSlots  = errors.New("no spawn slots configured")
	ErrMatchFull     = errors.New("match is full")
	ErrJoiningClosed = errors.New("joining is closed")
)

// JoinGate is the host's "joining enabled" switch.
type JoinGate struct {
	enabled  bool
	OnChange func(enabled bool)
}

func NewJoinGate() *JoinGate {
	return &JoinGate{enabled: true}
}

func (g *JoinGate) Enabled() bool { return g.enabled }

func (g *JoinGate) Enable()  { g.set(true) }
func (g *JoinGate) Disable() { g.set(false) }

func (g *JoinGate) set(v bool) {
	if g.enabled == v {
		return
	}
	g.enabled = v
	if g.OnChange != nil {
		g.OnChange(v)
	}
}

// Spawner maps join order to spawn slots, colors and roles.
type Spawner struct {
	slots     []Transform
	colors    []Color
	joined    int
	lockDelay float64

	lockStarted bool
	lock        *Countdown

	gate   *JoinGate
	timers *Timers
	roster *Roster
	logger *slog.Logger

	// OnSniper runs when the sniper joins, to bind cameras to it.
	OnSniper func(p *Player)
}

func NewSpawner(slots []Transform, colors []Color, lockDelay float64, gate *JoinGate, timers *Timers, roster *Roster, logger *slog.Logger) *Spawner {
	return &Spawner{
		slots:     append([]Transform(nil), slots...),
		colors:    append([]Color(nil), colors...),
		lockDelay: lockDelay,
		gate:      gate,
		timers:    timers,
		roster:    roster,
		logger:    logger,
	}
}

// Capacity is the number of joins the spawner accepts.
func (s *Spawner) Capacity() int { return min(len(s.slots), len(s.colors)) }

func (s *Spawner) Joined() int { return s.joined }

func (s *Spawner) Slot(i int) (Transform, bool) {
	if i < 0 || i >= len(s.slots) {
		return Transform{}, false
	}
	return s.slots[i], true
}

// RelocateSlots overwrites the first len(targets) slots. It refuses, leaving
// the slots untouched, when there are fewer slots than targets.
func (s *Spawner) RelocateSlots(targets []Transform) bool {
	if len(s.slots) < len(targets) {
		return false
	}
	copy(s.slots, targets)
	return true
}

func (s *Spawner) JoinLockActive() bool       { return s.lock.Active() }
func (s *Spawner) JoinLockRemaining() float64 { return s.lock.Remaining() }

// Join assigns the next slot to p. On error the caller discards p.
func (s *Spawner) Join(p *Player) error {
	if !s.gate.Enabled() {
		return ErrJoiningClosed
	}

	capacity := s.Capacity()
	if capacity < 1 {
		s.logger.Error("spawner has no spawn slots or colors")
		return ErrNoSpawnSlots
	}
	if s.joined >= capacity {
		s.logger.Info("max player count reached, discarding join", "max", capacity, "player", p.ID)
		return ErrMatchFull
	}

	slot := s.joined
	p.place(s.slots[slot])
	p.AssignNumber(slot + 1)
	p.AssignColor(s.colors[slot])
	s.roster.Add(p)

	isSniper := slot == 0
	if isSniper {
		if s.OnSniper != nil {
			s.OnSniper(p)
		}
	} else {
		p.audio.PlayOneShot(ClipRunnerSpawn)
	}

	if !s.lockStarted && s.joined == 1 {
		s.lockStarted = true
		s.lock = s.timers.Start(s.lockDelay, func() {
			s.gate.Disable()
			s.logger.Info("joining locked (countdown finished)")
		})
	}

	s.logger.Info("player joined", "player", p.ID, "number", slot+1, "role", p.Role().String())

	s.joined++
	return nil
}
