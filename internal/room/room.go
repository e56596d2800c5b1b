// Package room runs matches. Each room owns one goroutine that is the only
// writer of its match state; everything else talks to it through Inbox.
package room

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playperu/sniperrun/internal/events"
	"github.com/playperu/sniperrun/internal/level"
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/metrics"
	"github.com/playperu/sniperrun/internal/protocol"
	"github.com/playperu/sniperrun/internal/vmath"
)

const maxFrameDT = 0.1

var (
	ErrUnknownClient = errors.New("unknown client")
	ErrAlreadyJoined = errors.New("device already joined")
	ErrNotInArena    = errors.New("match is not running")
	ErrRoomClosed    = errors.New("room closed")
)

type Options struct {
	Level          *level.Level
	TickHz         int
	FrameHz        int
	BroadcastEvery int
	JoinLockDelay  float64
	Audio          match.Audio
	Music          string
	Events         *events.Broker
	Metrics        *metrics.Metrics
	Logger         *slog.Logger

	// OnResult receives every finished match. It runs on the room goroutine
	// and must not block.
	OnResult func(Result)
}

// Result summarises a finished match.
type Result struct {
	Room      string
	Level     string
	Outcome   match.Outcome
	Players   int
	Runners   int
	StartedAt time.Time
	EndedAt   time.Time
}

type client struct {
	id     string
	name   string
	conn   Conn
	input  *inputState
	player *match.Player
}

type Room struct {
	Code    string
	Inbox   chan any
	OnEmpty func(code string)

	opts    Options
	logger  *slog.Logger
	clients map[string]*client
	nextID  int
	scene   int
	pending *int
	arena   *arena
	frame   int
	now     func() time.Time

	numClients atomic.Int32
	numPlayers atomic.Int32

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func New(code string, opts Options) *Room {
	if opts.TickHz <= 0 {
		opts.TickHz = 50
	}
	if opts.FrameHz <= 0 {
		opts.FrameHz = 60
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = events.NewBroker()
	}
	return &Room{
		Code:    code,
		Inbox:   make(chan any, 256),
		opts:    opts,
		logger:  opts.Logger.With("room", code),
		clients: make(map[string]*client),
		nextID:  1,
		scene:   opts.Level.TitleScene,
		now:     time.Now,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (r *Room) NumClients() int { return int(r.numClients.Load()) }
func (r *Room) NumPlayers() int { return int(r.numPlayers.Load()) }

// Stop ends the room goroutine. It is safe to call more than once and from
// the room goroutine itself.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed once Run has returned.
func (r *Room) Done() <-chan struct{} { return r.done }

// Send delivers cmd to the room, failing once the room has stopped.
func (r *Room) Send(cmd any) error {
	select {
	case <-r.quit:
		return ErrRoomClosed
	default:
	}
	select {
	case r.Inbox <- cmd:
		return nil
	case <-r.quit:
		return ErrRoomClosed
	}
}

// State asks the room goroutine for a snapshot.
func (r *Room) State() (protocol.State, error) {
	reply := make(chan protocol.State, 1)
	if err := r.Send(Snapshot{Reply: reply}); err != nil {
		return protocol.State{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-r.done:
		return protocol.State{}, ErrRoomClosed
	}
}

func (r *Room) Run() {
	defer close(r.done)

	fixed := time.NewTicker(time.Second / time.Duration(r.opts.TickHz))
	defer fixed.Stop()
	frame := time.NewTicker(time.Second / time.Duration(r.opts.FrameHz))
	defer frame.Stop()

	fixedDT := 1 / float64(r.opts.TickHz)
	last := r.now()
	for {
		select {
		case <-r.quit:
			r.shutdown()
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-fixed.C:
			r.fixedTick(fixedDT)
		case t := <-frame.C:
			dt := t.Sub(last).Seconds()
			last = t
			r.variableTick(min(dt, maxFrameDT))
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		r.handleConnect(c)
	case Join:
		res := r.handleJoin(c.ClientID)
		if c.Reply != nil {
			c.Reply <- res
		}
	case Input:
		if cl, ok := r.clients[c.ClientID]; ok {
			cl.input.apply(c.Input)
		}
	case Leave:
		r.dropClient(c.ClientID)
	case Snapshot:
		c.Reply <- r.buildSnapshot()
	default:
		r.logger.Warn("unknown room command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (r *Room) handleConnect(c Connect) {
	id := fmt.Sprintf("c%d", r.nextID)
	r.nextID++
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("Player %s", id[1:])
	}
	r.clients[id] = &client{id: id, name: name, conn: c.Conn, input: newInputState()}
	r.numClients.Add(1)
	r.opts.Metrics.ClientConnected()
	r.logger.Info("client connected", "client", id, "name", name)

	if c.Reply != nil {
		c.Reply <- ConnectResult{ClientID: id}
	}
	r.sendTo(r.clients[id], protocol.MsgWelcome, protocol.Welcome{
		ClientID: id,
		Room:     r.Code,
		TickHz:   r.opts.TickHz,
		FrameHz:  r.opts.FrameHz,
		Scene:    r.scene,
		Level:    r.opts.Level.Name,
		Music:    r.opts.Music,
	})
	r.sendTo(r.clients[id], protocol.MsgState, r.buildSnapshot())
}

func (r *Room) handleJoin(clientID string) JoinResult {
	c, ok := r.clients[clientID]
	var res JoinResult
	switch {
	case !ok:
		res.Err = ErrUnknownClient
	case c.player != nil:
		res.Err = ErrAlreadyJoined
	case r.arena == nil:
		res.Err = ErrNotInArena
	default:
		p, err := r.arena.addPlayer(c.id, c.name, c.input)
		if err != nil {
			res.Err = err
			break
		}
		c.player = p
		r.numPlayers.Add(1)
		res = JoinResult{PlayerID: p.ID, Number: p.Number(), Role: p.Role()}
	}

	if res.Err != nil {
		reason := rejectReason(res.Err)
		r.opts.Metrics.JoinRejected(reason)
		if ok {
			r.sendTo(c, protocol.MsgRejected, protocol.Rejected{Reason: reason})
		}
		return res
	}

	p := c.player
	r.opts.Metrics.PlayerJoined(p.Role().String())
	r.opts.Events.Publish(r.Code, events.Event{
		Type:   events.TypePlayerJoined,
		Player: p.ID,
		Name:   p.Name,
		Number: p.Number(),
		Role:   p.Role().String(),
	})
	r.sendTo(c, protocol.MsgJoined, protocol.Joined{
		PlayerID: p.ID,
		Number:   p.Number(),
		Role:     p.Role().String(),
		Color:    level.Hex(p.Color()),
	})
	return res
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, match.ErrMatchFull):
		return "match_full"
	case errors.Is(err, match.ErrJoiningClosed):
		return "joining_closed"
	case errors.Is(err, match.ErrNoSpawnSlots):
		return "no_spawn_slots"
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrNotInArena):
		return "not_in_arena"
	case errors.Is(err, ErrUnknownClient):
		return "unknown_client"
	default:
		return "error"
	}
}

// dropClient disconnects a client and removes its player. The slot it held
// is not reused.
func (r *Room) dropClient(id string) {
	c, ok := r.clients[id]
	if !ok {
		return
	}
	delete(r.clients, id)
	r.numClients.Add(-1)
	r.opts.Metrics.ClientDisconnected()
	_ = c.conn.Close()

	if c.player != nil && r.arena != nil {
		r.arena.removePlayer(id)
		r.numPlayers.Add(-1)
		r.opts.Events.Publish(r.Code, events.Event{Type: events.TypePlayerLeft, Player: id, Number: c.player.Number()})
	}
	r.logger.Info("client left", "client", id)

	if len(r.clients) == 0 && r.OnEmpty != nil {
		r.OnEmpty(r.Code)
	}
}

func (r *Room) fixedTick(dt float64) {
	if r.arena == nil {
		return
	}
	r.arena.match.OnFixedTick(dt)
	r.publishChanges()
}

func (r *Room) variableTick(dt float64) {
	start := time.Now()

	if r.arena != nil {
		r.arena.match.OnVariableTick(dt)
		r.publishChanges()
	} else if r.AnyPressed() {
		r.LoadScene(r.opts.Level.ArenaScene)
	}

	for _, c := range r.clients {
		c.input.endFrame()
	}
	r.applySceneLoad()

	r.frame++
	if r.frame%r.opts.BroadcastEvery == 0 {
		r.broadcastState()
	}
	r.opts.Metrics.ObserveFrame(time.Since(start).Seconds())
}

// AnyPressed reports a key press on any connected device this frame.
func (r *Room) AnyPressed() bool {
	for _, c := range r.clients {
		if c.input.anyKey {
			return true
		}
	}
	return false
}

// LoadScene schedules a scene load for the end of the current frame.
func (r *Room) LoadScene(index int) {
	r.pending = &index
}

func (r *Room) applySceneLoad() {
	if r.pending == nil {
		return
	}
	idx := *r.pending
	r.pending = nil

	lvl := r.opts.Level
	switch idx {
	case lvl.ArenaScene:
		r.unloadArena()
		r.arena = r.loadArena()
	case lvl.TitleScene:
		r.unloadArena()
	default:
		r.logger.Warn("unknown scene", "scene", idx)
		return
	}
	r.scene = idx
	r.opts.Events.Publish(r.Code, events.Event{Type: events.TypeScene, Scene: &idx})
	r.logger.Info("scene loaded", "scene", idx)
}

func (r *Room) loadArena() *arena {
	a := newArena(r.opts.Level, r.opts.JoinLockDelay, match.Host{
		Scenes:   r,
		Keyboard: r,
		Audio:    r.opts.Audio,
	}, r.now(), r.logger)

	a.match.Gate.OnChange = func(open bool) {
		typ := events.TypeJoinLocked
		if open {
			typ = events.TypeJoinOpened
		} else if a.lockedAt.IsZero() {
			a.lockedAt = r.now()
		}
		r.opts.Events.Publish(r.Code, events.Event{Type: typ})
	}
	a.match.Flow.OnFinish = func(o match.Outcome) { r.finish(a, o) }
	a.onZone = func(z match.Zone, p *match.Player) {
		r.opts.Events.Publish(r.Code, events.Event{
			Type:   events.TypeZoneEntered,
			Player: p.ID,
			Number: p.Number(),
			Role:   p.Role().String(),
			Zone:   z.Name(),
		})
	}
	return a
}

func (r *Room) unloadArena() {
	for _, c := range r.clients {
		c.player = nil
	}
	r.numPlayers.Store(0)
	r.arena = nil
}

func (r *Room) finish(a *arena, o match.Outcome) {
	res := Result{
		Room:      r.Code,
		Level:     r.opts.Level.Name,
		Outcome:   o,
		Players:   a.match.Roster.Len(),
		Runners:   len(a.match.Roster.Runners()),
		StartedAt: a.startedAt(),
		EndedAt:   r.now(),
	}
	r.opts.Metrics.MatchFinished(o.String())
	r.opts.Events.Publish(r.Code, events.Event{Type: events.TypeOutcome, Outcome: o.String()})
	r.logger.Info("match result", "outcome", o.String(), "players", res.Players, "duration", res.EndedAt.Sub(res.StartedAt))
	if r.opts.OnResult != nil {
		r.opts.OnResult(res)
	}
}

// publishChanges emits death and revival events since the last tick.
func (r *Room) publishChanges() {
	a := r.arena
	if a == nil {
		return
	}
	for _, p := range a.match.Roster.All() {
		was, seen := a.alive[p.ID]
		alive := p.Alive()
		a.alive[p.ID] = alive
		if !seen || was == alive {
			continue
		}
		typ := events.TypePlayerDied
		if alive {
			typ = events.TypePlayerRevived
		}
		if p.Role() == match.RoleRunner {
			if alive {
				r.opts.Metrics.RunnerRevived()
			} else {
				r.opts.Metrics.RunnerDied()
			}
		}
		r.opts.Events.Publish(r.Code, events.Event{Type: typ, Player: p.ID, Number: p.Number(), Role: p.Role().String()})
	}
}

func (r *Room) buildSnapshot() protocol.State {
	st := protocol.State{
		Frame:   r.frame,
		Scene:   r.scene,
		Outcome: match.InProgress.String(),
		Players: []protocol.PlayerSnapshot{},
	}
	a := r.arena
	if a == nil {
		return st
	}
	m := a.match
	st.Outcome = m.Flow.Outcome().String()
	st.JoinOpen = m.Gate.Enabled()
	st.JoinLock = m.Spawner.JoinLockRemaining()
	for _, p := range m.Roster.All() {
		ps := protocol.PlayerSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			Number: p.Number(),
			Role:   p.Role().String(),
			Color:  level.Hex(p.Color()),
			Alive:  p.Alive(),
			Pos:    vec(p.Position()),
			Rot:    quat(p.Rotation()),
		}
		if look, ok := a.looks[p.ID]; ok {
			ps.Visible = look.visible
			ps.Moving = look.params["IsMoving"]
			ps.Grounded = look.params["IsGrounded"]
		}
		st.Players = append(st.Players, ps)
	}
	st.RunnerCam = camera(m.RunnerCam.Rig)
	st.SniperCam = camera(m.SniperCam.Rig)
	st.Displays = a.display.shown()
	return st
}

func (r *Room) broadcastState() {
	if len(r.clients) == 0 {
		return
	}
	b, err := protocol.Encode(protocol.MsgState, r.buildSnapshot())
	if err != nil {
		r.logger.Error("encoding state", "error", err)
		return
	}
	var failed []string
	for id, c := range r.clients {
		if err := c.conn.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.logger.Debug("dropping unresponsive client", "client", id)
		r.dropClient(id)
	}
}

func (r *Room) sendTo(c *client, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.logger.Error("encoding message", "type", t, "error", err)
		return
	}
	if err := c.conn.Send(b); err != nil {
		r.logger.Debug("send failed", "client", c.id, "type", t, "error", err)
	}
}

func (r *Room) shutdown() {
	r.opts.Events.Publish(r.Code, events.Event{Type: events.TypeRoomClosed})
	for id, c := range r.clients {
		_ = c.conn.Close()
		delete(r.clients, id)
		r.opts.Metrics.ClientDisconnected()
	}
	r.numClients.Store(0)
	r.numPlayers.Store(0)
	r.arena = nil
	r.logger.Info("room stopped")
}

func vec(v vmath.Vec3) [3]float64  { return [3]float64{v.X, v.Y, v.Z} }
func quat(q vmath.Quat) [4]float64 { return [4]float64{q.X, q.Y, q.Z, q.W} }

func camera(c *match.CameraRig) protocol.CameraSnapshot {
	return protocol.CameraSnapshot{Pos: vec(c.Pos), Rot: quat(c.Rot), FOV: c.FOV}
}

var (
	_ match.Keyboard    = (*Room)(nil)
	_ match.SceneLoader = (*Room)(nil)
)
