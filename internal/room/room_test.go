package room

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/playperu/sniperrun/internal/events"
	"github.com/playperu/sniperrun/internal/level"
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/protocol"
)

// pitLevel has the runner start inside a death zone and the sniper on a
// platform out of reach, so a match ends as soon as joining locks.
const pitLevel = `
name = "pit"
title_scene = 0
arena_scene = 1
restart_scene = 0
join_lock_delay = 1.0
colors = ["#f00", "#00f"]

[player]
capsule_radius = 0.5
capsule_height = 2.0

[[slot]]
position = [0.0, 10.0, -10.0]

[[slot]]
position = [5.0, 0.0, 0.0]

[[static]]
name = "perch"
center = [0.0, 9.5, -10.0]
size = [4.0, 1.0, 4.0]

[[zone]]
kind = "death"
name = "pit"
center = [5.0, 1.0, 0.0]
size = [4.0, 4.0, 4.0]
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeConn struct {
	sendCh chan []byte
	closed bool
	fail   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 256)}
}

func (f *fakeConn) Send(b []byte) error {
	if f.fail {
		return errors.New("connection gone")
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

// drain returns every buffered message of type t.
func (f *fakeConn) drain(t *testing.T, typ string) []protocol.Envelope {
	t.Helper()
	var out []protocol.Envelope
	for {
		select {
		case b := <-f.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == typ {
				out = append(out, env)
			}
		default:
			return out
		}
	}
}

func testLevel(t *testing.T) *level.Level {
	t.Helper()
	l, err := level.Parse([]byte(pitLevel))
	if err != nil {
		t.Fatalf("parse level: %v", err)
	}
	return l
}

func newTestRoom(t *testing.T, opts Options) *Room {
	t.Helper()
	if opts.Level == nil {
		opts.Level = testLevel(t)
	}
	opts.Logger = discardLogger()
	return New("TEST", opts)
}

func connect(t *testing.T, r *Room, name string) (string, *fakeConn) {
	t.Helper()
	fc := newFakeConn()
	reply := make(chan ConnectResult, 1)
	r.handleCommand(Connect{Conn: fc, Name: name, Reply: reply})
	res := <-reply
	if res.ClientID == "" {
		t.Fatal("empty client id")
	}
	return res.ClientID, fc
}

func join(r *Room, id string) JoinResult {
	reply := make(chan JoinResult, 1)
	r.handleCommand(Join{ClientID: id, Reply: reply})
	return <-reply
}

func pressAny(r *Room, id string) {
	r.handleCommand(Input{ClientID: id, Input: protocol.Input{AnyKey: true}})
}

func TestConnectSendsWelcomeAndState(t *testing.T) {
	r := newTestRoom(t, Options{Music: "theme"})
	_, fc := connect(t, r, "ana")

	welcome := fc.drain(t, protocol.MsgWelcome)
	if len(welcome) != 1 {
		t.Fatalf("welcome messages = %d, want 1", len(welcome))
	}
	w, err := protocol.DecodePayload[protocol.Welcome](welcome[0])
	if err != nil {
		t.Fatal(err)
	}
	if w.Room != "TEST" || w.Scene != 0 || w.Level != "pit" || w.Music != "theme" {
		t.Fatalf("welcome = %+v", w)
	}
	if r.NumClients() != 1 {
		t.Fatalf("clients = %d, want 1", r.NumClients())
	}
}

func TestJoinOnTitleSceneIsRejected(t *testing.T) {
	r := newTestRoom(t, Options{})
	id, fc := connect(t, r, "ana")

	res := join(r, id)
	if !errors.Is(res.Err, ErrNotInArena) {
		t.Fatalf("err = %v, want ErrNotInArena", res.Err)
	}
	rej := fc.drain(t, protocol.MsgRejected)
	if len(rej) != 1 {
		t.Fatalf("rejected messages = %d, want 1", len(rej))
	}
	got, _ := protocol.DecodePayload[protocol.Rejected](rej[0])
	if got.Reason != "not_in_arena" {
		t.Fatalf("reason = %q", got.Reason)
	}
}

func TestJoinUnknownClient(t *testing.T) {
	r := newTestRoom(t, Options{})
	if res := join(r, "nobody"); !errors.Is(res.Err, ErrUnknownClient) {
		t.Fatalf("err = %v, want ErrUnknownClient", res.Err)
	}
}

func TestAnyKeyOnTitleLoadsArena(t *testing.T) {
	broker := events.NewBroker()
	sub := broker.Subscribe("TEST")
	r := newTestRoom(t, Options{Events: broker})
	id, _ := connect(t, r, "ana")

	r.variableTick(1.0 / 60)
	if r.arena != nil {
		t.Fatal("arena loaded without input")
	}

	pressAny(r, id)
	r.variableTick(1.0 / 60)
	if r.arena == nil || r.scene != 1 {
		t.Fatalf("scene = %d, arena loaded = %v", r.scene, r.arena != nil)
	}
	if !hasEvent(t, sub, events.TypeScene) {
		t.Fatal("no scene event")
	}
}

func TestMatchRunsToSniperWinAndRestarts(t *testing.T) {
	broker := events.NewBroker()
	sub := broker.Subscribe("TEST")
	var results []Result
	r := newTestRoom(t, Options{
		Events:   broker,
		OnResult: func(res Result) { results = append(results, res) },
	})

	sniperID, sniperConn := connect(t, r, "sniper")
	runnerID, _ := connect(t, r, "runner")
	lateID, lateConn := connect(t, r, "late")

	pressAny(r, sniperID)
	r.variableTick(1.0 / 60)

	if res := join(r, sniperID); res.Err != nil || res.Role != match.RoleSniper || res.Number != 1 {
		t.Fatalf("sniper join = %+v", res)
	}
	joined := sniperConn.drain(t, protocol.MsgJoined)
	if len(joined) != 1 {
		t.Fatalf("joined messages = %d, want 1", len(joined))
	}
	if j, _ := protocol.DecodePayload[protocol.Joined](joined[0]); j.Role != "sniper" || j.Color != "#ff0000" {
		t.Fatalf("joined = %+v", j)
	}
	if res := join(r, runnerID); res.Err != nil || res.Role != match.RoleRunner {
		t.Fatalf("runner join = %+v", res)
	}
	if res := join(r, sniperID); !errors.Is(res.Err, ErrAlreadyJoined) {
		t.Fatalf("second join err = %v, want ErrAlreadyJoined", res.Err)
	}
	if res := join(r, lateID); !errors.Is(res.Err, match.ErrMatchFull) {
		t.Fatalf("third join err = %v, want ErrMatchFull", res.Err)
	}
	if rej := lateConn.drain(t, protocol.MsgRejected); len(rej) != 1 {
		t.Fatalf("late client rejections = %d, want 1", len(rej))
	}
	if r.NumPlayers() != 2 {
		t.Fatalf("players = %d, want 2", r.NumPlayers())
	}

	// The runner starts in the pit and dies on the first physics step.
	r.fixedTick(0.02)
	if !hasEvent(t, sub, events.TypePlayerDied) {
		t.Fatal("no player_died event")
	}
	if len(results) != 0 {
		t.Fatal("match finished while joining was still open")
	}

	for i := 0; i < 70; i++ {
		r.variableTick(1.0 / 60)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	res := results[0]
	if res.Outcome != match.SniperWon || res.Players != 2 || res.Runners != 1 || res.Room != "TEST" {
		t.Fatalf("result = %+v", res)
	}
	if res.EndedAt.Before(res.StartedAt) {
		t.Fatalf("ended %v before started %v", res.EndedAt, res.StartedAt)
	}

	st := r.buildSnapshot()
	if st.Outcome != "sniper_won" || st.JoinOpen {
		t.Fatalf("state outcome=%q joinOpen=%v", st.Outcome, st.JoinOpen)
	}
	want := []string{match.DisplaySniperWins1, match.DisplaySniperWins2}
	if !slices.Equal(st.Displays, want) {
		t.Fatalf("displays = %v, want %v", st.Displays, want)
	}

	pressAny(r, runnerID)
	r.variableTick(1.0 / 60)
	if r.arena != nil || r.scene != 0 {
		t.Fatalf("after restart scene = %d, arena loaded = %v", r.scene, r.arena != nil)
	}
	if r.NumPlayers() != 0 {
		t.Fatalf("players after restart = %d, want 0", r.NumPlayers())
	}
	if len(results) != 1 {
		t.Fatalf("results after restart = %d, want 1", len(results))
	}
}

func TestLeaveRemovesPlayerAndEmptiesRoom(t *testing.T) {
	r := newTestRoom(t, Options{})
	var emptied string
	r.OnEmpty = func(code string) { emptied = code }

	id, fc := connect(t, r, "ana")
	pressAny(r, id)
	r.variableTick(1.0 / 60)
	if res := join(r, id); res.Err != nil {
		t.Fatal(res.Err)
	}

	r.handleCommand(Leave{ClientID: id})
	if !fc.closed {
		t.Error("connection not closed")
	}
	if r.arena.match.Roster.Len() != 0 {
		t.Error("player still in roster")
	}
	if r.NumClients() != 0 || r.NumPlayers() != 0 {
		t.Errorf("clients=%d players=%d", r.NumClients(), r.NumPlayers())
	}
	if emptied != "TEST" {
		t.Errorf("OnEmpty got %q", emptied)
	}
}

func TestBroadcastDropsFailingClients(t *testing.T) {
	r := newTestRoom(t, Options{})
	_, good := connect(t, r, "good")
	badID, bad := connect(t, r, "bad")
	bad.fail = true

	r.broadcastState()
	if _, ok := r.clients[badID]; ok {
		t.Fatal("failing client not dropped")
	}
	if len(good.drain(t, protocol.MsgState)) == 0 {
		t.Fatal("healthy client got no state")
	}
}

func TestInputClampsAndAccumulates(t *testing.T) {
	s := newInputState()
	s.apply(protocol.Input{MoveX: 3, MoveY: 4, LookX: 1, LookY: 2})
	s.apply(protocol.Input{MoveX: 3, MoveY: 4, LookX: 1, LookY: 2, Attack: true})

	if m := s.Vector(match.ActionMove); m.X != 0.6 || m.Y != 0.8 {
		t.Errorf("move = %+v, want (0.6, 0.8)", m)
	}
	if l := s.Vector(match.ActionLook); l.X != 2 || l.Y != 4 {
		t.Errorf("look = %+v, want (2, 4)", l)
	}
	if !s.WasPressed(match.ActionAttack) || !s.IsHeld(match.ActionAttack) || !s.anyKey {
		t.Error("attack press not recorded")
	}

	s.endFrame()
	if s.WasPressed(match.ActionAttack) || s.IsHeld(match.ActionAttack) || s.anyKey {
		t.Error("press survived the frame")
	}
	if l := s.Vector(match.ActionLook); l.X != 0 || l.Y != 0 {
		t.Errorf("look survived the frame: %+v", l)
	}
	if m := s.Vector(match.ActionMove); m.X != 0.6 {
		t.Errorf("move should persist, got %+v", m)
	}
}

func TestRunBroadcastsState(t *testing.T) {
	r := newTestRoom(t, Options{TickHz: 50, FrameHz: 60, BroadcastEvery: 1})
	go r.Run()
	defer r.Stop()

	fc := newFakeConn()
	reply := make(chan ConnectResult, 1)
	if err := r.Send(Connect{Conn: fc, Name: "ana", Reply: reply}); err != nil {
		t.Fatal(err)
	}
	<-reply

	timeout := time.After(time.Second)
	states := 0
	for states < 2 {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == protocol.MsgState {
				states++
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state broadcast, got %d", states)
		}
	}

	st, err := r.State()
	if err != nil {
		t.Fatal(err)
	}
	if st.Scene != 0 || st.Outcome != "in_progress" {
		t.Fatalf("state = %+v", st)
	}

	r.Stop()
	<-r.Done()
	if err := r.Send(Leave{}); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("send after stop err = %v, want ErrRoomClosed", err)
	}
}

func hasEvent(t *testing.T, sub chan []byte, typ string) bool {
	t.Helper()
	_, ok := nextEvent(t, sub, typ)
	return ok
}

// nextEvent consumes buffered events up to the first one of type typ.
func nextEvent(t *testing.T, sub chan []byte, typ string) (events.Event, bool) {
	t.Helper()
	for {
		select {
		case b := <-sub:
			var e events.Event
			if err := json.Unmarshal(b, &e); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if e.Type == typ {
				return e, true
			}
		default:
			return events.Event{}, false
		}
	}
}
