package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/playperu/sniperrun/internal/room"
	"github.com/playperu/sniperrun/internal/store"
)

const (
	recorderQueue = 64
	writeTimeout  = 5 * time.Second
)

// historyWriter is the part of the store the recorder writes to.
type historyWriter interface {
	RecordResult(ctx context.Context, res store.MatchResult) (store.MatchResult, error)
	RoomOpened(ctx context.Context, code string) error
	RoomClosed(ctx context.Context, code string) error
}

type winCounter interface {
	Record(ctx context.Context, room, outcome string) error
}

// roomChange is a room log entry.
type roomChange struct {
	code   string
	opened bool
}

// recorder persists finished matches and the room log off the room
// goroutines. The queue carries room.Result and roomChange values.
type recorder struct {
	history historyWriter
	wins    winCounter
	queue   chan any
	logger  *slog.Logger
}

// newRecorder takes nil wins when no scoreboard is configured.
func newRecorder(history historyWriter, wins winCounter, logger *slog.Logger) *recorder {
	return &recorder{
		history: history,
		wins:    wins,
		queue:   make(chan any, recorderQueue),
		logger:  logger,
	}
}

// Enqueue never blocks. Results that do not fit are logged and dropped.
func (r *recorder) Enqueue(res room.Result) {
	if !r.push(res) {
		r.logger.Error("record queue full, dropping match result", "room", res.Room, "outcome", res.Outcome.String())
	}
}

// RoomOpened and RoomClosed queue a room log entry. Like Enqueue they never
// block, so they are safe to call from a room goroutine.
func (r *recorder) RoomOpened(code string) { r.logRoom(roomChange{code: code, opened: true}) }
func (r *recorder) RoomClosed(code string) { r.logRoom(roomChange{code: code}) }

func (r *recorder) logRoom(c roomChange) {
	if !r.push(c) {
		r.logger.Warn("record queue full, dropping room log entry", "room", c.code, "opened", c.opened)
	}
}

func (r *recorder) push(v any) bool {
	select {
	case r.queue <- v:
		return true
	default:
		return false
	}
}

// Run writes queued records until ctx ends, then flushes what is left.
func (r *recorder) Run(ctx context.Context) {
	for {
		select {
		case v := <-r.queue:
			r.handle(v)
		case <-ctx.Done():
			for {
				select {
				case v := <-r.queue:
					r.handle(v)
				default:
					return
				}
			}
		}
	}
}

func (r *recorder) handle(v any) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	switch v := v.(type) {
	case room.Result:
		r.writeResult(ctx, v)
	case roomChange:
		r.writeRoom(ctx, v)
	default:
		r.logger.Warn("unknown record", "type", v)
	}
}

func (r *recorder) writeRoom(ctx context.Context, c roomChange) {
	write, event := r.history.RoomClosed, "closed"
	if c.opened {
		write, event = r.history.RoomOpened, "opened"
	}
	if err := write(ctx, c.code); err != nil {
		r.logger.Warn("room log write failed", "room", c.code, "event", event, "error", err)
	}
}

func (r *recorder) writeResult(ctx context.Context, res room.Result) {
	saved, err := r.history.RecordResult(ctx, store.MatchResult{
		Room:      res.Room,
		Level:     res.Level,
		Outcome:   res.Outcome.String(),
		Players:   res.Players,
		Runners:   res.Runners,
		StartedAt: res.StartedAt,
		EndedAt:   res.EndedAt,
	})
	if err != nil {
		r.logger.Error("storing match result", "room", res.Room, "error", err)
	} else {
		r.logger.Info("match result stored", "id", saved.ID, "room", res.Room, "outcome", saved.Outcome)
	}

	if r.wins == nil {
		return
	}
	if err := r.wins.Record(ctx, res.Room, res.Outcome.String()); err != nil {
		r.logger.Warn("updating scoreboard", "room", res.Room, "error", err)
	}
}
