package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playperu/sniperrun/internal/database"
	"github.com/playperu/sniperrun/internal/migrations"
	"github.com/playperu/sniperrun/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return store.NewSQLiteStore(db)
}

func TestRecordAndGetResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	saved, err := s.RecordResult(ctx, store.MatchResult{
		Room:      "ABC234",
		Level:     "Courtyard",
		Outcome:   "sniper_won",
		Players:   4,
		Runners:   3,
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
	})
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("no id assigned")
	}

	got, err := s.GetResult(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if got.Room != "ABC234" || got.Outcome != "sniper_won" || got.Players != 4 || got.Runners != 3 {
		t.Errorf("got %+v", got)
	}
	if !got.StartedAt.Equal(start) || got.Duration() != 90*time.Second {
		t.Errorf("started=%v duration=%v", got.StartedAt, got.Duration())
	}
}

func TestGetResultNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetResult(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordRejectsUnknownOutcome(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RecordResult(context.Background(), store.MatchResult{Room: "R", Level: "L", Outcome: "in_progress"})
	if err == nil {
		t.Fatal("stored a non-terminal outcome")
	}
}

func TestListResultsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	outcomes := []string{"sniper_won", "runners_won", "sniper_won"}
	for i, o := range outcomes {
		_, err := s.RecordResult(ctx, store.MatchResult{
			Room:      "ROOM01",
			Level:     "Courtyard",
			Outcome:   o,
			Players:   2,
			Runners:   1,
			StartedAt: base,
			EndedAt:   base.Add(time.Duration(i+1) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListResults(ctx, 2)
	if err != nil {
		t.Fatalf("ListResults: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if !list[0].EndedAt.After(list[1].EndedAt) {
		t.Errorf("not newest first: %v then %v", list[0].EndedAt, list[1].EndedAt)
	}

	counts, err := s.CountByOutcome(ctx, "")
	if err != nil {
		t.Fatalf("CountByOutcome: %v", err)
	}
	if counts["sniper_won"] != 2 || counts["runners_won"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	other, err := s.CountByOutcome(ctx, "OTHER1")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("counts for unused room = %v", other)
	}
}

func TestListResultsEmpty(t *testing.T) {
	s := newTestStore(t)
	list, err := s.ListResults(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("list = %#v, want empty non-nil", list)
	}
}

func TestRoomLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RoomOpened(ctx, "ABC234"); err != nil {
		t.Fatalf("RoomOpened: %v", err)
	}
	if err := s.RoomClosed(ctx, "ABC234"); err != nil {
		t.Fatalf("RoomClosed: %v", err)
	}
	if err := s.RoomClosed(ctx, "ABC234"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second close err = %v, want ErrNotFound", err)
	}
	// The code can be handed out again.
	if err := s.RoomOpened(ctx, "ABC234"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := s.RoomClosed(ctx, "ABC234"); err != nil {
		t.Fatalf("close after reopen: %v", err)
	}
}
