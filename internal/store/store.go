// Package store persists finished matches and the room log in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

const timeLayout = "2006-01-02T15:04:05.000Z"

type MatchResult struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Level     string    `json:"level"`
	Outcome   string    `json:"outcome"`
	Players   int       `json:"players"`
	Runners   int       `json:"runners"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}

// Duration is the time between joining locking and the outcome.
func (r MatchResult) Duration() time.Duration { return r.EndedAt.Sub(r.StartedAt) }

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RecordResult stores res under a fresh id and returns the stored row.
func (s *SQLiteStore) RecordResult(ctx context.Context, res MatchResult) (MatchResult, error) {
	res.ID = uuid.NewString()
	res.StartedAt = res.StartedAt.UTC().Truncate(time.Millisecond)
	res.EndedAt = res.EndedAt.UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_results (id, room_code, level, outcome, players, runners, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.Room, res.Level, res.Outcome, res.Players, res.Runners,
		res.StartedAt.Format(timeLayout), res.EndedAt.Format(timeLayout))
	if err != nil {
		return MatchResult{}, fmt.Errorf("recording result: %w", err)
	}
	return res, nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, id string) (MatchResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, room_code, level, outcome, players, runners, started_at, ended_at
		FROM match_results
		WHERE id = ?
	`, id)
	res, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return MatchResult{}, ErrNotFound
	}
	return res, err
}

// ListResults returns the most recent results first.
func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]MatchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_code, level, outcome, players, runners, started_at, ended_at
		FROM match_results
		ORDER BY ended_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	out := []MatchResult{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// CountByOutcome tallies stored results per outcome. An empty room counts
// every room.
func (s *SQLiteStore) CountByOutcome(ctx context.Context, room string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM match_results
		WHERE ? = '' OR room_code = ?
		GROUP BY outcome
	`, room, room)
	if err != nil {
		return nil, fmt.Errorf("counting results: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[outcome] = n
	}
	return out, rows.Err()
}

// RoomOpened logs a room code. Codes are reused after a room closes.
func (s *SQLiteStore) RoomOpened(ctx context.Context, code string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (code) VALUES (?)
		ON CONFLICT (code) DO UPDATE
		SET created_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now'), closed_at = NULL
	`, code)
	return err
}

func (s *SQLiteStore) RoomClosed(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET closed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE code = ? AND closed_at IS NULL
	`, code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (MatchResult, error) {
	var res MatchResult
	var started, ended string
	if err := row.Scan(&res.ID, &res.Room, &res.Level, &res.Outcome, &res.Players, &res.Runners, &started, &ended); err != nil {
		return MatchResult{}, err
	}
	var err error
	if res.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return MatchResult{}, fmt.Errorf("parsing started_at: %w", err)
	}
	if res.EndedAt, err = time.Parse(timeLayout, ended); err != nil {
		return MatchResult{}, fmt.Errorf("parsing ended_at: %w", err)
	}
	return res, nil
}
