// Package scoreboard keeps win counts per outcome in Redis so they survive
// restarts and are shared between server instances.
package scoreboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "sniperrun:wins"

type Scoreboard struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client) *Scoreboard {
	return &Scoreboard{rdb: rdb, key: defaultKey}
}

// Record counts one finished match for outcome, overall and for room.
func (s *Scoreboard) Record(ctx context.Context, room, outcome string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.key, outcome, 1)
		pipe.HIncrBy(ctx, s.roomKey(room), outcome, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording %s win: %w", outcome, err)
	}
	return nil
}

// Counts returns the overall wins per outcome.
func (s *Scoreboard) Counts(ctx context.Context) (map[string]int64, error) {
	return s.counts(ctx, s.key)
}

// RoomCounts returns the wins per outcome for one room code.
func (s *Scoreboard) RoomCounts(ctx context.Context, room string) (map[string]int64, error) {
	return s.counts(ctx, s.roomKey(room))
}

func (s *Scoreboard) counts(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading scoreboard: %w", err)
	}
	return parseCounts(raw)
}

func (s *Scoreboard) roomKey(room string) string { return s.key + ":" + room }

func parseCounts(raw map[string]string) (map[string]int64, error) {
	out := make(map[string]int64, len(raw))
	for outcome, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("scoreboard count for %s: %w", outcome, err)
		}
		out[outcome] = n
	}
	return out, nil
}
