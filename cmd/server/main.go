package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/sniperrun/internal/audio"
	"github.com/playperu/sniperrun/internal/config"
	"github.com/playperu/sniperrun/internal/database"
	"github.com/playperu/sniperrun/internal/events"
	"github.com/playperu/sniperrun/internal/handler/health"
	"github.com/playperu/sniperrun/internal/level"
	"github.com/playperu/sniperrun/internal/match"
	"github.com/playperu/sniperrun/internal/metrics"
	"github.com/playperu/sniperrun/internal/migrations"
	"github.com/playperu/sniperrun/internal/room"
	"github.com/playperu/sniperrun/internal/scoreboard"
	"github.com/playperu/sniperrun/internal/server"
	"github.com/playperu/sniperrun/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Level ---
	lvl, err := level.Load(cfg.LevelPath)
	if err != nil {
		return fmt.Errorf("loading level: %w", err)
	}
	logger.Info("level loaded", "name", lvl.Name, "slots", len(lvl.Slots), "zones", len(lvl.Zones))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)
	results := store.NewSQLiteStore(db)

	// --- Redis (optional) ---
	var (
		wins   winCounter
		scores server.ScoreSource = storeScores{results}
		rdb    *redis.Client
	)
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		board := scoreboard.New(rdb)
		wins, scores = board, board
		logger.Info("connected to redis")
	} else {
		logger.Info("no REDIS_URL, scoreboard reads match history")
	}

	// --- Rooms ---
	broker := events.NewBroker()
	m := metrics.New()
	sfx := audio.New(broker, cfg.MusicTrack, logger)
	defer sfx.Close()
	sfx.OnPlay = func(_ string, clip match.Clip) { m.ClipPlayed(string(clip)) }

	rec := newRecorder(results, wins, logger)
	rooms := room.NewManager(room.ManagerConfig{
		Room: room.Options{
			Level:          lvl,
			TickHz:         cfg.TickHz,
			FrameHz:        cfg.FrameHz,
			BroadcastEvery: cfg.BroadcastEvery,
			JoinLockDelay:  cfg.JoinLockDelay,
			Music:          sfx.Music(),
			Events:         broker,
			Metrics:        m,
			Logger:         logger,
			OnResult:       rec.Enqueue,
		},
		AudioFor: sfx.ForRoom,
		OnOpen:   rec.RoomOpened,
		OnClose:  rec.RoomClosed,
		MaxRooms: cfg.MaxRooms,
	})

	// --- HTTP Server ---
	optional := map[string]health.Checker{}
	if rdb != nil {
		optional["redis"] = redisChecker{rdb}
	}
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Rooms:   rooms,
		Events:  broker,
		Results: results,
		Scores:  scores,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"sqlite": dbChecker{db},
		}, optional).Routes())
		r.Handle("/metrics", m.Handler())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	// The recorder outlives the rooms so their close entries are written.
	recCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()
	g.Go(func() error {
		rec.Run(recCtx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		rooms.CloseAll()
		logger.Info("rooms stopped")
		stopRecorder()
		return err
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// storeScores serves the scoreboard from match history when Redis is off.
type storeScores struct{ s *store.SQLiteStore }

func (s storeScores) Counts(ctx context.Context) (map[string]int64, error) {
	return s.s.CountByOutcome(ctx, "")
}

func (s storeScores) RoomCounts(ctx context.Context, code string) (map[string]int64, error) {
	return s.s.CountByOutcome(ctx, code)
}
