package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/sniperrun.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// RedisURL enables the shared scoreboard. Without it wins are counted
	// from the match history in SQLite.
	RedisURL string `env:"REDIS_URL"`

	// LevelPath is a TOML level file; empty uses the built-in course.
	LevelPath string `env:"LEVEL_PATH"`

	TickHz         int     `env:"SIM_TICK_HZ" envDefault:"50"`
	FrameHz        int     `env:"FRAME_HZ" envDefault:"60"`
	BroadcastEvery int     `env:"BROADCAST_EVERY" envDefault:"3"`
	JoinLockDelay  float64 `env:"JOIN_LOCK_DELAY" envDefault:"0"`
	MaxRooms       int     `env:"MAX_ROOMS" envDefault:"64"`
	MusicTrack     string  `env:"MUSIC_TRACK" envDefault:"main_theme"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.TickHz <= 0 || c.TickHz > 1000 {
		errs = append(errs, fmt.Errorf("SIM_TICK_HZ must be in 1..1000, got %d", c.TickHz))
	}
	if c.FrameHz <= 0 || c.FrameHz > 1000 {
		errs = append(errs, fmt.Errorf("FRAME_HZ must be in 1..1000, got %d", c.FrameHz))
	}
	if c.BroadcastEvery <= 0 {
		errs = append(errs, fmt.Errorf("BROADCAST_EVERY must be positive, got %d", c.BroadcastEvery))
	}
	if c.JoinLockDelay < 0 {
		errs = append(errs, fmt.Errorf("JOIN_LOCK_DELAY must not be negative, got %g", c.JoinLockDelay))
	}
	if c.MaxRooms < 0 {
		errs = append(errs, fmt.Errorf("MAX_ROOMS must not be negative, got %d", c.MaxRooms))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
