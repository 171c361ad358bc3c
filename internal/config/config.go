// Package config loads session settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Config holds session configuration.
type Config struct {
	// Seed for the random source used for infected selection and cues.
	// A seed of 0 means a random seed will be generated.
	Seed int64

	Tick       time.Duration
	MaxPlayers int
	Bots       int
	RoundTime  float64 // Seconds

	Headless      bool
	HeadlessTicks int // 0 runs until interrupted

	StatusAddr string // Empty disables the status API
	ModeFile   string // Optional JSON override of the embedded mode

	LogFile  string
	LogLevel zapcore.Level
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Tick:       100 * time.Millisecond,
		MaxPlayers: 16,
		Bots:       6,
		RoundTime:  180,
		LogFile:    "infection.log",
		LogLevel:   zapcore.InfoLevel,
	}
}

// Load reads INFECTION_* variables on top of the defaults.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	if v, ok := lookup("INFECTION_SEED"); ok && v != "" {
		if cfg.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("INFECTION_SEED: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_TICK_MS"); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("INFECTION_TICK_MS: %w", err)
		}
		if ms <= 0 {
			return cfg, fmt.Errorf("INFECTION_TICK_MS: must be positive, got %d", ms)
		}
		cfg.Tick = time.Duration(ms) * time.Millisecond
	}
	if v, ok := lookup("INFECTION_MAX_PLAYERS"); ok && v != "" {
		if cfg.MaxPlayers, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("INFECTION_MAX_PLAYERS: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_BOTS"); ok && v != "" {
		if cfg.Bots, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("INFECTION_BOTS: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_ROUND_TIME"); ok && v != "" {
		if cfg.RoundTime, err = strconv.ParseFloat(v, 64); err != nil {
			return cfg, fmt.Errorf("INFECTION_ROUND_TIME: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_HEADLESS"); ok && v != "" {
		if cfg.Headless, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("INFECTION_HEADLESS: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_HEADLESS_TICKS"); ok && v != "" {
		if cfg.HeadlessTicks, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("INFECTION_HEADLESS_TICKS: %w", err)
		}
	}
	if v, ok := lookup("INFECTION_STATUS_ADDR"); ok {
		cfg.StatusAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup("INFECTION_MODE_FILE"); ok {
		cfg.ModeFile = strings.TrimSpace(v)
	}
	if v, ok := lookup("INFECTION_LOG_FILE"); ok && v != "" {
		cfg.LogFile = v
	}
	if v, ok := lookup("INFECTION_LOG_LEVEL"); ok && v != "" {
		if cfg.LogLevel, err = zapcore.ParseLevel(v); err != nil {
			return cfg, fmt.Errorf("INFECTION_LOG_LEVEL: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.MaxPlayers < 1:
		return fmt.Errorf("max players must be at least 1, got %d", c.MaxPlayers)
	case c.Bots < 0 || c.Bots > c.MaxPlayers:
		return fmt.Errorf("bots must be between 0 and %d, got %d", c.MaxPlayers, c.Bots)
	case c.RoundTime < 0:
		return fmt.Errorf("round time must not be negative, got %v", c.RoundTime)
	case c.HeadlessTicks < 0:
		return fmt.Errorf("headless ticks must not be negative, got %d", c.HeadlessTicks)
	case c.Tick <= 0:
		return fmt.Errorf("tick must be positive, got %v", c.Tick)
	}
	return nil
}
