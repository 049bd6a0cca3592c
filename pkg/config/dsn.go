package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvDriver        = "EASYORM_DRIVER"
	EnvDSN           = "DATABASE_URL"
	EnvDatabase      = "EASYORM_DATABASE"
	EnvReapThreshold = "EASYORM_REAP_THRESHOLD"
	EnvLogLevel      = "EASYORM_LOG_LEVEL"
)

// Config holds connection settings for the CLI and Open.
type Config struct {
	Driver        string
	DSN           string
	Database      string
	ReapThreshold time.Duration
	LogLevel      string
}

// Load reads envFile (when present) into the environment and builds a
// Config from it. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Driver:        strings.ToLower(os.Getenv(EnvDriver)),
		DSN:           os.Getenv(EnvDSN),
		Database:      os.Getenv(EnvDatabase),
		ReapThreshold: 10 * time.Second,
		LogLevel:      os.Getenv(EnvLogLevel),
	}
	if cfg.Driver == "" {
		cfg.Driver = "mysql"
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%s is not set", EnvDSN)
	}
	if v := os.Getenv(EnvReapThreshold); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", EnvReapThreshold, err)
		}
		// Zero means the default in Options, so it cannot be set explicitly.
		if d == 0 {
			return nil, fmt.Errorf("%s must not be zero, use a negative duration to disable reaping", EnvReapThreshold)
		}
		cfg.ReapThreshold = d
	}
	return cfg, nil
}

// SlogLevel maps LogLevel onto an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
