// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over those defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ArtifactPath points at the trained model bundle.
	ArtifactPath string `koanf:"artifact_path"`

	// HistoryDSN is the SQLite database holding the performance log.
	HistoryDSN string `koanf:"history_dsn"`

	// QueueSize bounds the in-memory history write queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of history writers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the record id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxHistoryLimit caps GET /history/{user_id}?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// HistoryBusyTimeout is how long a history write waits on a locked database.
	HistoryBusyTimeout time.Duration `koanf:"history_busy_timeout"`

	// ValidateRanges rejects numeric inputs outside the form ranges.
	ValidateRanges bool `koanf:"validate_ranges"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		ArtifactPath:       "models/student_model_v1.json",
		HistoryDSN:         "history.db",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         50_000,
		MaxHistoryLimit:    500,
		HistoryBusyTimeout: 5 * time.Second,
		ValidateRanges:     true,
		CORSAllowedOrigins: []string{"*"},
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ArtifactPath == "":
		return fmt.Errorf("%w: artifact_path must not be empty", ErrInvalidConfig)
	case c.HistoryDSN == "":
		return fmt.Errorf("%w: history_dsn must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxHistoryLimit < 1:
		return fmt.Errorf("%w: max_history_limit must be positive", ErrInvalidConfig)
	case c.HistoryBusyTimeout <= 0:
		return fmt.Errorf("%w: history_busy_timeout must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
