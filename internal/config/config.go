// Package config defines service configuration and its loading from
// defaults, an optional YAML file and the environment.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/coachmatch/internal/domain/matching"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory batch job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of batch workers and the ranking fan-out.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many batch idempotency keys are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	MaxBatchSize int           `koanf:"max_batch_size"`
	JobRetention time.Duration `koanf:"job_retention"`

	// DefaultRankLimit is used when a ranking request omits limit;
	// MaxRankLimit caps any requested limit.
	DefaultRankLimit int `koanf:"default_rank_limit"`
	MaxRankLimit     int `koanf:"max_rank_limit"`

	// DatabasePath points at the SQLite catalog. Empty disables the
	// catalog-backed endpoints.
	DatabasePath string `koanf:"database_path"`

	// RateLimitPerMinute is the per-IP request budget. Zero disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	AnomalyZThreshold float64          `koanf:"anomaly_z_threshold"`
	MatchWeights      matching.Weights `koanf:"match_weights"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         50_000,
		MaxBatchSize:       500,
		JobRetention:       time.Hour,
		DefaultRankLimit:   5,
		MaxRankLimit:       100,
		DatabasePath:       "",
		RateLimitPerMinute: 600,
		AnomalyZThreshold:  2.0,
		MatchWeights:       matching.DefaultWeights(),
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive, got %d", c.QueueSize)
	case c.WorkerCount <= 0:
		return invalid("worker_count must be positive, got %d", c.WorkerCount)
	case c.DedupeSize < 0:
		return invalid("dedupe_size must not be negative, got %d", c.DedupeSize)
	case c.MaxBatchSize <= 0:
		return invalid("max_batch_size must be positive, got %d", c.MaxBatchSize)
	case c.JobRetention < 0:
		return invalid("job_retention must not be negative, got %s", c.JobRetention)
	case c.DefaultRankLimit <= 0:
		return invalid("default_rank_limit must be positive, got %d", c.DefaultRankLimit)
	case c.MaxRankLimit < c.DefaultRankLimit:
		return invalid("max_rank_limit %d is below default_rank_limit %d", c.MaxRankLimit, c.DefaultRankLimit)
	case c.RateLimitPerMinute < 0:
		return invalid("rate_limit_per_minute must not be negative, got %d", c.RateLimitPerMinute)
	case c.AnomalyZThreshold <= 0:
		return invalid("anomaly_z_threshold must be positive, got %v", c.AnomalyZThreshold)
	}

	w := c.MatchWeights
	if w.Category < 0 || w.Experience < 0 || w.Text < 0 || w.Rating < 0 {
		return invalid("match_weights must not be negative")
	}
	if w.Category+w.Experience+w.Text+w.Rating <= 0 {
		return invalid("match_weights must not all be zero")
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("unknown log_level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
