// Package seed generates a deterministic synthetic marketplace catalog
// (learners, coaches, courses and training sessions) and loads it into the
// SQLite catalog.
package seed

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/okian/coachmatch/internal/domain/model"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid seed config")

// Config holds the seed run settings.
type Config struct {
	DatabasePath string
	Seed         uint64

	Learners           int
	Coaches            int
	CoursesPerCoach    int
	SessionsPerLearner int

	// Start is the date of the earliest generated session.
	Start model.Date

	Workers int
	Verbose bool
}

// DefaultConfig returns a small catalog suitable for local runs.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:       "coachmatch.db",
		Seed:               42,
		Learners:           200,
		Coaches:            40,
		CoursesPerCoach:    3,
		SessionsPerLearner: 24,
		Start:              model.NewDate(time.Now().AddDate(0, -3, 0)),
		Workers:            runtime.NumCPU() * 2,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.DatabasePath == "":
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	case c.Learners < 0, c.Coaches < 0, c.CoursesPerCoach < 0, c.SessionsPerLearner < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidConfig)
	case c.CoursesPerCoach > 0 && c.Coaches == 0:
		return fmt.Errorf("%w: courses need at least one coach", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	return nil
}
