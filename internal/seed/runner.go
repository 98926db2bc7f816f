package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/coachmatch/internal/adapters/storage"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
)

// sessionBatch bounds how many sessions go into one transaction.
const sessionBatch = 500

// Sink receives a generated catalog.
type Sink interface {
	UpsertCoaches(ctx context.Context, coaches []model.CoachProfile) error
	UpsertCourses(ctx context.Context, courses []model.Course) error
	UpsertLearners(ctx context.Context, learners []model.LearnerProfile) error
	UpsertSessions(ctx context.Context, sessions []model.Session) error
}

// Stats describes a finished seed run.
type Stats struct {
	Learners int
	Coaches  int
	Courses  int
	Sessions int
	Duration time.Duration
}

// Write stores ds in sink, sessions in batches.
func Write(ctx context.Context, sink Sink, ds *Dataset) error {
	if err := sink.UpsertCoaches(ctx, ds.Coaches); err != nil {
		return fmt.Errorf("write coaches: %w", err)
	}
	if err := sink.UpsertCourses(ctx, ds.Courses); err != nil {
		return fmt.Errorf("write courses: %w", err)
	}
	if err := sink.UpsertLearners(ctx, ds.Learners); err != nil {
		return fmt.Errorf("write learners: %w", err)
	}
	for start := 0; start < len(ds.Sessions); start += sessionBatch {
		end := min(start+sessionBatch, len(ds.Sessions))
		if err := sink.UpsertSessions(ctx, ds.Sessions[start:end]); err != nil {
			return fmt.Errorf("write sessions %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Run generates a catalog and loads it into the SQLite database at
// cfg.DatabasePath, creating the schema when needed.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	log := logger.Get().Named("seed")
	start := time.Now()

	catalog, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", cfg.DatabasePath, err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			log.Warn(ctx, "close catalog", logger.Error(err))
		}
	}()
	if err := catalog.EnsureSchema(ctx); err != nil {
		return Stats{}, fmt.Errorf("ensure schema: %w", err)
	}

	ds, err := Generate(ctx, cfg)
	if err != nil {
		return Stats{}, err
	}
	if err := Write(ctx, catalog, ds); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Learners: len(ds.Learners),
		Coaches:  len(ds.Coaches),
		Courses:  len(ds.Courses),
		Sessions: len(ds.Sessions),
		Duration: time.Since(start),
	}
	if cfg.Verbose {
		counts, err := catalog.Stats(ctx)
		if err == nil {
			log.Debug(ctx, "catalog row counts", logger.Any("counts", counts))
		}
	}
	log.Info(ctx, "seed completed",
		logger.String("database", cfg.DatabasePath),
		logger.Int("sessions", stats.Sessions),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}
