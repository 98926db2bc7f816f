package service

import (
	"time"

	"github.com/okian/coachmatch/internal/domain/matching"
	"github.com/okian/coachmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of batch workers and the fan-out bound
// for multi-learner ranking.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the batch job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxBatchSize caps the learners accepted in one batch job.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithJobRetention sets how long finished jobs stay queryable.
func WithJobRetention(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.jobRetention = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog attaches the stored catalog used by the id-based operations.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithMatchWeights sets the compatibility factor weights.
func WithMatchWeights(w matching.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithRankLimits sets the default and maximum ranking sizes.
func WithRankLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithAnomalyThreshold sets the z-score above which readings are flagged.
func WithAnomalyThreshold(z float64) Option {
	return func(s *Service) {
		if z > 0 {
			s.zThreshold = z
		}
	}
}

// WithClock replaces the time source used for recency advice.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
