// Package service wires the matching, analytics and recommendation engines
// to the batch job pipeline and the stored catalog behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/coachmatch/internal/adapters/mq/queue"
	"github.com/okian/coachmatch/internal/adapters/mq/worker"
	"github.com/okian/coachmatch/internal/adapters/repository"
	"github.com/okian/coachmatch/internal/domain/analytics"
	"github.com/okian/coachmatch/internal/domain/dedupe"
	"github.com/okian/coachmatch/internal/domain/matching"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/domain/recommend"
	"github.com/okian/coachmatch/pkg/logger"
	"github.com/okian/coachmatch/pkg/metrics"
)

const (
	defaultQueueSize    = 1024
	defaultDedupeSize   = 50000
	defaultMaxBatchSize = 500
	defaultJobRetention = time.Hour
	stopTimeout         = 10 * time.Second
)

// LearnerMatches is the coach ranking computed for one learner.
type LearnerMatches struct {
	LearnerID string              `json:"learner_id"`
	Matches   []model.MatchResult `json:"matches"`
}

// Service implements the API dependencies of the engine.
type Service struct {
	mu sync.RWMutex
	// submitMu serializes batch submissions so claiming an idempotency key,
	// storing its job and queueing it happen as one step.
	submitMu sync.Mutex

	ranker   *matching.Ranker
	analyzer *analytics.Analyzer
	synth    *recommend.Synthesizer
	catalog  Catalog

	jobs    *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount  int
	queueSize    int
	dedupeSize   int
	maxBatchSize int
	jobRetention time.Duration
	weights      matching.Weights
	defaultLimit int
	maxLimit     int
	zThreshold   float64
	now          func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. The scoring and analysis operations work right
// away; batch jobs need Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		maxBatchSize: defaultMaxBatchSize,
		jobRetention: defaultJobRetention,
		weights:      matching.DefaultWeights(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	rankerOpts := []matching.RankerOption{
		matching.WithScorer(matching.NewScorer(matching.WithWeights(s.weights))),
		matching.WithDefaultLimit(s.defaultLimit),
		matching.WithMaxLimit(s.maxLimit),
	}
	s.ranker = matching.NewRanker(rankerOpts...)

	var analyzerOpts []analytics.Option
	if s.zThreshold > 0 {
		analyzerOpts = append(analyzerOpts, analytics.WithZThreshold(s.zThreshold))
	}
	s.analyzer = analytics.NewAnalyzer(analyzerOpts...)
	s.synth = recommend.NewSynthesizer(
		recommend.WithAnalyzer(s.analyzer),
		recommend.WithClock(s.now),
	)
	return s
}

// Start creates the job store, queue and worker pool and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting engine service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobs = repository.NewMemoryStore(runCtx, repository.WithRetention(s.jobRetention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.jobs)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "engine service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Bool("catalog", s.catalog != nil),
	)
	return nil
}

// Stop drains the job queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping engine service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	s.jobs.Close()

	s.started = false
	s.logger.Info(ctx, "engine service stopped")
}

// Score computes the compatibility of one learner and one coach.
func (s *Service) Score(learner *model.LearnerProfile, coach *model.CoachProfile) model.MatchResult {
	cp := matching.CoachCounterpart(coach)
	res := s.ranker.Scorer().Score(learner, &cp)
	metrics.RecordMatchScore()
	return res
}

// RankCoaches returns the best coaches for a learner.
func (s *Service) RankCoaches(learner *model.LearnerProfile, coaches []model.CoachProfile, limit int) []model.MatchResult {
	start := time.Now()
	out := s.ranker.BestCoachesForLearner(learner, coaches, limit)
	metrics.RecordRanking("coaches", len(coaches), sinceMs(start))
	return out
}

// RankLearners returns the best learners for a coach.
func (s *Service) RankLearners(coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult {
	start := time.Now()
	out := s.ranker.BestLearnersForCoach(coach, learners, limit)
	metrics.RecordRanking("learners", len(learners), sinceMs(start))
	return out
}

// RankLearnersForCourse returns the best audience for a course.
func (s *Service) RankLearnersForCourse(course *model.Course, coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult {
	start := time.Now()
	out := s.ranker.BestLearnersForCourse(course, coach, learners, limit)
	metrics.RecordRanking("course", len(learners), sinceMs(start))
	return out
}

// RankCoachesForLearners ranks the coaches for every learner concurrently,
// bounded by the worker count. Results keep the learners' order.
func (s *Service) RankCoachesForLearners(ctx context.Context, learners []model.LearnerProfile, coaches []model.CoachProfile, limit int) ([]LearnerMatches, error) {
	out := make([]LearnerMatches, len(learners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i := range learners {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = LearnerMatches{
				LearnerID: learners[i].ID,
				Matches:   s.RankCoaches(&learners[i], coaches, limit),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank coaches for learners: %w", err)
	}
	return out, nil
}

// Summarize aggregates a session history.
func (s *Service) Summarize(sessions []model.Session) analytics.Summary {
	metrics.RecordAnalysis("summary")
	return s.analyzer.Summarize(sessions)
}

// Trend fits a trend line to an ordered series.
func (s *Service) Trend(values []float64) model.TrendResult {
	metrics.RecordAnalysis("trend")
	return analytics.FitTrend(values)
}

// Anomalies flags outlying metric readings.
func (s *Service) Anomalies(sessions []model.Session) []model.AnomalyRecord {
	metrics.RecordAnalysis("anomalies")
	out := s.analyzer.DetectAnomalies(sessions)
	metrics.RecordAnomaliesFlagged(len(out))
	return out
}

// Forecast projects a metric forward by horizonDays.
func (s *Service) Forecast(sessions []model.Session, metric string, horizonDays int) analytics.ForecastResult {
	metrics.RecordAnalysis("forecast")
	res := s.analyzer.Forecast(sessions, metric, horizonDays)
	outcome := "success"
	if !res.Success {
		outcome = "insufficient_data"
	}
	metrics.RecordForecast(outcome)
	return res
}

// Recommend synthesizes advice from a profile, its history and the courses on offer.
func (s *Service) Recommend(learner *model.LearnerProfile, sessions []model.Session, courses []model.Course) recommend.Recommendations {
	start := time.Now()
	rec := s.synth.Recommend(learner, sessions, courses)
	branch := "basic"
	if rec.HasHistory {
		branch = "history"
	}
	metrics.RecordRecommendation(branch, sinceMs(start))
	return rec
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"catalog":     s.catalog != nil,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["jobsTracked"] = s.jobs.Count(ctx)
		stats["idempotencyKeys"] = s.deduper.Size()
	}
	if s.catalog != nil {
		counts, err := s.catalog.Stats(ctx)
		if err != nil {
			s.logger.Warn(ctx, "catalog stats failed", logger.Error(err))
		} else {
			stats["catalogRecords"] = counts
		}
	}
	return stats
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
