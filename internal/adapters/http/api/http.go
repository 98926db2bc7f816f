// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	service "github.com/okian/coachmatch/internal/app"
	"github.com/okian/coachmatch/internal/domain/analytics"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/domain/recommend"
	"github.com/okian/coachmatch/internal/domain/types"
	"github.com/okian/coachmatch/pkg/logger"
)

const (
	defaultRatePerMinute = 600
	defaultMaxLimit      = 100
	defaultMaxBody       = 4 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Score(learner *model.LearnerProfile, coach *model.CoachProfile) model.MatchResult
	RankCoaches(learner *model.LearnerProfile, coaches []model.CoachProfile, limit int) []model.MatchResult
	RankCoachesForLearners(ctx context.Context, learners []model.LearnerProfile, coaches []model.CoachProfile, limit int) ([]service.LearnerMatches, error)
	RankLearners(coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult
	RankLearnersForCourse(course *model.Course, coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult

	Summarize(sessions []model.Session) analytics.Summary
	Trend(values []float64) model.TrendResult
	Anomalies(sessions []model.Session) []model.AnomalyRecord
	Forecast(sessions []model.Session, metric string, horizonDays int) analytics.ForecastResult
	Recommend(learner *model.LearnerProfile, sessions []model.Session, courses []model.Course) recommend.Recommendations

	// Catalog backed reads.
	RecommendForLearnerID(ctx context.Context, learnerID string) (recommend.Recommendations, error)
	CoachesForLearnerID(ctx context.Context, learnerID string, limit int) ([]model.MatchResult, error)

	// Batch jobs.
	SubmitBatch(ctx context.Context, idempotencyKey string, learnerIDs []string) (model.Job, bool, error)
	Job(ctx context.Context, id string) (model.Job, error)

	StatsProvider
}

// Entry is one numbered row of a ranking response.
type Entry = types.Entry

// Server wires HTTP routes for the engine API.
type Server struct {
	deps Dependencies

	healthHandler *HealthHandler
	statsHandler  *StatsHandler

	ratePerMinute int
	maxLimit      int
	maxBody       int64
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		healthHandler: NewHealthHandler(),
		ratePerMinute: defaultRatePerMinute,
		maxLimit:      defaultMaxLimit,
		maxBody:       defaultMaxBody,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.statsHandler = newStatsHandler(deps, apiLimits{
		RateLimitPerMinute: s.ratePerMinute,
		MaxRankLimit:       s.maxLimit,
		MaxBodyBytes:       s.maxBody,
	}, time.Now)
	return s
}

// Router returns the chi router with every route attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		if s.ratePerMinute > 0 {
			r.Use(httprate.Limit(s.ratePerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.rate_limit", ErrBackpressure))
				}),
			))
		}

		r.Post("/match/score", s.handleScore)
		r.Post("/match/coaches", s.handleMatchCoaches)
		r.Post("/match/learners", s.handleMatchLearners)
		r.Post("/match/course", s.handleMatchCourse)

		r.Post("/analytics/summary", s.handleSummary)
		r.Post("/analytics/trend", s.handleTrend)
		r.Post("/analytics/anomalies", s.handleAnomalies)
		r.Post("/analytics/forecast", s.handleForecast)

		r.Post("/recommendations", s.handleRecommend)
		r.Get("/learners/{id}/recommendations", s.handleLearnerRecommendations)
		r.Get("/learners/{id}/coaches", s.handleLearnerCoaches)

		r.Post("/batch/recommendations", s.handleSubmitBatch)
		r.Get("/batch/{id}", s.handleGetBatch)
	})
	return r
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return false
	}
	if err := ValidateStruct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", WrapKind(op, ErrBadRequest, err))
		return false
	}
	return true
}

// checkLimit rejects negative limits and limits above the configured maximum.
func (s *Server) checkLimit(w http.ResponseWriter, op string, limit int) bool {
	if limit < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return false
	}
	if limit > s.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrLimit))
		return false
	}
	return true
}

// fail maps an engine error to its HTTP status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNoCatalog):
		writeError(w, http.StatusServiceUnavailable, "no_catalog", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "cancelled", Wrap(op, err))
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	noteErrorCode(w, code)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
