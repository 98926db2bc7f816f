package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/coachmatch/internal/domain/types"
)

// handleScore handles POST /v1/match/score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_score"
	var req scoreRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Score(&req.Learner, &req.Coach))
}

// handleMatchCoaches handles POST /v1/match/coaches for a single learner
// or, with "learners", for many at once.
func (s *Server) handleMatchCoaches(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_coaches"
	var req coachesRequest
	if !s.decode(w, r, op, &req) || !s.checkLimit(w, op, req.Limit) {
		return
	}
	switch {
	case req.Learner != nil && len(req.Learners) > 0:
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("learner and learners are mutually exclusive")))
	case req.Learner != nil:
		matches := s.deps.RankCoaches(req.Learner, req.Coaches, req.Limit)
		writeJSON(w, http.StatusOK, rankingResponse{Entries: types.FromMatches(matches)})
	case len(req.Learners) > 0:
		all, err := s.deps.RankCoachesForLearners(r.Context(), req.Learners, req.Coaches, req.Limit)
		if err != nil {
			s.fail(w, r, op, err)
			return
		}
		resp := multiRankingResponse{Rankings: make([]learnerRanking, len(all))}
		for i, lm := range all {
			resp.Rankings[i] = learnerRanking{LearnerID: lm.LearnerID, Entries: types.FromMatches(lm.Matches)}
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeError(w, http.StatusBadRequest, "validation_failed",
			WrapKind(op, ErrBadRequest, errors.New("learner or learners is required")))
	}
}

// handleMatchLearners handles POST /v1/match/learners.
func (s *Server) handleMatchLearners(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_learners"
	var req learnersRequest
	if !s.decode(w, r, op, &req) || !s.checkLimit(w, op, req.Limit) {
		return
	}
	matches := s.deps.RankLearners(&req.Coach, req.Learners, req.Limit)
	writeJSON(w, http.StatusOK, rankingResponse{Entries: types.FromMatches(matches)})
}

// handleMatchCourse handles POST /v1/match/course.
func (s *Server) handleMatchCourse(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_course"
	var req courseRequest
	if !s.decode(w, r, op, &req) || !s.checkLimit(w, op, req.Limit) {
		return
	}
	matches := s.deps.RankLearnersForCourse(&req.Course, &req.Coach, req.Learners, req.Limit)
	writeJSON(w, http.StatusOK, rankingResponse{Entries: types.FromMatches(matches)})
}

// handleLearnerCoaches handles GET /v1/learners/{id}/coaches?limit=N.
func (s *Server) handleLearnerCoaches(w http.ResponseWriter, r *http.Request) {
	const op = "api.learner_coaches"
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	if !s.checkLimit(w, op, limit) {
		return
	}
	matches, err := s.deps.CoachesForLearnerID(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rankingResponse{Entries: types.FromMatches(matches)})
}
