package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRecommend handles POST /v1/recommendations.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	var req recommendRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Recommend(&req.Learner, req.Sessions, req.Courses))
}

// handleLearnerRecommendations handles GET /v1/learners/{id}/recommendations.
func (s *Server) handleLearnerRecommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.learner_recommendations"
	rec, err := s.deps.RecommendForLearnerID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
