package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// IdempotencyHeader carries the batch idempotency key. It wins over the
// body field when both are set.
const IdempotencyHeader = "Idempotency-Key"

// handleSubmitBatch handles POST /v1/batch/recommendations.
func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_submit"
	var req batchRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	key := req.IdempotencyKey
	if h := strings.TrimSpace(r.Header.Get(IdempotencyHeader)); h != "" {
		key = h
	}

	job, duplicate, err := s.deps.SubmitBatch(r.Context(), key, req.LearnerIDs)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, batchResponse{Status: "duplicate", Duplicate: true, Job: job})
		return
	}
	w.Header().Set("Location", "/v1/batch/"+job.ID)
	writeJSON(w, http.StatusAccepted, batchResponse{Status: "accepted", Job: job})
}

// handleGetBatch handles GET /v1/batch/{id}.
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_get"
	job, err := s.deps.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
