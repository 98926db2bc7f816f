package api

import (
	"context"
	"net/http"
	"time"
)

// StatsProvider reports engine counters: workers, queue depth, tracked
// jobs, idempotency keys and catalog sizes.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// apiLimits are the request limits this server enforces.
type apiLimits struct {
	RateLimitPerMinute int   `json:"rateLimitPerMinute"`
	MaxRankLimit       int   `json:"maxRankLimit"`
	MaxBodyBytes       int64 `json:"maxBodyBytes"`
}

// StatsHandler serves GET /stats: the engine counters plus an "api" section
// with the enforced limits and server uptime.
type StatsHandler struct {
	provider StatsProvider
	limits   apiLimits
	started  time.Time
	now      func() time.Time
}

func newStatsHandler(provider StatsProvider, limits apiLimits, now func() time.Time) *StatsHandler {
	return &StatsHandler{provider: provider, limits: limits, started: now(), now: now}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	for k, v := range h.provider.GetStats(r.Context()) {
		out[k] = v
	}
	out["api"] = map[string]any{
		"limits":        h.limits,
		"uptimeSeconds": int64(h.now().Sub(h.started).Seconds()),
	}
	writeJSON(w, http.StatusOK, out)
}
