package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/coachmatch/pkg/metrics"
)

// unmatchedRoute labels requests that no route claimed, so arbitrary paths
// never become metric label values.
const unmatchedRoute = "unmatched"

// Instrument records request count, latency and failures for every route,
// labelled by the chi route pattern (for example /v1/learners/{id}/coaches).
// Failures are classified by the error code the handler wrote.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		status := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(route, r.Method, status)
		metrics.RecordHTTPRequestDuration(route, r.Method, status, float64(time.Since(start).Microseconds())/1000)

		if rec.status < http.StatusBadRequest {
			return
		}
		kind := rec.code
		if kind == "" {
			kind = statusKind(rec.status)
		}
		metrics.RecordErrorByEndpoint(route, r.Method, kind)
		metrics.RecordErrorByType(kind, severity(rec.status))
		metrics.RecordErrorByComponent("http", kind)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// statusKind names failures that carry no error code, such as chi's own
// 404 and 405 responses or a recovered panic.
func statusKind(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return "unavailable"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "bad_request"
}

// severity: server faults page someone, shed load is watched, client
// mistakes are noise.
func severity(status int) string {
	switch {
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return "medium"
	case status >= http.StatusInternalServerError:
		return "high"
	default:
		return "low"
	}
}

// statusRecorder keeps the status and the API error code of a response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	code        string
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b) //nolint:wrapcheck // pass-through writer
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *statusRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }

// noteErrorCode tags the response with code when w is instrumented.
func noteErrorCode(w http.ResponseWriter, code string) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.code = code
	}
}
