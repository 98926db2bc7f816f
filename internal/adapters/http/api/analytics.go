package api

import "net/http"

// handleSummary handles POST /v1/analytics/summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.analytics_summary"
	var req sessionsRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Summarize(req.Sessions))
}

// handleTrend handles POST /v1/analytics/trend.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.analytics_trend"
	var req trendRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Trend(req.Values))
}

// handleAnomalies handles POST /v1/analytics/anomalies.
func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	const op = "api.analytics_anomalies"
	var req sessionsRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, anomaliesResponse{Anomalies: s.deps.Anomalies(req.Sessions)})
}

// handleForecast handles POST /v1/analytics/forecast. An unforecastable
// series is still a 200 with success false.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.analytics_forecast"
	var req forecastRequest
	if !s.decode(w, r, op, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Forecast(req.Sessions, req.Metric, req.HorizonDays))
}
