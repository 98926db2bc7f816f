package analytics

import (
	"fmt"
	"strings"

	"github.com/okian/coachmatch/internal/domain/model"
)

// Point is one dated metric value.
type Point struct {
	Date  model.Date `json:"date"`
	Value float64    `json:"value"`
}

// ForecastResult carries a projection or the reason none was made.
type ForecastResult struct {
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	Metric         string            `json:"metric"`
	HorizonDays    int               `json:"horizon_days,omitempty"`
	Predictions    []Point           `json:"predictions"`
	Trend          model.TrendResult `json:"trend"`
	HistoricalData []Point           `json:"historical_data"`
}

func forecastFailure(metric, format string, args ...any) ForecastResult {
	return ForecastResult{
		Success:        false,
		Error:          fmt.Sprintf(format, args...),
		Metric:         metric,
		Predictions:    []Point{},
		Trend:          model.StableTrend(),
		HistoricalData: []Point{},
	}
}

// Forecast projects metric forward one point per day for horizonDays days
// by extending the least-squares line fitted over the metric's history.
// Each reading counts as one step, and the projected dates continue daily
// from the last reading. Too little history yields Success=false with a
// readable reason; the call never panics.
func (a *Analyzer) Forecast(sessions []model.Session, metric string, horizonDays int) ForecastResult {
	metric = strings.TrimSpace(metric)
	if metric == "" {
		return forecastFailure(metric, "metric name is required")
	}
	if len(sessions) < a.minForecastSamples {
		return forecastFailure(metric, "not enough sessions to forecast: need at least %d, have %d",
			a.minForecastSamples, len(sessions))
	}
	if horizonDays <= 0 {
		horizonDays = defaultHorizonDays
	}
	if horizonDays > a.maxHorizon {
		horizonDays = a.maxHorizon
	}

	series, ok := MetricSeries(SortSessions(sessions), true).Get(metric)
	if !ok || len(series.Values) < a.minForecastSamples {
		have := 0
		if ok {
			have = len(series.Values)
		}
		return forecastFailure(metric, "not enough %q readings to forecast: need at least %d, have %d",
			metric, a.minForecastSamples, have)
	}

	history := make([]Point, len(series.Values))
	for i, v := range series.Values {
		history[i] = Point{Date: series.Dates[i], Value: v}
	}

	slope, intercept := FitLine(series.Values)
	last := len(series.Values) - 1
	lastDate := series.Dates[last]
	predictions := make([]Point, horizonDays)
	for i := 0; i < horizonDays; i++ {
		x := float64(last + i + 1)
		predictions[i] = Point{
			Date:  model.NewDate(lastDate.AddDate(0, 0, i+1)),
			Value: slope*x + intercept,
		}
	}

	return ForecastResult{
		Success:        true,
		Metric:         metric,
		HorizonDays:    horizonDays,
		Predictions:    predictions,
		Trend:          FitTrend(series.Values),
		HistoricalData: history,
	}
}

// Forecast runs a forecast with default settings.
func Forecast(sessions []model.Session, metric string, horizonDays int) ForecastResult {
	return NewAnalyzer().Forecast(sessions, metric, horizonDays)
}
