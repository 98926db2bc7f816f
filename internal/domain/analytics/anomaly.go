package analytics

import (
	"math"

	"github.com/okian/coachmatch/internal/domain/model"
)

// Default analyzer settings.
const (
	defaultZThreshold         = 2.0
	defaultMinAnomalySessions = 5
	defaultMinForecastSamples = 10
	defaultHorizonDays        = 30
	defaultMaxHorizonDays     = 365

	// minMetricSamples is the smallest group that can carry an outlier.
	minMetricSamples = 3
)

// Analyzer runs the configurable history analyses.
type Analyzer struct {
	zThreshold         float64
	minAnomalySessions int
	minForecastSamples int
	maxHorizon         int
}

// NewAnalyzer creates an analyzer with default thresholds.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		zThreshold:         defaultZThreshold,
		minAnomalySessions: defaultMinAnomalySessions,
		minForecastSamples: defaultMinForecastSamples,
		maxHorizon:         defaultMaxHorizonDays,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ZThreshold returns the configured anomaly threshold.
func (a *Analyzer) ZThreshold() float64 { return a.zThreshold }

// Summarize aggregates a session history.
func (a *Analyzer) Summarize(sessions []model.Session) Summary {
	return Summarize(sessions)
}

// DetectAnomalies flags metric readings, session duration included, that
// sit more than the threshold number of standard deviations away from the
// other readings of the same metric.
//
// Each reading is compared against its peers (the metric's other readings)
// so a single extreme value cannot mask itself by inflating the spread.
// When the peers are all equal the whole group's spread is used instead.
// Histories shorter than the session minimum, metrics with fewer than
// three readings and metrics with no spread are skipped.
func (a *Analyzer) DetectAnomalies(sessions []model.Session) []model.AnomalyRecord {
	out := []model.AnomalyRecord{}
	if len(sessions) < a.minAnomalySessions {
		return out
	}
	sorted := SortSessions(sessions)
	MetricSeries(sorted, true).Range(func(name string, s *Series) bool {
		if len(s.Values) < minMetricSamples {
			return true
		}
		_, groupStd := meanStd(s.Values)
		if groupStd == 0 {
			return true
		}
		peers := make([]float64, 0, len(s.Values)-1)
		for i, v := range s.Values {
			peers = peers[:0]
			peers = append(peers, s.Values[:i]...)
			peers = append(peers, s.Values[i+1:]...)
			mean, std := meanStd(peers)
			if std == 0 {
				std = groupStd
			}
			z := (v - mean) / std
			if math.Abs(z) <= a.zThreshold {
				continue
			}
			out = append(out, model.AnomalyRecord{
				MetricName: name,
				Value:      v,
				Date:       s.Dates[i],
				RecordID:   s.RecordIDs[i],
				ZScore:     z,
				Mean:       mean,
				StdDev:     std,
			})
		}
		return true
	})
	return out
}

// DetectAnomalies runs anomaly detection with default thresholds.
func DetectAnomalies(sessions []model.Session) []model.AnomalyRecord {
	return NewAnalyzer().DetectAnomalies(sessions)
}
