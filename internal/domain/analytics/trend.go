package analytics

import (
	"math"
	"sort"

	"github.com/okian/coachmatch/internal/domain/model"
)

// slopeThreshold separates a real trend from noise, in units per sample.
const slopeThreshold = 0.05

// DurationMetric is the pseudo-metric name for session duration.
const DurationMetric = "duration"

// FitTrend classifies a series by the least-squares slope over sample
// index. Series shorter than two points, constant series and series with
// non-finite values are stable with zero confidence.
func FitTrend(values []float64) model.TrendResult {
	slope, _, r, ok := fit(values)
	if !ok {
		return model.StableTrend()
	}
	dir := model.TrendStable
	switch {
	case slope > slopeThreshold:
		dir = model.TrendIncreasing
	case slope < -slopeThreshold:
		dir = model.TrendDecreasing
	}
	return model.TrendResult{
		Direction:  dir,
		Slope:      slope,
		Confidence: math.Min(math.Abs(r), 1),
	}
}

// FitLine returns the least-squares line through (i, values[i]). A constant
// series yields a flat line at its value; fewer than two points yield a
// flat line through the only point, or zero.
func FitLine(values []float64) (slope, intercept float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return 0, values[0]
	}
	s, b, _, ok := fit(values)
	if ok {
		return s, b
	}
	mean, _ := meanStd(values)
	return 0, mean
}

// fit computes slope, intercept and Pearson r. ok is false when there is
// no usable signal.
func fit(values []float64) (slope, intercept, r float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, 0, 0, false
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, false
		}
	}
	mx := float64(n-1) / 2
	var my float64
	for _, v := range values {
		my += v
	}
	my /= float64(n)

	var sxx, syy, sxy float64
	for i, v := range values {
		dx := float64(i) - mx
		dy := v - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, my, 0, false
	}
	slope = sxy / sxx
	r = sxy / math.Sqrt(sxx*syy)
	intercept = my - slope*mx
	return slope, intercept, r, true
}

// meanStd returns the population mean and standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}

// Series is the ordered history of one metric.
type Series struct {
	Name      string       `json:"name"`
	Values    []float64    `json:"values"`
	Dates     []model.Date `json:"dates"`
	RecordIDs []string     `json:"record_ids"`
}

func (s *Series) add(v float64, d model.Date, id string) {
	s.Values = append(s.Values, v)
	s.Dates = append(s.Dates, d)
	s.RecordIDs = append(s.RecordIDs, id)
}

// MetricSeries groups metric readings by name in first-seen order. Sessions
// must already be sorted by date. Malformed sessions contribute nothing.
// When withDuration is set, session duration is included as the first
// series under DurationMetric.
func MetricSeries(sorted []model.Session, withDuration bool) *OrderedMap[string, *Series] {
	out := NewOrderedMap[string, *Series]()
	if withDuration && len(sorted) > 0 {
		d := out.Upsert(DurationMetric, func() *Series { return &Series{Name: DurationMetric} })
		for i := range sorted {
			d.add(sorted[i].DurationMinutes, sorted[i].TrainingDate, sorted[i].ID)
		}
	}
	for i := range sorted {
		s := &sorted[i]
		if s.MetricsMalformed || len(s.Metrics) == 0 {
			continue
		}
		names := make([]string, 0, len(s.Metrics))
		for name := range s.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			v := s.Metrics[name]
			if withDuration && name == DurationMetric {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			series := out.Upsert(name, func() *Series { return &Series{Name: name} })
			series.add(v, s.TrainingDate, s.ID)
		}
	}
	return out
}
