package analytics

import (
	"math"

	"github.com/okian/coachmatch/internal/domain/model"
)

// MetricProgress describes how one metric moved over the history.
type MetricProgress struct {
	FirstValue     float64           `json:"first_value"`
	LastValue      float64           `json:"last_value"`
	ChangeAbsolute float64           `json:"change_absolute"`
	ChangePercent  float64           `json:"change_percent"`
	Trend          model.TrendResult `json:"trend"`
	Values         []float64         `json:"values"`
	Dates          []model.Date      `json:"dates"`
}

// Progress computes per-metric progress for metrics reported at least twice.
// Sorted input is expected.
func Progress(sorted []model.Session) *OrderedMap[string, *MetricProgress] {
	out := NewOrderedMap[string, *MetricProgress]()
	MetricSeries(sorted, false).Range(func(name string, s *Series) bool {
		if len(s.Values) < 2 {
			return true
		}
		first := s.Values[0]
		last := s.Values[len(s.Values)-1]
		change := last - first
		var pct float64
		if first != 0 {
			pct = change / math.Abs(first) * 100
		}
		out.Set(name, &MetricProgress{
			FirstValue:     first,
			LastValue:      last,
			ChangeAbsolute: change,
			ChangePercent:  pct,
			Trend:          FitTrend(s.Values),
			Values:         s.Values,
			Dates:          s.Dates,
		})
		return true
	})
	return out
}

// Achievements flattens session achievements into a date-ordered timeline.
func Achievements(sorted []model.Session) []model.Achievement {
	out := []model.Achievement{}
	for i := range sorted {
		s := &sorted[i]
		for _, a := range s.Achievements {
			if a == "" {
				continue
			}
			out = append(out, model.Achievement{
				Date:        s.TrainingDate,
				Description: a,
				CourseID:    s.CourseID,
				CoachID:     s.CoachID,
			})
		}
	}
	return out
}
