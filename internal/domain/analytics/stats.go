// Package analytics summarizes a learner's training history: totals,
// cadence, per-metric progress, trend direction, outliers and forecasts.
//
// All functions are pure. Inputs are never mutated; sorting happens on a
// private copy. Empty or degenerate input yields neutral results rather
// than errors.
package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/coachmatch/internal/domain/model"
)

const daysPerWeek = 7

// CategoryStats aggregates the sessions of one training category.
type CategoryStats struct {
	Name            string  `json:"name,omitempty"`
	Count           int     `json:"count"`
	TotalDuration   float64 `json:"total_duration"`
	AverageDuration float64 `json:"average_duration"`
}

// PeriodGroup aggregates the sessions falling into one week or month.
type PeriodGroup struct {
	Key           string   `json:"key"`
	Count         int      `json:"count"`
	TotalDuration float64  `json:"total_duration"`
	SessionIDs    []string `json:"session_ids"`
}

// FrequencyTrend is the trend of session counts per period.
type FrequencyTrend struct {
	Weekly  model.TrendResult `json:"weekly"`
	Monthly model.TrendResult `json:"monthly"`
}

// Summary is the aggregate view of a session history.
type Summary struct {
	TotalSessions     int                                  `json:"total_sessions"`
	TotalDuration     float64                              `json:"total_duration"`
	AverageDuration   float64                              `json:"average_duration"`
	Categories        *OrderedMap[int, *CategoryStats]     `json:"categories"`
	FrequencyPerWeek  float64                              `json:"frequency_per_week"`
	FrequencyPerMonth float64                              `json:"frequency_per_month"`
	FirstSession      *model.Session                       `json:"first_session,omitempty"`
	LastSession       *model.Session                       `json:"last_session,omitempty"`
	Weekly            *OrderedMap[string, *PeriodGroup]    `json:"weekly"`
	Monthly           *OrderedMap[string, *PeriodGroup]    `json:"monthly"`
	DurationTrend     model.TrendResult                    `json:"duration_trend"`
	FrequencyTrend    FrequencyTrend                       `json:"frequency_trend"`
	Progress          *OrderedMap[string, *MetricProgress] `json:"progress"`
	Achievements      []model.Achievement                  `json:"achievements"`
	AttendedCourseIDs []string                             `json:"attended_course_ids"`
}

// SortSessions returns a copy of sessions ordered by training date. Sessions
// on the same day keep their input order.
func SortSessions(sessions []model.Session) []model.Session {
	out := make([]model.Session, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TrainingDate.Before(out[j].TrainingDate.Time)
	})
	return out
}

// Summarize aggregates a session history.
func Summarize(sessions []model.Session) Summary {
	sum := Summary{
		Categories:        NewOrderedMap[int, *CategoryStats](),
		Weekly:            NewOrderedMap[string, *PeriodGroup](),
		Monthly:           NewOrderedMap[string, *PeriodGroup](),
		Progress:          NewOrderedMap[string, *MetricProgress](),
		Achievements:      []model.Achievement{},
		AttendedCourseIDs: []string{},
		DurationTrend:     model.StableTrend(),
		FrequencyTrend:    FrequencyTrend{Weekly: model.StableTrend(), Monthly: model.StableTrend()},
	}
	if len(sessions) == 0 {
		return sum
	}

	sorted := SortSessions(sessions)
	first, last := sorted[0], sorted[len(sorted)-1]
	sum.FirstSession = &first
	sum.LastSession = &last
	sum.TotalSessions = len(sorted)

	durations := make([]float64, len(sorted))
	seenCourses := make(map[string]struct{})
	for i := range sorted {
		s := &sorted[i]
		d := math.Max(s.DurationMinutes, 0)
		durations[i] = d
		sum.TotalDuration += d

		cat := sum.Categories.Upsert(s.CategoryID, func() *CategoryStats {
			return &CategoryStats{Name: s.CategoryName}
		})
		cat.Count++
		cat.TotalDuration += d

		addToPeriod(sum.Weekly, WeekKey(s.TrainingDate), s, d)
		addToPeriod(sum.Monthly, MonthKey(s.TrainingDate), s, d)

		if s.CourseID != "" {
			if _, ok := seenCourses[s.CourseID]; !ok {
				seenCourses[s.CourseID] = struct{}{}
				sum.AttendedCourseIDs = append(sum.AttendedCourseIDs, s.CourseID)
			}
		}
	}
	sum.AverageDuration = sum.TotalDuration / float64(sum.TotalSessions)
	sum.Categories.Range(func(_ int, c *CategoryStats) bool {
		c.AverageDuration = c.TotalDuration / float64(c.Count)
		return true
	})

	sum.FrequencyPerWeek = Frequency(sorted, PerWeek)
	sum.FrequencyPerMonth = Frequency(sorted, PerMonth)
	sum.DurationTrend = FitTrend(durations)
	sum.FrequencyTrend = FrequencyTrend{
		Weekly:  FitTrend(periodCounts(sum.Weekly)),
		Monthly: FitTrend(periodCounts(sum.Monthly)),
	}
	sum.Progress = Progress(sorted)
	sum.Achievements = Achievements(sorted)
	return sum
}

func addToPeriod(groups *OrderedMap[string, *PeriodGroup], key string, s *model.Session, d float64) {
	g := groups.Upsert(key, func() *PeriodGroup { return &PeriodGroup{Key: key} })
	g.Count++
	g.TotalDuration += d
	g.SessionIDs = append(g.SessionIDs, s.ID)
}

func periodCounts(groups *OrderedMap[string, *PeriodGroup]) []float64 {
	out := make([]float64, 0, groups.Len())
	groups.Range(func(_ string, g *PeriodGroup) bool {
		out = append(out, float64(g.Count))
		return true
	})
	return out
}

// WeekKey returns the ISO week key of d, e.g. "2024-W05".
func WeekKey(d model.Date) string {
	y, w := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

// MonthKey returns the calendar month key of d, e.g. "2024-03".
func MonthKey(d model.Date) string {
	return fmt.Sprintf("%d-%02d", d.Year(), int(d.Month()))
}

// Unit is a calendar period for frequency calculations.
type Unit int

// Frequency units.
const (
	PerWeek Unit = iota
	PerMonth
)

// Frequency returns sessions per unit over the span from the first to the
// last session. Sorted input is expected. With fewer than two sessions the
// frequency is the session count; the span is never less than one unit.
func Frequency(sorted []model.Session, unit Unit) float64 {
	n := len(sorted)
	if n < 2 {
		return float64(n)
	}
	first := sorted[0].TrainingDate
	last := sorted[n-1].TrainingDate

	var periods int
	switch unit {
	case PerMonth:
		periods = (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month())
	default:
		days := model.DaysBetween(first, last)
		periods = int(math.Ceil(float64(days) / daysPerWeek))
	}
	if periods < 1 {
		periods = 1
	}
	return float64(n) / float64(periods)
}
