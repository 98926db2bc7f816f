package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Date is a calendar date. It marshals as YYYY-MM-DD and also accepts RFC3339.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// MustDate is ParseDate that panics; meant for fixtures and tests.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string { return d.Format(DateLayout) }

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns whole days from a to b, negative when b is before a.
func DaysBetween(a, b Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

// Session is one completed training session of a learner.
//
// Metrics holds the decoded metric readings. MetricsMalformed marks a
// session whose stored payload could not be decoded; such a session still
// counts toward duration and category totals but contributes no metrics.
type Session struct {
	ID               string             `json:"id"`
	LearnerID        string             `json:"learner_id"`
	CourseID         string             `json:"course_id"`
	CoachID          string             `json:"coach_id"`
	CategoryID       int                `json:"category_id"`
	CategoryName     string             `json:"category_name,omitempty"`
	TrainingDate     Date               `json:"training_date"`
	DurationMinutes  float64            `json:"duration_minutes" validate:"min=0"`
	Metrics          map[string]float64 `json:"metrics,omitempty"`
	MetricsMalformed bool               `json:"metrics_malformed,omitempty"`
	Achievements     []string           `json:"achievements,omitempty"`
}
