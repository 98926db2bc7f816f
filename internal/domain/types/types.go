// Package types contains common types used across the application
package types

import "github.com/okian/coachmatch/internal/domain/model"

// Entry represents a ranked match returned to API clients
type Entry struct {
	Rank        int             `json:"rank"`
	SubjectID   string          `json:"subject_id"`
	SubjectName string          `json:"subject_name,omitempty"`
	Score       int             `json:"score"`
	Breakdown   model.Breakdown `json:"breakdown"`
}

// FromMatches numbers ranked match results starting at 1.
func FromMatches(results []model.MatchResult) []Entry {
	out := make([]Entry, len(results))
	for i, r := range results {
		out[i] = Entry{
			Rank:        i + 1,
			SubjectID:   r.SubjectID,
			SubjectName: r.SubjectName,
			Score:       r.Score,
			Breakdown:   r.Breakdown,
		}
	}
	return out
}
