// Package matching scores and ranks learner/coach compatibility.
//
// Every score is rule-weighted arithmetic over profile fields: category
// overlap, experience fit, goal-to-bio text relevance and reputation. The
// result is deterministic for identical inputs and never errors; missing
// data falls back to neutral values.
package matching

import (
	"math"

	"github.com/okian/coachmatch/internal/domain/model"
)

// Default factor weights; they sum to the 100 point scale.
const (
	defaultCategoryWeight   = 30
	defaultExperienceWeight = 20
	defaultTextWeight       = 25
	defaultRatingWeight     = 25

	maxScore      = 100
	maxRating     = 5.0
	neutralRating = 3.0

	// experienceScale is the raw experience-fit ceiling before weighting.
	experienceScale = 20.0
)

// Weights are the maximum points each factor can contribute.
type Weights struct {
	Category   float64 `json:"category" koanf:"category"`
	Experience float64 `json:"experience" koanf:"experience"`
	Text       float64 `json:"text" koanf:"text"`
	Rating     float64 `json:"rating" koanf:"rating"`
}

// DefaultWeights returns the standard 30/20/25/25 split.
func DefaultWeights() Weights {
	return Weights{
		Category:   defaultCategoryWeight,
		Experience: defaultExperienceWeight,
		Text:       defaultTextWeight,
		Rating:     defaultRatingWeight,
	}
}

// Counterpart is the coach-side view a learner is scored against.
type Counterpart struct {
	ID                string
	Name              string
	Bio               string
	YearsOfExperience int
	Rating            *float64
	CategoryIDs       []int
}

// CoachCounterpart builds the scoring view of a coach.
func CoachCounterpart(c *model.CoachProfile) Counterpart {
	return Counterpart{
		ID:                c.ID,
		Name:              c.FullName,
		Bio:               c.Bio,
		YearsOfExperience: c.YearsOfExperience,
		Rating:            c.Rating,
		CategoryIDs:       c.CategoryIDs(),
	}
}

// Scorer computes compatibility scores.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with default weights unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the active factor weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Score rates how well a learner fits a counterpart on a 0..100 scale.
func (s *Scorer) Score(learner *model.LearnerProfile, c *Counterpart) model.MatchResult {
	b := model.Breakdown{
		Category:   s.categoryScore(learner.PreferredCategories, c.CategoryIDs),
		Experience: s.experienceScore(learner.FitnessLevel, c.YearsOfExperience),
		Text:       TextRelevance(learner.TrainingGoals, c.Bio) * s.weights.Text,
		Rating:     s.ratingScore(c.Rating),
	}
	return model.MatchResult{
		SubjectID:   c.ID,
		SubjectName: c.Name,
		Score:       clampScore(b.Category + b.Experience + b.Text + b.Rating),
		Breakdown:   b,
	}
}

func (s *Scorer) categoryScore(preferred, offered []int) float64 {
	if len(preferred) == 0 {
		return s.weights.Category / 2
	}
	have := make(map[int]struct{}, len(offered))
	for _, id := range offered {
		have[id] = struct{}{}
	}
	prefSet := make(map[int]struct{}, len(preferred))
	hits := 0
	for _, id := range preferred {
		if _, dup := prefSet[id]; dup {
			continue
		}
		prefSet[id] = struct{}{}
		if _, ok := have[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(prefSet)) * s.weights.Category
}

// experienceScore rewards coaches whose seniority suits the learner: any
// experience helps beginners, while intermediate and advanced learners only
// gain from years beyond 2 and 5 respectively.
func (s *Scorer) experienceScore(level model.FitnessLevel, years int) float64 {
	y := float64(max(years, 0))
	var raw float64
	switch level.Normalize() {
	case model.LevelBeginner:
		raw = math.Min(y, 5) * 4
	case model.LevelIntermediate:
		raw = math.Min(math.Max(y-2, 0), 10) * 2
	case model.LevelAdvanced, model.LevelExpert:
		raw = math.Min(math.Max(y-5, 0), 10) * 2
	default:
		raw = experienceScale / 2
	}
	raw = math.Min(raw, experienceScale)
	return raw / experienceScale * s.weights.Experience
}

// ratingScore treats a missing or non-positive rating as unrated and gives
// it the neutral value.
func (s *Scorer) ratingScore(rating *float64) float64 {
	r := neutralRating
	if rating != nil && !math.IsNaN(*rating) && *rating > 0 {
		r = math.Min(*rating, maxRating)
	}
	return r / maxRating * s.weights.Rating
}

// clampScore rounds a raw sum onto the 0..100 integer scale.
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	switch {
	case r < 0:
		return 0
	case r > maxScore:
		return maxScore
	}
	return int(r)
}
