// Package model contains domain models passed between layers.
package model

import "strings"

// FitnessLevel is a learner's self-reported training level.
type FitnessLevel string

// Known fitness levels. Other values are tolerated and treated neutrally.
const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
	LevelExpert       FitnessLevel = "expert"
)

// Normalize lower-cases and trims the level so lookups are forgiving.
func (l FitnessLevel) Normalize() FitnessLevel {
	return FitnessLevel(strings.ToLower(strings.TrimSpace(string(l))))
}

// Difficulty is the level a course is pitched at.
type Difficulty string

// Known course difficulties.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyAll          Difficulty = "all"
)

// Normalize lower-cases and trims the difficulty.
func (d Difficulty) Normalize() Difficulty {
	return Difficulty(strings.ToLower(strings.TrimSpace(string(d))))
}

// LearnerProfile describes a learner looking for coaching.
type LearnerProfile struct {
	ID                  string       `json:"id" validate:"required"`
	FullName            string       `json:"full_name"`
	FitnessLevel        FitnessLevel `json:"fitness_level"`
	TrainingGoals       string       `json:"training_goals"`
	PreferredCategories []int        `json:"preferred_categories"`
	HealthNotes         string       `json:"health_notes"`
}

// PrefersCategory reports whether categoryID is among the learner's preferences.
func (p *LearnerProfile) PrefersCategory(categoryID int) bool {
	for _, c := range p.PreferredCategories {
		if c == categoryID {
			return true
		}
	}
	return false
}

// Specialty is one training category a coach teaches.
type Specialty struct {
	CategoryID      int    `json:"category_id"`
	Detail          string `json:"detail"`
	ExperienceYears int    `json:"experience_years"`
}

// CoachProfile describes a coach offering sessions.
type CoachProfile struct {
	ID                string      `json:"id" validate:"required"`
	FullName          string      `json:"full_name"`
	Bio               string      `json:"bio"`
	YearsOfExperience int         `json:"years_of_experience" validate:"min=0"`
	Rating            *float64    `json:"rating,omitempty"`
	HourlyRate        float64     `json:"hourly_rate"`
	Specialties       []Specialty `json:"specialties"`
}

// CategoryIDs returns the distinct specialty categories in first-seen order.
func (c *CoachProfile) CategoryIDs() []int {
	out := make([]int, 0, len(c.Specialties))
	seen := make(map[int]struct{}, len(c.Specialties))
	for _, s := range c.Specialties {
		if _, ok := seen[s.CategoryID]; ok {
			continue
		}
		seen[s.CategoryID] = struct{}{}
		out = append(out, s.CategoryID)
	}
	return out
}

// Course is a bookable offering run by a coach.
type Course struct {
	ID              string     `json:"id" validate:"required"`
	CoachID         string     `json:"coach_id"`
	CategoryID      int        `json:"category_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DifficultyLevel Difficulty `json:"difficulty_level"`
}

// Text is the title and description joined for relevance scoring.
func (c *Course) Text() string {
	if c.Description == "" {
		return c.Title
	}
	return c.Title + " " + c.Description
}
