package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/coachmatch/internal/domain/model"
)

// LevelProfile holds the training prescription for a fitness level.
type LevelProfile struct {
	Label           string
	SessionsPerWeek int
	Difficulties    []model.Difficulty
	DurationMinutes int
	Intensity       string
}

// Allows reports whether courses of difficulty d suit this level.
func (p LevelProfile) Allows(d model.Difficulty) bool {
	d = d.Normalize()
	for _, ok := range p.Difficulties {
		if ok == d {
			return true
		}
	}
	return false
}

// ProfileFor returns the prescription for a level. Any other level,
// expert included, gets a gentle beginner-like plan.
func ProfileFor(level model.FitnessLevel) LevelProfile {
	switch level.Normalize() {
	case model.LevelBeginner:
		return LevelProfile{
			Label:           "beginner",
			SessionsPerWeek: 2,
			Difficulties:    []model.Difficulty{model.DifficultyBeginner, model.DifficultyAll},
			DurationMinutes: 45,
			Intensity:       "low",
		}
	case model.LevelIntermediate:
		return LevelProfile{
			Label:           "intermediate",
			SessionsPerWeek: 3,
			Difficulties:    []model.Difficulty{model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAll},
			DurationMinutes: 60,
			Intensity:       "medium",
		}
	case model.LevelAdvanced:
		return LevelProfile{
			Label:           "advanced",
			SessionsPerWeek: 4,
			Difficulties:    []model.Difficulty{model.DifficultyIntermediate, model.DifficultyAdvanced, model.DifficultyAll},
			DurationMinutes: 75,
			Intensity:       "high",
		}
	}
	return LevelProfile{
		Label:           "new",
		SessionsPerWeek: 2,
		Difficulties:    []model.Difficulty{model.DifficultyAll, model.DifficultyBeginner},
		DurationMinutes: 45,
		Intensity:       "low",
	}
}

// trainingDays spreads n weekly sessions so rest days fall between them.
func trainingDays(n int) []string {
	switch n {
	case 1:
		return []string{"Wednesday"}
	case 2:
		return []string{"Monday", "Thursday"}
	case 3:
		return []string{"Monday", "Wednesday", "Friday"}
	case 4:
		return []string{"Monday", "Tuesday", "Thursday", "Saturday"}
	case 5:
		return []string{"Monday", "Tuesday", "Wednesday", "Friday", "Saturday"}
	}
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if n > len(days) {
		n = len(days)
	}
	if n < 0 {
		n = 0
	}
	return days[:n]
}

var metricKeywords = map[string][]string{ //nolint:gochecknoglobals // read-only lookup table
	"pushups":         {"push-up", "pushup", "chest", "triceps", "upper body", "strength"},
	"weight":          {"weight", "fat loss", "toning", "cardio", "metabolic"},
	"runningDistance": {"running", "run", "cardio", "endurance", "legs"},
	"squats":          {"squat", "legs", "glutes", "strength", "lower body"},
	"plankTime":       {"plank", "core", "abs", "stability"},
	"flexibility":     {"flexibility", "stretch", "yoga", "mobility"},
	"heartRate":       {"heart rate", "cardio", "endurance", "recovery", "aerobic"},
}

// MetricKeywords returns the course keywords that train a metric. Unknown
// metrics match on their own name.
func MetricKeywords(metric string) []string {
	if kw, ok := metricKeywords[metric]; ok {
		return kw
	}
	return []string{strings.ToLower(metric)}
}

// metricRelevance counts keyword hits of the stalled metrics in a course.
func metricRelevance(c *model.Course, metrics []string) int {
	text := strings.ToLower(c.Text())
	hits := 0
	for _, m := range metrics {
		for _, kw := range MetricKeywords(m) {
			if strings.Contains(text, kw) {
				hits++
			}
		}
	}
	return hits
}

// displayName turns a camelCase metric key into words: "plankTime" becomes
// "plank time".
func displayName(metric string) string {
	var b strings.Builder
	for i, r := range metric {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// capitalize upper-cases the first rune.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
