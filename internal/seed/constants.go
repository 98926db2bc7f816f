package seed

import "github.com/okian/coachmatch/internal/domain/model"

// category is one training category of the synthetic marketplace.
type category struct {
	id       int
	name     string
	keywords string
	goals    []string
	metrics  []metricProfile
}

// metricProfile drives one metric series: a starting value, a per-session
// drift and the noise around it.
type metricProfile struct {
	name  string
	base  float64
	drift float64
	noise float64
}

var categories = []category{
	{
		id: 1, name: "Strength", keywords: "strength training muscle power lifting",
		goals:   []string{"build strength", "gain muscle", "lift heavier"},
		metrics: []metricProfile{{"pushups", 15, 0.6, 2}, {"squats", 20, 0.8, 3}},
	},
	{
		id: 2, name: "Cardio", keywords: "cardio running endurance stamina",
		goals:   []string{"run a 5k", "improve endurance", "boost stamina"},
		metrics: []metricProfile{{"runningDistance", 3, 0.08, 0.4}, {"heartRate", 150, -0.4, 4}},
	},
	{
		id: 3, name: "Yoga", keywords: "yoga flexibility balance mindfulness",
		goals:   []string{"improve flexibility", "reduce stress", "better balance"},
		metrics: []metricProfile{{"flexibility", 20, 0.3, 1.5}},
	},
	{
		id: 4, name: "Weight Loss", keywords: "weight loss fat burning nutrition",
		goals:   []string{"lose weight", "burn fat", "eat healthier"},
		metrics: []metricProfile{{"weight", 88, -0.25, 0.6}},
	},
	{
		id: 5, name: "Core", keywords: "core stability plank posture",
		goals:   []string{"strengthen core", "fix posture"},
		metrics: []metricProfile{{"plankTime", 45, 2, 6}},
	},
}

var firstNames = []string{
	"Ana", "Ben", "Chloe", "Dmitri", "Elif", "Farid", "Grace", "Hiro", "Ines", "Jonas",
	"Kemi", "Luca", "Maya", "Nils", "Olu", "Priya", "Quinn", "Rosa", "Sami", "Tara",
}

var lastNames = []string{
	"Alvarez", "Brandt", "Costa", "Dubois", "Eriksen", "Fischer", "Gupta", "Haddad",
	"Ito", "Jensen", "Kowalski", "Larsen", "Moreau", "Nakamura", "Okafor", "Petrov",
}

var levels = []model.FitnessLevel{model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced}

var difficulties = []model.Difficulty{
	model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced, model.DifficultyAll,
}

var healthNotes = []string{"", "", "", "knee injury last year", "mild asthma", "lower back pain"}

var achievements = []string{
	"Completed first week", "New personal best", "Ten sessions in a row", "Finished a course",
	"Hit monthly goal",
}

const (
	anomalyChance     = 0.04
	anomalyFactor     = 1.8
	achievementChance = 0.08
	ratedChance       = 0.85
	minDuration       = 30
	durationSpread    = 45
	maxDayGap         = 5
)
