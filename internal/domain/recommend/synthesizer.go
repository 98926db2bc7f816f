// Package recommend turns a learner's profile and training history into
// coaching advice: a narrative summary, next steps, course suggestions, a
// weekly plan and long-term goals.
//
// The synthesizer never fails. Missing or thin data produces onboarding
// advice instead of an error.
package recommend

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/coachmatch/internal/domain/analytics"
	"github.com/okian/coachmatch/internal/domain/model"
)

const (
	defaultSuggestionLimit = 5
	minNextSteps           = 3
	minPreferredCourses    = 3

	// Days since the last session.
	goodCadenceDays = 7
	resumeSoonDays  = 14

	// Plateau detection thresholds, in readings.
	plateauSamples     = 3
	plateauAreaSamples = 5

	minWeeklySessions  = 2
	minSessionMinutes  = 45
	weightCautionPct   = 10
	goalHorizonSession = 12
)

// ImprovementArea is one aspect of training worth attention.
type ImprovementArea struct {
	Area        string `json:"area"`
	Current     string `json:"current"`
	Recommended string `json:"recommended"`
	Reason      string `json:"reason"`
}

// PlanSlot is one session of the weekly plan. Course is nil for a
// self-guided slot, which carries an Activity instead.
type PlanSlot struct {
	DayOfWeek       string        `json:"day_of_week"`
	Course          *RankedCourse `json:"course,omitempty"`
	Activity        string        `json:"activity,omitempty"`
	DurationMinutes int           `json:"duration_minutes"`
	Intensity       string        `json:"intensity"`
}

// Recommendations is the full advice for one learner.
type Recommendations struct {
	LearnerID        string                `json:"learner_id,omitempty"`
	Summary          string                `json:"summary"`
	NextSteps        []string              `json:"next_steps"`
	SuggestedCourses []RankedCourse        `json:"suggested_courses"`
	ImprovementAreas []ImprovementArea     `json:"improvement_areas"`
	WeeklyPlan       []PlanSlot            `json:"weekly_plan"`
	LongTermGoals    []string              `json:"long_term_goals"`
	Anomalies        []model.AnomalyRecord `json:"anomalies"`
	HasHistory       bool                  `json:"has_history"`
	Analysis         *analytics.Summary    `json:"analysis,omitempty"`
}

// Synthesizer builds Recommendations.
type Synthesizer struct {
	analyzer        *analytics.Analyzer
	now             func() time.Time
	suggestionLimit int
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		analyzer:        analytics.NewAnalyzer(),
		now:             time.Now,
		suggestionLimit: defaultSuggestionLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var onboardingSteps = []string{ //nolint:gochecknoglobals // fixed copy
	"Complete your profile with your health notes and training goals",
	"Book your first course to start training",
	"Talk to your coach about your needs and any health concerns",
}

var genericSteps = []string{ //nolint:gochecknoglobals // fixed copy
	"Log how each session felt and went so you can track progress",
	"Make sure you rest and recover enough between sessions",
	"Eat and drink well so you have energy to train",
	"Check in with your coach regularly to adjust the plan",
	"Set clear short-term goals to keep yourself motivated",
}

var selfGuidedActivities = []string{ //nolint:gochecknoglobals // fixed copy
	"Self-guided full-body workout",
	"Self-guided cardio session",
	"Self-guided mobility and stretching",
}

// Recommend builds advice for learner from sessions and the courses on
// offer. A learner without sessions gets onboarding advice based on the
// profile alone. Inputs are not modified.
func (s *Synthesizer) Recommend(learner *model.LearnerProfile, sessions []model.Session, courses []model.Course) Recommendations {
	if learner == nil {
		learner = &model.LearnerProfile{}
	}
	var rec Recommendations
	if len(sessions) == 0 {
		rec = s.basic(learner, courses)
	} else {
		rec = s.fromHistory(learner, sessions, courses)
	}
	rec.LearnerID = learner.ID
	return rec
}

func (s *Synthesizer) basic(learner *model.LearnerProfile, courses []model.Course) Recommendations {
	profile := ProfileFor(learner.FitnessLevel)
	suitable := filterCourses(courses, func(c *model.Course) bool {
		if !profile.Allows(c.DifficultyLevel) {
			return false
		}
		return len(learner.PreferredCategories) == 0 || learner.PrefersCategory(c.CategoryID)
	})
	ranked := RankByGoals(suitable, learner.TrainingGoals)

	summary := fmt.Sprintf(
		"As a %s learner we suggest %d sessions a week of about %d minutes each. "+
			"Focus first on building a base and learning correct form. "+
			"There is not enough training data yet to analyse your progress.",
		profile.Label, profile.SessionsPerWeek, profile.DurationMinutes)

	steps := make([]string, len(onboardingSteps))
	copy(steps, onboardingSteps)

	return Recommendations{
		Summary:          summary,
		NextSteps:        steps,
		SuggestedCourses: head(ranked, s.suggestionLimit),
		ImprovementAreas: []ImprovementArea{},
		WeeklyPlan:       weeklyPlan(profile, ranked),
		LongTermGoals:    basicGoals(learner.FitnessLevel, learner.TrainingGoals),
		Anomalies:        []model.AnomalyRecord{},
	}
}

func (s *Synthesizer) fromHistory(learner *model.LearnerProfile, sessions []model.Session, courses []model.Course) Recommendations {
	profile := ProfileFor(learner.FitnessLevel)
	sum := s.analyzer.Summarize(sessions)
	plateaued := plateauedMetrics(sum.Progress, plateauSamples)

	daysSince := 0
	if sum.LastSession != nil {
		daysSince = model.DaysBetween(sum.LastSession.TrainingDate, model.NewDate(s.now()))
		if daysSince < 0 {
			daysSince = 0
		}
	}

	suggested := s.suggestCourses(learner, profile, sum.AttendedCourseIDs, plateaued, courses)
	goals := basicGoals(learner.FitnessLevel, learner.TrainingGoals)
	goals = append(goals, metricGoals(sum.Progress)...)

	return Recommendations{
		Summary:          narrative(profile, &sum, daysSince),
		NextSteps:        nextSteps(learner, profile, &sum, plateaued, daysSince, suggested),
		SuggestedCourses: suggested,
		ImprovementAreas: improvementAreas(&sum),
		WeeklyPlan:       weeklyPlan(profile, suggested),
		LongTermGoals:    goals,
		Anomalies:        s.analyzer.DetectAnomalies(sessions),
		HasHistory:       true,
		Analysis:         &sum,
	}
}

func (s *Synthesizer) suggestCourses(
	learner *model.LearnerProfile,
	profile LevelProfile,
	attendedIDs []string,
	plateaued []string,
	courses []model.Course,
) []RankedCourse {
	attended := make(map[string]struct{}, len(attendedIDs))
	for _, id := range attendedIDs {
		attended[id] = struct{}{}
	}
	suitable := filterCourses(courses, func(c *model.Course) bool {
		if _, ok := attended[c.ID]; ok {
			return false
		}
		return profile.Allows(c.DifficultyLevel)
	})
	if len(learner.PreferredCategories) > 0 {
		preferred := filterCourses(suitable, func(c *model.Course) bool {
			return learner.PrefersCategory(c.CategoryID)
		})
		if len(preferred) >= minPreferredCourses {
			suitable = preferred
		}
	}
	ranked := RankByGoals(suitable, learner.TrainingGoals)
	byMetricRelevance(ranked, plateaued)
	return head(ranked, s.suggestionLimit)
}

// plateauedMetrics lists metrics with a stable trend over more than min
// readings, in progress order.
func plateauedMetrics(progress *analytics.OrderedMap[string, *analytics.MetricProgress], minReadings int) []string {
	out := []string{}
	if progress == nil {
		return out
	}
	progress.Range(func(name string, p *analytics.MetricProgress) bool {
		if p.Trend.Direction == model.TrendStable && len(p.Values) > minReadings {
			out = append(out, name)
		}
		return true
	})
	return out
}

func narrative(profile LevelProfile, sum *analytics.Summary, daysSince int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have completed %d %s totalling %d hours, averaging %d minutes each.",
		sum.TotalSessions, plural(sum.TotalSessions, "session", "sessions"),
		int(math.Round(sum.TotalDuration/60)), int(math.Round(sum.AverageDuration)))

	if sum.FrequencyPerWeek > 0 {
		fmt.Fprintf(&b, " You train %.1f times a week on average.", sum.FrequencyPerWeek)
	}

	switch sum.DurationTrend.Direction {
	case model.TrendIncreasing:
		b.WriteString(" Your session duration shows an upward trend, which is a great sign.")
	case model.TrendDecreasing:
		b.WriteString(" Your session duration shows a downward trend and the plan may need adjusting.")
	default:
		b.WriteString(" Your session duration has been stable.")
	}

	if sum.LastSession != nil {
		switch {
		case daysSince <= goodCadenceDays:
			fmt.Fprintf(&b, " Your last session was %d %s ago, a good cadence.", daysSince, plural(daysSince, "day", "days"))
		case daysSince <= resumeSoonDays:
			fmt.Fprintf(&b, " It has been %d days since your last session, so try to resume soon.", daysSince)
		default:
			fmt.Fprintf(&b, " It has been %d days since your last session, so your plan needs a reset.", daysSince)
		}
	}

	switch model.FitnessLevel(profile.Label) {
	case model.LevelBeginner:
		b.WriteString(" As a beginner, aim for 2 to 3 sessions a week and focus on correct form and basic skills.")
	case model.LevelIntermediate:
		b.WriteString(" At intermediate level, aim for 3 to 4 sessions a week and start raising intensity and complexity.")
	case model.LevelAdvanced:
		b.WriteString(" At advanced level, aim for 4 to 5 sessions a week and try more challenging methods.")
	}
	return b.String()
}

func nextSteps(
	learner *model.LearnerProfile,
	profile LevelProfile,
	sum *analytics.Summary,
	plateaued []string,
	daysSince int,
	suggested []RankedCourse,
) []string {
	steps := []string{}
	if sum.FrequencyPerWeek < float64(profile.SessionsPerWeek) {
		steps = append(steps, fmt.Sprintf("Increase training to %d sessions a week for better results", profile.SessionsPerWeek))
	}
	if sum.Categories.Len() <= 1 {
		steps = append(steps, "Try more kinds of training to build all-round fitness and avoid monotony")
	}
	if len(plateaued) > 0 {
		names := make([]string, len(plateaued))
		for i, m := range plateaued {
			names[i] = displayName(m)
		}
		steps = append(steps, fmt.Sprintf("Change your approach to %s to break through the plateau", strings.Join(names, ", ")))
	}
	if sum.LastSession != nil && daysSince > resumeSoonDays {
		steps = append(steps, "Restart with a course of moderate intensity to avoid injury after the long break")
	}
	if len(suggested) > 0 {
		steps = append(steps, fmt.Sprintf("Try the %q course, which fits your goals and current level", suggested[0].Title))
	}

	start := rotation(learner.ID, len(genericSteps))
	for i := 0; len(steps) < minNextSteps && i < len(genericSteps); i++ {
		steps = append(steps, genericSteps[(start+i)%len(genericSteps)])
	}
	return steps
}

// rotation picks a stable starting offset for the learner.
func rotation(id string, n int) int {
	if n == 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(n)) //nolint:gosec // n is small
}

func improvementAreas(sum *analytics.Summary) []ImprovementArea {
	areas := []ImprovementArea{}
	if sum.FrequencyPerWeek < minWeeklySessions {
		areas = append(areas, ImprovementArea{
			Area:        "Training frequency",
			Current:     fmt.Sprintf("%.1f sessions a week", sum.FrequencyPerWeek),
			Recommended: "At least 2 to 3 sessions a week",
			Reason:      "Training more often improves results and adaptation",
		})
	}
	if sum.AverageDuration < minSessionMinutes {
		areas = append(areas, ImprovementArea{
			Area:        "Session duration",
			Current:     fmt.Sprintf("%d minutes on average", int(math.Round(sum.AverageDuration))),
			Recommended: "45 to 60 minutes per session",
			Reason:      "Longer sessions give the body enough training stimulus",
		})
	}
	if n := sum.Categories.Len(); n <= 1 {
		areas = append(areas, ImprovementArea{
			Area:        "Training variety",
			Current:     fmt.Sprintf("%d %s", n, plural(n, "training type", "training types")),
			Recommended: "At least 2 to 3 different kinds of training",
			Reason:      "Varied training develops all-round fitness and avoids plateaus",
		})
	}

	if sum.Progress == nil {
		return areas
	}
	sum.Progress.Range(func(name string, p *analytics.MetricProgress) bool {
		label := displayName(name)
		switch {
		case p.Trend.Direction == model.TrendDecreasing && len(p.Values) > plateauSamples:
			if name != "weight" {
				areas = append(areas, ImprovementArea{
					Area:        capitalize(label),
					Current:     "declining",
					Recommended: "steady improvement",
					Reason:      fmt.Sprintf("A decline in %s can mean the training approach needs adjusting or recovery is short", label),
				})
				return true
			}
			if pct := math.Abs(p.ChangePercent); pct > weightCautionPct {
				areas = append(areas, ImprovementArea{
					Area:        "Weight management",
					Current:     fmt.Sprintf("down %.1f%%", pct),
					Recommended: "A healthy rate of change is 0.5 to 1 kg per week",
					Reason:      "Losing weight too fast can cost muscle and slow the metabolism",
				})
			}
		case p.Trend.Direction == model.TrendStable && len(p.Values) > plateauAreaSamples:
			areas = append(areas, ImprovementArea{
				Area:        capitalize(label),
				Current:     "plateaued",
				Recommended: "continued progress",
				Reason:      fmt.Sprintf("A plateau in %s can mean the stimulus needs changing or intensity raising", label),
			})
		}
		return true
	})
	return areas
}

// weeklyPlan assigns ranked courses round-robin to the level's training
// days. Without courses every slot is self-guided.
func weeklyPlan(profile LevelProfile, ranked []RankedCourse) []PlanSlot {
	days := trainingDays(profile.SessionsPerWeek)
	plan := make([]PlanSlot, 0, len(days))
	for i, day := range days {
		slot := PlanSlot{
			DayOfWeek:       day,
			DurationMinutes: profile.DurationMinutes,
			Intensity:       profile.Intensity,
		}
		if len(ranked) > 0 {
			c := ranked[i%len(ranked)]
			slot.Course = &c
		} else {
			slot.Activity = selfGuidedActivities[i%len(selfGuidedActivities)]
		}
		plan = append(plan, slot)
	}
	return plan
}

func basicGoals(level model.FitnessLevel, trainingGoals string) []string {
	var goals []string
	switch level.Normalize() {
	case model.LevelBeginner:
		goals = []string{
			"Build a steady habit of 2 sessions a week over the next three months",
			"Master correct form on the fundamental movements",
		}
	case model.LevelIntermediate:
		goals = []string{
			"Raise training intensity gradually while keeping 3 sessions a week",
			"Add a second training style to round out your fitness",
		}
	case model.LevelAdvanced:
		goals = []string{
			"Set a performance target for the next 12 weeks and structure training toward it",
			"Refine technique in your main discipline",
		}
	default:
		goals = []string{
			"Complete your first month of regular training",
			"Find a training style you enjoy and can keep up",
		}
	}

	text := strings.ToLower(trainingGoals)
	if containsAny(text, "weight", "fat", "lose") {
		goals = append(goals, "Lose weight gradually, about 0.5 to 1 kg a week")
	}
	if containsAny(text, "strength", "strong", "muscle") {
		goals = append(goals, "Increase strength on your main exercises by 10% over 12 weeks")
	}
	if containsAny(text, "endurance", "cardio", "stamina") {
		goals = append(goals, "Build up to 30 minutes of continuous cardio")
	}
	if containsAny(text, "flexib", "mobility", "yoga", "stretch") {
		goals = append(goals, "Improve flexibility with at least two mobility sessions a week")
	}
	return goals
}

// metricGoals anchors a goal on each metric's latest value, projected
// along its fitted trend.
func metricGoals(progress *analytics.OrderedMap[string, *analytics.MetricProgress]) []string {
	goals := []string{}
	if progress == nil {
		return goals
	}
	progress.Range(func(name string, p *analytics.MetricProgress) bool {
		label := displayName(name)
		projected := p.LastValue + p.Trend.Slope*goalHorizonSession
		if name == "weight" {
			goals = append(goals, weightGoal(p, projected))
			return true
		}
		switch p.Trend.Direction {
		case model.TrendIncreasing:
			goals = append(goals, fmt.Sprintf("Raise %s from %s to %s over the next %d sessions",
				label, formatValue(p.LastValue), formatValue(projected), goalHorizonSession))
		case model.TrendDecreasing:
			goals = append(goals, fmt.Sprintf("Bring %s back up to %s",
				label, formatValue(math.Max(p.FirstValue, p.LastValue))))
		default:
			goals = append(goals, fmt.Sprintf("Push %s past %s by changing the training stimulus",
				label, formatValue(p.LastValue*1.1)))
		}
		return true
	})
	return goals
}

// weightGoal keeps weight targets within a gradual change of the latest
// reading.
func weightGoal(p *analytics.MetricProgress, projected float64) string {
	if p.Trend.Direction != model.TrendDecreasing {
		return fmt.Sprintf("Keep weight steady around %s while building fitness", formatValue(p.LastValue))
	}
	floor := p.LastValue * (1 - weightCautionPct/100.0)
	return fmt.Sprintf("Reduce weight gradually toward %s over the next %d sessions",
		formatValue(math.Max(projected, floor)), goalHorizonSession)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
