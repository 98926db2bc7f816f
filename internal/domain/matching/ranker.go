package matching

import (
	"sort"

	"github.com/okian/coachmatch/internal/domain/model"
)

// Default ranking limits.
const (
	defaultRankLimit   = 5
	defaultCourseLimit = 10
	defaultMaxLimit    = 100

	// Difficulty bonus points for course audiences.
	exactLevelBonus   = 20
	stretchLevelBonus = 10
)

// Ranker orders candidates by compatibility score.
type Ranker struct {
	scorer       *Scorer
	defaultLimit int
	courseLimit  int
	maxLimit     int
}

// NewRanker creates a ranker using a default Scorer unless overridden.
func NewRanker(opts ...RankerOption) *Ranker {
	r := &Ranker{
		scorer:       NewScorer(),
		defaultLimit: defaultRankLimit,
		courseLimit:  defaultCourseLimit,
		maxLimit:     defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scorer returns the scorer backing this ranker.
func (r *Ranker) Scorer() *Scorer { return r.scorer }

// BestCoachesForLearner ranks coaches for a learner, best first.
func (r *Ranker) BestCoachesForLearner(learner *model.LearnerProfile, coaches []model.CoachProfile, limit int) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(coaches))
	for i := range coaches {
		coach := &coaches[i]
		cp := CoachCounterpart(coach)
		res := r.scorer.Score(learner, &cp)
		res.SupportingFields = map[string]any{
			"years_of_experience": coach.YearsOfExperience,
			"hourly_rate":         coach.HourlyRate,
			"specialties":         cp.CategoryIDs,
		}
		if coach.Rating != nil {
			res.SupportingFields["rating"] = *coach.Rating
		}
		results = append(results, res)
	}
	return r.top(results, r.resolveLimit(limit, r.defaultLimit))
}

// BestLearnersForCoach ranks learners for a coach, best first.
func (r *Ranker) BestLearnersForCoach(coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult {
	cp := CoachCounterpart(coach)
	results := make([]model.MatchResult, 0, len(learners))
	for i := range learners {
		results = append(results, r.learnerResult(&learners[i], &cp, 0))
	}
	return r.top(results, r.resolveLimit(limit, r.defaultLimit))
}

// BestLearnersForCourse ranks learners who prefer the course's category.
// The base score is computed against the course's coach and topped up by a
// difficulty bonus.
func (r *Ranker) BestLearnersForCourse(course *model.Course, coach *model.CoachProfile, learners []model.LearnerProfile, limit int) []model.MatchResult {
	cp := CoachCounterpart(coach)
	results := make([]model.MatchResult, 0, len(learners))
	for i := range learners {
		learner := &learners[i]
		if !learner.PrefersCategory(course.CategoryID) {
			continue
		}
		bonus := DifficultyBonus(course.DifficultyLevel, learner.FitnessLevel)
		res := r.learnerResult(learner, &cp, bonus)
		res.SupportingFields["course_id"] = course.ID
		res.SupportingFields["difficulty_level"] = course.DifficultyLevel
		results = append(results, res)
	}
	return r.top(results, r.resolveLimit(limit, r.courseLimit))
}

// DifficultyBonus returns the extra points a course earns for a learner's
// level: full bonus for an exact or open course, half when the course sits
// one step below the learner.
func DifficultyBonus(d model.Difficulty, level model.FitnessLevel) float64 {
	d = d.Normalize()
	level = level.Normalize()
	switch {
	case d == model.DifficultyAll, string(d) == string(level):
		return exactLevelBonus
	case d == model.DifficultyIntermediate && level == model.LevelAdvanced,
		d == model.DifficultyBeginner && level == model.LevelIntermediate:
		return stretchLevelBonus
	}
	return 0
}

func (r *Ranker) learnerResult(learner *model.LearnerProfile, cp *Counterpart, bonus float64) model.MatchResult {
	res := r.scorer.Score(learner, cp)
	if bonus > 0 {
		res.Breakdown.Bonus = bonus
		res.Score = clampScore(float64(res.Score) + bonus)
	}
	res.SubjectID = learner.ID
	res.SubjectName = learner.FullName
	res.SupportingFields = map[string]any{
		"fitness_level":  learner.FitnessLevel,
		"training_goals": learner.TrainingGoals,
	}
	return res
}

func (r *Ranker) resolveLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if r.maxLimit > 0 && limit > r.maxLimit {
		limit = r.maxLimit
	}
	return limit
}

// top stable-sorts by score descending and truncates. Ties keep input order.
func (r *Ranker) top(results []model.MatchResult, limit int) []model.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
