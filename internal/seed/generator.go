package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
)

// Dataset is a generated catalog.
type Dataset struct {
	Learners []model.LearnerProfile
	Coaches  []model.CoachProfile
	Courses  []model.Course
	Sessions []model.Session
}

// Generate builds the catalog described by cfg. The same config always
// produces the same dataset; each learner's history comes from its own
// random stream so generation can run on several workers.
func Generate(ctx context.Context, cfg *Config) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("seed")

	rng := rand.New(rand.NewPCG(cfg.Seed, 0))
	ds := &Dataset{
		Coaches:  generateCoaches(rng, cfg.Coaches),
		Learners: generateLearners(rng, cfg.Learners),
	}
	ds.Courses = generateCourses(rng, ds.Coaches, cfg.CoursesPerCoach)

	histories := make([][]model.Session, len(ds.Learners))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range ds.Learners {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stream := rand.New(rand.NewPCG(cfg.Seed, uint64(i)+1))
			histories[i] = generateHistory(stream, &ds.Learners[i], ds.Courses, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate sessions: %w", err)
	}
	for _, h := range histories {
		ds.Sessions = append(ds.Sessions, h...)
	}

	log.Info(ctx, "generated catalog",
		logger.Int("learners", len(ds.Learners)),
		logger.Int("coaches", len(ds.Coaches)),
		logger.Int("courses", len(ds.Courses)),
		logger.Int("sessions", len(ds.Sessions)),
	)
	return ds, nil
}

func generateCoaches(rng *rand.Rand, n int) []model.CoachProfile {
	out := make([]model.CoachProfile, n)
	for i := range out {
		primary := categories[i%len(categories)]
		specialties := []model.Specialty{{
			CategoryID:      primary.id,
			Detail:          primary.name + " coaching",
			ExperienceYears: 1 + rng.IntN(12),
		}}
		bio := []string{"Certified", strings.ToLower(primary.name), "coach focused on", primary.keywords}
		if rng.Float64() < 0.5 {
			second := categories[(i+1+rng.IntN(len(categories)-1))%len(categories)]
			specialties = append(specialties, model.Specialty{
				CategoryID:      second.id,
				Detail:          second.name,
				ExperienceYears: 1 + rng.IntN(6),
			})
			bio = append(bio, "and", second.keywords)
		}

		c := model.CoachProfile{
			ID:                fmt.Sprintf("coach-%03d", i+1),
			FullName:          fullName(rng),
			Bio:               strings.Join(bio, " "),
			YearsOfExperience: specialties[0].ExperienceYears + rng.IntN(4),
			HourlyRate:        round(30+rng.Float64()*70, 2),
			Specialties:       specialties,
		}
		if rng.Float64() < ratedChance {
			r := round(3+rng.Float64()*2, 1)
			c.Rating = &r
		}
		out[i] = c
	}
	return out
}

func generateLearners(rng *rand.Rand, n int) []model.LearnerProfile {
	out := make([]model.LearnerProfile, n)
	for i := range out {
		first := categories[rng.IntN(len(categories))]
		prefs := []int{first.id}
		goals := []string{pick(rng, first.goals)}
		if rng.Float64() < 0.4 {
			second := categories[rng.IntN(len(categories))]
			if second.id != first.id {
				prefs = append(prefs, second.id)
				goals = append(goals, pick(rng, second.goals))
			}
		}
		out[i] = model.LearnerProfile{
			ID:                  fmt.Sprintf("learner-%04d", i+1),
			FullName:            fullName(rng),
			FitnessLevel:        pick(rng, levels),
			TrainingGoals:       strings.Join(goals, " and "),
			PreferredCategories: prefs,
			HealthNotes:         pick(rng, healthNotes),
		}
	}
	return out
}

func generateCourses(rng *rand.Rand, coaches []model.CoachProfile, perCoach int) []model.Course {
	out := make([]model.Course, 0, len(coaches)*perCoach)
	for _, c := range coaches {
		for j := 0; j < perCoach; j++ {
			spec := c.Specialties[j%len(c.Specialties)]
			cat := categoryByID(spec.CategoryID)
			level := pick(rng, difficulties)
			out = append(out, model.Course{
				ID:              fmt.Sprintf("%s-course-%d", c.ID, j+1),
				CoachID:         c.ID,
				CategoryID:      cat.id,
				Title:           fmt.Sprintf("%s %s", titleCase(string(level)), cat.name),
				Description:     fmt.Sprintf("A %s programme covering %s", level, cat.keywords),
				DifficultyLevel: level,
			})
		}
	}
	return out
}

// generateHistory builds a dated session series for one learner. Metrics
// drift steadily with noise and the odd outlier; courses are drawn from the
// learner's preferred categories when any exist.
func generateHistory(rng *rand.Rand, l *model.LearnerProfile, courses []model.Course, cfg *Config) []model.Session {
	if cfg.SessionsPerLearner == 0 || len(courses) == 0 {
		return nil
	}
	pool := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if l.PrefersCategory(c.CategoryID) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = courses
	}

	out := make([]model.Session, 0, cfg.SessionsPerLearner)
	date := cfg.Start.Time
	for i := 0; i < cfg.SessionsPerLearner; i++ {
		course := pool[rng.IntN(len(pool))]
		cat := categoryByID(course.CategoryID)
		s := model.Session{
			ID:              fmt.Sprintf("%s-s%03d", l.ID, i+1),
			LearnerID:       l.ID,
			CourseID:        course.ID,
			CoachID:         course.CoachID,
			CategoryID:      cat.id,
			CategoryName:    cat.name,
			TrainingDate:    model.NewDate(date),
			DurationMinutes: float64(minDuration + rng.IntN(durationSpread)),
			Metrics:         make(map[string]float64, len(cat.metrics)),
		}
		for _, m := range cat.metrics {
			v := m.base + m.drift*float64(i) + rng.NormFloat64()*m.noise
			if rng.Float64() < anomalyChance {
				v *= anomalyFactor
			}
			s.Metrics[m.name] = round(math.Max(v, 0), 1)
		}
		if rng.Float64() < achievementChance {
			s.Achievements = []string{pick(rng, achievements)}
		}
		out = append(out, s)
		date = date.AddDate(0, 0, 1+rng.IntN(maxDayGap))
	}
	return out
}

func categoryByID(id int) category {
	for _, c := range categories {
		if c.id == id {
			return c
		}
	}
	return categories[0]
}

func fullName(rng *rand.Rand) string {
	return pick(rng, firstNames) + " " + pick(rng, lastNames)
}

func pick[T any](rng *rand.Rand, xs []T) T {
	return xs[rng.IntN(len(xs))]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
