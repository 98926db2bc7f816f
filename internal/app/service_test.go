package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	service "github.com/okian/coachmatch/internal/app"
	"github.com/okian/coachmatch/internal/adapters/storage"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeCatalog struct {
	learners map[string]model.LearnerProfile
	coaches  []model.CoachProfile
	courses  []model.Course
	sessions map[string][]model.Session
	failOn   string
}

func (f *fakeCatalog) GetLearner(_ context.Context, id string) (model.LearnerProfile, error) {
	if id == f.failOn {
		return model.LearnerProfile{}, errors.New("disk on fire")
	}
	l, ok := f.learners[id]
	if !ok {
		return model.LearnerProfile{}, fmt.Errorf("learner %s: %w", id, storage.ErrNotFound)
	}
	return l, nil
}

func (f *fakeCatalog) ListCoaches(context.Context) ([]model.CoachProfile, error) { return f.coaches, nil }
func (f *fakeCatalog) ListCourses(context.Context) ([]model.Course, error)        { return f.courses, nil }

func (f *fakeCatalog) ListSessions(_ context.Context, id string) ([]model.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeCatalog) Stats(context.Context) (map[string]int, error) {
	return map[string]int{"learners": len(f.learners), "coaches": len(f.coaches)}, nil
}

func rating(v float64) *float64 { return &v }

func newCatalog() *fakeCatalog {
	return &fakeCatalog{
		learners: map[string]model.LearnerProfile{
			"l1": {ID: "l1", FullName: "Ana", FitnessLevel: model.LevelIntermediate,
				TrainingGoals: "build strength and lose weight", PreferredCategories: []int{1}},
			"l2": {ID: "l2", FitnessLevel: model.LevelBeginner, TrainingGoals: "yoga flexibility", PreferredCategories: []int{3}},
		},
		coaches: []model.CoachProfile{
			{ID: "c1", FullName: "Strong Coach", Bio: "strength training and weight loss", YearsOfExperience: 6, Rating: rating(4.8),
				Specialties: []model.Specialty{{CategoryID: 1}}},
			{ID: "c2", FullName: "Yoga Coach", Bio: "yoga and flexibility", YearsOfExperience: 2, Rating: rating(4.0),
				Specialties: []model.Specialty{{CategoryID: 3}}},
		},
		courses: []model.Course{
			{ID: "k1", CoachID: "c1", CategoryID: 1, Title: "Strength basics", DifficultyLevel: model.DifficultyAll},
		},
		sessions: map[string][]model.Session{},
		failOn:   "broken",
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then pure operations work without Start", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldEqual, false)
			So(stats["catalog"], ShouldEqual, false)
		})
	})
}

func TestService_Matching(t *testing.T) {
	Convey("Given a service and a catalog", t, func() {
		cat := newCatalog()
		svc := service.New(service.WithRankLimits(1, 10), service.WithWorkerCount(2))
		l1 := cat.learners["l1"]

		Convey("When scoring a well matched pair", func() {
			res := svc.Score(&l1, &cat.coaches[0])

			Convey("Then the score is high and bounded", func() {
				So(res.Score, ShouldBeGreaterThan, 50)
				So(res.Score, ShouldBeLessThanOrEqualTo, 100)
				So(res.SubjectID, ShouldEqual, "c1")
			})
		})

		Convey("When ranking coaches with the default limit", func() {
			out := svc.RankCoaches(&l1, cat.coaches, 0)

			Convey("Then only the configured default is returned", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].SubjectID, ShouldEqual, "c1")
			})
		})

		Convey("When ranking coaches for many learners", func() {
			learners := []model.LearnerProfile{cat.learners["l1"], cat.learners["l2"]}
			out, err := svc.RankCoachesForLearners(context.Background(), learners, cat.coaches, 2)

			Convey("Then every learner gets its own ranking in order", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 2)
				So(out[0].LearnerID, ShouldEqual, "l1")
				So(out[0].Matches[0].SubjectID, ShouldEqual, "c1")
				So(out[1].LearnerID, ShouldEqual, "l2")
				So(out[1].Matches[0].SubjectID, ShouldEqual, "c2")
			})
		})

		Convey("When the fan-out context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := svc.RankCoachesForLearners(ctx, []model.LearnerProfile{l1}, cat.coaches, 2)

			Convey("Then the cancellation is reported", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When ranking learners for a course", func() {
			learners := []model.LearnerProfile{cat.learners["l1"], cat.learners["l2"]}
			out := svc.RankLearnersForCourse(&cat.courses[0], &cat.coaches[0], learners, 0)

			Convey("Then only learners preferring the category are included", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].SubjectID, ShouldEqual, "l1")
			})
		})

		Convey("When ranking learners for a coach", func() {
			out := svc.RankLearners(&cat.coaches[1], []model.LearnerProfile{cat.learners["l1"], cat.learners["l2"]}, 5)
			So(out, ShouldHaveLength, 2)
			So(out[0].SubjectID, ShouldEqual, "l2")
		})
	})
}

func TestService_Analytics(t *testing.T) {
	Convey("Given a short session history", t, func() {
		svc := service.New(service.WithAnomalyThreshold(2))
		values := []float64{60, 65, 70, 120, 70}
		sessions := make([]model.Session, len(values))
		for i, v := range values {
			sessions[i] = model.Session{
				ID:              fmt.Sprintf("s%d", i),
				TrainingDate:    model.NewDate(time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)),
				DurationMinutes: 45,
				Metrics:         map[string]float64{"heartRate": v},
			}
		}

		Convey("Then the summary counts every session", func() {
			So(svc.Summarize(sessions).TotalSessions, ShouldEqual, 5)
		})

		Convey("Then the outlier is flagged", func() {
			anomalies := svc.Anomalies(sessions)
			So(anomalies, ShouldHaveLength, 1)
			So(anomalies[0].Value, ShouldEqual, 120)
		})

		Convey("Then a forecast needs more readings", func() {
			res := svc.Forecast(sessions, "heartRate", 7)
			So(res.Success, ShouldBeFalse)
			So(res.Error, ShouldNotBeBlank)
		})

		Convey("Then a rising series trends upward", func() {
			So(svc.Trend([]float64{1, 2, 3, 4}).Direction, ShouldEqual, model.TrendIncreasing)
		})
	})
}

func TestService_Catalog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a catalog", t, func() {
		svc := service.New()

		Convey("Then id-based operations report the missing catalog", func() {
			_, err := svc.RecommendForLearnerID(ctx, "l1")
			So(errors.Is(err, service.ErrNoCatalog), ShouldBeTrue)
			_, err = svc.CoachesForLearnerID(ctx, "l1", 3)
			So(errors.Is(err, service.ErrNoCatalog), ShouldBeTrue)
		})
	})

	Convey("Given a service with a catalog", t, func() {
		svc := service.New(service.WithCatalog(newCatalog()))

		Convey("When recommending for a learner without history", func() {
			rec, err := svc.RecommendForLearnerID(ctx, "l1")

			Convey("Then onboarding advice is produced", func() {
				So(err, ShouldBeNil)
				So(rec.LearnerID, ShouldEqual, "l1")
				So(rec.HasHistory, ShouldBeFalse)
				So(rec.NextSteps, ShouldNotBeEmpty)
				So(rec.SuggestedCourses, ShouldHaveLength, 1)
			})
		})

		Convey("When the learner is unknown", func() {
			_, err := svc.RecommendForLearnerID(ctx, "ghost")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the catalog fails", func() {
			_, err := svc.CoachesForLearnerID(ctx, "broken", 3)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, service.ErrNotFound), ShouldBeFalse)
		})

		Convey("When ranking stored coaches", func() {
			out, err := svc.CoachesForLearnerID(ctx, "l2", 5)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			So(out[0].SubjectID, ShouldEqual, "c2")
		})

		Convey("Then stats include catalog counts", func() {
			stats := svc.GetStats(ctx)
			So(stats["catalog"], ShouldEqual, true)
			So(stats["catalogRecords"], ShouldResemble, map[string]int{"learners": 2, "coaches": 2})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithCatalog(newCatalog()))

		Convey("Then batch operations are refused", func() {
			_, _, err := svc.SubmitBatch(ctx, "", []string{"l1"})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Job(ctx, "x")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then Stop is a no-op", func() {
			So(svc.Stop, ShouldNotPanic)
		})
	})

	Convey("Given a started service", t, func() {
		svc := service.New(service.WithCatalog(newCatalog()), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("Then it reports running state", func() {
			stats := svc.GetStats(ctx)
			So(stats["started"], ShouldEqual, true)
			So(stats["queueLength"], ShouldEqual, 0)
		})

		Convey("When it is stopped", func() {
			svc.Stop()

			Convey("Then it is marked stopped", func() {
				So(svc.GetStats(ctx)["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SubmitBatchValidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with a small batch limit", t, func() {
		svc := service.New(service.WithCatalog(newCatalog()), service.WithMaxBatchSize(2))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("Then empty batches are rejected", func() {
			_, _, err := svc.SubmitBatch(ctx, "", nil)
			So(errors.Is(err, service.ErrBadRequest), ShouldBeTrue)
		})

		Convey("Then oversized batches are rejected", func() {
			_, _, err := svc.SubmitBatch(ctx, "", []string{"a", "b", "c"})
			So(errors.Is(err, service.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "at most 2")
		})

		Convey("Then blank ids are rejected", func() {
			_, _, err := svc.SubmitBatch(ctx, "", []string{"l1", "  "})
			So(errors.Is(err, service.ErrBadRequest), ShouldBeTrue)
			So(strings.Contains(err.Error(), "blank"), ShouldBeTrue)
		})
	})
}
