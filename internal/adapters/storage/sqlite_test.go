package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/coachmatch/internal/adapters/storage"
	"github.com/okian/coachmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openCatalog(ctx context.Context) *storage.Catalog {
	c, err := storage.Open(ctx, ":memory:")
	So(err, ShouldBeNil)
	So(c.EnsureSchema(ctx), ShouldBeNil)
	return c
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	rating := 4.5

	Convey("Given an empty catalog", t, func() {
		c := openCatalog(ctx)
		Reset(func() { _ = c.Close() })

		Convey("When the schema is ensured twice", func() {
			So(c.EnsureSchema(ctx), ShouldBeNil)
		})

		Convey("When a missing learner is requested", func() {
			_, err := c.GetLearner(ctx, "nobody")
			So(errors.Is(err, storage.ErrNotFound), ShouldBeTrue)
		})

		Convey("When listing an empty catalog", func() {
			coaches, err := c.ListCoaches(ctx)
			So(err, ShouldBeNil)
			So(coaches, ShouldNotBeNil)
			So(coaches, ShouldBeEmpty)
			sessions, err := c.ListSessions(ctx, "l1")
			So(err, ShouldBeNil)
			So(sessions, ShouldBeEmpty)
		})

		Convey("When records are upserted", func() {
			So(c.UpsertLearners(ctx, []model.LearnerProfile{{
				ID: "l1", FullName: "Ana", FitnessLevel: "intermediate",
				TrainingGoals: "lose weight", PreferredCategories: []int{1, 3},
			}}), ShouldBeNil)
			So(c.UpsertCoaches(ctx, []model.CoachProfile{
				{ID: "c2", FullName: "Ben", YearsOfExperience: 3},
				{ID: "c1", FullName: "Cy", YearsOfExperience: 8, Rating: &rating, HourlyRate: 60,
					Specialties: []model.Specialty{{CategoryID: 1, Detail: "strength", ExperienceYears: 5}, {CategoryID: 3}}},
			}), ShouldBeNil)
			So(c.UpsertCourses(ctx, []model.Course{
				{ID: "k1", CoachID: "c1", CategoryID: 1, Title: "Strength basics"},
			}), ShouldBeNil)
			So(c.UpsertSessions(ctx, []model.Session{
				{ID: "s2", LearnerID: "l1", CourseID: "k1", TrainingDate: model.MustDate("2024-01-08"),
					DurationMinutes: 50, Metrics: map[string]float64{"pushups": 22}},
				{ID: "s1", LearnerID: "l1", CourseID: "k1", TrainingDate: model.MustDate("2024-01-01"),
					DurationMinutes: 45, Metrics: map[string]float64{"pushups": 20}, Achievements: []string{"first class"}},
				{ID: "s9", LearnerID: "l2", TrainingDate: model.MustDate("2024-01-01")},
			}), ShouldBeNil)

			Convey("Then the learner round-trips", func() {
				l, err := c.GetLearner(ctx, "l1")
				So(err, ShouldBeNil)
				So(l.FullName, ShouldEqual, "Ana")
				So(l.FitnessLevel, ShouldEqual, model.LevelIntermediate)
				So(l.PreferredCategories, ShouldResemble, []int{1, 3})
			})

			Convey("Then coaches come back ordered with specialties and optional rating", func() {
				coaches, err := c.ListCoaches(ctx)
				So(err, ShouldBeNil)
				So(coaches, ShouldHaveLength, 2)
				So(coaches[0].ID, ShouldEqual, "c1")
				So(*coaches[0].Rating, ShouldEqual, 4.5)
				So(coaches[0].Specialties, ShouldHaveLength, 2)
				So(coaches[0].Specialties[0].Detail, ShouldEqual, "strength")
				So(coaches[1].Rating, ShouldBeNil)
				So(coaches[1].Specialties, ShouldBeEmpty)
			})

			Convey("Then sessions are returned in date order for one learner", func() {
				sessions, err := c.ListSessions(ctx, "l1")
				So(err, ShouldBeNil)
				So(sessions, ShouldHaveLength, 2)
				So(sessions[0].ID, ShouldEqual, "s1")
				So(sessions[0].Metrics["pushups"], ShouldEqual, 20)
				So(sessions[0].Achievements, ShouldResemble, []string{"first class"})
				So(sessions[1].TrainingDate.String(), ShouldEqual, "2024-01-08")
			})

			Convey("Then stats count every table", func() {
				stats, err := c.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats["learners"], ShouldEqual, 1)
				So(stats["coaches"], ShouldEqual, 2)
				So(stats["courses"], ShouldEqual, 1)
				So(stats["sessions"], ShouldEqual, 3)
			})

			Convey("Then re-upserting a coach replaces its specialties", func() {
				So(c.UpsertCoaches(ctx, []model.CoachProfile{{ID: "c1", FullName: "Cy", Specialties: []model.Specialty{{CategoryID: 7}}}}), ShouldBeNil)
				coaches, err := c.ListCoaches(ctx)
				So(err, ShouldBeNil)
				So(coaches[0].Specialties, ShouldResemble, []model.Specialty{{CategoryID: 7}})
				So(coaches[0].Rating, ShouldBeNil)
			})
		})

		Convey("When raw payloads come from an external system", func() {
			date := model.MustDate("2024-02-01")
			So(c.PutRawSession(ctx, &model.Session{ID: "r1", LearnerID: "l1", TrainingDate: date, DurationMinutes: 30},
				`{"pushups": "25", "weight": 70.5, "mood": "great"}`, `warmup, ,  sprint `), ShouldBeNil)
			So(c.PutRawSession(ctx, &model.Session{ID: "r2", LearnerID: "l1", TrainingDate: model.MustDate("2024-02-02"), DurationMinutes: 40},
				`not json`, `["a","b"]`), ShouldBeNil)

			sessions, err := c.ListSessions(ctx, "l1")
			So(err, ShouldBeNil)
			So(sessions, ShouldHaveLength, 2)

			Convey("Then numeric strings are accepted and junk values skipped", func() {
				So(sessions[0].MetricsMalformed, ShouldBeFalse)
				So(sessions[0].Metrics, ShouldResemble, map[string]float64{"pushups": 25, "weight": 70.5})
				So(sessions[0].Achievements, ShouldResemble, []string{"warmup", "sprint"})
			})

			Convey("Then an undecodable payload is flagged but kept", func() {
				So(sessions[1].MetricsMalformed, ShouldBeTrue)
				So(sessions[1].Metrics, ShouldBeEmpty)
				So(sessions[1].DurationMinutes, ShouldEqual, 40)
				So(sessions[1].Achievements, ShouldResemble, []string{"a", "b"})
			})
		})
	})
}
