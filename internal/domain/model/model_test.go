package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/coachmatch/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	convey.Convey("Given calendar dates", t, func() {
		convey.Convey("When parsing a plain date", func() {
			d, err := model.ParseDate("2024-03-05")

			convey.Convey("Then it should be midnight UTC", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(d.String(), convey.ShouldEqual, "2024-03-05")
				convey.So(d.Hour(), convey.ShouldEqual, 0)
				convey.So(d.Location(), convey.ShouldEqual, time.UTC)
			})
		})

		convey.Convey("When parsing an RFC3339 timestamp", func() {
			d, err := model.ParseDate("2024-03-05T17:45:00Z")

			convey.Convey("Then the time of day should be dropped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(d.String(), convey.ShouldEqual, "2024-03-05")
			})
		})

		convey.Convey("When parsing garbage", func() {
			_, err := model.ParseDate("yesterday")

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When round-tripping a session through JSON", func() {
			in := model.Session{ID: "s1", TrainingDate: model.MustDate("2024-01-02"), DurationMinutes: 60}
			b, err := json.Marshal(in)
			convey.So(err, convey.ShouldBeNil)

			var out model.Session
			err = json.Unmarshal(b, &out)

			convey.Convey("Then the date should survive", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldContainSubstring, `"training_date":"2024-01-02"`)
				convey.So(out.TrainingDate.Equal(in.TrainingDate.Time), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When counting days between dates", func() {
			a := model.MustDate("2024-01-01")
			b := model.MustDate("2024-01-15")

			convey.So(model.DaysBetween(a, b), convey.ShouldEqual, 14)
			convey.So(model.DaysBetween(b, a), convey.ShouldEqual, -14)
		})
	})
}

func TestProfiles(t *testing.T) {
	convey.Convey("Given a coach with repeated specialties", t, func() {
		coach := model.CoachProfile{Specialties: []model.Specialty{
			{CategoryID: 3}, {CategoryID: 1}, {CategoryID: 3},
		}}

		convey.Convey("Then category ids should be distinct and ordered", func() {
			convey.So(coach.CategoryIDs(), convey.ShouldResemble, []int{3, 1})
		})
	})

	convey.Convey("Given a learner with preferences", t, func() {
		learner := model.LearnerProfile{PreferredCategories: []int{2, 4}}

		convey.So(learner.PrefersCategory(4), convey.ShouldBeTrue)
		convey.So(learner.PrefersCategory(5), convey.ShouldBeFalse)
	})

	convey.Convey("Given loosely formatted levels", t, func() {
		convey.So(model.FitnessLevel(" Advanced ").Normalize(), convey.ShouldEqual, model.LevelAdvanced)
		convey.So(model.Difficulty("ALL").Normalize(), convey.ShouldEqual, model.DifficultyAll)
	})
}

func TestJobSettle(t *testing.T) {
	convey.Convey("Given a job with mixed item outcomes", t, func() {
		job := model.Job{Items: []model.JobItem{
			{LearnerID: "a", Status: model.JobCompleted},
			{LearnerID: "b", Status: model.JobFailed},
		}}
		job.Settle()
		convey.So(job.Status, convey.ShouldEqual, model.JobPartial)

		job.Items[1].Status = model.JobCompleted
		job.Settle()
		convey.So(job.Status, convey.ShouldEqual, model.JobCompleted)

		job.Items[0].Status = model.JobFailed
		job.Items[1].Status = model.JobFailed
		job.Settle()
		convey.So(job.Status, convey.ShouldEqual, model.JobFailed)
	})
}
