package storage

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/pkg/logger"
)

func TestListSessionsSkipsBadDates(t *testing.T) {
	ctx := context.Background()

	Convey("Given a history with one row whose date cannot be parsed", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)), ShouldBeNil)
		Reset(func() { _ = logger.Init() })

		c, err := Open(ctx, ":memory:")
		So(err, ShouldBeNil)
		Reset(func() { _ = c.Close() })
		So(c.EnsureSchema(ctx), ShouldBeNil)

		So(c.UpsertSessions(ctx, []model.Session{
			{ID: "s1", LearnerID: "l1", TrainingDate: model.MustDate("2024-01-01"), DurationMinutes: 30},
			{ID: "s3", LearnerID: "l1", TrainingDate: model.MustDate("2024-01-03"), DurationMinutes: 50},
		}), ShouldBeNil)
		_, err = c.db.ExecContext(ctx, `
INSERT INTO sessions (id, learner_id, course_id, coach_id, category_id, category_name,
  training_date, duration_minutes, metrics_json, achievements_json)
VALUES ('s2', 'l1', '', '', 0, '', 'last tuesday', 40, '{}', '[]')`)
		So(err, ShouldBeNil)

		Convey("When the history is listed", func() {
			sessions, err := c.ListSessions(ctx, "l1")

			Convey("Then the readable rows are returned and the bad one is logged", func() {
				So(err, ShouldBeNil)
				So(sessions, ShouldHaveLength, 2)
				So(sessions[0].ID, ShouldEqual, "s1")
				So(sessions[1].ID, ShouldEqual, "s3")
				So(buf.String(), ShouldContainSubstring, "skipping session with invalid training date")
				So(buf.String(), ShouldContainSubstring, `"session_id":"s2"`)
			})
		})
	})
}
