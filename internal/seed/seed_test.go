package seed_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/coachmatch/internal/adapters/storage"
	"github.com/okian/coachmatch/internal/domain/model"
	"github.com/okian/coachmatch/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

func smallConfig(path string) *seed.Config {
	cfg := seed.DefaultConfig()
	cfg.DatabasePath = path
	cfg.Learners = 12
	cfg.Coaches = 5
	cfg.CoursesPerCoach = 2
	cfg.SessionsPerLearner = 15
	cfg.Start = model.MustDate("2024-01-01")
	cfg.Workers = 4
	return cfg
}

type failingSink struct{ failOn string }

func (f failingSink) UpsertCoaches(context.Context, []model.CoachProfile) error { return f.fail("coaches") }
func (f failingSink) UpsertCourses(context.Context, []model.Course) error       { return f.fail("courses") }
func (f failingSink) UpsertLearners(context.Context, []model.LearnerProfile) error {
	return f.fail("learners")
}
func (f failingSink) UpsertSessions(context.Context, []model.Session) error { return f.fail("sessions") }

func (f failingSink) fail(what string) error {
	if what == f.failOn {
		return errors.New("disk full")
	}
	return nil
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small seed config", t, func() {
		cfg := smallConfig("unused.db")

		Convey("When generating a catalog", func() {
			ds, err := seed.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then every table has the configured size", func() {
				So(ds.Learners, ShouldHaveLength, 12)
				So(ds.Coaches, ShouldHaveLength, 5)
				So(ds.Courses, ShouldHaveLength, 10)
				So(ds.Sessions, ShouldHaveLength, 12*15)
			})

			Convey("Then sessions reference known courses and move forward in time", func() {
				courses := make(map[string]model.Course, len(ds.Courses))
				for _, c := range ds.Courses {
					courses[c.ID] = c
				}
				last := map[string]model.Date{}
				for _, s := range ds.Sessions {
					c, ok := courses[s.CourseID]
					So(ok, ShouldBeTrue)
					So(s.CoachID, ShouldEqual, c.CoachID)
					So(s.Metrics, ShouldNotBeEmpty)
					for _, v := range s.Metrics {
						So(v, ShouldBeGreaterThanOrEqualTo, 0)
					}
					if prev, seen := last[s.LearnerID]; seen {
						So(s.TrainingDate.After(prev.Time), ShouldBeTrue)
					}
					last[s.LearnerID] = s.TrainingDate
				}
			})

			Convey("Then every coach has a specialty and learners have preferences", func() {
				for _, c := range ds.Coaches {
					So(c.Specialties, ShouldNotBeEmpty)
				}
				for _, l := range ds.Learners {
					So(l.PreferredCategories, ShouldNotBeEmpty)
					So(l.TrainingGoals, ShouldNotBeBlank)
				}
			})

			Convey("Then the same seed reproduces the same catalog", func() {
				again, err := seed.Generate(ctx, cfg)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, ds)
			})

			Convey("Then a different seed changes it", func() {
				other := *cfg
				other.Seed = cfg.Seed + 1
				changed, err := seed.Generate(ctx, &other)
				So(err, ShouldBeNil)
				So(changed.Sessions, ShouldNotResemble, ds.Sessions)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := seed.Generate(cctx, cfg)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given invalid seed configs", t, func() {
		cases := map[string]func(*seed.Config){
			"no path":           func(c *seed.Config) { c.DatabasePath = "" },
			"negative learners": func(c *seed.Config) { c.Learners = -1 },
			"courses no coach":  func(c *seed.Config) { c.Coaches = 0 },
			"no workers":        func(c *seed.Config) { c.Workers = 0 },
		}
		for name, mutate := range cases {
			cfg := smallConfig("x.db")
			mutate(cfg)
			Convey("Then "+name+" is rejected", func() {
				So(errors.Is(cfg.Validate(), seed.ErrInvalidConfig), ShouldBeTrue)
			})
		}

		Convey("Then the defaults are valid", func() {
			So(seed.DefaultConfig().Validate(), ShouldBeNil)
		})
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated dataset", t, func() {
		ds, err := seed.Generate(ctx, smallConfig("unused.db"))
		So(err, ShouldBeNil)

		Convey("When a table fails to write", func() {
			err := seed.Write(ctx, failingSink{failOn: "sessions"}, ds)

			Convey("Then the failing step is named", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "write sessions")
			})
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty database file", t, func() {
		path := filepath.Join(t.TempDir(), "seed.db")
		cfg := smallConfig(path)

		Convey("When the seed runs", func() {
			stats, err := seed.Run(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then the catalog holds the generated rows", func() {
				So(stats.Sessions, ShouldEqual, 180)

				catalog, err := storage.Open(ctx, path)
				So(err, ShouldBeNil)
				defer catalog.Close()

				counts, err := catalog.Stats(ctx)
				So(err, ShouldBeNil)
				So(counts, ShouldResemble, map[string]int{"learners": 12, "coaches": 5, "courses": 10, "sessions": 180})

				history, err := catalog.ListSessions(ctx, "learner-0001")
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 15)
			})

			Convey("Then running again upserts instead of duplicating", func() {
				_, err := seed.Run(ctx, cfg)
				So(err, ShouldBeNil)
				catalog, err := storage.Open(ctx, path)
				So(err, ShouldBeNil)
				defer catalog.Close()
				counts, _ := catalog.Stats(ctx)
				So(counts["sessions"], ShouldEqual, 180)
			})
		})
	})
}
