package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/coachmatch/internal/adapters/repository"
	"github.com/okian/coachmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func pendingJob(id string, learners ...string) model.Job {
	items := make([]model.JobItem, len(learners))
	for i, l := range learners {
		items[i] = model.JobItem{LearnerID: l, Status: model.JobPending}
	}
	return model.Job{ID: id, Items: items}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty job store", t, func() {
		clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
		store := repository.NewMemoryStore(ctx,
			repository.WithClock(clock.Now),
			repository.WithRetention(time.Hour),
			repository.WithSweepInterval(time.Hour),
		)
		Reset(store.Close)

		Convey("When a job is created", func() {
			So(store.Create(ctx, pendingJob("j1", "l1", "l2")), ShouldBeNil)

			Convey("Then it can be read back as pending", func() {
				job, err := store.Get(ctx, "j1")
				So(err, ShouldBeNil)
				So(job.Status, ShouldEqual, model.JobPending)
				So(job.Items, ShouldHaveLength, 2)
				So(job.CreatedAt, ShouldEqual, clock.Now())
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then a second create with the same id fails", func() {
				err := store.Create(ctx, pendingJob("j1"))
				So(errors.Is(err, repository.ErrDuplicateJob), ShouldBeTrue)
			})

			Convey("Then mutating a returned copy leaves the store intact", func() {
				job, _ := store.Get(ctx, "j1")
				job.Items[0].Status = model.JobFailed
				again, _ := store.Get(ctx, "j1")
				So(again.Items[0].Status, ShouldEqual, model.JobPending)
			})
		})

		Convey("When a job runs and finishes with mixed outcomes", func() {
			So(store.Create(ctx, pendingJob("j2", "a", "b")), ShouldBeNil)
			So(store.MarkRunning(ctx, "j2"), ShouldBeNil)
			running, _ := store.Get(ctx, "j2")
			So(running.Status, ShouldEqual, model.JobRunning)

			clock.Advance(time.Second)
			job, err := store.Finish(ctx, "j2", []model.JobItem{
				{LearnerID: "a", Status: model.JobCompleted, Result: "ok"},
				{LearnerID: "b", Status: model.JobFailed, Error: "learner not found"},
			})

			Convey("Then the job is partial", func() {
				So(err, ShouldBeNil)
				So(job.Status, ShouldEqual, model.JobPartial)
				So(job.UpdatedAt.After(job.CreatedAt), ShouldBeTrue)
			})

			Convey("Then marking it running again is a no-op", func() {
				So(store.MarkRunning(ctx, "j2"), ShouldBeNil)
				again, _ := store.Get(ctx, "j2")
				So(again.Status, ShouldEqual, model.JobPartial)
			})
		})

		Convey("When a job is deleted", func() {
			So(store.Create(ctx, pendingJob("gone", "a")), ShouldBeNil)
			So(store.Delete(ctx, "gone"), ShouldBeNil)
			So(store.Delete(ctx, "never-there"), ShouldBeNil)

			Convey("Then it is no longer found", func() {
				_, err := store.Get(ctx, "gone")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When an unknown job is requested", func() {
			_, getErr := store.Get(ctx, "missing")
			runErr := store.MarkRunning(ctx, "missing")
			_, finErr := store.Finish(ctx, "missing", nil)

			Convey("Then every call reports not found", func() {
				So(errors.Is(getErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(runErr, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(finErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When finished jobs age past the retention window", func() {
			So(store.Create(ctx, pendingJob("done", "a")), ShouldBeNil)
			So(store.Create(ctx, pendingJob("waiting", "b")), ShouldBeNil)
			_, err := store.Finish(ctx, "done", []model.JobItem{{LearnerID: "a", Status: model.JobCompleted}})
			So(err, ShouldBeNil)

			clock.Advance(2 * time.Hour)
			removed := store.Sweep()

			Convey("Then only the finished job is dropped", func() {
				So(removed, ShouldEqual, 1)
				_, err := store.Get(ctx, "done")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				_, err = store.Get(ctx, "waiting")
				So(err, ShouldBeNil)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then create refuses the job", func() {
				So(errors.Is(store.Create(cctx, pendingJob("j3")), context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a store with retention disabled", t, func() {
		clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
		store := repository.NewMemoryStore(ctx, repository.WithClock(clock.Now), repository.WithRetention(0))
		Reset(store.Close)

		So(store.Create(ctx, pendingJob("j", "a")), ShouldBeNil)
		_, err := store.Finish(ctx, "j", nil)
		So(err, ShouldBeNil)
		clock.Advance(24 * time.Hour)

		So(store.Sweep(), ShouldEqual, 0)
		So(store.Count(ctx), ShouldEqual, 1)
	})
}
