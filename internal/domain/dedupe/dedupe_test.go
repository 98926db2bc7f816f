package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/coachmatch/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		So(d.Size(), ShouldEqual, 0)

		Convey("When a key is claimed for the first time", func() {
			id, seen := d.SeenAndRecord(ctx, "key-1", "job-1")

			Convey("Then it is recorded for that job", func() {
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is claimed twice", func() {
			d.SeenAndRecord(ctx, "key-1", "job-1")
			id, seen := d.SeenAndRecord(ctx, "key-1", "job-2")

			Convey("Then the first job is returned", func() {
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "key-1", "job-1")
			So(d.Unrecord(ctx, "key-1", "job-1"), ShouldBeTrue)
			So(d.Unrecord(ctx, "missing", "job-1"), ShouldBeFalse)

			Convey("Then it can be claimed again", func() {
				So(d.Size(), ShouldEqual, 0)
				id, seen := d.SeenAndRecord(ctx, "key-1", "job-3")
				So(seen, ShouldBeFalse)
				So(id, ShouldEqual, "job-3")
			})
		})
	})

	Convey("Given a key reclaimed by a later job", t, func() {
		d := dedupe.NewInMemoryDeduper()
		d.SeenAndRecord(ctx, "key-1", "job-1")
		So(d.Unrecord(ctx, "key-1", "job-1"), ShouldBeTrue)
		d.SeenAndRecord(ctx, "key-1", "job-2")

		Convey("When the first job releases the key again", func() {
			removed := d.Unrecord(ctx, "key-1", "job-1")

			Convey("Then the later claim survives", func() {
				So(removed, ShouldBeFalse)
				id, seen := d.SeenAndRecord(ctx, "key-1", "job-3")
				So(seen, ShouldBeTrue)
				So(id, ShouldEqual, "job-2")
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
		d.SeenAndRecord(ctx, "a", "job-a")
		d.SeenAndRecord(ctx, "b", "job-b")

		Convey("When a third key arrives", func() {
			d.SeenAndRecord(ctx, "c", "job-c")

			Convey("Then the oldest key is forgotten", func() {
				So(d.Size(), ShouldEqual, 2)
				_, seen := d.SeenAndRecord(ctx, "b", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.SeenAndRecord(ctx, "c", "x")
				So(seen, ShouldBeTrue)
			})

			Convey("Then the evicted key is new again", func() {
				_, seen := d.SeenAndRecord(ctx, "a", "job-a2")
				So(seen, ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i), "j")
		}
		So(d.Size(), ShouldEqual, 1000)
	})

	Convey("Given concurrent claims of the same key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, seen := d.SeenAndRecord(ctx, "shared", fmt.Sprintf("job-%d", i)); !seen {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one claim wins", func() {
			So(fresh, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}
