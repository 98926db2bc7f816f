package types_test

import (
	"testing"

	"github.com/okian/coachmatch/internal/domain/model"
	types "github.com/okian/coachmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromMatches(t *testing.T) {
	Convey("Given ranked match results", t, func() {
		results := []model.MatchResult{
			{SubjectID: "c1", SubjectName: "Ana", Score: 91},
			{SubjectID: "c2", Score: 40},
		}

		Convey("When converting them to entries", func() {
			entries := types.FromMatches(results)

			Convey("Then ranks should start at one and keep order", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].SubjectName, ShouldEqual, "Ana")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[1].Score, ShouldEqual, 40)
			})
		})

		Convey("When converting an empty list", func() {
			entries := types.FromMatches(nil)

			Convey("Then the result should be empty but not nil", func() {
				So(entries, ShouldNotBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}
