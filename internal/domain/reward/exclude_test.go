package reward

import (
	"testing"

	"github.com/okian/quizrewards/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExcludeLowestRank(t *testing.T) {
	Convey("Given a board with a tie at the bottom", t, func() {
		board := []model.Participant{
			{UserID: "a", Rank: 1},
			{UserID: "b", Rank: 2},
			{UserID: "c", Rank: 4},
			{UserID: "d", Rank: 4},
		}

		Convey("When excluding the lowest rank", func() {
			kept, dropped := ExcludeLowestRank(board)

			Convey("Then every tied row is removed and order kept", func() {
				So(dropped, ShouldEqual, 2)
				So(kept, ShouldHaveLength, 2)
				So(kept[0].UserID, ShouldEqual, "a")
				So(kept[1].UserID, ShouldEqual, "b")
			})

			Convey("Then the input is untouched", func() {
				So(board, ShouldHaveLength, 4)
			})
		})
	})

	Convey("Given a board where everyone shares one rank", t, func() {
		kept, dropped := ExcludeLowestRank([]model.Participant{{Rank: 1}, {Rank: 1}})

		Convey("Then nobody is left", func() {
			So(kept, ShouldBeEmpty)
			So(dropped, ShouldEqual, 2)
		})
	})

	Convey("Given an empty board", t, func() {
		kept, dropped := ExcludeLowestRank(nil)

		Convey("Then the result is empty, not nil", func() {
			So(kept, ShouldNotBeNil)
			So(kept, ShouldBeEmpty)
			So(dropped, ShouldEqual, 0)
		})
	})
}
