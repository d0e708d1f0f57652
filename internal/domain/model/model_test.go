package model

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKind(t *testing.T) {
	Convey("Given reward kinds", t, func() {
		Convey("When parsing user input", func() {
			k, err := ParseKind(" Gold ")
			_, badErr := ParseKind("silver")

			Convey("Then known kinds parse and unknown ones fail", func() {
				So(err, ShouldBeNil)
				So(k, ShouldEqual, KindGold)
				So(errors.Is(badErr, ErrUnknownKind), ShouldBeTrue)
			})
		})

		Convey("When mapping kinds to boards and assets", func() {
			Convey("Then each kind reads and credits the right place", func() {
				So(KindGold.Board(), ShouldEqual, BoardDailyScores)
				So(KindGem.Board(), ShouldEqual, BoardDailyReactions)
				So(KindCandy.Board(), ShouldEqual, BoardWeeklyReactions)
				So(KindUSDC.Board(), ShouldEqual, BoardWeeklyReactions)

				So(KindGold.Asset(), ShouldEqual, AssetGoldBars)
				So(KindGem.Asset(), ShouldEqual, AssetGems)
				So(KindCandy.Asset(), ShouldEqual, AssetGoldBars)
				So(KindUSDC.Asset(), ShouldEqual, AssetUSDC)

				So(KindGold.Weekly(), ShouldBeFalse)
				So(KindCandy.Weekly(), ShouldBeTrue)
			})
		})

		Convey("When listing kinds", func() {
			Convey("Then all four are present", func() {
				So(Kinds(), ShouldResemble, []Kind{KindGold, KindGem, KindCandy, KindUSDC})
			})
		})
	})
}

func TestPlanCreditable(t *testing.T) {
	Convey("Given a plan with zero and positive payouts", t, func() {
		plan := Plan{Payouts: []Payout{
			{UserID: "1", Amount: 750},
			{UserID: "2", Amount: 0},
			{UserID: "3", Amount: 0, RankNotice: true},
		}}

		Convey("When filtering creditable payouts", func() {
			got := plan.Creditable()

			Convey("Then zero amounts without a rank notice are skipped", func() {
				So(got, ShouldHaveLength, 2)
				So(got[0].UserID, ShouldEqual, "1")
				So(got[1].UserID, ShouldEqual, "3")
			})
		})
	})
}

func TestPayoutKey(t *testing.T) {
	Convey("Given a creator and a holder payout for the same user", t, func() {
		creator := Payout{UserID: "9", Role: RoleCreator}
		holder := Payout{UserID: "9", FromUserID: "4", Role: RoleHolder}

		Convey("Then their keys differ within one run", func() {
			So(creator.Key("run"), ShouldNotEqual, holder.Key("run"))
			So(holder.Key("run"), ShouldEqual, "run/holder/4/9")
		})
	})
}

func TestApplyReport(t *testing.T) {
	Convey("Given apply reports", t, func() {
		Convey("Then only reports without failures are OK", func() {
			So(ApplyReport{Applied: 3, Duplicate: 1}.OK(), ShouldBeTrue)
			So(ApplyReport{Applied: 3, Failed: 1}.OK(), ShouldBeFalse)
			So(ApplyReport{Rejected: 1}.OK(), ShouldBeFalse)
		})
	})
}
