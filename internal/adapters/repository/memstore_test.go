package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/quizrewards/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreRankings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a memory store with a daily board", t, func() {
		s := NewMemoryStore()
		s.SetRankings(model.BoardDailyScores, "2024-10-11", []model.Participant{
			{UserID: "3", Rank: 3},
			{UserID: "1", Rank: 1},
			{UserID: "2", Rank: 2},
		})
		s.SetUnitCount(model.BoardDailyScores, "2024-10-11", 12)

		Convey("When reading rankings", func() {
			all, err := s.Rankings(ctx, model.BoardDailyScores, "2024-10-11", 0)
			top, _ := s.Rankings(ctx, model.BoardDailyScores, "2024-10-11", 2)
			none, _ := s.Rankings(ctx, model.BoardDailyScores, "2024-10-12", 0)

			Convey("Then rows come back by rank and respect the limit", func() {
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(all[0].UserID, ShouldEqual, "1")
				So(top, ShouldHaveLength, 2)
				So(none, ShouldNotBeNil)
				So(none, ShouldBeEmpty)
			})
		})

		Convey("When reading the unit count and periods", func() {
			n, err := s.UnitCount(ctx, model.BoardDailyScores, "2024-10-11")
			periods, _ := s.Periods(ctx, model.BoardDailyScores)
			_, weeklyErr := s.UnitCount(ctx, model.BoardWeeklyReactions, "2024-10-07")

			Convey("Then daily boards report their unit and weekly ones have none", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 12)
				So(periods, ShouldResemble, []string{"2024-10-11"})
				So(errors.Is(weeklyErr, ErrUnknownBoard), ShouldBeTrue)
			})
		})

		Convey("When asking for an unknown board", func() {
			_, err := s.Rankings(ctx, model.Board("monthly"), "2024-10-11", 0)

			Convey("Then ErrUnknownBoard is returned", func() {
				So(errors.Is(err, ErrUnknownBoard), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStoreTreasury(t *testing.T) {
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 10, d, 7, 0, 0, 0, time.UTC) }

	Convey("Given treasury and holding history", t, func() {
		s := NewMemoryStore()
		s.AddTreasuryBalance(day(20), 100)
		s.AddTreasuryBalance(day(26), 250)
		s.AddTreasuryBalance(day(28), 999)
		s.AddHolding(day(21), model.Holding{CreatorID: "1", HolderID: "10", Amount: 5})
		s.AddHolding(day(25), model.Holding{CreatorID: "1", HolderID: "10", Amount: 7})
		s.AddHolding(day(28), model.Holding{CreatorID: "1", HolderID: "11", Amount: 3})
		s.AddHolding(day(22), model.Holding{CreatorID: "2", HolderID: "12", Amount: 1})

		Convey("When reading the balance at a cut-off", func() {
			bal, err := s.TreasuryBalance(ctx, day(27))
			_, early := s.TreasuryBalance(ctx, day(1))

			Convey("Then the latest point at or before it wins", func() {
				So(err, ShouldBeNil)
				So(bal, ShouldEqual, 250)
				So(errors.Is(early, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading holders at a cut-off", func() {
			holders, err := s.TokenHolders(ctx, []string{"1"}, day(27))

			Convey("Then only the latest row per holder is returned", func() {
				So(err, ShouldBeNil)
				So(holders, ShouldHaveLength, 1)
				So(holders[0].Amount, ShouldEqual, 7)
			})

			Convey("Then grouping keys holders by creator", func() {
				all, _ := s.TokenHolders(ctx, []string{"1", "2"}, day(30))
				grouped := GroupByCreator(all)
				So(grouped["1"], ShouldHaveLength, 2)
				So(grouped["2"], ShouldHaveLength, 1)
			})
		})
	})
}

func TestMemoryStoreCatalog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a catalog", t, func() {
		s := NewMemoryStore()
		s.SetQuestions("2024-10-11", []string{"1", "2", "3"})
		s.SetUsers([]string{"a", "b", "c"})

		Convey("Then questions and users are returned", func() {
			q, err := s.QuestionIDs(ctx, "2024-10-11")
			So(err, ShouldBeNil)
			So(q, ShouldResemble, []string{"1", "2", "3"})

			u, err := s.UserIDs(ctx, 2)
			So(err, ShouldBeNil)
			So(u, ShouldResemble, []string{"a", "b"})
		})

		Convey("Then a malformed date is rejected", func() {
			_, err := s.QuestionIDs(ctx, "11/10/2024")
			So(errors.Is(err, ErrInvalidPeriod), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreCredit(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty ledger", t, func() {
		s := NewMemoryStore()

		Convey("When crediting a prize and a zero rank notice", func() {
			So(s.Credit(ctx, model.Payout{UserID: "1", Asset: model.AssetGems, Amount: 30, Notification: model.NotifyPrize, RankNotice: true, Rank: 1}), ShouldBeNil)
			So(s.Credit(ctx, model.Payout{UserID: "2", Asset: model.AssetGems, Amount: 0, RankNotice: true, Rank: 9}), ShouldBeNil)

			Convey("Then balances and notifications are written", func() {
				So(s.Balance("1", model.AssetGems), ShouldEqual, 30)
				So(s.Balance("2", model.AssetGems), ShouldEqual, 0)
				n := s.Notifications()
				So(n, ShouldHaveLength, 3)
				So(n[0].Type, ShouldEqual, model.NotifyPrize)
				So(n[1].Type, ShouldEqual, model.NotifyRank)
				So(n[2].Rank, ShouldEqual, 9)
			})
		})

		Convey("When a credit hook fails", func() {
			boom := errors.New("boom")
			s.FailCredits(func(model.Payout) error { return boom })
			err := s.Credit(ctx, model.Payout{UserID: "1", Asset: model.AssetGoldBars, Amount: 5})

			Convey("Then nothing is written", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				So(s.Balance("1", model.AssetGoldBars), ShouldEqual, 0)
			})
		})

		Convey("When the asset is unknown", func() {
			err := s.Credit(ctx, model.Payout{UserID: "1", Asset: model.Asset("candy"), Amount: 5})

			Convey("Then ErrUnknownAsset is returned", func() {
				So(errors.Is(err, ErrUnknownAsset), ShouldBeTrue)
			})
		})
	})
}

func TestMemoryStoreTournament(t *testing.T) {
	ctx := context.Background()

	Convey("Given a tournament with entries and rewards", t, func() {
		s := NewMemoryStore()
		s.AddTournament(7, 5_000_000)
		for _, u := range []string{"1", "1", "2"} {
			s.AddTournamentEntry(7, u)
		}
		s.AddTournamentReward(7, model.TournamentReward{UserID: "2", Username: "bob", Reward: 2_000_000})
		s.AddTournamentReward(7, model.TournamentReward{UserID: "1", Username: "ann", Reward: 5_700_000})

		Convey("When it is read as a streak tournament", func() {
			got, err := s.Tournament(ctx, model.TournamentStreak, 7)

			Convey("Then entries are counted and rewards ordered largest first", func() {
				So(err, ShouldBeNil)
				So(got.Prize, ShouldEqual, 5_000_000)
				So(got.Transactions, ShouldEqual, 3)
				So(got.Players, ShouldEqual, 2)
				So(got.Rewards[0].UserID, ShouldEqual, "1")
			})
		})

		Convey("When it is read as a PvP tournament", func() {
			got, err := s.Tournament(ctx, model.TournamentPvP, 7)

			Convey("Then entries are ignored", func() {
				So(err, ShouldBeNil)
				So(got.Transactions, ShouldEqual, 0)
				So(got.Rewards, ShouldHaveLength, 2)
			})
		})

		Convey("When the id is unknown", func() {
			_, err := s.Tournament(ctx, model.TournamentPvP, 8)

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
