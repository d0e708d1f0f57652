package payoutcli_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/quizrewards/internal/adapters/repository"
	service "github.com/okian/quizrewards/internal/app"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/payoutcli"
	"github.com/okian/quizrewards/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		panic(err)
	}
}

func seededStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	store.SetRankings(model.BoardDailyScores, "2024-10-11", []model.Participant{
		{UserID: "1", Username: "ann", Rank: 1},
		{UserID: "2", Username: "bob", Rank: 2},
		{UserID: "3", Username: "cid", Rank: 3},
		{UserID: "4", Username: "dee", Rank: 4},
		{UserID: "5", Username: "eve", Rank: 5},
		{UserID: "6", Username: "fay", Rank: 6},
	})
	store.SetUnitCount(model.BoardDailyScores, "2024-10-11", 10)
	for _, week := range []string{"2024-10-14", "2024-10-21"} {
		store.SetRankings(model.BoardWeeklyReactions, week, []model.Participant{
			{UserID: "1", Rank: 1}, {UserID: "2", Rank: 2}, {UserID: "3", Rank: 3},
		})
	}
	return store
}

func newRunner(store repository.Store, input string) (*payoutcli.Runner, *bytes.Buffer) {
	svc, err := service.New(store, service.WithRetry(1, time.Millisecond))
	So(err, ShouldBeNil)
	out := &bytes.Buffer{}
	return payoutcli.NewRunner(svc, strings.NewReader(input), out), out
}

func TestRunner(t *testing.T) {
	Convey("Given a store with a daily board and two weeks", t, func() {
		ctx := context.Background()
		store := seededStore()

		Convey("When gold is run as a dry run", func() {
			r, out := newRunner(store, "")
			stats, err := r.Run(ctx, &payoutcli.Config{Kind: model.KindGold, Period: "2024-10-11", DryRun: true})

			Convey("Then the plan is printed and nothing is credited", func() {
				So(err, ShouldBeNil)
				So(stats.Planned, ShouldEqual, 1)
				So(stats.Applied, ShouldEqual, 0)
				So(out.String(), ShouldContainSubstring, "gold rewards for 2024-10-11")
				So(out.String(), ShouldContainSubstring, "Total: 50 gold_bars across 2 payouts")
				So(out.String(), ShouldContainSubstring, "ann (1)")
				So(out.String(), ShouldNotContainSubstring, "[y/N]")
				So(store.Balance("1", model.AssetGoldBars), ShouldEqual, 0)
			})
		})

		Convey("When the operator confirms", func() {
			r, out := newRunner(store, "y\n")
			stats, err := r.Run(ctx, &payoutcli.Config{Kind: model.KindGold, Period: "2024-10-11"})

			Convey("Then the plan is applied", func() {
				So(err, ShouldBeNil)
				So(stats.Applied, ShouldEqual, 2)
				So(out.String(), ShouldContainSubstring, "Apply 2 payouts for gold 2024-10-11? [y/N]")
				So(out.String(), ShouldContainSubstring, "Applied 2 of 2")
				So(store.Balance("1", model.AssetGoldBars), ShouldEqual, 40)
			})
		})

		Convey("When the operator declines", func() {
			r, _ := newRunner(store, "no\n")
			stats, err := r.Run(ctx, &payoutcli.Config{Kind: model.KindGold, Period: "2024-10-11"})

			Convey("Then nothing is credited", func() {
				So(err, ShouldBeNil)
				So(stats.Declined, ShouldEqual, 1)
				So(store.Balance("1", model.AssetGoldBars), ShouldEqual, 0)
			})
		})

		Convey("When every candy week is run with -yes", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "plans", "candy.json")
			r, _ := newRunner(store, "")
			stats, err := r.Run(ctx, &payoutcli.Config{Kind: model.KindCandy, AllPeriods: true, Yes: true, OutputFile: path})

			Convey("Then both weeks are paid and saved", func() {
				So(err, ShouldBeNil)
				So(stats.Periods, ShouldEqual, 2)
				So(stats.Planned, ShouldEqual, 2)
				// rank 1 of 2 after exclusion sits on the 50th percentile; nothing is paid
				So(stats.Skipped, ShouldEqual, 2)
				data, rerr := os.ReadFile(path)
				So(rerr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"period": "2024-10-21"`)
			})
		})

		Convey("When a period cannot be planned", func() {
			r, _ := newRunner(store, "")
			stats, err := r.Run(ctx, &payoutcli.Config{Kind: model.KindUSDC, Period: "2024-10-21", Yes: true})

			Convey("Then the run is incomplete", func() {
				So(errors.Is(err, payoutcli.ErrIncomplete), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 1)
			})
		})

		Convey("When the kind is typed in upper case", func() {
			r, out := newRunner(store, "")
			cfg := &payoutcli.Config{Kind: model.Kind("GOLD"), AllPeriods: true, DryRun: true}
			stats, err := r.Run(ctx, cfg)

			Convey("Then the gold board's periods are planned", func() {
				So(err, ShouldBeNil)
				So(cfg.Kind, ShouldEqual, model.KindGold)
				So(stats.Periods, ShouldEqual, 1)
				So(stats.Planned, ShouldEqual, 1)
				So(out.String(), ShouldContainSubstring, "gold rewards for 2024-10-11")
			})
		})

		Convey("When flags do not combine", func() {
			r, _ := newRunner(store, "")
			_, weekly := r.Run(ctx, &payoutcli.Config{Kind: model.KindCandy})
			_, both := r.Run(ctx, &payoutcli.Config{Kind: model.KindGold, DryRun: true, Yes: true})
			_, kind := r.Run(ctx, &payoutcli.Config{Kind: model.Kind("silver"), Period: "2024-10-11"})

			Convey("Then ErrUsage is returned", func() {
				So(errors.Is(weekly, payoutcli.ErrUsage), ShouldBeTrue)
				So(errors.Is(both, payoutcli.ErrUsage), ShouldBeTrue)
				So(errors.Is(kind, payoutcli.ErrUsage), ShouldBeTrue)
			})
		})
	})
}

func TestConfirm(t *testing.T) {
	Convey("Given operator input", t, func() {
		out := &bytes.Buffer{}
		answer := func(in string) bool {
			ok, err := payoutcli.Confirm(bufio.NewReader(strings.NewReader(in)), out, "Go?")
			So(err, ShouldBeNil)
			return ok
		}

		Convey("Then only yes answers confirm", func() {
			So(answer("y\n"), ShouldBeTrue)
			So(answer(" YES \n"), ShouldBeTrue)
			So(answer("yes"), ShouldBeTrue)
			So(answer("n\n"), ShouldBeFalse)
			So(answer("\n"), ShouldBeFalse)
			So(answer(""), ShouldBeFalse)
			So(out.String(), ShouldStartWith, "Go? [y/N]: ")
		})
	})
}

func TestPrint(t *testing.T) {
	Convey("Given a usdc plan", t, func() {
		plan := model.Plan{
			RunID: "run", Kind: model.KindUSDC, Period: "2024-10-21", Unit: 12345.678, Eligible: 1, Total: 6172.839,
			Payouts: []model.Payout{
				{UserID: "1", Rank: 1, Asset: model.AssetUSDC, Amount: 6172.839, Role: model.RoleCreator},
				{UserID: "2", Rank: 2, Asset: model.AssetUSDC, Amount: 0, Role: model.RoleCreator},
			},
		}

		Convey("When it is printed", func() {
			out := &bytes.Buffer{}
			payoutcli.PrintPlan(out, plan, false)

			Convey("Then amounts are grouped at cent precision", func() {
				So(out.String(), ShouldContainSubstring, "Pool: 12,345.68 USDC")
				So(out.String(), ShouldContainSubstring, "6,172.84")
				So(out.String(), ShouldContainSubstring, "(1 zero payouts hidden)")
			})
		})
	})
}

func TestRunner_Audit(t *testing.T) {
	Convey("Given a streak tournament and a PvP tournament", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		store.AddTournament(42, 1_000_000_000)
		for i := 0; i < 100; i++ {
			store.AddTournamentEntry(42, "1")
		}
		store.AddTournamentReward(42, model.TournamentReward{UserID: "1", Username: "ann", Reward: 1_050_000_000})
		store.AddTournamentReward(42, model.TournamentReward{UserID: "2", Username: "bob", Reward: 40_000_000})
		store.AddTournament(43, 10_000_000)
		store.AddTournamentReward(43, model.TournamentReward{UserID: "3", Reward: 8_000_000})

		Convey("When the streak tournament paid its full pool", func() {
			r, out := newRunner(store, "")
			a, err := r.Audit(ctx, model.TournamentStreak, 42)

			Convey("Then expected and distributed match with grouped amounts", func() {
				So(err, ShouldBeNil)
				So(a.Expected, ShouldEqual, 1_090_000_000)
				So(out.String(), ShouldContainSubstring, "streak tournament 42")
				So(out.String(), ShouldContainSubstring, "Paid entries:      100 by 1 players")
				So(out.String(), ShouldContainSubstring, "Expected payout:   1,090.00 USDC")
				So(out.String(), ShouldContainSubstring, "Difference:        0.00 USDC")
				So(out.String(), ShouldContainSubstring, "1. ann")
			})
		})

		Convey("When the PvP tournament kept part of its prize", func() {
			r, out := newRunner(store, "")
			a, err := r.Audit(ctx, model.TournamentPvP, 43)

			Convey("Then the run reports the imbalance", func() {
				So(errors.Is(err, payoutcli.ErrUnbalanced), ShouldBeTrue)
				So(a.Diff, ShouldEqual, 2_000_000)
				So(out.String(), ShouldContainSubstring, "Difference:        2.00 USDC")
				So(out.String(), ShouldNotContainSubstring, "Paid entries")
			})
		})

		Convey("When the tournament does not exist", func() {
			r, _ := newRunner(store, "")
			_, err := r.Audit(ctx, model.TournamentPvP, 44)

			Convey("Then ErrNotFound surfaces", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
