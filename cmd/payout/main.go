package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/quizrewards/internal/adapters/repository"
	app "github.com/okian/quizrewards/internal/app"
	"github.com/okian/quizrewards/internal/config"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/payoutcli"
	"github.com/okian/quizrewards/pkg/logger"
	"github.com/okian/quizrewards/pkg/metrics"
)

func main() {
	var (
		kind       = flag.String("kind", "", "Reward kind: gold, gem, candy or usdc")
		period     = flag.String("period", "", "Day or week start, YYYY-MM-DD")
		allPeriods = flag.Bool("all-periods", false, "Run every period with ranking data")
		yes        = flag.Bool("yes", false, "Apply without confirmation")
		dryRun     = flag.Bool("dry-run", false, "Print the distribution only")
		output     = flag.String("output", "", "Write the plans as JSON to this file")
		auditStrk  = flag.Int64("audit-streak", 0, "Audit the payout of this streak tournament id")
		auditPvP   = flag.Int64("audit-pvp", 0, "Audit the payout of this PvP tournament id")
		verbose    = flag.Bool("verbose", false, "Print zero payouts and debug logs")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		payoutcli.ShowHelp(os.Stdout)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := payoutcli.SetupLogging(cfg.LogLevel, *verbose); err != nil {
		os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	// A one-shot run has no scraper.
	metrics.Init(cfg.MetricsOptions("payout")...)
	metrics.SetEnabled(false)

	run := &payoutcli.Config{
		Kind:       model.Kind(*kind),
		Period:     *period,
		AllPeriods: *allPeriods,
		Yes:        *yes,
		DryRun:     *dryRun,
		OutputFile: *output,
		Verbose:    *verbose,
	}
	var audit *tournament
	switch {
	case *auditStrk != 0:
		audit = &tournament{kind: model.TournamentStreak, id: *auditStrk}
	case *auditPvP != 0:
		audit = &tournament{kind: model.TournamentPvP, id: *auditPvP}
	}
	if err := execute(ctx, cfg, run, audit); err != nil {
		logger.Get().Error(ctx, "payout failed", logger.Error(err))
		if errors.Is(err, payoutcli.ErrUsage) {
			payoutcli.ShowHelp(os.Stderr)
		}
		os.Exit(1)
	}
}

// tournament selects an audit instead of a payout run.
type tournament struct {
	kind model.TournamentKind
	id   int64
}

func execute(ctx context.Context, cfg *config.Config, run *payoutcli.Config, audit *tournament) error {
	if audit == nil {
		if err := run.Validate(); err != nil {
			return err
		}
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required (QUIZ_DATABASE_URL)")
	}

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		return err
	}
	defer pool.Close()

	opts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	svc, err := app.New(repository.NewPostgresStore(pool, cfg.StoreOptions()...), opts...)
	if err != nil {
		return err
	}

	runner := payoutcli.NewRunner(svc, os.Stdin, os.Stdout)
	if audit != nil {
		_, err = runner.Audit(ctx, audit.kind, audit.id)
		return err
	}
	_, err = runner.Run(ctx, run)
	return err
}
