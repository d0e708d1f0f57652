package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/quizrewards/internal/adapters/repository"
	app "github.com/okian/quizrewards/internal/app"
	"github.com/okian/quizrewards/internal/config"
	"github.com/okian/quizrewards/internal/payoutcli"
	"github.com/okian/quizrewards/pkg/logger"
	"github.com/okian/quizrewards/pkg/metrics"
)

func main() {
	var (
		date    = flag.String("date", "", "Quiz day, YYYY-MM-DD (default today UTC)")
		users   = flag.Int("users", 0, "Number of users to sample (default from config)")
		verbose = flag.Bool("verbose", false, "Enable debug logs")
	)
	flag.Parse()

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
	metrics.Init(cfg.MetricsOptions("qdist")...)
	metrics.SetEnabled(false)

	if *users <= 0 {
		*users = cfg.DistributionUsers
	}
	if err := run(ctx, cfg, *date, *users); err != nil {
		logger.Get().Error(ctx, "distribution failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, date string, users int) error {
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required (QUIZ_DATABASE_URL)")
	}
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMaxConnIdle, cfg.DBMaxConnLife)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, err := app.New(repository.NewPostgresStore(pool, cfg.StoreOptions()...),
		app.WithSelectionCount(cfg.SelectionCount))
	if err != nil {
		return err
	}

	hist, err := svc.QuestionDistribution(ctx, date, users)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Printf("Question distribution for %s over %d users (%d selections)\n", hist.Date, hist.Users, hist.Total())
	for _, b := range hist.Sorted() {
		p.Printf("question %-8s offered %6d times\n", b.Item, b.Count)
	}
	return nil
}
