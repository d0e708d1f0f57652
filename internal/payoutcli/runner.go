// Package payoutcli runs reward distributions from the command line: plan,
// print, confirm, apply.
package payoutcli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Service is what a payout run needs from the application service.
type Service interface {
	Today() string
	Periods(ctx context.Context, kind model.Kind) ([]string, error)
	Plan(ctx context.Context, kind model.Kind, period string) (model.Plan, error)
	Apply(ctx context.Context, plan model.Plan) (model.ApplyReport, error)
	AuditTournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentAudit, error)
}

// Runner drives one payout run over stdin and stdout.
type Runner struct {
	svc    Service
	in     *bufio.Reader
	out    io.Writer
	logger logger.Logger
}

// NewRunner creates a Runner reading answers from in and printing to out.
func NewRunner(svc Service, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		svc:    svc,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger.Get().Named("payout"),
	}
}

// Run plans every requested period and applies the plans that are confirmed.
// A failing period does not stop the others; the error reports the first one.
func (r *Runner) Run(ctx context.Context, cfg *Config) (Stats, error) {
	var stats Stats
	if err := cfg.Validate(); err != nil {
		return stats, err
	}

	periods, err := r.periods(ctx, cfg)
	if err != nil {
		return stats, err
	}
	stats.Periods = len(periods)

	r.logger.Info(ctx, "starting payout run",
		logger.String("kind", string(cfg.Kind)),
		logger.Int("periods", len(periods)),
		logger.Bool("dry_run", cfg.DryRun),
		logger.Bool("yes", cfg.Yes))

	var (
		plans    []model.Plan
		firstErr error
	)
	for _, period := range periods {
		plan, err := r.runPeriod(ctx, cfg, period, &stats)
		if plan.RunID != "" {
			plans = append(plans, plan)
		}
		if err != nil {
			stats.Failed++
			r.logger.Error(ctx, "period failed", logger.String("period", period), logger.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s %s: %w", cfg.Kind, period, err)
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	if cfg.OutputFile != "" {
		if err := savePlans(cfg.OutputFile, plans); err != nil {
			r.logger.Warn(ctx, "failed to save plans", logger.Error(err))
		}
	}

	r.logger.Info(ctx, "payout run finished",
		logger.Int("planned", stats.Planned),
		logger.Int("applied", stats.Applied),
		logger.Int("declined", stats.Declined),
		logger.Int("skipped", stats.Skipped),
		logger.Int("failed", stats.Failed))

	if firstErr != nil {
		return stats, errors.Join(ErrIncomplete, firstErr)
	}
	return stats, nil
}

func (r *Runner) periods(ctx context.Context, cfg *Config) ([]string, error) {
	switch {
	case cfg.AllPeriods:
		ps, err := r.svc.Periods(ctx, cfg.Kind)
		if err != nil {
			return nil, fmt.Errorf("list periods: %w", err)
		}
		return ps, nil
	case cfg.Period == "":
		return []string{r.svc.Today()}, nil
	default:
		return []string{cfg.Period}, nil
	}
}

// runPeriod plans, prints and possibly applies one period.
func (r *Runner) runPeriod(ctx context.Context, cfg *Config, period string, stats *Stats) (model.Plan, error) {
	plan, err := r.svc.Plan(ctx, cfg.Kind, period)
	if err != nil {
		return model.Plan{}, fmt.Errorf("plan: %w", err)
	}
	stats.Planned++
	PrintPlan(r.out, plan, cfg.Verbose)

	jobs := len(plan.Creditable())
	switch {
	case jobs == 0:
		stats.Skipped++
		_, _ = fmt.Fprintln(r.out, "Nothing to credit.")
		return plan, nil
	case cfg.DryRun:
		return plan, nil
	case !cfg.Yes:
		ok, err := Confirm(r.in, r.out, fmt.Sprintf("Apply %d payouts for %s %s?", jobs, cfg.Kind, period))
		if err != nil {
			return plan, err
		}
		if !ok {
			stats.Declined++
			_, _ = fmt.Fprintln(r.out, "Skipped.")
			return plan, nil
		}
	}

	report, err := r.svc.Apply(ctx, plan)
	PrintReport(r.out, report)
	stats.Applied += report.Applied
	if err != nil {
		return plan, fmt.Errorf("apply: %w", err)
	}
	return plan, nil
}

// savePlans writes the plans as indented JSON.
func savePlans(filename string, plans []model.Plan) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plans: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write plans: %w", err)
	}
	return nil
}
