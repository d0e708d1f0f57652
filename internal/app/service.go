// Package service wires the selector, the reward strategies and the payout
// writer to the data store. Both the HTTP API and the CLIs go through it.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/quizrewards/internal/adapters/mq/queue"
	"github.com/okian/quizrewards/internal/adapters/mq/worker"
	"github.com/okian/quizrewards/internal/adapters/repository"
	"github.com/okian/quizrewards/internal/domain/dedupe"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/reward"
	"github.com/okian/quizrewards/internal/domain/seed"
	"github.com/okian/quizrewards/internal/domain/selection"
	"github.com/okian/quizrewards/pkg/logger"
	"github.com/okian/quizrewards/pkg/metrics"
)

// runNamespace scopes deterministic run ids.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("quizrewards/run")) //nolint:gochecknoglobals // constant namespace

// Service implements the operations exposed by the HTTP API and the CLIs.
type Service struct {
	store    repository.Store
	selector *selection.Selector
	deduper  dedupe.Deduper
	clock    func() time.Time

	// Rewards
	schedules       map[model.Kind]reward.Schedule
	excludeLowest   map[model.Kind]bool
	referenceCohort int
	creatorShare    float64
	usdcCutoff      time.Duration

	// Writer
	workerCount    int
	queueSize      int
	dedupeSize     int
	ratePerSecond  float64
	rateBurst      int
	maxAttempts    int
	initialBackoff time.Duration

	// Stats
	selections atomic.Int64
	plans      atomic.Int64
	applied    atomic.Int64
	failed     atomic.Int64
	audits     atomic.Int64

	applyMu sync.Mutex
	logger  logger.Logger
}

// New constructs a Service over store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service.New: nil store: %w", ErrInvalidArgument)
	}
	s := &Service{
		store:    store,
		selector: selection.NewSelector(),
		clock:    time.Now,
		schedules: map[model.Kind]reward.Schedule{
			model.KindGold:  reward.GoldSchedule,
			model.KindGem:   reward.GemSchedule,
			model.KindCandy: reward.CandySchedule,
		},
		excludeLowest: map[model.Kind]bool{
			model.KindGold:  true,
			model.KindGem:   true,
			model.KindCandy: true,
			model.KindUSDC:  false,
		},
		referenceCohort: reward.DefaultReferenceCohort,
		creatorShare:    reward.DefaultCreatorShare,
		usdcCutoff:      defaultUSDCCutoff,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		dedupeSize:      dedupe.DefaultMaxSize,
		rateBurst:       1,
		maxAttempts:     defaultMaxAttempts,
		initialBackoff:  defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	d, err := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}
	s.deduper = d
	return s, nil
}

// Today returns the current UTC calendar day in seed.DateLayout.
func (s *Service) Today() string {
	return s.clock().UTC().Format(seed.DateLayout)
}

// DailyQuestions returns the user's question subset for date. An empty date
// means today in UTC.
func (s *Service) DailyQuestions(ctx context.Context, userID, date string) ([]string, error) {
	const op = "service.DailyQuestions"

	if date == "" {
		date = s.Today()
	}
	if err := checkDate(date); err != nil {
		metrics.RecordSelectionError()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pool, err := s.store.QuestionIDs(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	picked, err := s.selector.Select(userID, pool, date)
	if err != nil {
		metrics.RecordSelectionError()
		if errors.Is(err, selection.ErrInvalidArgument) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.selections.Add(1)
	metrics.RecordSelection(len(picked))
	return picked, nil
}

// QuestionDistribution reports how often each question of date would be
// offered across the first userLimit users.
func (s *Service) QuestionDistribution(ctx context.Context, date string, userLimit int) (selection.Histogram, error) {
	const op = "service.QuestionDistribution"

	if date == "" {
		date = s.Today()
	}
	if err := checkDate(date); err != nil {
		return selection.Histogram{}, fmt.Errorf("%s: %w", op, err)
	}
	users, err := s.store.UserIDs(ctx, userLimit)
	if err != nil {
		return selection.Histogram{}, fmt.Errorf("%s: %w", op, err)
	}
	pool, err := s.store.QuestionIDs(ctx, date)
	if err != nil {
		return selection.Histogram{}, fmt.Errorf("%s: %w", op, err)
	}
	h, err := s.selector.Distribution(users, pool, date)
	if err != nil {
		return selection.Histogram{}, fmt.Errorf("%s: %w", op, err)
	}
	return h, nil
}

// Periods lists the periods with ranking data for kind.
func (s *Service) Periods(ctx context.Context, kind model.Kind) ([]string, error) {
	kind, err := model.ParseKind(string(kind))
	if err != nil {
		return nil, fmt.Errorf("service.Periods: %w: %w", ErrInvalidArgument, err)
	}
	periods, err := s.store.Periods(ctx, kind.Board())
	if err != nil {
		return nil, fmt.Errorf("service.Periods: %w", err)
	}
	return periods, nil
}

// Plan computes the proposed payouts of kind for period without writing anything.
func (s *Service) Plan(ctx context.Context, kind model.Kind, period string) (model.Plan, error) {
	const op = "service.Plan"

	kind, err := model.ParseKind(string(kind))
	if err != nil {
		return model.Plan{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}
	if err := checkDate(period); err != nil {
		return model.Plan{}, fmt.Errorf("%s: %w", op, err)
	}

	limit := 0
	if kind == model.KindUSDC {
		limit = s.referenceCohort
	}
	participants, err := s.store.Rankings(ctx, kind.Board(), period, limit)
	if err != nil {
		return model.Plan{}, fmt.Errorf("%s: rankings: %w", op, err)
	}

	excluded := 0
	if s.excludeLowest[kind] {
		participants, excluded = reward.ExcludeLowestRank(participants)
	}

	strategy, in, err := s.strategyFor(ctx, kind, period, participants)
	if err != nil {
		return model.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	payouts, err := strategy.Allocate(in)
	if err != nil {
		return model.Plan{}, fmt.Errorf("%s: %w", op, err)
	}

	plan := model.Plan{
		RunID:    RunID(kind, period),
		Kind:     kind,
		Period:   period,
		Unit:     in.Unit,
		Eligible: len(participants),
		Excluded: excluded,
		Payouts:  payouts,
		Total:    reward.Total(payouts),
		Created:  s.clock().UTC(),
	}
	if kind == model.KindUSDC {
		plan.Unit = in.Pool
	}

	s.plans.Add(1)
	metrics.RecordPlan(string(kind), plan.Eligible, plan.Excluded)
	for _, p := range payouts {
		metrics.RecordPayoutPlanned(string(p.Asset), strategy.Name(), p.Amount)
	}
	s.logger.Info(ctx, "plan computed",
		logger.String("run_id", plan.RunID),
		logger.String("kind", string(kind)),
		logger.String("period", period),
		logger.Int("eligible", plan.Eligible),
		logger.Int("excluded", plan.Excluded),
		logger.Float64("total", plan.Total),
	)
	return plan, nil
}

// strategyFor picks the strategy for kind and loads the inputs it reads.
func (s *Service) strategyFor(ctx context.Context, kind model.Kind, period string, participants []model.Participant) (reward.Strategy, reward.Input, error) {
	in := reward.Input{Participants: participants}

	switch kind {
	case model.KindGold, model.KindGem:
		unit, err := s.store.UnitCount(ctx, kind.Board(), period)
		if err != nil {
			return nil, in, fmt.Errorf("unit count: %w", err)
		}
		in.Unit = float64(unit)
		return reward.Tiered{
			Schedule:     s.schedules[kind],
			Asset:        kind.Asset(),
			Notification: model.NotifyPrize,
			RankNotice:   kind == model.KindGem,
		}, in, nil

	case model.KindCandy:
		in.Unit = 1
		return reward.Tiered{Schedule: s.schedules[kind], Asset: kind.Asset()}, in, nil

	case model.KindUSDC:
		at, err := s.cutoff(period)
		if err != nil {
			return nil, in, err
		}
		pool, err := s.store.TreasuryBalance(ctx, at)
		if err != nil {
			return nil, in, fmt.Errorf("treasury: %w", err)
		}
		ids := make([]string, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.UserID)
		}
		holders, err := s.store.TokenHolders(ctx, ids, at)
		if err != nil {
			return nil, in, fmt.Errorf("holders: %w", err)
		}
		in.Pool = pool
		in.Holdings = repository.GroupByCreator(holders)
		return reward.CreatorSplit{
			ReferenceCohort: s.referenceCohort,
			CreatorShare:    s.creatorShare,
			Asset:           kind.Asset(),
		}, in, nil
	}
	return nil, in, fmt.Errorf("kind %q: %w", kind, model.ErrUnknownKind)
}

// cutoff is the instant treasury and holder balances are read at for a week.
func (s *Service) cutoff(period string) (time.Time, error) {
	start, err := time.ParseInLocation(seed.DateLayout, period, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", period, ErrInvalidDate)
	}
	return start.Add(s.usdcCutoff), nil
}

// Apply writes the plan's creditable payouts through the worker pool.
// Payouts already applied by this process are skipped. Only one Apply runs at a time.
func (s *Service) Apply(ctx context.Context, plan model.Plan) (model.ApplyReport, error) {
	const op = "service.Apply"

	if plan.RunID == "" {
		return model.ApplyReport{}, fmt.Errorf("%s: plan has no run id: %w", op, ErrInvalidArgument)
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	jobs := plan.Creditable()
	q := queue.NewInMemoryQueue(queue.WithCapacity(max(s.queueSize, len(jobs))))
	pool := worker.NewPool(s.workerCount, q, s.store, s.deduper,
		worker.WithLogger(s.logger.Named("writer")),
		worker.WithRetry(s.maxAttempts, s.initialBackoff),
		worker.WithRateLimit(s.ratePerSecond, s.rateBurst),
		worker.WithPermanentErrors(repository.ErrNotFound, repository.ErrInvalidID, repository.ErrUnknownAsset),
	)
	pool.Start(ctx)

	rejected := 0
	for _, p := range jobs {
		if !q.Enqueue(ctx, queue.Job{RunID: plan.RunID, Payout: p}) {
			rejected++
		}
	}
	drainErr := pool.Drain(ctx)

	report := pool.Report(plan.RunID)
	report.Submitted = len(jobs)
	report.Rejected = rejected

	s.applied.Add(int64(report.Applied))
	s.failed.Add(int64(report.Failed))

	for _, f := range pool.Failures() {
		s.logger.Error(ctx, "payout not applied",
			logger.String("run_id", plan.RunID),
			logger.String("user_id", f.Job.Payout.UserID),
			logger.Float64("amount", f.Job.Payout.Amount),
			logger.Error(f.Err),
		)
	}
	s.logger.Info(ctx, "plan applied",
		logger.String("run_id", plan.RunID),
		logger.Int("submitted", report.Submitted),
		logger.Int("applied", report.Applied),
		logger.Int("duplicate", report.Duplicate),
		logger.Int("failed", report.Failed),
		logger.Int("rejected", report.Rejected),
	)

	if drainErr != nil {
		return report, fmt.Errorf("%s: %w", op, drainErr)
	}
	if !report.OK() {
		return report, fmt.Errorf("%s: %d failed, %d rejected: %w", op, report.Failed, report.Rejected, ErrIncomplete)
	}
	return report, nil
}

// AuditTournament compares what a tournament should have paid out with the
// rewards recorded for it. A mismatch is reported in the audit, not as an error.
func (s *Service) AuditTournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentAudit, error) {
	const op = "service.AuditTournament"

	kind, err := model.ParseTournamentKind(string(kind))
	if err != nil {
		return model.TournamentAudit{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}
	if id <= 0 {
		return model.TournamentAudit{}, fmt.Errorf("%s: tournament id %d: %w", op, id, ErrInvalidArgument)
	}

	summary, err := s.store.Tournament(ctx, kind, id)
	if err != nil {
		return model.TournamentAudit{}, fmt.Errorf("%s: %w", op, err)
	}
	audit, err := reward.AuditTournament(summary)
	if err != nil {
		return model.TournamentAudit{}, fmt.Errorf("%s: %w", op, err)
	}

	s.audits.Add(1)
	metrics.RecordTournamentAudit(string(kind), audit.Balanced())
	fields := []logger.Field{
		logger.String("kind", string(kind)),
		logger.Int64("tournament_id", id),
		logger.Int64("expected", audit.Expected),
		logger.Int64("distributed", audit.Distributed),
		logger.Int64("diff", audit.Diff),
	}
	if audit.Balanced() {
		s.logger.Info(ctx, "tournament audit balanced", fields...)
	} else {
		s.logger.Warn(ctx, "tournament payout mismatch", fields...)
	}
	return audit, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	return map[string]any{
		"selections":       s.selections.Load(),
		"plans":            s.plans.Load(),
		"payoutsApplied":   s.applied.Load(),
		"payoutsFailed":    s.failed.Load(),
		"tournamentAudits": s.audits.Load(),
		"dedupeSize":       s.deduper.Size(),
		"selectionCount":   s.selector.Count(),
		"referenceCohort":  s.referenceCohort,
		"workerCount":      s.workerCount,
	}
}

// RunID derives a stable run id so reruns of the same kind and period share
// idempotency keys.
func RunID(kind model.Kind, period string) string {
	return uuid.NewSHA1(runNamespace, []byte(string(kind)+"/"+period)).String()
}

func checkDate(date string) error {
	if _, err := time.Parse(seed.DateLayout, date); err != nil {
		return fmt.Errorf("%q: %w", date, ErrInvalidDate)
	}
	return nil
}
