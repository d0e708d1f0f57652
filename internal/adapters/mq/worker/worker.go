// Package worker applies queued payout jobs to the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/okian/quizrewards/internal/adapters/mq/queue"
	"github.com/okian/quizrewards/internal/domain/dedupe"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/pkg/logger"
	"github.com/okian/quizrewards/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 4
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
	backoffMultiplier     = 2
	poolShutdownTimeout   = 30 * time.Second
)

// Ledger writes a payout.
type Ledger interface {
	Credit(ctx context.Context, p model.Payout) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue closes or ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// Failure is a job that could not be applied.
type Failure struct {
	Job queue.Job
	Err error
}

// tally is shared by every worker of a pool.
type tally struct {
	applied   atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64

	mu       sync.Mutex
	failures []Failure
}

func (t *tally) fail(j queue.Job, err error) {
	t.failed.Add(1)
	t.mu.Lock()
	t.failures = append(t.failures, Failure{Job: j, Err: err})
	t.mu.Unlock()
}

// InMemoryWorker credits payouts one at a time.
type InMemoryWorker struct {
	queue   Queue
	ledger  Ledger
	deduper dedupe.Deduper
	limiter *rate.Limiter
	tally   *tally
	name    string

	maxAttempts    int
	initialBackoff time.Duration
	permanent      []error

	done   chan struct{}
	logger logger.Logger
}

// NewInMemoryWorker creates a worker. A nil deduper disables idempotency checks;
// a nil limiter disables throttling.
func NewInMemoryWorker(q Queue, ledger Ledger, deduper dedupe.Deduper, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:          q,
		ledger:         ledger,
		deduper:        deduper,
		tally:          &tally{},
		name:           "worker",
		maxAttempts:    defaultMaxAttempts,
		initialBackoff: defaultInitialBackoff,
		done:           make(chan struct{}),
		logger:         logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "payout failed",
					logger.String("run_id", j.RunID),
					logger.String("user_id", j.Payout.UserID),
					logger.String("asset", string(j.Payout.Asset)),
					logger.Float64("amount", j.Payout.Amount),
					logger.Error(err),
				)
			}
		}
	}
}

// process applies one job. Duplicates are counted, not errors.
func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: Job arrives by value from the channel
	key := j.Key()
	if w.deduper != nil && w.deduper.SeenAndRecord(ctx, key) {
		w.tally.duplicate.Add(1)
		metrics.RecordPayoutDuplicate()
		w.logger.Debug(ctx, "payout already applied", logger.String("key", key))
		return nil
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			w.forget(ctx, key)
			w.tally.fail(j, err)
			metrics.RecordPayoutFailed()
			return fmt.Errorf("worker: rate limiter wait failed: %w", err)
		}
	}

	start := time.Now()
	err := w.credit(ctx, j.Payout)
	metrics.RecordLedgerLatency(float64(time.Since(start).Milliseconds()))

	if err != nil {
		w.forget(ctx, key)
		w.tally.fail(j, err)
		metrics.RecordPayoutFailed()
		metrics.RecordErrorByComponent("worker", "credit")
		return err
	}

	w.tally.applied.Add(1)
	metrics.RecordPayoutApplied(string(j.Payout.Asset))
	return nil
}

// credit calls the ledger with exponential backoff. Errors wrapped with
// Permanent stop the retries early.
func (w *InMemoryWorker) credit(ctx context.Context, p model.Payout) error { //nolint:gocritic // hugeParam: copied once per job
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialBackoff
	b.Multiplier = backoffMultiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = backoff.WithMaxRetries(b, uint64(max(w.maxAttempts-1, 0)))
	policy = backoff.WithContext(policy, ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := w.ledger.Credit(ctx, p)
		if err != nil && w.isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		metrics.RecordLedgerRetry()
		w.logger.Warn(ctx, "credit failed, retrying",
			logger.String("user_id", p.UserID),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", w.maxAttempts),
			logger.String("wait", wait.String()),
			logger.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("worker: credit user %s after %d attempt(s): %w", p.UserID, attempt, err)
	}
	return nil
}

func (w *InMemoryWorker) forget(ctx context.Context, key string) {
	if w.deduper != nil {
		w.deduper.Unrecord(ctx, key)
	}
}

func (w *InMemoryWorker) isPermanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	for _, p := range w.permanent {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}

// Pool manages multiple workers that share a limiter, a deduper and a tally.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	tally   *tally
	started time.Time

	logger logger.Logger
}

// NewPool creates a worker pool. Options apply to every worker.
func NewPool(workerCount int, q Queue, ledger Ledger, deduper dedupe.Deduper, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		tally:   &tally{},
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, ledger, deduper,
			append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)...)
		w.tally = p.tally
		p.workers[i] = w
	}
	// one limiter for the whole pool so the rate is global
	if len(p.workers) > 0 && p.workers[0].limiter != nil {
		for _, w := range p.workers[1:] {
			w.limiter = p.workers[0].limiter
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	p.started = time.Now()
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Drain closes the queue and waits until every buffered job has been handled
// or ctx expires.
func (p *Pool) Drain(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	defer metrics.UpdateWorkerActiveCount(0)
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker: drain: %w", waitCtx.Err())
		}
	}
	return nil
}

// Report summarises what the pool did since Start.
func (p *Pool) Report(runID string) model.ApplyReport {
	r := model.ApplyReport{
		RunID:     runID,
		Applied:   int(p.tally.applied.Load()),
		Duplicate: int(p.tally.duplicate.Load()),
		Failed:    int(p.tally.failed.Load()),
	}
	if !p.started.IsZero() {
		r.Elapsed = time.Since(p.started)
	}
	return r
}

// Failures returns the jobs that could not be applied.
func (p *Pool) Failures() []Failure {
	p.tally.mu.Lock()
	defer p.tally.mu.Unlock()
	return append([]Failure(nil), p.tally.failures...)
}
