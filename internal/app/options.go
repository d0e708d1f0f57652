package service

import (
	"time"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/reward"
	"github.com/okian/quizrewards/internal/domain/selection"
	"github.com/okian/quizrewards/pkg/logger"
)

// Default service configuration constants.
const (
	defaultWorkerCount    = 4
	defaultQueueSize      = 10000
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
	// Weekly balances are read on the Sunday after the week starts, at 07:00 UTC.
	defaultUSDCCutoff = 6*24*time.Hour + 7*time.Hour
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSelectionCount sets how many questions each user receives per day.
func WithSelectionCount(n int) Option {
	return func(s *Service) {
		s.selector = selection.NewSelector(selection.WithCount(n))
	}
}

// WithSchedule overrides the tier multipliers of kind.
func WithSchedule(kind model.Kind, sch reward.Schedule) Option {
	return func(s *Service) {
		s.schedules[kind] = sch
	}
}

// WithExcludeLowest toggles dropping the lowest-ranked rows of kind before payout.
func WithExcludeLowest(kind model.Kind, exclude bool) Option {
	return func(s *Service) {
		s.excludeLowest[kind] = exclude
	}
}

// WithReferenceCohort sets how many top ranks share the USDC pool.
func WithReferenceCohort(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.referenceCohort = n
		}
	}
}

// WithCreatorShare sets the fraction of a USDC cut the creator keeps.
func WithCreatorShare(f float64) Option {
	return func(s *Service) {
		s.creatorShare = f
	}
}

// WithUSDCCutoff sets the offset from the week start at which balances are read.
func WithUSDCCutoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.usdcCutoff = d
		}
	}
}

// WithWorkerCount sets the number of ledger writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the minimum job queue capacity of an apply run.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many applied payout keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRateLimit caps ledger writes per second across all workers.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Service) {
		s.ratePerSecond = perSecond
		s.rateBurst = burst
	}
}

// WithRetry sets the ledger attempt budget and first backoff delay.
func WithRetry(maxAttempts int, initial time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if initial > 0 {
			s.initialBackoff = initial
		}
	}
}

// WithClock replaces the time source used for defaults and plan timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}
