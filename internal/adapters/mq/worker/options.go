package worker

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/quizrewards/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRateLimit throttles ledger writes to perSecond with the given burst.
// Non-positive rates leave writes unthrottled.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(w *InMemoryWorker) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
		}
	}
}

// WithRetry sets the attempt budget and the first backoff delay, which doubles
// after every failure.
func WithRetry(maxAttempts int, initial time.Duration) Option {
	return func(w *InMemoryWorker) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
		if initial > 0 {
			w.initialBackoff = initial
		}
	}
}

// WithPermanentErrors lists ledger errors that a retry cannot fix.
func WithPermanentErrors(errs ...error) Option {
	return func(w *InMemoryWorker) {
		w.permanent = append(w.permanent, errs...)
	}
}
