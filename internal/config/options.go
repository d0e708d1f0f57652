package config

import (
	"fmt"

	"github.com/okian/quizrewards/internal/adapters/repository"
	service "github.com/okian/quizrewards/internal/app"
	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/reward"
	"github.com/okian/quizrewards/pkg/metrics"
)

// MetricsOptions translates the config into metrics options for the binary
// named tool.
func (c *Config) MetricsOptions(tool string) []metrics.Option {
	labels := make(map[string]string, len(c.MetricsLabels)+1)
	for k, v := range c.MetricsLabels {
		labels[k] = v
	}
	labels["tool"] = tool
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.MetricsEnabled),
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithMetricPrefix(c.MetricsPrefix),
		metrics.WithHistogramBuckets(c.MetricsBuckets),
		metrics.WithCustomLabels(labels),
	}
}

// ServiceOptions translates the config into service options.
func (c *Config) ServiceOptions() ([]service.Option, error) {
	opts := []service.Option{
		service.WithSelectionCount(c.SelectionCount),
		service.WithReferenceCohort(c.ReferenceCohort),
		service.WithCreatorShare(c.CreatorShare),
		service.WithUSDCCutoff(c.USDCCutoff),
		service.WithWorkerCount(c.WorkerCount),
		service.WithQueueSize(c.QueueSize),
		service.WithDedupeSize(c.DedupeSize),
		service.WithRateLimit(c.RatePerSecond, c.RateBurst),
		service.WithRetry(c.RetryAttempts, c.RetryBackoff),
	}

	for kind, values := range map[model.Kind][]float64{
		model.KindGold:  c.GoldSchedule,
		model.KindGem:   c.GemSchedule,
		model.KindCandy: c.CandySchedule,
	} {
		s, err := reward.NewSchedule(values)
		if err != nil {
			return nil, fmt.Errorf("%w: %s schedule: %w", ErrInvalidConfig, kind, err)
		}
		opts = append(opts, service.WithSchedule(kind, s))
	}

	exclude := make(map[model.Kind]bool, len(c.ExcludeLowest))
	for _, name := range c.ExcludeLowest {
		kind, err := model.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: exclude_lowest: %w", ErrInvalidConfig, err)
		}
		exclude[kind] = true
	}
	for _, kind := range model.Kinds() {
		opts = append(opts, service.WithExcludeLowest(kind, exclude[kind]))
	}
	return opts, nil
}

// StoreOptions translates the config into Postgres store options.
func (c *Config) StoreOptions() []repository.Option {
	return []repository.Option{
		repository.WithTreasuryUserID(c.TreasuryUserID),
		repository.WithTreasuryAssetID(c.TreasuryAssetID),
	}
}
