// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer overrides.
// - External errors must be wrapped with this package's sentinel errors.
package config

import (
	"runtime"
	"time"

	"github.com/okian/quizrewards/pkg/metrics"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// Metrics naming. Every binary adds its own "tool" label to MetricsLabels.
	MetricsEnabled   bool              `koanf:"metrics_enabled"`
	MetricsNamespace string            `koanf:"metrics_namespace" validate:"required"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsPrefix    string            `koanf:"metrics_prefix"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets" validate:"min=1,dive,gt=0"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`

	// DatabaseURL is the Postgres DSN of the platform database.
	DatabaseURL     string        `koanf:"database_url"`
	DBMaxConns      int32         `koanf:"db_max_conns" validate:"gte=1"`
	DBMaxConnIdle   time.Duration `koanf:"db_max_conn_idle" validate:"gt=0"`
	DBMaxConnLife   time.Duration `koanf:"db_max_conn_life" validate:"gt=0"`
	TreasuryUserID  int64         `koanf:"treasury_user_id" validate:"gte=0"`
	TreasuryAssetID int64         `koanf:"treasury_asset_id" validate:"gte=0"`

	// SelectionCount is how many questions each user gets per day.
	SelectionCount int `koanf:"selection_count" validate:"gte=1"`

	// DistributionUsers is the default sample size of the distribution audit.
	DistributionUsers int `koanf:"distribution_users" validate:"gte=1"`

	// Tier multipliers, top 1% first.
	GoldSchedule  []float64 `koanf:"gold_schedule" validate:"len=5"`
	GemSchedule   []float64 `koanf:"gem_schedule" validate:"len=5"`
	CandySchedule []float64 `koanf:"candy_schedule" validate:"len=5"`

	// ExcludeLowest lists the kinds whose lowest rank is dropped before payout.
	ExcludeLowest []string `koanf:"exclude_lowest" validate:"dive,oneof=gold gem candy usdc"`

	// ReferenceCohort is how many top weekly ranks share the USDC pool.
	ReferenceCohort int `koanf:"reference_cohort" validate:"gte=1"`

	// CreatorShare is the fraction of a USDC cut kept by the creator.
	CreatorShare float64 `koanf:"creator_share" validate:"gte=0,lte=1"`

	// USDCCutoff is the offset from the week start at which balances are read.
	USDCCutoff time.Duration `koanf:"usdc_cutoff" validate:"gt=0"`

	// Writer tuning.
	QueueSize     int           `koanf:"queue_size" validate:"gte=1"`
	WorkerCount   int           `koanf:"worker_count" validate:"gte=1"`
	DedupeSize    int           `koanf:"dedupe_size" validate:"gte=1"`
	RatePerSecond float64       `koanf:"rate_per_second" validate:"gte=0"`
	RateBurst     int           `koanf:"rate_burst" validate:"gte=0"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=1"`
	RetryBackoff  time.Duration `koanf:"retry_backoff" validate:"gt=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		ShutdownTimeout:   30 * time.Second,
		MetricsEnabled:    true,
		MetricsNamespace:  "quiz",
		MetricsSubsystem:  "rewards",
		MetricsBuckets:    append([]float64(nil), metrics.DefaultLatencyBuckets...),
		DBMaxConns:        10,
		DBMaxConnIdle:     5 * time.Minute,
		DBMaxConnLife:     time.Hour,
		TreasuryUserID:    0,
		TreasuryAssetID:   1,
		SelectionCount:    10,
		DistributionUsers: 150,
		GoldSchedule:      []float64{45, 15, 4, 1, 0},
		GemSchedule:       []float64{45, 15, 4, 1, 0},
		CandySchedule:     []float64{10000, 2500, 500, 250, 0},
		ExcludeLowest:     []string{"gold", "gem", "candy"},
		ReferenceCohort:   15,
		CreatorShare:      0.5,
		USDCCutoff:        6*24*time.Hour + 7*time.Hour,
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        50_000,
		RatePerSecond:     50,
		RateBurst:         5,
		RetryAttempts:     3,
		RetryBackoff:      time.Second,
	}
}
