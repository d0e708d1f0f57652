package payoutcli

import (
	"fmt"

	"github.com/okian/quizrewards/internal/domain/model"
)

// Config holds the options of one payout run.
type Config struct {
	Kind       model.Kind // Reward kind to distribute
	Period     string     // Day or week start; empty means today for daily kinds
	AllPeriods bool       // Run every period the board has data for
	Yes        bool       // Apply without asking
	DryRun     bool       // Print the plan only
	OutputFile string     // Optional JSON dump of every plan
	Verbose    bool       // Print zero payouts too
}

// Validate checks that the flags combine into a runnable job and normalizes Kind.
func (c *Config) Validate() error {
	kind, err := model.ParseKind(string(c.Kind))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	c.Kind = kind
	if c.AllPeriods && c.Period != "" {
		return fmt.Errorf("%w: -period and -all-periods are exclusive", ErrUsage)
	}
	if c.Kind.Weekly() && !c.AllPeriods && c.Period == "" {
		return fmt.Errorf("%w: %s needs -period (the week start) or -all-periods", ErrUsage, c.Kind)
	}
	if c.DryRun && c.Yes {
		return fmt.Errorf("%w: -dry-run and -yes are exclusive", ErrUsage)
	}
	return nil
}

// Stats holds the outcome of a run across periods.
type Stats struct {
	Planned  int
	Applied  int
	Skipped  int
	Failed   int
	Periods  int
	Declined int
}
