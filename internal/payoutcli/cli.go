package payoutcli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/quizrewards/pkg/logger"
)

// SetupLogging initialises the logger for a CLI. Logs go to stderr so the
// plan printed on stdout stays clean.
func SetupLogging(level string, verbose bool) error {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		level = "debug"
	}
	if level == "" {
		return nil
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the payout tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Quiz Rewards Payout Tool
========================

Computes the reward distribution for one kind and period, prints it, and
credits it after confirmation.

Usage:
  go run ./cmd/payout -kind KIND [options]

Options:
  -kind string
        Reward kind: gold, gem, candy or usdc
  -period string
        Day (gold, gem) or week start (candy, usdc), YYYY-MM-DD
  -all-periods
        Run every period that has ranking data
  -yes
        Apply without asking for confirmation
  -dry-run
        Print the distribution and exit
  -output string
        Write the plans as JSON to this file
  -audit-streak int
        Compare a streak tournament's rewards with its fees plus prize
  -audit-pvp int
        Compare a PvP tournament's rewards with its prize
  -verbose
        Print zero payouts and debug logs
  -help
        Show this help message

Examples:
  # Preview yesterday's gold prizes
  go run ./cmd/payout -kind gold -period 2024-10-11 -dry-run

  # Pay candy for every recorded week without prompting
  go run ./cmd/payout -kind candy -all-periods -yes

  # Check that streak tournament 42 paid out exactly its pool
  go run ./cmd/payout -audit-streak 42
`)
}
