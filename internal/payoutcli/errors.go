package payoutcli

import "errors"

var (
	// ErrUsage is returned for an invalid flag combination.
	ErrUsage = errors.New("usage")
	// ErrIncomplete is returned when at least one period was not fully applied.
	ErrIncomplete = errors.New("payout run incomplete")
	// ErrUnbalanced is returned when a tournament paid out more or less than expected.
	ErrUnbalanced = errors.New("tournament distribution unbalanced")
)
