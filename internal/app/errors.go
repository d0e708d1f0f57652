package service

import "errors"

var (
	// ErrInvalidArgument is returned when a caller supplies an unusable argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidDate is returned when a date or period is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
	// ErrIncomplete is returned by Apply when some payouts were not written.
	ErrIncomplete = errors.New("payouts incomplete")
)
