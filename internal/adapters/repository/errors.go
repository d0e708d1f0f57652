package repository

import "errors"

// Sentinel errors for repository operations.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownBoard  = errors.New("unknown board")
	ErrUnknownAsset  = errors.New("unknown asset")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidPeriod = errors.New("invalid period")
)
