package config

import "errors"

var (
	// ErrInvalidConfig wraps every field or schedule that fails Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps failures reading .env, the QUIZ_CONFIG file or the
	// QUIZ_ environment.
	ErrLoadConfig = errors.New("load config failed")
)
