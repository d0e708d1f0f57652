package seed

import "errors"

// ErrInvalidArgument is returned when a seed input is empty.
var ErrInvalidArgument = errors.New("seed: invalid argument")
