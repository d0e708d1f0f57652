package reward

import "errors"

// Sentinel errors for reward computations.
var (
	ErrInvalidArgument = errors.New("reward: invalid argument")
	ErrInvalidSchedule = errors.New("reward: invalid schedule")
)
