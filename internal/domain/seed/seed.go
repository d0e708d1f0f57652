// Package seed derives per-user daily seeds and the pseudo-random stream built on them.
//
// Everything here is pure: the same inputs always produce the same outputs, on any
// machine, so a user's daily selection can be recomputed anywhere without stored state.
package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// DateLayout is the calendar-day format callers must use for the date component.
const DateLayout = "2006-01-02"

// seedHexDigits is how much of the hex digest becomes the seed (32 bits).
const seedHexDigits = 8

// LCG constants. Changing any of them changes every historical selection.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Derive maps (userID, date) to a 32-bit seed: the first eight hex characters of
// SHA-256(userID + date) read as a base-16 integer.
func Derive(userID, date string) (uint32, error) {
	const op = "seed.Derive"

	if userID == "" {
		return 0, fmt.Errorf("%s: empty user id: %w", op, ErrInvalidArgument)
	}
	if date == "" {
		return 0, fmt.Errorf("%s: empty date: %w", op, ErrInvalidArgument)
	}

	sum := sha256.Sum256([]byte(userID + date))
	prefix := hex.EncodeToString(sum[:])[:seedHexDigits]

	v, err := strconv.ParseUint(prefix, 16, 32)
	if err != nil {
		// unreachable: eight hex digits always fit in 32 bits
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return uint32(v), nil
}

// LCG is a linear-congruential generator scoped to a single shuffle.
// It is not safe for concurrent use; create one per call.
type LCG struct {
	state uint64
}

// NewLCG returns a generator starting from seed.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: uint64(seed)}
}

// Next advances the state and returns a draw in [0, 1).
func (g *LCG) Next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / lcgModulus
}
