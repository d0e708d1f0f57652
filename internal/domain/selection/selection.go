// Package selection picks a reproducible per-user subset of a question pool for a given day.
package selection

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/quizrewards/internal/domain/seed"
)

// Shuffle returns a permutation of items driven by an LCG started at s.
// It walks from the last index down to 1 and swaps i with floor(draw*(i+1)).
// The input slice is left untouched.
func Shuffle[T any](items []T, s uint32) []T {
	out := make([]T, len(items))
	copy(out, items)

	g := seed.NewLCG(s)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(g.Next() * float64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectDaily returns the first min(k, len(pool)) items of the pool shuffled with the
// seed derived from userID and date. An empty pool yields an empty, non-nil result.
func SelectDaily[T any](userID string, pool []T, date string, k int) ([]T, error) {
	const op = "selection.SelectDaily"

	if k < 0 {
		return nil, fmt.Errorf("%s: negative count %d: %w", op, k, ErrInvalidArgument)
	}
	s, err := seed.Derive(userID, date)
	if err != nil {
		if errors.Is(err, seed.ErrInvalidArgument) {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(pool) == 0 {
		return []T{}, nil
	}

	shuffled := Shuffle(pool, s)
	return shuffled[:min(k, len(shuffled))], nil
}
