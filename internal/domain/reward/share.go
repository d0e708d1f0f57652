package reward

import (
	"fmt"
	"math"
)

// DefaultReferenceCohort is the number of top ranks the continuous split rewards.
const DefaultReferenceCohort = 15

// shareExponent shapes how quickly the curve falls off after first place.
const shareExponent = 1.5

// Share returns 1 - (ln(rank)/ln(n+1))^1.5 for 1 <= rank <= n. First place
// gets 1 and the curve decreases strictly toward rank n.
func Share(rank, n int) (float64, error) {
	if n < 1 || rank < 1 || rank > n {
		return 0, fmt.Errorf("reward.Share: rank %d of cohort %d: %w", rank, n, ErrInvalidArgument)
	}
	ratio := math.Log(float64(rank)) / math.Log(float64(n+1))
	return 1 - math.Pow(ratio, shareExponent), nil
}
