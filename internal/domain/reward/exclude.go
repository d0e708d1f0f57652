package reward

import "github.com/okian/quizrewards/internal/domain/model"

// ExcludeLowestRank drops every participant tied at the maximum rank and
// returns the kept rows plus how many were dropped. Order is preserved.
//
// The board's last place is treated as a placeholder row; whether that holds
// for every board is still an open product decision.
func ExcludeLowestRank(participants []model.Participant) ([]model.Participant, int) {
	if len(participants) == 0 {
		return []model.Participant{}, 0
	}
	lowest := participants[0].Rank
	for _, p := range participants[1:] {
		if p.Rank > lowest {
			lowest = p.Rank
		}
	}
	kept := make([]model.Participant, 0, len(participants))
	for _, p := range participants {
		if p.Rank < lowest {
			kept = append(kept, p)
		}
	}
	return kept, len(participants) - len(kept)
}
