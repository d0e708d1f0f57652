package reward

import (
	"fmt"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/usdc"
)

// streakFeeShare is the part of each paid streak attempt that feeds the prize pool.
const streakFeeShare = 0.9

// auditTopN is how many of the largest rewards an audit lists.
const auditTopN = 10

// Streak reward brackets in USDC base units.
const (
	streakLowReward  = 2_000_000
	streakHighReward = 3_000_000
)

// ExpectedStreakPool returns, in USDC fixed point, what a streak tournament
// should have paid out: 0.9 USDC per paid transaction plus the seeded prize.
func ExpectedStreakPool(transactions int64, prize int64) int64 {
	return usdc.ToUSDC(streakFeeShare*float64(transactions)) + prize
}

// ExpectedPvpPool returns what a PvP tournament should have paid out. Entry
// fees do not feed a PvP pool, so only the sponsored prize is distributed.
func ExpectedPvpPool(prize int64) int64 {
	return prize
}

// AuditTournament compares the expected pool of a tournament with the rewards
// recorded for it.
func AuditTournament(s model.TournamentSummary) (model.TournamentAudit, error) {
	a := model.TournamentAudit{
		ID:           s.ID,
		Kind:         s.Kind,
		Prize:        s.Prize,
		Transactions: s.Transactions,
		Players:      s.Players,
	}
	switch s.Kind {
	case model.TournamentStreak:
		a.Expected = ExpectedStreakPool(s.Transactions, s.Prize)
	case model.TournamentPvP:
		a.Expected = ExpectedPvpPool(s.Prize)
	default:
		return model.TournamentAudit{}, fmt.Errorf("reward.AuditTournament: %q: %w", s.Kind, model.ErrUnknownTournament)
	}

	rewarded := make(map[string]bool)
	low := make(map[string]bool)
	high := make(map[string]bool)
	above := make(map[string]bool)
	for _, r := range s.Rewards {
		a.Distributed += r.Reward
		rewarded[r.UserID] = true
		switch {
		case r.Reward == streakLowReward:
			low[r.UserID] = true
		case r.Reward == streakHighReward:
			high[r.UserID] = true
		case r.Reward > streakHighReward:
			above[r.UserID] = true
		}
	}
	a.Rewarded = len(rewarded)
	a.Diff = a.Expected - a.Distributed

	if s.Kind == model.TournamentStreak {
		a.Brackets = []model.RewardBracket{
			{Label: "2 USDC", Count: len(low)},
			{Label: "3 USDC", Count: len(high)},
			{Label: "over 3 USDC", Count: len(above)},
		}
	}

	top := s.Rewards
	if len(top) > auditTopN {
		top = top[:auditTopN]
	}
	a.Top = append([]model.TournamentReward{}, top...)
	return a, nil
}
