package reward

import (
	"fmt"

	"github.com/okian/quizrewards/internal/domain/model"
)

// Input is everything a strategy may read. Each strategy uses a subset.
type Input struct {
	Participants []model.Participant
	// Unit scales tiered multipliers (question or reaction count, or 1).
	Unit float64
	// Pool is the total amount a CreatorSplit distributes.
	Pool float64
	// Holdings maps a creator's user id to the holders of their token.
	Holdings map[string][]model.Holding
}

// Strategy turns a ranked cohort into payouts.
type Strategy interface {
	Name() string
	Allocate(in Input) ([]model.Payout, error)
}

// Tiered pays unit * multiplier of the participant's percentile band.
type Tiered struct {
	Schedule     Schedule
	Asset        model.Asset
	Notification string
	// RankNotice marks every payout, including zero ones, for a rank notification.
	RankNotice bool
}

// Name implements Strategy.
func (Tiered) Name() string { return "tiered" }

// Allocate returns one payout per participant, in input order. The cohort size
// is the number of participants given.
func (t Tiered) Allocate(in Input) ([]model.Payout, error) {
	count := len(in.Participants)
	out := make([]model.Payout, 0, count)
	for _, p := range in.Participants {
		amount, err := CalculateReward(p.Rank, count, in.Unit, t.Schedule)
		if err != nil {
			return nil, fmt.Errorf("reward.Tiered: user %s: %w", p.UserID, err)
		}
		out = append(out, model.Payout{
			UserID:       p.UserID,
			Username:     p.Username,
			Rank:         p.Rank,
			Asset:        t.Asset,
			Amount:       amount,
			Role:         model.RoleRanked,
			Notification: t.Notification,
			RankNotice:   t.RankNotice,
		})
	}
	return out, nil
}

// DefaultCreatorShare is the fraction of a winner's cut kept by the creator.
const DefaultCreatorShare = 0.5

// CreatorSplit divides Pool across the top ReferenceCohort ranks by Share,
// normalised so the weights sum to one. Each winner keeps CreatorShare of
// their cut and the rest goes to their token holders by holding fraction.
// A winner without holders forfeits the holder part.
type CreatorSplit struct {
	ReferenceCohort int
	CreatorShare    float64
	Asset           model.Asset
}

// Name implements Strategy.
func (CreatorSplit) Name() string { return "creator_split" }

// Allocate implements Strategy.
func (c CreatorSplit) Allocate(in Input) ([]model.Payout, error) {
	const op = "reward.CreatorSplit"

	if c.ReferenceCohort < 1 {
		return nil, fmt.Errorf("%s: reference cohort %d: %w", op, c.ReferenceCohort, ErrInvalidArgument)
	}
	if c.CreatorShare < 0 || c.CreatorShare > 1 {
		return nil, fmt.Errorf("%s: creator share %v: %w", op, c.CreatorShare, ErrInvalidArgument)
	}
	if in.Pool < 0 {
		return nil, fmt.Errorf("%s: negative pool %v: %w", op, in.Pool, ErrInvalidArgument)
	}

	type weighted struct {
		p     model.Participant
		share float64
	}
	ranked := make([]weighted, 0, len(in.Participants))
	var total float64
	for _, p := range in.Participants {
		if p.Rank > c.ReferenceCohort {
			continue
		}
		s, err := Share(p.Rank, c.ReferenceCohort)
		if err != nil {
			return nil, fmt.Errorf("%s: user %s: %w", op, p.UserID, err)
		}
		ranked = append(ranked, weighted{p: p, share: s})
		total += s
	}

	out := make([]model.Payout, 0, len(ranked))
	if total == 0 {
		return out, nil
	}

	for _, w := range ranked {
		cut := in.Pool * w.share / total
		out = append(out, model.Payout{
			UserID:       w.p.UserID,
			Username:     w.p.Username,
			Rank:         w.p.Rank,
			Asset:        c.Asset,
			Amount:       cut * c.CreatorShare,
			Role:         model.RoleCreator,
			Notification: model.NotifyWon,
		})

		holders := in.Holdings[w.p.UserID]
		var supply float64
		for _, h := range holders {
			supply += h.Amount
		}
		if supply <= 0 {
			continue
		}
		holderPool := cut * (1 - c.CreatorShare)
		for _, h := range holders {
			out = append(out, model.Payout{
				UserID:       h.HolderID,
				Username:     h.Username,
				FromUserID:   w.p.UserID,
				Rank:         w.p.Rank,
				Asset:        c.Asset,
				Amount:       holderPool * h.Amount / supply,
				Role:         model.RoleHolder,
				Notification: model.NotifyDividends,
			})
		}
	}
	return out, nil
}

// Total sums payout amounts.
func Total(payouts []model.Payout) float64 {
	var t float64
	for _, p := range payouts {
		t += p.Amount
	}
	return t
}
