// Package repository reads rankings and catalog data from the platform database
// and writes payouts back to user balances.
package repository

import (
	"context"
	"time"

	"github.com/okian/quizrewards/internal/domain/model"
)

// RankingSource provides the ranked cohorts and pool inputs reward runs need.
type RankingSource interface {
	// Rankings returns the board for a period ordered by rank ascending.
	// A limit of 0 returns the whole board.
	Rankings(ctx context.Context, board model.Board, period string, limit int) ([]model.Participant, error)
	// Periods lists the periods a board has data for, oldest first.
	Periods(ctx context.Context, board model.Board) ([]string, error)
	// UnitCount returns the per-period unit for a daily board: questions
	// published for daily scores, reactions received for daily reactions.
	UnitCount(ctx context.Context, board model.Board, period string) (int, error)
	// TreasuryBalance returns the treasury's USDC balance at or before at.
	// Returns ErrNotFound when the treasury has no history yet.
	TreasuryBalance(ctx context.Context, at time.Time) (float64, error)
	// TokenHolders returns the latest holding per (creator, holder) at or before at.
	TokenHolders(ctx context.Context, creatorIDs []string, at time.Time) ([]model.Holding, error)
}

// CatalogSource provides the inputs of the daily question selection.
type CatalogSource interface {
	// QuestionIDs returns the question pool published for a date, in id order.
	QuestionIDs(ctx context.Context, date string) ([]string, error)
	// UserIDs returns up to limit user ids in id order.
	UserIDs(ctx context.Context, limit int) ([]string, error)
}

// TournamentSource provides what a tournament payout audit compares.
type TournamentSource interface {
	// Tournament returns the prize, paid entries and reward rows of a
	// tournament. Returns ErrNotFound if no tournament has the id.
	Tournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentSummary, error)
}

// Ledger applies payouts to user balances.
type Ledger interface {
	// Credit adds the payout to the user's balance and writes its notifications
	// atomically. Returns ErrNotFound if the user does not exist.
	Credit(ctx context.Context, p model.Payout) error
}

// Store bundles everything the application needs from the database.
type Store interface {
	RankingSource
	CatalogSource
	TournamentSource
	Ledger
}

// GroupByCreator indexes holdings by the creator whose token they hold.
func GroupByCreator(holdings []model.Holding) map[string][]model.Holding {
	out := make(map[string][]model.Holding)
	for _, h := range holdings {
		out[h.CreatorID] = append(out[h.CreatorID], h)
	}
	return out
}
