// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownKind is returned by ParseKind for an unrecognised reward kind.
var ErrUnknownKind = errors.New("unknown reward kind")

// Kind names one of the reward runs the platform performs.
type Kind string

const (
	KindGold  Kind = "gold"  // daily score board, unit = questions published that day
	KindGem   Kind = "gem"   // daily reactions board, unit = reactions received that day
	KindCandy Kind = "candy" // weekly reactions board, flat schedule
	KindUSDC  Kind = "usdc"  // weekly reactions top N, treasury pool split with token holders
)

// Kinds lists every reward kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindGold, KindGem, KindCandy, KindUSDC}
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindGold, KindGem, KindCandy, KindUSDC:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownKind)
}

// Board is the ranking a kind reads its participants from.
type Board string

const (
	BoardDailyScores     Board = "daily_scores"
	BoardDailyReactions  Board = "daily_reactions"
	BoardWeeklyReactions Board = "weekly_reactions"
)

// Board returns the ranking the kind is computed from.
func (k Kind) Board() Board {
	switch k {
	case KindGold:
		return BoardDailyScores
	case KindGem:
		return BoardDailyReactions
	default:
		return BoardWeeklyReactions
	}
}

// Weekly reports whether the period is a week start rather than a single day.
func (k Kind) Weekly() bool {
	return k.Board() == BoardWeeklyReactions
}

// Asset is the balance a payout is credited to.
type Asset string

const (
	AssetGoldBars Asset = "gold_bars"
	AssetGems     Asset = "gems"
	AssetUSDC     Asset = "usdc"
)

// Asset returns the balance column a kind credits. Candy credits gold bars.
func (k Kind) Asset() Asset {
	switch k {
	case KindGem:
		return AssetGems
	case KindUSDC:
		return AssetUSDC
	default:
		return AssetGoldBars
	}
}

// Role says why a payout was made.
type Role string

const (
	RoleRanked  Role = "ranked"
	RoleCreator Role = "creator"
	RoleHolder  Role = "holder"
)

// Notification types written alongside a credit.
const (
	NotifyPrize     = "prize"
	NotifyRank      = "rank"
	NotifyWon       = "wonReactionCompetition"
	NotifyDividends = "earnedSharesDividends"
)

// Participant is one row of a ranking board.
type Participant struct {
	UserID   string
	Username string
	Rank     int
	Score    float64
}

// Holding is a holder's balance of a creator's token at a point in time.
type Holding struct {
	CreatorID string
	HolderID  string
	Username  string
	Amount    float64
}

// Payout is a single credit proposed by a reward strategy.
type Payout struct {
	UserID       string  `json:"user_id"`
	Username     string  `json:"username,omitempty"`
	FromUserID   string  `json:"from_user_id,omitempty"` // creator whose win paid a holder
	Rank         int     `json:"rank"`
	Asset        Asset   `json:"asset"`
	Amount       float64 `json:"amount"`
	Role         Role    `json:"role"`
	Notification string  `json:"notification,omitempty"` // sent with a positive credit
	RankNotice   bool    `json:"rank_notice,omitempty"`  // also tell the user their rank, even for zero
}

// Key identifies the payout within a run for idempotent application.
func (p Payout) Key(runID string) string {
	return runID + "/" + string(p.Role) + "/" + p.FromUserID + "/" + p.UserID
}

// Plan is the full proposed distribution for one kind and period.
type Plan struct {
	RunID    string    `json:"run_id"`
	Kind     Kind      `json:"kind"`
	Period   string    `json:"period"`
	Unit     float64   `json:"unit"`
	Eligible int       `json:"eligible"`
	Excluded int       `json:"excluded"`
	Payouts  []Payout  `json:"payouts"`
	Total    float64   `json:"total"`
	Created  time.Time `json:"created_at"`
}

// Creditable returns the payouts that touch the ledger: positive amounts, plus
// zero amounts that still carry a rank notice.
func (p Plan) Creditable() []Payout {
	out := make([]Payout, 0, len(p.Payouts))
	for _, po := range p.Payouts {
		if po.Amount > 0 || po.RankNotice {
			out = append(out, po)
		}
	}
	return out
}

// ApplyReport summarises a write-back run.
type ApplyReport struct {
	RunID     string        `json:"run_id"`
	Submitted int           `json:"submitted"`
	Applied   int           `json:"applied"`
	Duplicate int           `json:"duplicate"`
	Failed    int           `json:"failed"`
	Rejected  int           `json:"rejected"`
	Elapsed   time.Duration `json:"elapsed"`
}

// OK reports whether every submitted payout was applied or already present.
func (r ApplyReport) OK() bool {
	return r.Failed == 0 && r.Rejected == 0
}

// ErrUnknownTournament is returned by ParseTournamentKind for an unrecognised format.
var ErrUnknownTournament = errors.New("unknown tournament kind")

// TournamentKind is the format of a paid tournament.
type TournamentKind string

const (
	TournamentStreak TournamentKind = "streak" // entry fees feed the pool
	TournamentPvP    TournamentKind = "pvp"    // only the sponsored prize is paid out
)

// ParseTournamentKind converts user input into a TournamentKind.
func ParseTournamentKind(s string) (TournamentKind, error) {
	k := TournamentKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case TournamentStreak, TournamentPvP:
		return k, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownTournament)
}

// TournamentReward is one row of a tournament's reward distribution.
// Reward is in USDC base units.
type TournamentReward struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Reward   int64  `json:"reward"`
}

// TournamentSummary is what the database holds about a tournament's payout.
// Amounts are USDC base units; Rewards is ordered by reward descending.
type TournamentSummary struct {
	ID           int64
	Kind         TournamentKind
	Prize        int64
	Transactions int64 // paid entries, streak only
	Players      int   // distinct paying players, streak only
	Rewards      []TournamentReward
}

// TournamentAudit compares what a tournament should have paid with what it did.
type TournamentAudit struct {
	ID           int64              `json:"id"`
	Kind         TournamentKind     `json:"kind"`
	Prize        int64              `json:"prize"`
	Transactions int64              `json:"transactions"`
	Players      int                `json:"players"`
	Rewarded     int                `json:"rewarded"`
	Expected     int64              `json:"expected"`
	Distributed  int64              `json:"distributed"`
	Diff         int64              `json:"diff"`
	Brackets     []RewardBracket    `json:"brackets,omitempty"`
	Top          []TournamentReward `json:"top"`
}

// RewardBracket counts the distinct players whose reward falls in a range.
type RewardBracket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Balanced reports whether the distributed total matches the expected pool.
func (a TournamentAudit) Balanced() bool {
	return a.Diff == 0
}
