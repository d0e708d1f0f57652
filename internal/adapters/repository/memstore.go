package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/quizrewards/internal/domain/model"
)

// MemoryStore is an in-process Store used by tests and dry runs.
type MemoryStore struct {
	mu sync.RWMutex

	rankings  map[model.Board]map[string][]model.Participant
	units     map[model.Board]map[string]int
	treasury  []treasuryPoint
	holdings  []holdingPoint
	questions map[string][]string
	users     []string

	tournaments map[int64]*tournamentRecord

	balances      map[string]map[model.Asset]float64
	notifications []Notification

	// creditErr, when set, is consulted before every Credit.
	creditErr func(model.Payout) error
}

type treasuryPoint struct {
	at     time.Time
	amount float64
}

type tournamentRecord struct {
	prize   int64
	entries []string // paying user per paid entry
	rewards []model.TournamentReward
}

type holdingPoint struct {
	at time.Time
	h  model.Holding
}

// Notification is a notification row recorded by MemoryStore.Credit.
type Notification struct {
	For    string
	From   string
	Type   string
	Rank   int
	Asset  model.Asset
	Amount float64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rankings:  make(map[model.Board]map[string][]model.Participant),
		units:     make(map[model.Board]map[string]int),
		questions: make(map[string][]string),
		balances:  make(map[string]map[model.Asset]float64),

		tournaments: make(map[int64]*tournamentRecord),
	}
}

// SetRankings replaces the board for a period.
func (m *MemoryStore) SetRankings(board model.Board, period string, rows []model.Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rankings[board] == nil {
		m.rankings[board] = make(map[string][]model.Participant)
	}
	m.rankings[board][period] = append([]model.Participant(nil), rows...)
}

// SetUnitCount sets the unit a daily board reports for a period.
func (m *MemoryStore) SetUnitCount(board model.Board, period string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.units[board] == nil {
		m.units[board] = make(map[string]int)
	}
	m.units[board][period] = n
}

// AddTreasuryBalance records the treasury balance as of at.
func (m *MemoryStore) AddTreasuryBalance(at time.Time, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.treasury = append(m.treasury, treasuryPoint{at: at, amount: amount})
}

// AddHolding records a holder's cumulative balance of a creator's token as of at.
func (m *MemoryStore) AddHolding(at time.Time, h model.Holding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = append(m.holdings, holdingPoint{at: at, h: h})
}

// SetQuestions sets the question pool for a date.
func (m *MemoryStore) SetQuestions(date string, ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[date] = append([]string(nil), ids...)
}

// SetUsers sets the user id list.
func (m *MemoryStore) SetUsers(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]string(nil), ids...)
}

// AddTournament registers a tournament and its sponsored prize in USDC base units.
func (m *MemoryStore) AddTournament(id, prize int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournaments[id] = &tournamentRecord{prize: prize}
}

// AddTournamentEntry records one paid entry by userID.
func (m *MemoryStore) AddTournamentEntry(id int64, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.tournaments[id]; t != nil {
		t.entries = append(t.entries, userID)
	}
}

// AddTournamentReward records a distributed reward.
func (m *MemoryStore) AddTournamentReward(id int64, r model.TournamentReward) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.tournaments[id]; t != nil {
		t.rewards = append(t.rewards, r)
	}
}

// FailCredits installs a hook that can fail Credit calls.
func (m *MemoryStore) FailCredits(fn func(model.Payout) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creditErr = fn
}

// Rankings implements RankingSource.
func (m *MemoryStore) Rankings(_ context.Context, board model.Board, period string, limit int) ([]model.Participant, error) {
	if _, ok := rankingQueries[board]; !ok {
		return nil, fmt.Errorf("repository.Rankings: %q: %w", board, ErrUnknownBoard)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := append([]model.Participant(nil), m.rankings[board][period]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []model.Participant{}
	}
	return rows, nil
}

// Periods implements RankingSource.
func (m *MemoryStore) Periods(_ context.Context, board model.Board) ([]string, error) {
	if _, ok := periodQueries[board]; !ok {
		return nil, fmt.Errorf("repository.Periods: %q: %w", board, ErrUnknownBoard)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.rankings[board]))
	for p := range m.rankings[board] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// UnitCount implements RankingSource.
func (m *MemoryStore) UnitCount(_ context.Context, board model.Board, period string) (int, error) {
	if _, ok := unitQueries[board]; !ok {
		return 0, fmt.Errorf("repository.UnitCount: %q: %w", board, ErrUnknownBoard)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.units[board][period], nil
}

// TreasuryBalance implements RankingSource.
func (m *MemoryStore) TreasuryBalance(_ context.Context, at time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best  treasuryPoint
		found bool
	)
	for _, p := range m.treasury {
		if p.at.After(at) {
			continue
		}
		if !found || p.at.After(best.at) {
			best, found = p, true
		}
	}
	if !found {
		return 0, fmt.Errorf("repository.TreasuryBalance: %w", ErrNotFound)
	}
	return best.amount, nil
}

// TokenHolders implements RankingSource.
func (m *MemoryStore) TokenHolders(_ context.Context, creatorIDs []string, at time.Time) ([]model.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]bool, len(creatorIDs))
	for _, id := range creatorIDs {
		wanted[id] = true
	}

	type key struct{ creator, holder string }
	latest := make(map[key]holdingPoint)
	for _, hp := range m.holdings {
		if !wanted[hp.h.CreatorID] || hp.at.After(at) {
			continue
		}
		k := key{hp.h.CreatorID, hp.h.HolderID}
		if cur, ok := latest[k]; !ok || hp.at.After(cur.at) {
			latest[k] = hp
		}
	}

	out := make([]model.Holding, 0, len(latest))
	for _, hp := range latest {
		out = append(out, hp.h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatorID != out[j].CreatorID {
			return out[i].CreatorID < out[j].CreatorID
		}
		return out[i].HolderID < out[j].HolderID
	})
	return out, nil
}

// QuestionIDs implements CatalogSource.
func (m *MemoryStore) QuestionIDs(_ context.Context, date string) ([]string, error) {
	if err := checkPeriod(date); err != nil {
		return nil, fmt.Errorf("repository.QuestionIDs: %w", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.questions[date]...), nil
}

// UserIDs implements CatalogSource.
func (m *MemoryStore) UserIDs(_ context.Context, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.users
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return append([]string{}, ids...), nil
}

// Tournament implements TournamentSource.
func (m *MemoryStore) Tournament(_ context.Context, kind model.TournamentKind, id int64) (model.TournamentSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tournaments[id]
	if !ok {
		return model.TournamentSummary{}, fmt.Errorf("repository.Tournament: tournament %d: %w", id, ErrNotFound)
	}
	out := model.TournamentSummary{ID: id, Kind: kind, Prize: t.prize}
	if kind == model.TournamentStreak {
		players := make(map[string]bool)
		for _, u := range t.entries {
			players[u] = true
		}
		out.Transactions = int64(len(t.entries))
		out.Players = len(players)
	}
	out.Rewards = append([]model.TournamentReward{}, t.rewards...)
	sort.SliceStable(out.Rewards, func(i, j int) bool {
		if out.Rewards[i].Reward != out.Rewards[j].Reward {
			return out.Rewards[i].Reward > out.Rewards[j].Reward
		}
		return out.Rewards[i].UserID < out.Rewards[j].UserID
	})
	return out, nil
}

// Credit implements Ledger.
func (m *MemoryStore) Credit(_ context.Context, p model.Payout) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.creditErr != nil {
		if err := m.creditErr(p); err != nil {
			return err
		}
	}
	if p.Amount > 0 {
		if _, ok := notificationAmountColumns[p.Asset]; !ok {
			return fmt.Errorf("repository.Credit: %q: %w", p.Asset, ErrUnknownAsset)
		}
		if m.balances[p.UserID] == nil {
			m.balances[p.UserID] = make(map[model.Asset]float64)
		}
		m.balances[p.UserID][p.Asset] += p.Amount
		if p.Notification != "" {
			m.notifications = append(m.notifications, Notification{
				For: p.UserID, From: p.FromUserID, Type: p.Notification, Rank: p.Rank, Asset: p.Asset, Amount: p.Amount,
			})
		}
	}
	if p.RankNotice {
		m.notifications = append(m.notifications, Notification{For: p.UserID, Type: model.NotifyRank, Rank: p.Rank})
	}
	return nil
}

// Balance returns a user's credited amount of an asset.
func (m *MemoryStore) Balance(userID string, asset model.Asset) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID][asset]
}

// Notifications returns a copy of every notification written so far.
func (m *MemoryStore) Notifications() []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Notification(nil), m.notifications...)
}
