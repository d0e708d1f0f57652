package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/quizrewards/internal/domain/model"
	"github.com/okian/quizrewards/internal/domain/seed"
	"github.com/okian/quizrewards/internal/domain/usdc"
)

// Pool defaults.
const (
	defaultMinConns = 2
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, dsn string, maxConns int32, maxIdle, maxLife time.Duration) (*pgxpool.Pool, error) {
	const op = "repository.NewPool"

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: parse dsn: %w", op, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MinConns = min(defaultMinConns, cfg.MaxConns)
	if maxIdle > 0 {
		cfg.MaxConnIdleTime = maxIdle
	}
	if maxLife > 0 {
		cfg.MaxConnLifetime = maxLife
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: create pool: %w", op, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	return pool, nil
}

// PostgresStore implements Store over the platform's Postgres schema.
type PostgresStore struct {
	db              DB
	treasuryUserID  int64
	treasuryAssetID int64
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps an open pool.
func NewPostgresStore(db DB, opts ...Option) *PostgresStore {
	s := &PostgresStore{
		db:              db,
		treasuryUserID:  DefaultTreasuryUserID,
		treasuryAssetID: DefaultTreasuryAssetID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ranking queries per board. Each returns user_id, username, rank, score.
// LIMIT NULL means no limit.
var rankingQueries = map[model.Board]string{ //nolint:gochecknoglobals // static SQL
	model.BoardDailyScores: `
		SELECT s.user_id::text, COALESCE(u.username, ''), s.rank::int, s.score::float8
		FROM daily_user_scores_with_history s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.date = $1::date
		ORDER BY s.rank ASC, s.user_id ASC
		LIMIT NULLIF($2::int, 0)`,
	model.BoardDailyReactions: `
		SELECT r.user_id::text, COALESCE(u.username, ''), r.rank::int, r.reaction_count::float8
		FROM daily_user_reactions r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.date = $1::date
		ORDER BY r.rank ASC, r.user_id ASC
		LIMIT NULLIF($2::int, 0)`,
	model.BoardWeeklyReactions: `
		SELECT w.user_id::text, COALESCE(u.username, ''), w.user_rank::int, w.current_score::float8
		FROM weekly_rolling_rank_user_reactions_with_history3 w
		LEFT JOIN users u ON u.id = w.user_id
		WHERE w.start_week = $1::date
		ORDER BY w.user_rank ASC, w.user_id ASC
		LIMIT NULLIF($2::int, 0)`,
}

var periodQueries = map[model.Board]string{ //nolint:gochecknoglobals // static SQL
	model.BoardDailyScores:     `SELECT DISTINCT to_char(date, 'YYYY-MM-DD') FROM daily_user_scores_with_history ORDER BY 1`,
	model.BoardDailyReactions:  `SELECT DISTINCT to_char(date, 'YYYY-MM-DD') FROM daily_user_reactions ORDER BY 1`,
	model.BoardWeeklyReactions: `SELECT DISTINCT to_char(start_week, 'YYYY-MM-DD') FROM weekly_rolling_rank_user_reactions_with_history3 ORDER BY 1`,
}

var unitQueries = map[model.Board]string{ //nolint:gochecknoglobals // static SQL
	model.BoardDailyScores: `SELECT count(*) FROM questions WHERE date = $1::date`,
	// whole calendar day in the database time zone
	model.BoardDailyReactions: `SELECT count(*) FROM reactions WHERE created_at >= $1::date AND created_at < $1::date + 1`,
}

// Rankings implements RankingSource.
func (s *PostgresStore) Rankings(ctx context.Context, board model.Board, period string, limit int) ([]model.Participant, error) {
	const op = "repository.Rankings"

	q, ok := rankingQueries[board]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, board, ErrUnknownBoard)
	}
	if err := checkPeriod(period); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, q, period, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Participant, error) {
		var p model.Participant
		err := row.Scan(&p.UserID, &p.Username, &p.Rank, &p.Score)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// Periods implements RankingSource.
func (s *PostgresStore) Periods(ctx context.Context, board model.Board) ([]string, error) {
	const op = "repository.Periods"

	q, ok := periodQueries[board]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, board, ErrUnknownBoard)
	}
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// UnitCount implements RankingSource.
func (s *PostgresStore) UnitCount(ctx context.Context, board model.Board, period string) (int, error) {
	const op = "repository.UnitCount"

	q, ok := unitQueries[board]
	if !ok {
		return 0, fmt.Errorf("%s: %q: %w", op, board, ErrUnknownBoard)
	}
	if err := checkPeriod(period); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var n int64
	if err := s.db.QueryRow(ctx, q, period).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// TreasuryBalance implements RankingSource.
func (s *PostgresStore) TreasuryBalance(ctx context.Context, at time.Time) (float64, error) {
	const op = "repository.TreasuryBalance"

	var balance float64
	err := s.db.QueryRow(ctx, `
		SELECT cumulative_amount::float8
		FROM user_balances_assets_history
		WHERE user_id = $1 AND asset_id = $2 AND transaction_timestamp <= $3
		ORDER BY transaction_timestamp DESC
		LIMIT 1`, s.treasuryUserID, s.treasuryAssetID, at).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s: no treasury history before %s: %w", op, at.Format(time.RFC3339), ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return balance, nil
}

// TokenHolders implements RankingSource.
func (s *PostgresStore) TokenHolders(ctx context.Context, creatorIDs []string, at time.Time) ([]model.Holding, error) {
	const op = "repository.TokenHolders"

	if len(creatorIDs) == 0 {
		return []model.Holding{}, nil
	}
	ids, err := parseIDs(creatorIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (h.external_id, h.user_id)
			h.external_id::text, h.user_id::text, COALESCE(u.username, ''), h.cumulative_amount::float8
		FROM user_balances_assets_history h
		LEFT JOIN users u ON u.id = h.user_id
		WHERE h.external_id = ANY($1::bigint[]) AND h.transaction_timestamp <= $2
		ORDER BY h.external_id ASC, h.user_id ASC, h.transaction_timestamp DESC`, ids, at)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Holding, error) {
		var h model.Holding
		err := row.Scan(&h.CreatorID, &h.HolderID, &h.Username, &h.Amount)
		return h, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// QuestionIDs implements CatalogSource.
func (s *PostgresStore) QuestionIDs(ctx context.Context, date string) ([]string, error) {
	const op = "repository.QuestionIDs"

	if err := checkPeriod(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := s.db.Query(ctx, `SELECT id::text FROM questions WHERE date = $1::date ORDER BY id`, date)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// UserIDs implements CatalogSource.
func (s *PostgresStore) UserIDs(ctx context.Context, limit int) ([]string, error) {
	const op = "repository.UserIDs"

	rows, err := s.db.Query(ctx, `SELECT id::text FROM users ORDER BY id LIMIT NULLIF($1::int, 0)`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// Tournament implements TournamentSource.
func (s *PostgresStore) Tournament(ctx context.Context, kind model.TournamentKind, id int64) (model.TournamentSummary, error) {
	const op = "repository.Tournament"

	out := model.TournamentSummary{ID: id, Kind: kind}
	err := s.db.QueryRow(ctx, `SELECT COALESCE(usdc_prize, 0)::bigint FROM tournaments WHERE id = $1`, id).Scan(&out.Prize)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TournamentSummary{}, fmt.Errorf("%s: tournament %d: %w", op, id, ErrNotFound)
	}
	if err != nil {
		return model.TournamentSummary{}, fmt.Errorf("%s: prize: %w", op, err)
	}

	if kind == model.TournamentStreak {
		var players int64
		if err := s.db.QueryRow(ctx, `
			SELECT count(*), count(DISTINCT user_id)
			FROM streak_tournament_transactions
			WHERE tournament_id = $1 AND user_transaction_id IS NOT NULL`, id).Scan(&out.Transactions, &players); err != nil {
			return model.TournamentSummary{}, fmt.Errorf("%s: transactions: %w", op, err)
		}
		out.Players = int(players)
	}

	rows, err := s.db.Query(ctx, `
		SELECT trd.user_id::text, COALESCE(u.username, ''), trd.reward::bigint
		FROM tournaments_reward_distribution trd
		LEFT JOIN users u ON u.id = trd.user_id
		WHERE trd.tournament_id = $1
		ORDER BY trd.reward DESC, trd.user_id ASC`, id)
	if err != nil {
		return model.TournamentSummary{}, fmt.Errorf("%s: rewards: %w", op, err)
	}
	out.Rewards, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TournamentReward, error) {
		var r model.TournamentReward
		err := row.Scan(&r.UserID, &r.Username, &r.Reward)
		return r, err
	})
	if err != nil {
		return model.TournamentSummary{}, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

// balanceColumns whitelists the users columns an asset may increment.
var balanceColumns = map[model.Asset]string{ //nolint:gochecknoglobals // static SQL
	model.AssetGoldBars: "gold_bars",
	model.AssetGems:     "gems",
}

// notificationAmountColumns names the notification column carrying the amount.
var notificationAmountColumns = map[model.Asset]string{ //nolint:gochecknoglobals // static SQL
	model.AssetGoldBars: "gold_amount",
	model.AssetGems:     "gem_amount",
	model.AssetUSDC:     "usdc_amount",
}

// Credit implements Ledger. Balance change and notifications commit together.
func (s *PostgresStore) Credit(ctx context.Context, p model.Payout) (err error) {
	const op = "repository.Credit"

	userID, err := strconv.ParseInt(p.UserID, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: user %q: %w", op, p.UserID, ErrInvalidID)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if p.Amount > 0 {
		if err = s.creditBalance(ctx, tx, userID, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if p.Notification != "" {
			if err = s.notifyAmount(ctx, tx, userID, p); err != nil {
				return fmt.Errorf("%s: notify: %w", op, err)
			}
		}
	}
	if p.RankNotice {
		if _, err = tx.Exec(ctx, `
			INSERT INTO notifications ("for", type, rank, competition_name)
			VALUES ($1, $2, $3, $4)`, userID, model.NotifyRank, p.Rank, "reactions"); err != nil {
			return fmt.Errorf("%s: rank notice: %w", op, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) creditBalance(ctx context.Context, tx pgx.Tx, userID int64, p model.Payout) error {
	if p.Asset == model.AssetUSDC {
		if _, err := tx.Exec(ctx, `SELECT transfer_asset($1, $2, $3::numeric)`,
			s.treasuryUserID, userID, usdc.Exact(usdc.ToUSDC(p.Amount))); err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		return nil
	}

	col, ok := balanceColumns[p.Asset]
	if !ok {
		return fmt.Errorf("%q: %w", p.Asset, ErrUnknownAsset)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE users SET `+col+` = `+col+` + $2 WHERE id = $1`, userID, int64(math.Round(p.Amount)))
	if err != nil {
		return fmt.Errorf("increment %s: %w", col, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) notifyAmount(ctx context.Context, tx pgx.Tx, userID int64, p model.Payout) error {
	col, ok := notificationAmountColumns[p.Asset]
	if !ok {
		return fmt.Errorf("%q: %w", p.Asset, ErrUnknownAsset)
	}

	var amount any = int64(math.Round(p.Amount))
	if p.Asset == model.AssetUSDC {
		amount = usdc.Exact(usdc.ToUSDC(p.Amount))
	}

	var from *int64
	if p.FromUserID != "" {
		id, err := strconv.ParseInt(p.FromUserID, 10, 64)
		if err != nil {
			return fmt.Errorf("from user %q: %w", p.FromUserID, ErrInvalidID)
		}
		from = &id
	}

	var rank *int
	if p.Role != model.RoleRanked {
		rank = &p.Rank
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO notifications ("for", "from", type, rank, `+col+`, is_checked)
		VALUES ($1, $2, $3, $4, $5::numeric, false)`, userID, from, p.Notification, rank, amount)
	return err
}

func parseIDs(ids []string) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", id, ErrInvalidID)
		}
		out = append(out, v)
	}
	return out, nil
}

func checkPeriod(period string) error {
	if _, err := time.Parse(seed.DateLayout, period); err != nil {
		return fmt.Errorf("%q: %w", period, ErrInvalidPeriod)
	}
	return nil
}
