package repository

// Platform defaults for the treasury account.
const (
	DefaultTreasuryUserID  int64 = 0
	DefaultTreasuryAssetID int64 = 1
)

// Option applies a configuration option to the PostgresStore.
type Option func(*PostgresStore)

// WithTreasuryUserID sets the user that holds the USDC reward pool.
func WithTreasuryUserID(id int64) Option {
	return func(s *PostgresStore) {
		if id >= 0 {
			s.treasuryUserID = id
		}
	}
}

// WithTreasuryAssetID sets the asset id of USDC in the balances history.
func WithTreasuryAssetID(id int64) Option {
	return func(s *PostgresStore) {
		if id > 0 {
			s.treasuryAssetID = id
		}
	}
}
