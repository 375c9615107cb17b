package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// CoinStore implements storage.CoinStore using PostgreSQL.
type CoinStore struct {
	pool *Pool
}

// NewCoinStore creates a new CoinStore.
func NewCoinStore(pool *Pool) *CoinStore {
	return &CoinStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CoinStore = (*CoinStore)(nil)

const coinColumns = `
	address, chain, name, symbol, developer,
	total_supply, holder_count, top10_holder_percent, liquidity_usd,
	rug_detected, pump_detected, tier1_listed, cex_listed,
	first_seen_at, updated_at
`

// Upsert inserts or replaces the coin row in one statement. The OR on the
// latch columns keeps a persisted latch set even if the incoming row has
// it unset; snapshot columns are overwritten unconditionally.
func (s *CoinStore) Upsert(ctx context.Context, c *domain.Coin) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO coins (` + coinColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (address) DO UPDATE SET
			chain = EXCLUDED.chain,
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			developer = EXCLUDED.developer,
			total_supply = EXCLUDED.total_supply,
			holder_count = EXCLUDED.holder_count,
			top10_holder_percent = EXCLUDED.top10_holder_percent,
			liquidity_usd = EXCLUDED.liquidity_usd,
			rug_detected = coins.rug_detected OR EXCLUDED.rug_detected,
			pump_detected = coins.pump_detected OR EXCLUDED.pump_detected,
			tier1_listed = coins.tier1_listed OR EXCLUDED.tier1_listed,
			cex_listed = coins.cex_listed OR EXCLUDED.cex_listed,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		c.Address,
		c.Chain,
		c.Name,
		c.Symbol,
		c.Developer,
		c.TotalSupply,
		c.HolderCount,
		c.Top10HolderPct,
		c.LiquidityUSD,
		bool(c.RugDetected),
		bool(c.PumpDetected),
		bool(c.Tier1Listed),
		bool(c.CEXListed),
		c.FirstSeenAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert coin: %w", err)
	}
	return nil
}

// GetByAddress retrieves a coin by address. Returns ErrNotFound if not exists.
func (s *CoinStore) GetByAddress(ctx context.Context, address string) (*domain.Coin, error) {
	query := `SELECT ` + coinColumns + ` FROM coins WHERE address = $1`

	row := s.pool.QueryRow(ctx, query, address)
	c, err := scanCoin(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get coin by address: %w", err)
	}
	return c, nil
}

// GetAll retrieves every coin, ordered by first_seen_at ASC.
func (s *CoinStore) GetAll(ctx context.Context) ([]*domain.Coin, error) {
	query := `SELECT ` + coinColumns + ` FROM coins ORDER BY first_seen_at ASC, address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all coins: %w", err)
	}
	defer rows.Close()

	var coins []*domain.Coin
	for rows.Next() {
		c, err := scanCoin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coin row: %w", err)
		}
		coins = append(coins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin rows: %w", err)
	}

	return coins, nil
}

// scanCoin scans a single row into a Coin.
func scanCoin(row pgx.Row) (*domain.Coin, error) {
	var c domain.Coin
	var rug, pump, tier1, cex bool

	err := row.Scan(
		&c.Address,
		&c.Chain,
		&c.Name,
		&c.Symbol,
		&c.Developer,
		&c.TotalSupply,
		&c.HolderCount,
		&c.Top10HolderPct,
		&c.LiquidityUSD,
		&rug,
		&pump,
		&tier1,
		&cex,
		&c.FirstSeenAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.RugDetected = domain.Latch(rug)
	c.PumpDetected = domain.Latch(pump)
	c.Tier1Listed = domain.Latch(tier1)
	c.CEXListed = domain.Latch(cex)
	return &c, nil
}
