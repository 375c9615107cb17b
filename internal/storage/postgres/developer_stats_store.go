package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// DeveloperStatsStore implements storage.DeveloperStatsStore using PostgreSQL.
type DeveloperStatsStore struct {
	pool *Pool
}

// NewDeveloperStatsStore creates a new DeveloperStatsStore.
func NewDeveloperStatsStore(pool *Pool) *DeveloperStatsStore {
	return &DeveloperStatsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DeveloperStatsStore = (*DeveloperStatsStore)(nil)

// RecordRug creates the row with rugs_count=1 or increments it, in a
// single upsert. Row-level locking on the conflict target serializes
// concurrent rug events for the same developer, so the returned count
// is exact.
func (s *DeveloperStatsStore) RecordRug(ctx context.Context, developer string, at time.Time) (*domain.DeveloperStats, error) {
	if developer == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO developer_stats (developer, rugs_count, last_rug)
		VALUES ($1, 1, $2)
		ON CONFLICT (developer) DO UPDATE SET
			rugs_count = developer_stats.rugs_count + 1,
			last_rug = EXCLUDED.last_rug
		RETURNING developer, rugs_count, last_rug
	`

	var st domain.DeveloperStats
	err := s.pool.QueryRow(ctx, query, developer, at).Scan(
		&st.Developer,
		&st.RugsCount,
		&st.LastRug,
	)
	if err != nil {
		return nil, fmt.Errorf("record rug for developer %s: %w", developer, err)
	}
	return &st, nil
}

// GetByDeveloper retrieves stats for a developer. Returns ErrNotFound if not exists.
func (s *DeveloperStatsStore) GetByDeveloper(ctx context.Context, developer string) (*domain.DeveloperStats, error) {
	query := `SELECT developer, rugs_count, last_rug FROM developer_stats WHERE developer = $1`

	var st domain.DeveloperStats
	err := s.pool.QueryRow(ctx, query, developer).Scan(
		&st.Developer,
		&st.RugsCount,
		&st.LastRug,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get developer stats: %w", err)
	}
	return &st, nil
}
