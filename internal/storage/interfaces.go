package storage

import (
	"context"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// CoinStore provides access to coins storage.
type CoinStore interface {
	// GetByAddress retrieves a coin by address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.Coin, error)

	// Upsert inserts or replaces the coin row atomically. Snapshot fields
	// are last-write-wins; latch fields only move false→true, a persisted
	// latch is preserved even if the incoming row has it unset.
	Upsert(ctx context.Context, c *domain.Coin) error

	// GetAll retrieves every coin, ordered by first_seen_at ASC.
	GetAll(ctx context.Context) ([]*domain.Coin, error)
}

// DeveloperStatsStore provides access to developer_stats storage.
type DeveloperStatsStore interface {
	// GetByDeveloper retrieves stats for a developer. Returns ErrNotFound if not exists.
	GetByDeveloper(ctx context.Context, developer string) (*domain.DeveloperStats, error)

	// RecordRug atomically creates the row with rugs_count=1 or increments
	// rugs_count and updates last_rug, returning the post-update stats.
	// Concurrent callers for the same developer serialize here.
	RecordRug(ctx context.Context, developer string, at time.Time) (*domain.DeveloperStats, error)
}

// EventLogStore records fired transitions for offline analysis.
// Append-only; rows are never updated or deleted.
type EventLogStore interface {
	// Insert appends one event.
	Insert(ctx context.Context, e *domain.TokenEvent) error

	// GetByAddress retrieves all events for a token, ordered by occurred_at ASC.
	GetByAddress(ctx context.Context, address string) ([]*domain.TokenEvent, error)
}
