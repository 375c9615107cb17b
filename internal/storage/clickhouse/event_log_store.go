package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// EventLogStore implements storage.EventLogStore using ClickHouse.
// token_events is an append-only MergeTree; the log is an audit trail,
// duplicates are tolerated and resolved at query time.
type EventLogStore struct {
	conn *Conn
}

// NewEventLogStore creates a new EventLogStore.
func NewEventLogStore(conn *Conn) *EventLogStore {
	return &EventLogStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventLogStore = (*EventLogStore)(nil)

// Insert appends one event.
func (s *EventLogStore) Insert(ctx context.Context, e *domain.TokenEvent) error {
	if e == nil || e.Address == "" || e.Type == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO token_events (
			address, chain, symbol, developer, event_type,
			top10_holder_percent, liquidity_usd, price_change_5m, price_change_1h,
			occurred_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.Address, e.Chain, e.Symbol, e.Developer, string(e.Type),
		e.Top10HolderPct, e.LiquidityUSD, e.PriceChange5m, e.PriceChange1h,
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByAddress retrieves all events for a token, ordered by occurred_at ASC.
func (s *EventLogStore) GetByAddress(ctx context.Context, address string) ([]*domain.TokenEvent, error) {
	query := `
		SELECT address, chain, symbol, developer, event_type,
		       top10_holder_percent, liquidity_usd, price_change_5m, price_change_1h,
		       occurred_at
		FROM token_events
		WHERE address = ?
		ORDER BY occurred_at ASC
	`

	rows, err := s.conn.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("query events by address: %w", err)
	}
	defer rows.Close()

	var events []*domain.TokenEvent
	for rows.Next() {
		var e domain.TokenEvent
		var eventType string
		var occurredAt time.Time

		err := rows.Scan(
			&e.Address, &e.Chain, &e.Symbol, &e.Developer, &eventType,
			&e.Top10HolderPct, &e.LiquidityUSD, &e.PriceChange5m, &e.PriceChange1h,
			&occurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		e.Type = domain.EventType(eventType)
		e.OccurredAt = occurredAt
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
