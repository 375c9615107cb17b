// Package ledger owns the persisted Coin and DeveloperStats records.
// No other component mutates them: the classifier signals intended
// transitions and the ledger applies them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// Ledger applies and persists token state transitions.
type Ledger struct {
	coins storage.CoinStore
	devs  storage.DeveloperStatsStore
	now   func() time.Time
}

// New creates a Ledger over the given stores.
func New(coins storage.CoinStore, devs storage.DeveloperStatsStore) *Ledger {
	return &Ledger{coins: coins, devs: devs, now: time.Now}
}

// GetOrCreateCoin returns the persisted record for the token's address,
// creating one seeded from the token's feed fields on first sighting.
// The created record lives in memory until Commit. The second return
// value reports whether this was a discovery.
func (l *Ledger) GetOrCreateCoin(ctx context.Context, token domain.Token) (*domain.Coin, bool, error) {
	coin, err := l.coins.GetByAddress(ctx, token.Address)
	if err == nil {
		return coin, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("load coin %s: %w", token.Address, err)
	}

	now := l.now().UTC()
	coin = &domain.Coin{
		Address:     token.Address,
		Chain:       token.Chain,
		Name:        token.Name,
		Symbol:      token.Symbol,
		Developer:   token.Developer,
		FirstSeenAt: now,
		UpdatedAt:   now,
	}
	log.Printf("[ledger] new token found: %s (%s)", coin.Symbol, coin.Address)
	return coin, true, nil
}

// ApplySnapshot overwrites the coin's enrichment snapshot fields.
func (l *Ledger) ApplySnapshot(coin *domain.Coin, enrichment domain.Enrichment) {
	coin.ApplySnapshot(enrichment, l.now().UTC())
}

// RecordRug sets the rug latch and attributes the event to the coin's
// developer. Returns the updated developer stats (nil when the coin has
// no developer identifier) and whether the latch transitioned. Already
// latched coins are a complete no-op: no counter increment, no stats.
func (l *Ledger) RecordRug(ctx context.Context, coin *domain.Coin) (*domain.DeveloperStats, bool, error) {
	if !coin.RugDetected.Set() {
		return nil, false, nil
	}

	if coin.Developer == "" {
		return nil, true, nil
	}

	stats, err := l.devs.RecordRug(ctx, coin.Developer, l.now().UTC())
	if err != nil {
		return nil, true, fmt.Errorf("record rug for developer %s: %w", coin.Developer, err)
	}
	return stats, true, nil
}

// RecordPump sets the pump latch; reports whether it transitioned.
func (l *Ledger) RecordPump(coin *domain.Coin) bool {
	return coin.PumpDetected.Set()
}

// RecordTier1Listing sets the tier-1 latch; reports whether it transitioned.
func (l *Ledger) RecordTier1Listing(coin *domain.Coin) bool {
	return coin.Tier1Listed.Set()
}

// RecordCEXListing sets the CEX latch; reports whether it transitioned.
func (l *Ledger) RecordCEXListing(coin *domain.Coin) bool {
	return coin.CEXListed.Set()
}

// Commit persists the coin in a single all-or-nothing upsert. On
// failure no partial state is retained in the store; the evaluation for
// this token is reported failed and others continue.
func (l *Ledger) Commit(ctx context.Context, coin *domain.Coin) error {
	if err := l.coins.Upsert(ctx, coin); err != nil {
		return fmt.Errorf("commit coin %s: %w", coin.Address, err)
	}
	return nil
}

// DeveloperStats exposes the current rug record for a developer.
func (l *Ledger) DeveloperStats(ctx context.Context, developer string) (*domain.DeveloperStats, error) {
	return l.devs.GetByDeveloper(ctx, developer)
}
