package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// CoinStore is an in-memory implementation of storage.CoinStore.
type CoinStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Coin // keyed by address
}

// NewCoinStore creates a new in-memory coin store.
func NewCoinStore() *CoinStore {
	return &CoinStore{
		data: make(map[string]*domain.Coin),
	}
}

// GetByAddress retrieves a coin by address. Returns ErrNotFound if not exists.
func (s *CoinStore) GetByAddress(_ context.Context, address string) (*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	coinCopy := *c
	return &coinCopy, nil
}

// Upsert inserts or replaces the coin row. Snapshot fields are
// last-write-wins; a latch already set in the stored row stays set.
func (s *CoinStore) Upsert(_ context.Context, c *domain.Coin) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coinCopy := *c
	if prev, exists := s.data[c.Address]; exists {
		if prev.RugDetected.IsSet() {
			coinCopy.RugDetected.Set()
		}
		if prev.PumpDetected.IsSet() {
			coinCopy.PumpDetected.Set()
		}
		if prev.Tier1Listed.IsSet() {
			coinCopy.Tier1Listed.Set()
		}
		if prev.CEXListed.IsSet() {
			coinCopy.CEXListed.Set()
		}
	}

	s.data[c.Address] = &coinCopy
	return nil
}

// GetAll retrieves every coin, ordered by first_seen_at ASC.
func (s *CoinStore) GetAll(_ context.Context) ([]*domain.Coin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Coin, 0, len(s.data))
	for _, c := range s.data {
		coinCopy := *c
		result = append(result, &coinCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].FirstSeenAt.Equal(result[j].FirstSeenAt) {
			return result[i].Address < result[j].Address
		}
		return result[i].FirstSeenAt.Before(result[j].FirstSeenAt)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.CoinStore = (*CoinStore)(nil)
