package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// EventLogStore is an in-memory implementation of storage.EventLogStore.
type EventLogStore struct {
	mu   sync.RWMutex
	data []*domain.TokenEvent
}

// NewEventLogStore creates a new in-memory event log store.
func NewEventLogStore() *EventLogStore {
	return &EventLogStore{}
}

// Insert appends one event.
func (s *EventLogStore) Insert(_ context.Context, e *domain.TokenEvent) error {
	if e == nil || e.Address == "" || e.Type == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.data = append(s.data, &eventCopy)
	return nil
}

// GetByAddress retrieves all events for a token, ordered by occurred_at ASC.
func (s *EventLogStore) GetByAddress(_ context.Context, address string) ([]*domain.TokenEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TokenEvent
	for _, e := range s.data {
		if e.Address == address {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.Before(result[j].OccurredAt)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.EventLogStore = (*EventLogStore)(nil)
