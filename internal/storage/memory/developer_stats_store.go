package memory

import (
	"context"
	"sync"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// DeveloperStatsStore is an in-memory implementation of
// storage.DeveloperStatsStore.
type DeveloperStatsStore struct {
	mu   sync.Mutex
	data map[string]*domain.DeveloperStats // keyed by developer
}

// NewDeveloperStatsStore creates a new in-memory developer stats store.
func NewDeveloperStatsStore() *DeveloperStatsStore {
	return &DeveloperStatsStore{
		data: make(map[string]*domain.DeveloperStats),
	}
}

// GetByDeveloper retrieves stats for a developer. Returns ErrNotFound if not exists.
func (s *DeveloperStatsStore) GetByDeveloper(_ context.Context, developer string) (*domain.DeveloperStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.data[developer]
	if !exists {
		return nil, storage.ErrNotFound
	}

	statsCopy := *st
	return &statsCopy, nil
}

// RecordRug creates or increments the developer's rug count under the
// store mutex, so concurrent rug events for one developer serialize and
// the returned count is exact.
func (s *DeveloperStatsStore) RecordRug(_ context.Context, developer string, at time.Time) (*domain.DeveloperStats, error) {
	if developer == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.data[developer]
	if !exists {
		st = &domain.DeveloperStats{Developer: developer}
		s.data[developer] = st
	}
	st.RugsCount++
	st.LastRug = at

	statsCopy := *st
	return &statsCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.DeveloperStatsStore = (*DeveloperStatsStore)(nil)
