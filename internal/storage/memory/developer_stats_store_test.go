package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/storage"
)

func TestDeveloperStatsStore_RecordRugCreatesThenIncrements(t *testing.T) {
	store := NewDeveloperStatsStore()
	ctx := context.Background()

	first := time.Unix(1000, 0)
	st, err := store.RecordRug(ctx, "dev-1", first)
	if err != nil {
		t.Fatalf("RecordRug failed: %v", err)
	}
	if st.RugsCount != 1 {
		t.Errorf("Expected count 1 on first rug, got %d", st.RugsCount)
	}
	if !st.LastRug.Equal(first) {
		t.Errorf("LastRug mismatch: got %v, want %v", st.LastRug, first)
	}

	second := time.Unix(2000, 0)
	st, err = store.RecordRug(ctx, "dev-1", second)
	if err != nil {
		t.Fatalf("RecordRug failed: %v", err)
	}
	if st.RugsCount != 2 {
		t.Errorf("Expected count 2, got %d", st.RugsCount)
	}
	if !st.LastRug.Equal(second) {
		t.Errorf("LastRug not updated: got %v", st.LastRug)
	}
}

func TestDeveloperStatsStore_GetByDeveloper(t *testing.T) {
	store := NewDeveloperStatsStore()
	ctx := context.Background()

	if _, err := store.GetByDeveloper(ctx, "dev-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if _, err := store.RecordRug(ctx, "dev-1", time.Unix(1000, 0)); err != nil {
		t.Fatalf("RecordRug failed: %v", err)
	}

	st, err := store.GetByDeveloper(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetByDeveloper failed: %v", err)
	}
	if st.RugsCount != 1 {
		t.Errorf("Expected count 1, got %d", st.RugsCount)
	}
}

func TestDeveloperStatsStore_EmptyDeveloper(t *testing.T) {
	store := NewDeveloperStatsStore()
	ctx := context.Background()

	if _, err := store.RecordRug(ctx, "", time.Now()); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestDeveloperStatsStore_ConcurrentRugsExactCount(t *testing.T) {
	store := NewDeveloperStatsStore()
	ctx := context.Background()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.RecordRug(ctx, "shared-dev", time.Now()); err != nil {
				t.Errorf("RecordRug failed: %v", err)
			}
		}()
	}
	wg.Wait()

	st, err := store.GetByDeveloper(ctx, "shared-dev")
	if err != nil {
		t.Fatalf("GetByDeveloper failed: %v", err)
	}
	if st.RugsCount != n {
		t.Errorf("Lost updates: expected %d rugs, got %d", n, st.RugsCount)
	}
}
