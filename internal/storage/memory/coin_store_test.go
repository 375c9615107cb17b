package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

func TestCoinStore_UpsertAndGet(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	c := &domain.Coin{
		Address:     "0xabc123",
		Chain:       "ethereum",
		Name:        "Test Coin",
		Symbol:      "TST",
		Developer:   "dev-1",
		FirstSeenAt: time.Unix(1700000000, 0),
	}

	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByAddress(ctx, "0xabc123")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}

	if got.Symbol != c.Symbol {
		t.Errorf("Symbol mismatch: got %s, want %s", got.Symbol, c.Symbol)
	}
	if got.Developer != c.Developer {
		t.Errorf("Developer mismatch: got %s, want %s", got.Developer, c.Developer)
	}
}

func TestCoinStore_NotFound(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	_, err := store.GetByAddress(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCoinStore_SnapshotOverwrite(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	c := &domain.Coin{Address: "0xabc", LiquidityUSD: 1000, HolderCount: 10}
	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	c.LiquidityUSD = 50
	c.HolderCount = 500
	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if got.LiquidityUSD != 50 {
		t.Errorf("LiquidityUSD should be overwritten, got %f", got.LiquidityUSD)
	}
	if got.HolderCount != 500 {
		t.Errorf("HolderCount should be overwritten, got %d", got.HolderCount)
	}
}

func TestCoinStore_LatchNeverReverts(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	c := &domain.Coin{Address: "0xabc"}
	c.RugDetected.Set()
	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// A write with the latch cleared must not clear the stored latch.
	reverted := &domain.Coin{Address: "0xabc", LiquidityUSD: 42}
	if err := store.Upsert(ctx, reverted); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByAddress(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}
	if !got.RugDetected.IsSet() {
		t.Error("RugDetected latch should remain set")
	}
	if got.LiquidityUSD != 42 {
		t.Errorf("snapshot fields should be last-write-wins, got %f", got.LiquidityUSD)
	}
}

func TestCoinStore_InvalidInput(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Upsert(ctx, &domain.Coin{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty address, got %v", err)
	}
}

func TestCoinStore_GetAllOrdered(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	coins := []*domain.Coin{
		{Address: "c", FirstSeenAt: time.Unix(3000, 0)},
		{Address: "a", FirstSeenAt: time.Unix(1000, 0)},
		{Address: "b", FirstSeenAt: time.Unix(2000, 0)},
	}
	for _, c := range coins {
		if err := store.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 coins, got %d", len(all))
	}
	if all[0].Address != "a" || all[1].Address != "b" || all[2].Address != "c" {
		t.Errorf("Wrong order: %s, %s, %s", all[0].Address, all[1].Address, all[2].Address)
	}
}

func TestCoinStore_ReturnsCopies(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	c := &domain.Coin{Address: "0xabc", Symbol: "TST"}
	if err := store.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := store.GetByAddress(ctx, "0xabc")
	got.Symbol = "MUTATED"

	again, _ := store.GetByAddress(ctx, "0xabc")
	if again.Symbol != "TST" {
		t.Error("store contents mutated through returned pointer")
	}
}

func TestCoinStore_ConcurrentUpserts(t *testing.T) {
	store := NewCoinStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c := &domain.Coin{
				Address:     string(rune('a' + id%26)),
				HolderCount: int64(id),
			}
			_ = store.Upsert(ctx, c)
		}(i)
	}
	wg.Wait()
	// Smoke test: must not race or panic under -race.
}
