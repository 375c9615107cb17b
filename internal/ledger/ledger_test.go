package ledger

import (
	"context"
	"testing"

	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/storage/memory"
)

func newTestLedger() *Ledger {
	return New(memory.NewCoinStore(), memory.NewDeveloperStatsStore())
}

func TestGetOrCreateCoin_Discovery(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	token := domain.Token{
		Address:   "Mint1",
		Chain:     "solana",
		Name:      "Test",
		Symbol:    "TST",
		Developer: "Dev1",
	}

	coin, created, err := l.GetOrCreateCoin(ctx, token)
	if err != nil {
		t.Fatalf("GetOrCreateCoin() error: %v", err)
	}
	if !created {
		t.Error("created = false, want true on first sighting")
	}
	if coin.Address != "Mint1" || coin.Developer != "Dev1" {
		t.Errorf("unexpected coin: %+v", coin)
	}
	if coin.FirstSeenAt.IsZero() {
		t.Error("FirstSeenAt not set")
	}

	// The coin is not persisted until Commit.
	if _, created, err = l.GetOrCreateCoin(ctx, token); err != nil {
		t.Fatalf("second GetOrCreateCoin() error: %v", err)
	} else if !created {
		t.Error("created = false before any Commit, want true")
	}

	if err := l.Commit(ctx, coin); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	loaded, created, err := l.GetOrCreateCoin(ctx, token)
	if err != nil {
		t.Fatalf("GetOrCreateCoin() after commit error: %v", err)
	}
	if created {
		t.Error("created = true after commit, want false")
	}
	if loaded.Symbol != "TST" {
		t.Errorf("Symbol = %q, want TST", loaded.Symbol)
	}
}

func TestApplySnapshot_Overwrites(t *testing.T) {
	l := newTestLedger()

	coin := &domain.Coin{Address: "Mint1"}
	l.ApplySnapshot(coin, domain.Enrichment{
		TotalSupply:    1000,
		HolderCount:    50,
		Top10HolderPct: 30,
		LiquidityUSD:   20000,
	})

	if coin.LiquidityUSD != 20000 || coin.HolderCount != 50 {
		t.Errorf("snapshot not applied: %+v", coin)
	}

	l.ApplySnapshot(coin, domain.Enrichment{LiquidityUSD: 5})
	if coin.LiquidityUSD != 5 || coin.HolderCount != 0 {
		t.Errorf("snapshot not overwritten: %+v", coin)
	}
}

func TestRecordRug_LatchAndAttribution(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	coin := &domain.Coin{Address: "Mint1", Developer: "Dev1"}

	stats, fired, err := l.RecordRug(ctx, coin)
	if err != nil {
		t.Fatalf("RecordRug() error: %v", err)
	}
	if !fired {
		t.Error("fired = false on first rug, want true")
	}
	if stats == nil || stats.RugsCount != 1 {
		t.Fatalf("stats = %+v, want RugsCount 1", stats)
	}
	if !coin.RugDetected.IsSet() {
		t.Error("rug latch not set")
	}

	// Second rug on the same coin is a complete no-op.
	stats, fired, err = l.RecordRug(ctx, coin)
	if err != nil {
		t.Fatalf("second RecordRug() error: %v", err)
	}
	if fired || stats != nil {
		t.Errorf("second RecordRug fired=%v stats=%+v, want no-op", fired, stats)
	}

	loaded, err := l.DeveloperStats(ctx, "Dev1")
	if err != nil {
		t.Fatalf("DeveloperStats() error: %v", err)
	}
	if loaded.RugsCount != 1 {
		t.Errorf("RugsCount = %d, want 1 after repeated latch", loaded.RugsCount)
	}
}

func TestRecordRug_CountsAcrossCoins(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	for i, addr := range []string{"MintA", "MintB", "MintC"} {
		coin := &domain.Coin{Address: addr, Developer: "Dev1"}
		stats, fired, err := l.RecordRug(ctx, coin)
		if err != nil {
			t.Fatalf("RecordRug(%s) error: %v", addr, err)
		}
		if !fired {
			t.Errorf("RecordRug(%s) fired = false", addr)
		}
		if want := int64(i + 1); stats.RugsCount != want {
			t.Errorf("RugsCount after %s = %d, want %d", addr, stats.RugsCount, want)
		}
	}
}

func TestRecordRug_NoDeveloper(t *testing.T) {
	l := newTestLedger()

	coin := &domain.Coin{Address: "Mint1"}
	stats, fired, err := l.RecordRug(context.Background(), coin)
	if err != nil {
		t.Fatalf("RecordRug() error: %v", err)
	}
	if !fired {
		t.Error("fired = false, want true")
	}
	if stats != nil {
		t.Errorf("stats = %+v, want nil without developer", stats)
	}
	if !coin.RugDetected.IsSet() {
		t.Error("rug latch not set")
	}
}

func TestRecordLatches_FireOnce(t *testing.T) {
	l := newTestLedger()
	coin := &domain.Coin{Address: "Mint1"}

	for name, record := range map[string]func(*domain.Coin) bool{
		"pump":  l.RecordPump,
		"tier1": l.RecordTier1Listing,
		"cex":   l.RecordCEXListing,
	} {
		if !record(coin) {
			t.Errorf("%s: first record = false, want true", name)
		}
		if record(coin) {
			t.Errorf("%s: second record = true, want false", name)
		}
	}

	if !coin.PumpDetected.IsSet() || !coin.Tier1Listed.IsSet() || !coin.CEXListed.IsSet() {
		t.Errorf("latches not all set: %+v", coin)
	}
}

func TestCommit_PersistsLatches(t *testing.T) {
	l := newTestLedger()
	ctx := context.Background()

	coin := &domain.Coin{Address: "Mint1", Developer: "Dev1"}
	if _, _, err := l.RecordRug(ctx, coin); err != nil {
		t.Fatalf("RecordRug() error: %v", err)
	}
	l.RecordPump(coin)

	if err := l.Commit(ctx, coin); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}

	loaded, _, err := l.GetOrCreateCoin(ctx, domain.Token{Address: "Mint1"})
	if err != nil {
		t.Fatalf("GetOrCreateCoin() error: %v", err)
	}
	if !loaded.RugDetected.IsSet() || !loaded.PumpDetected.IsSet() {
		t.Errorf("latches lost on commit: %+v", loaded)
	}
}
