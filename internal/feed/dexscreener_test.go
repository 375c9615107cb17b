package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const wrappedSolMint = "So11111111111111111111111111111111111111112"

func TestDexscreener_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"tokens": [
				{
					"address": "` + wrappedSolMint + `",
					"chain": "solana",
					"name": "Wrapped SOL",
					"symbol": "SOL",
					"developer": "Dev1",
					"price_change_5m": 12.5,
					"price_change_1h": -3.1,
					"exchanges": ["Binance", "Raydium"],
					"cex_listing": true
				},
				{
					"address": "0xabc",
					"chain": "ethereum",
					"name": "Eth Token",
					"symbol": "ETK"
				},
				{
					"address": "not-base58!!",
					"chain": "solana",
					"symbol": "BAD"
				},
				{
					"symbol": "NOADDR"
				}
			]
		}`))
	}))
	defer srv.Close()

	src := NewDexscreener(srv.URL, "solana")

	tokens, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if len(tokens) != 2 {
		t.Fatalf("len(tokens) = %d, want 2", len(tokens))
	}

	sol := tokens[0]
	if sol.Address != wrappedSolMint || sol.Symbol != "SOL" {
		t.Errorf("unexpected first token: %+v", sol)
	}
	if sol.PriceChange5m != 12.5 || sol.PriceChange1h != -3.1 {
		t.Errorf("price changes not mapped: %+v", sol)
	}
	if !sol.CEXListing || len(sol.Exchanges) != 2 {
		t.Errorf("listing fields not mapped: %+v", sol)
	}

	// Non-solana addresses are not base58-checked.
	if tokens[1].Address != "0xabc" || tokens[1].Chain != "ethereum" {
		t.Errorf("unexpected second token: %+v", tokens[1])
	}
}

func TestDexscreener_FetchDefaultChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tokens": [{"address": "` + wrappedSolMint + `", "symbol": "SOL"}]}`))
	}))
	defer srv.Close()

	src := NewDexscreener(srv.URL, "solana")

	tokens, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("len(tokens) = %d, want 1", len(tokens))
	}
	if tokens[0].Chain != "solana" {
		t.Errorf("Chain = %q, want solana", tokens[0].Chain)
	}
}

func TestDexscreener_FetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewDexscreener(srv.URL, "solana")

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() error = nil, want error on 500")
	}
}

func TestValidMint(t *testing.T) {
	if !validMint(wrappedSolMint) {
		t.Errorf("validMint(%q) = false, want true", wrappedSolMint)
	}
	for _, bad := range []string{"", "not-base58!!", "abc"} {
		if validMint(bad) {
			t.Errorf("validMint(%q) = true, want false", bad)
		}
	}
}
