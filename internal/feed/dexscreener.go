package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// DefaultDexscreenerURL is the aggregated market-data endpoint polled for
// recently active tokens.
const DefaultDexscreenerURL = "https://api.dexscreener.com/latest/dex/tokens/recent"

// Dexscreener polls an HTTP market-data feed for token batches.
type Dexscreener struct {
	url          string
	defaultChain string
	client       *http.Client
}

// NewDexscreener creates a Dexscreener source. Tokens without a chain
// field are attributed to defaultChain.
func NewDexscreener(url, defaultChain string) *Dexscreener {
	if url == "" {
		url = DefaultDexscreenerURL
	}
	return &Dexscreener{
		url:          url,
		defaultChain: defaultChain,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Source = (*Dexscreener)(nil)

func (d *Dexscreener) Name() string { return "dexscreener" }

// feedToken is the wire shape of one token record in the feed response.
type feedToken struct {
	Address       string   `json:"address"`
	Chain         string   `json:"chain"`
	Name          string   `json:"name"`
	Symbol        string   `json:"symbol"`
	Developer     string   `json:"developer"`
	PriceChange5m float64  `json:"price_change_5m"`
	PriceChange1h float64  `json:"price_change_1h"`
	PriceChange24 float64  `json:"price_change_24h"`
	Exchanges     []string `json:"exchanges"`
	CEXListing    bool     `json:"cex_listing"`
}

// Fetch retrieves the current token batch from the feed endpoint.
func (d *Dexscreener) Fetch(ctx context.Context) ([]domain.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dexscreener feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener feed status %d", resp.StatusCode)
	}

	var result struct {
		Tokens []feedToken `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode dexscreener feed: %w", err)
	}

	tokens := make([]domain.Token, 0, len(result.Tokens))
	for _, ft := range result.Tokens {
		if ft.Address == "" {
			continue
		}
		chain := ft.Chain
		if chain == "" {
			chain = d.defaultChain
		}
		if chain == "solana" && !validMint(ft.Address) {
			log.Printf("[feed] dexscreener: skipping invalid mint %q", ft.Address)
			continue
		}
		tokens = append(tokens, domain.Token{
			Address:        ft.Address,
			Chain:          chain,
			Name:           ft.Name,
			Symbol:         ft.Symbol,
			Developer:      ft.Developer,
			PriceChange5m:  ft.PriceChange5m,
			PriceChange1h:  ft.PriceChange1h,
			PriceChange24h: ft.PriceChange24,
			Exchanges:      ft.Exchanges,
			CEXListing:     ft.CEXListing,
		})
	}

	return tokens, nil
}
