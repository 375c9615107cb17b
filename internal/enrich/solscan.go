package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// DefaultSolscanURL is the public Solscan API base.
const DefaultSolscanURL = "https://public-api.solscan.io"

// SolscanFetcher pulls token metadata and holder distribution from a
// Solscan-compatible API.
type SolscanFetcher struct {
	baseURL string
	client  *http.Client
}

// NewSolscanFetcher creates a fetcher against baseURL (the public API
// when empty).
func NewSolscanFetcher(baseURL string) *SolscanFetcher {
	if baseURL == "" {
		baseURL = DefaultSolscanURL
	}
	return &SolscanFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Fetcher = (*SolscanFetcher)(nil)

// Fetch combines the token meta and holder endpoints into one snapshot.
func (f *SolscanFetcher) Fetch(ctx context.Context, address, chain string) (*domain.Enrichment, error) {
	meta, err := f.fetchMeta(ctx, address)
	if err != nil {
		return nil, err
	}

	top10, err := f.fetchTop10Share(ctx, address)
	if err != nil {
		return nil, err
	}

	meta.Top10HolderPct = top10
	return meta, nil
}

func (f *SolscanFetcher) fetchMeta(ctx context.Context, address string) (*domain.Enrichment, error) {
	endpoint := fmt.Sprintf("%s/token/meta?tokenAddress=%s", f.baseURL, url.QueryEscape(address))

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			Supply       string  `json:"supply"`
			Holder       int64   `json:"holder"`
			LiquidityUSD float64 `json:"liquidityUsd"`
		} `json:"data"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch token meta: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("token meta request for %s unsuccessful", address)
	}

	supply, _ := strconv.ParseFloat(result.Data.Supply, 64)
	return &domain.Enrichment{
		TotalSupply:  supply,
		HolderCount:  result.Data.Holder,
		LiquidityUSD: result.Data.LiquidityUSD,
	}, nil
}

func (f *SolscanFetcher) fetchTop10Share(ctx context.Context, address string) (float64, error) {
	endpoint := fmt.Sprintf("%s/token/holders?tokenAddress=%s&limit=10", f.baseURL, url.QueryEscape(address))

	var result struct {
		Data struct {
			Items []struct {
				Share string `json:"share"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := f.getJSON(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch token holders: %w", err)
	}

	var top10 float64
	for _, item := range result.Data.Items {
		share, err := strconv.ParseFloat(strings.TrimSuffix(item.Share, "%"), 64)
		if err != nil {
			continue
		}
		top10 += share
	}
	return top10, nil
}

func (f *SolscanFetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
