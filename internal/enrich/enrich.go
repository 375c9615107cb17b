// Package enrich fetches on-chain metrics for a token and gates it
// against the configured filter thresholds before the ledger is touched.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/7finger0x/Coinbot-project/internal/config"
	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// Fetcher retrieves on-chain metrics for an address on a chain.
type Fetcher interface {
	Fetch(ctx context.Context, address, chain string) (*domain.Enrichment, error)
}

// Gate fetches enrichment data and applies the configured filters.
type Gate struct {
	cfg     *config.Config
	fetcher Fetcher
}

// NewGate creates a Gate backed by cfg and fetcher.
func NewGate(cfg *config.Config, fetcher Fetcher) *Gate {
	return &Gate{cfg: cfg, fetcher: fetcher}
}

// EnrichAndFilter returns the enrichment snapshot if the token clears
// the filters. A fetch failure returns ErrTransientFetch (retried next
// cycle); a filter failure returns ErrRejected. Neither writes to the
// ledger. Concentration and liquidity thresholds are not applied here:
// they are rug signals, judged against the ledger record downstream.
func (g *Gate) EnrichAndFilter(ctx context.Context, token domain.Token) (*domain.Enrichment, error) {
	chain := token.Chain
	if chain == "" {
		chain = g.cfg.DefaultChain()
	}

	enrichment, err := g.fetcher.Fetch(ctx, token.Address, chain)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("enrich %s on %s: %v: %w", token.Address, chain, err, domain.ErrTransientFetch)
	}

	filters := g.cfg.Filters()
	if enrichment.HolderCount < filters.MinHolders {
		return nil, fmt.Errorf("holders %d below minimum %d: %w",
			enrichment.HolderCount, filters.MinHolders, domain.ErrRejected)
	}

	return enrichment, nil
}
