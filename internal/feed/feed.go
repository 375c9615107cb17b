// Package feed provides token discovery sources. Each source produces a
// batch of fresh Token records per poll cycle; no ordering is guaranteed
// within or across sources.
package feed

import (
	"context"

	"github.com/mr-tron/base58"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// Source produces a batch of tokens for one evaluation cycle.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Fetch returns the tokens discovered since the previous call.
	Fetch(ctx context.Context) ([]domain.Token, error)
}

// validMint reports whether s decodes as a base58 Solana address of
// plausible length.
func validMint(s string) bool {
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == 32
}
