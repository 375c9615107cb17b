// Package screen applies the pre-enrichment risk check: developer
// blacklist membership plus an external reputation verdict, cached in
// configuration so each address is checked at most once.
package screen

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/7finger0x/Coinbot-project/internal/config"
	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// Verdict values cached per token address.
const (
	VerdictGood = "good"
	VerdictBad  = "bad"
)

// ReputationChecker produces a risk verdict for a token.
type ReputationChecker interface {
	Check(ctx context.Context, token domain.Token) (string, error)
}

// RiskScreen rejects tokens before any enrichment calls are made.
type RiskScreen struct {
	cfg     *config.Config
	checker ReputationChecker
}

// NewRiskScreen creates a RiskScreen backed by cfg and checker.
func NewRiskScreen(cfg *config.Config, checker ReputationChecker) *RiskScreen {
	return &RiskScreen{cfg: cfg, checker: checker}
}

// Screen returns nil if the token may proceed to enrichment. A
// blacklisted developer or a bad verdict returns ErrRejected. A
// reputation-service failure rejects by default; with fail_open set the
// token passes and the failure is only logged. The verdict cache is
// saved after every fresh check regardless of outcome; a failed save is
// surfaced since losing cached verdicts silently is a correctness
// hazard.
func (s *RiskScreen) Screen(ctx context.Context, token domain.Token) error {
	if token.Developer != "" && s.cfg.IsBlacklisted(token.Developer) {
		return fmt.Errorf("developer %s blacklisted: %w", token.Developer, domain.ErrRejected)
	}

	if verdict, ok := s.cfg.CachedVerdict(token.Address); ok {
		if verdict == VerdictGood {
			return nil
		}
		return fmt.Errorf("cached verdict %q for %s: %w", verdict, token.Address, domain.ErrRejected)
	}

	verdict, err := s.checker.Check(ctx, token)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if s.cfg.FailOpen() {
			log.Printf("[screen] reputation check failed for %s, passing (fail_open): %v", token.Address, err)
			return nil
		}
		return fmt.Errorf("reputation check for %s: %v: %w", token.Address, err, domain.ErrRejected)
	}

	s.cfg.SetCachedVerdict(token.Address, verdict)
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("save verdict cache: %w", err)
	}

	if verdict != VerdictGood {
		return fmt.Errorf("verdict %q for %s: %w", verdict, token.Address, domain.ErrRejected)
	}
	return nil
}
