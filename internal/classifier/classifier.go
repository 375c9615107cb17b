// Package classifier is the decision core of the pipeline. Evaluate
// inspects a read-only snapshot of a coin plus fresh feed and
// enrichment data and returns the transitions that fire, in order.
// It never touches storage: applying the transitions is the ledger's
// job, dispatching the actions is the evaluator's.
package classifier

import (
	"fmt"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// Thresholds are the configured trigger levels for the checks.
type Thresholds struct {
	// MaxTop10Percent is the holder concentration above which a token
	// counts as rugged.
	MaxTop10Percent float64
	// MinLiquidity is the USD liquidity below which a token counts as
	// rugged.
	MinLiquidity float64
	// Tier1Exchange is the exchange whose listing counts as tier-1.
	Tier1Exchange string
}

// Transition identifies which latch a decision flips.
type Transition int

const (
	TransitionRug Transition = iota
	TransitionPump
	TransitionTier1
	TransitionCEX
)

// Decision is one fired check: the latch transition, the event recorded
// for it, the notification to send, and whether a buy should be
// attempted.
type Decision struct {
	Transition Transition
	Event      domain.EventType
	Message    string
	Buy        bool
}

// Price-change trigger levels, matching the feed's percentage windows.
const (
	rugPriceDrop1h  = -80.0
	pumpPriceRise5m = 50.0
)

// Evaluate runs the four checks against one snapshot. A latch that is
// already set never re-fires, no matter how many cycles still show the
// trigger condition. Order is fixed: rug, pump, tier-1, CEX.
func Evaluate(coin *domain.Coin, token domain.Token, e domain.Enrichment, th Thresholds) []Decision {
	var decisions []Decision

	if !coin.RugDetected.IsSet() && isRug(token, e, th) {
		decisions = append(decisions, Decision{
			Transition: TransitionRug,
			Event:      domain.EventRug,
			Message:    fmt.Sprintf("🚨 Rug detected: %s (%s)", coin.Symbol, coin.Address),
		})
	}

	if !coin.PumpDetected.IsSet() && token.PriceChange5m > pumpPriceRise5m {
		decisions = append(decisions, Decision{
			Transition: TransitionPump,
			Event:      domain.EventPump,
			Message:    fmt.Sprintf("🚀 Pump detected: %s (%s)", coin.Symbol, coin.Address),
			Buy:        true,
		})
	}

	if !coin.Tier1Listed.IsSet() && th.Tier1Exchange != "" && token.ListedOn(th.Tier1Exchange) {
		decisions = append(decisions, Decision{
			Transition: TransitionTier1,
			Event:      domain.EventTier1Listed,
			Message:    fmt.Sprintf("⭐ Tier-1 Listing: %s on %s", coin.Symbol, th.Tier1Exchange),
		})
	}

	if !coin.CEXListed.IsSet() && token.CEXListing {
		decisions = append(decisions, Decision{
			Transition: TransitionCEX,
			Event:      domain.EventCEXListed,
			Message:    fmt.Sprintf("🏦 CEX Listing detected: %s", coin.Symbol),
		})
	}

	return decisions
}

func isRug(token domain.Token, e domain.Enrichment, th Thresholds) bool {
	return e.Top10HolderPct > th.MaxTop10Percent ||
		e.LiquidityUSD < th.MinLiquidity ||
		token.PriceChange1h < rugPriceDrop1h
}
