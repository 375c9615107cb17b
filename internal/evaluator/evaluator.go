// Package evaluator wires the pipeline stages together: risk screen,
// enrichment gate, ledger, classifier, and action dispatch. One call of
// EvaluateToken runs the full sequence for a single token; EvaluateBatch
// runs a poll cycle's tokens concurrently with per-token failure
// isolation.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/7finger0x/Coinbot-project/internal/classifier"
	"github.com/7finger0x/Coinbot-project/internal/config"
	"github.com/7finger0x/Coinbot-project/internal/dispatch"
	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/enrich"
	"github.com/7finger0x/Coinbot-project/internal/ledger"
	"github.com/7finger0x/Coinbot-project/internal/observability"
	"github.com/7finger0x/Coinbot-project/internal/screen"
	"github.com/7finger0x/Coinbot-project/internal/storage"
)

// DefaultWorkers bounds concurrent token evaluations in a batch.
const DefaultWorkers = 8

// Evaluator runs the per-token decision pipeline.
type Evaluator struct {
	cfg      *config.Config
	screen   *screen.RiskScreen
	gate     *enrich.Gate
	ledger   *ledger.Ledger
	notifier dispatch.Notifier
	trader   dispatch.TradeExecutor
	events   storage.EventLogStore // nil disables the event log
	workers  int
}

// New creates an Evaluator. events may be nil when no event log backend
// is configured.
func New(
	cfg *config.Config,
	riskScreen *screen.RiskScreen,
	gate *enrich.Gate,
	ldg *ledger.Ledger,
	notifier dispatch.Notifier,
	trader dispatch.TradeExecutor,
	events storage.EventLogStore,
) *Evaluator {
	return &Evaluator{
		cfg:      cfg,
		screen:   riskScreen,
		gate:     gate,
		ledger:   ldg,
		notifier: notifier,
		trader:   trader,
		events:   events,
		workers:  DefaultWorkers,
	}
}

// EvaluateToken runs the full pipeline for one token: screen, enrich,
// ledger lookup, classify, apply transitions and dispatch actions, then
// commit. Rejections return ErrRejected, unreachable sources return
// ErrTransientFetch; neither leaves ledger state behind.
func (e *Evaluator) EvaluateToken(ctx context.Context, token domain.Token) error {
	start := time.Now()
	defer func() {
		observability.RecordEvaluation(time.Since(start).Seconds())
	}()

	if err := e.screen.Screen(ctx, token); err != nil {
		if errors.Is(err, domain.ErrRejected) {
			observability.RecordRejection("screen")
		}
		return err
	}

	enrichment, err := e.gate.EnrichAndFilter(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRejected) {
			observability.RecordRejection("enrich")
		}
		return err
	}

	coin, created, err := e.ledger.GetOrCreateCoin(ctx, token)
	if err != nil {
		return err
	}
	if created {
		observability.RecordDiscovery()
	}

	e.ledger.ApplySnapshot(coin, *enrichment)

	filters := e.cfg.Filters()
	decisions := classifier.Evaluate(coin, token, *enrichment, classifier.Thresholds{
		MaxTop10Percent: filters.MaxTop10Percent,
		MinLiquidity:    filters.MinLiquidity,
		Tier1Exchange:   e.cfg.Tier1Exchange(),
	})

	applyErr := e.apply(ctx, coin, token, *enrichment, decisions)

	if err := e.ledger.Commit(ctx, coin); err != nil {
		observability.RecordEvaluationError("persistence")
		return err
	}

	return applyErr
}

// apply executes the fired decisions in order: latch transitions via
// the ledger, then the attached actions. Notification failures are
// logged and never roll back a transition. The returned error carries
// config-persistence failures, which must reach the operator.
func (e *Evaluator) apply(ctx context.Context, coin *domain.Coin, token domain.Token, enrichment domain.Enrichment, decisions []classifier.Decision) error {
	var applyErr error

	for _, d := range decisions {
		switch d.Transition {
		case classifier.TransitionRug:
			stats, fired, err := e.ledger.RecordRug(ctx, coin)
			if err != nil {
				applyErr = errors.Join(applyErr, err)
				continue
			}
			if !fired {
				continue
			}
			log.Printf("[evaluator] rug detected: %s (%s)", coin.Symbol, coin.Address)
			e.fire(ctx, coin, token, enrichment, d)
			if err := e.autoBlacklist(ctx, coin, token, enrichment, stats); err != nil {
				applyErr = errors.Join(applyErr, err)
			}

		case classifier.TransitionPump:
			if !e.ledger.RecordPump(coin) {
				continue
			}
			log.Printf("[evaluator] pump detected: %s (%s)", coin.Symbol, coin.Address)
			e.fire(ctx, coin, token, enrichment, d)
			if d.Buy {
				e.buy(ctx, coin)
			}

		case classifier.TransitionTier1:
			if !e.ledger.RecordTier1Listing(coin) {
				continue
			}
			log.Printf("[evaluator] tier-1 listing: %s", coin.Symbol)
			e.fire(ctx, coin, token, enrichment, d)

		case classifier.TransitionCEX:
			if !e.ledger.RecordCEXListing(coin) {
				continue
			}
			log.Printf("[evaluator] CEX listing: %s", coin.Symbol)
			e.fire(ctx, coin, token, enrichment, d)
		}
	}

	return applyErr
}

// fire sends the decision's notification and records the event.
func (e *Evaluator) fire(ctx context.Context, coin *domain.Coin, token domain.Token, enrichment domain.Enrichment, d classifier.Decision) {
	observability.RecordEventFired(string(d.Event))
	e.notify(ctx, d.Message)
	e.logEvent(ctx, coin, token, enrichment, d.Event)
}

// autoBlacklist appends the developer to the denylist once the rug
// threshold is reached. The blacklist is append-only: a developer
// already present never triggers a second notification. A failed config
// save is returned since silently losing a blacklist entry is a
// correctness hazard; the rug transition itself stands regardless.
func (e *Evaluator) autoBlacklist(ctx context.Context, coin *domain.Coin, token domain.Token, enrichment domain.Enrichment, stats *domain.DeveloperStats) error {
	ab := e.cfg.AutoBlacklist()
	if !ab.Enabled || stats == nil || stats.RugsCount < ab.RugThreshold {
		return nil
	}
	if !e.cfg.AddBlacklistedDeveloper(coin.Developer) {
		return nil
	}

	log.Printf("[evaluator] auto-blacklisted developer: %s", coin.Developer)
	observability.DefaultMetrics.DevelopersBlocked.Inc()
	e.notify(ctx, fmt.Sprintf("⚠️ Auto-blacklisted developer: %s", coin.Developer))
	e.logEvent(ctx, coin, token, enrichment, domain.EventBlacklist)

	if err := e.cfg.Save(); err != nil {
		return fmt.Errorf("persist blacklist for %s: %w", coin.Developer, err)
	}
	return nil
}

// buy attempts the fixed-amount pump purchase. Success emits a
// confirmation notification; a failed or declined buy is logged only.
func (e *Evaluator) buy(ctx context.Context, coin *domain.Coin) {
	ok, err := e.trader.Buy(ctx, coin.Address, e.cfg.QuoteAmount())
	observability.RecordBuy(ok)
	if err != nil {
		log.Printf("[evaluator] buy failed for %s: %v", coin.Address, err)
	}
	if ok {
		e.notify(ctx, fmt.Sprintf("🛒 Bought %s due to pump", coin.Symbol))
	}
}

func (e *Evaluator) notify(ctx context.Context, text string) {
	err := e.notifier.Notify(ctx, text)
	observability.RecordNotification(err)
	if err != nil {
		log.Printf("[evaluator] notify failed: %v", err)
	}
}

func (e *Evaluator) logEvent(ctx context.Context, coin *domain.Coin, token domain.Token, enrichment domain.Enrichment, eventType domain.EventType) {
	if e.events == nil {
		return
	}
	event := &domain.TokenEvent{
		Address:        coin.Address,
		Chain:          coin.Chain,
		Symbol:         coin.Symbol,
		Developer:      coin.Developer,
		Type:           eventType,
		Top10HolderPct: enrichment.Top10HolderPct,
		LiquidityUSD:   enrichment.LiquidityUSD,
		PriceChange5m:  token.PriceChange5m,
		PriceChange1h:  token.PriceChange1h,
		OccurredAt:     time.Now().UTC(),
	}
	if err := e.events.Insert(ctx, event); err != nil {
		log.Printf("[evaluator] event log insert failed for %s: %v", coin.Address, err)
	}
}

// EvaluateBatch evaluates one cycle's tokens concurrently. Duplicate
// addresses within the batch are evaluated once (first occurrence
// wins). Per-token failures are logged and never abort the batch; the
// only returned error is context cancellation.
func (e *Evaluator) EvaluateBatch(ctx context.Context, tokens []domain.Token) error {
	seen := make(map[string]bool, len(tokens))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, token := range tokens {
		if token.Address == "" || seen[token.Key()] {
			continue
		}
		seen[token.Key()] = true

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := e.EvaluateToken(ctx, token)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrRejected):
				// Expected outcome, not an error.
			case errors.Is(err, domain.ErrTransientFetch):
				observability.RecordEvaluationError("transient_fetch")
				log.Printf("[evaluator] %s: %v (retry next cycle)", token.Address, err)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				observability.RecordEvaluationError("evaluation")
				log.Printf("[evaluator] %s: %v", token.Address, err)
			}
			return nil
		})
	}

	return g.Wait()
}
