// Package dispatch abstracts the pipeline's side effects: notifications
// and automated buys. Retry, backoff, and rate limiting belong to the
// underlying channels, not here.
package dispatch

import (
	"context"
	"log"
)

// Notifier delivers a fire-and-forget message to the operator channel.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TradeExecutor places a buy for a token address at a fixed quote
// amount. The bool reports whether the buy executed; a declined buy is
// (false, nil).
type TradeExecutor interface {
	Buy(ctx context.Context, address, quoteAmount string) (bool, error)
}

// LogNotifier writes notifications to the process log. Used when no
// Telegram credentials are configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, text string) error {
	log.Printf("[notify] %s", text)
	return nil
}

// DryRunExecutor logs would-be buys and reports them as executed.
// Used when no wallet is configured.
type DryRunExecutor struct{}

func (DryRunExecutor) Buy(ctx context.Context, address, quoteAmount string) (bool, error) {
	log.Printf("[trade] dry-run buy: %s SOL of %s", quoteAmount, address)
	return true, nil
}
