package domain

import "time"

// EventType identifies a fired state transition.
type EventType string

const (
	EventRug         EventType = "RUG"
	EventPump        EventType = "PUMP"
	EventTier1Listed EventType = "TIER1_LISTING"
	EventCEXListed   EventType = "CEX_LISTING"
	EventBlacklist   EventType = "DEV_BLACKLIST"
)

// TokenEvent is one row of the append-only event log. Every latch that
// fires (and every auto-blacklist) is recorded here for later analysis.
type TokenEvent struct {
	Address        string
	Chain          string
	Symbol         string
	Developer      string
	Type           EventType
	Top10HolderPct float64
	LiquidityUSD   float64
	PriceChange5m  float64
	PriceChange1h  float64
	OccurredAt     time.Time
}
