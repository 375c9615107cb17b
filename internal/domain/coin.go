package domain

import "time"

// Latch is a boolean state that transitions one way: once set it never
// resets. The zero value is unset.
type Latch bool

// Set marks the latch. It returns true only on the unset→set transition,
// so callers can gate side effects on the first firing.
func (l *Latch) Set() bool {
	if *l {
		return false
	}
	*l = true
	return true
}

// IsSet reports whether the latch has fired.
func (l Latch) IsSet() bool {
	return bool(l)
}

// Coin is the persisted record for one token address.
// Corresponds to the coins table; unique on Address. Snapshot fields
// always reflect the most recent evaluation, not a historical rollup.
type Coin struct {
	Address   string // PRIMARY KEY
	Chain     string
	Name      string
	Symbol    string
	Developer string // empty when the feed had no developer identifier

	// Snapshot of the latest enrichment.
	TotalSupply    float64
	HolderCount    int64
	Top10HolderPct float64
	LiquidityUSD   float64

	// One-way event latches. Never revert once set.
	RugDetected  Latch
	PumpDetected Latch
	Tier1Listed  Latch
	CEXListed    Latch

	FirstSeenAt time.Time
	UpdatedAt   time.Time
}

// ApplySnapshot overwrites the enrichment snapshot fields unconditionally.
func (c *Coin) ApplySnapshot(e Enrichment, now time.Time) {
	c.TotalSupply = e.TotalSupply
	c.HolderCount = e.HolderCount
	c.Top10HolderPct = e.Top10HolderPct
	c.LiquidityUSD = e.LiquidityUSD
	c.UpdatedAt = now
}

// DeveloperStats is the persisted rug record for one developer.
// Corresponds to the developer_stats table; unique on Developer.
// RugsCount is monotonically non-decreasing.
type DeveloperStats struct {
	Developer string // PRIMARY KEY
	RugsCount int64
	LastRug   time.Time
}
