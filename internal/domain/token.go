package domain

// Token is a raw feed record for one token in one poll cycle.
// Produced fresh each cycle by a feed source; never persisted as-is.
type Token struct {
	Address   string // unique key, qualified by Chain
	Chain     string // empty means the configured default chain
	Name      string
	Symbol    string
	Developer string // optional developer identifier

	// Price change percentages over feed windows.
	PriceChange5m  float64
	PriceChange1h  float64
	PriceChange24h float64

	// Exchanges currently listing the token.
	Exchanges []string

	// CEXListing is set by the feed when a centralized-exchange
	// listing has been announced.
	CEXListing bool
}

// Key returns the chain-qualified identity of the token.
func (t Token) Key() string {
	if t.Chain == "" {
		return t.Address
	}
	return t.Chain + ":" + t.Address
}

// ListedOn reports whether the feed saw the token on the given exchange.
func (t Token) ListedOn(exchange string) bool {
	for _, e := range t.Exchanges {
		if e == exchange {
			return true
		}
	}
	return false
}

// Enrichment holds on-chain metrics derived for one evaluation.
// Keyed by address+chain, discarded after the cycle.
type Enrichment struct {
	TotalSupply    float64
	HolderCount    int64
	Top10HolderPct float64
	LiquidityUSD   float64
}
