package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Filters holds the enrichment gate thresholds.
type Filters struct {
	MinLiquidity    float64 `json:"min_liquidity"`
	MaxTop10Percent float64 `json:"max_top10_percent"`
	MinHolders      int64   `json:"min_holders"`
}

// AutoBlacklist controls automatic developer denylisting.
type AutoBlacklist struct {
	Enabled      bool  `json:"enabled"`
	RugThreshold int64 `json:"rug_threshold"`
}

// Rugcheck controls the reputation screen: cached verdicts keyed by
// token address and the behavior when the reputation service fails.
type Rugcheck struct {
	FailOpen bool              `json:"fail_open"`
	Cache    map[string]string `json:"cache"`
}

// Trading holds the fixed quote amount used for automated pump buys.
type Trading struct {
	QuoteAmount string `json:"quote_amount"`
}

// fileConfig is the on-disk shape. Unknown keys are kept in Extra so a
// load/save round-trip never drops fields this version does not know about.
type fileConfig struct {
	Filters             Filters       `json:"filters"`
	AutoBlacklist       AutoBlacklist `json:"auto_blacklist"`
	BlacklistedDevs     []string      `json:"-"`
	Rugcheck            Rugcheck      `json:"rugcheck"`
	Trading             Trading       `json:"trading"`
	Tier1Exchange       string        `json:"tier1_exchange"`
	DefaultChain        string        `json:"default_chain"`
	PollIntervalSeconds int           `json:"poll_interval_seconds"`

	Extra map[string]json.RawMessage `json:"-"`
}

// blacklists nests the developer set the way the config file lays it out.
type blacklists struct {
	Developers []string `json:"developers"`
}

// Config is the shared runtime configuration. All accessors are safe for
// concurrent use; mutations are persisted with Save.
type Config struct {
	mu   sync.RWMutex
	path string
	fc   fileConfig
}

// Default returns a Config populated with the stock thresholds, not bound
// to any file. Save is a no-op until a path is set via Load.
func Default() *Config {
	return &Config{fc: defaults()}
}

// LoadOrCreate loads the config at path, writing a default file there
// first when none exists.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := &Config{path: path, fc: defaults()}
		if err := c.Save(); err != nil {
			return nil, fmt.Errorf("write default config %s: %w", path, err)
		}
		return c, nil
	}
	return Load(path)
}

func defaults() fileConfig {
	return fileConfig{
		Filters: Filters{
			MinLiquidity:    10000,
			MaxTop10Percent: 50,
			MinHolders:      100,
		},
		AutoBlacklist: AutoBlacklist{
			Enabled:      true,
			RugThreshold: 3,
		},
		Rugcheck: Rugcheck{
			Cache: make(map[string]string),
		},
		Trading: Trading{
			QuoteAmount: "0.1",
		},
		Tier1Exchange:       "Binance",
		DefaultChain:        "solana",
		PollIntervalSeconds: 300,
	}
}

// Load reads and parses the JSON config at path. Missing fields fall back
// to defaults; unknown fields are retained for the next Save.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	fc := defaults()
	for key, val := range raw {
		switch key {
		case "filters":
			err = json.Unmarshal(val, &fc.Filters)
		case "auto_blacklist":
			err = json.Unmarshal(val, &fc.AutoBlacklist)
		case "blacklists":
			var bl blacklists
			if err = json.Unmarshal(val, &bl); err == nil {
				fc.BlacklistedDevs = bl.Developers
			}
		case "rugcheck":
			err = json.Unmarshal(val, &fc.Rugcheck)
		case "trading":
			err = json.Unmarshal(val, &fc.Trading)
		case "tier1_exchange":
			err = json.Unmarshal(val, &fc.Tier1Exchange)
		case "default_chain":
			err = json.Unmarshal(val, &fc.DefaultChain)
		case "poll_interval_seconds":
			err = json.Unmarshal(val, &fc.PollIntervalSeconds)
		default:
			if fc.Extra == nil {
				fc.Extra = make(map[string]json.RawMessage)
			}
			fc.Extra[key] = val
		}
		if err != nil {
			return nil, fmt.Errorf("parse config key %q: %w", key, err)
		}
	}
	if fc.Rugcheck.Cache == nil {
		fc.Rugcheck.Cache = make(map[string]string)
	}

	return &Config{path: path, fc: fc}, nil
}

// Save writes the config back to its file atomically (temp file + rename).
// A Config without a path saves nowhere and returns nil.
func (c *Config) Save() error {
	c.mu.RLock()
	path := c.path
	data, err := c.marshalLocked()
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if path == "" {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config %s: %w", path, err)
	}
	return nil
}

func (c *Config) marshalLocked() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.fc.Extra)+8)
	for key, val := range c.fc.Extra {
		out[key] = val
	}

	put := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = data
		return nil
	}

	devs := c.fc.BlacklistedDevs
	if devs == nil {
		devs = []string{}
	}
	for _, pair := range []struct {
		key string
		v   any
	}{
		{"filters", c.fc.Filters},
		{"auto_blacklist", c.fc.AutoBlacklist},
		{"blacklists", blacklists{Developers: devs}},
		{"rugcheck", c.fc.Rugcheck},
		{"trading", c.fc.Trading},
		{"tier1_exchange", c.fc.Tier1Exchange},
		{"default_chain", c.fc.DefaultChain},
		{"poll_interval_seconds", c.fc.PollIntervalSeconds},
	} {
		if err := put(pair.key, pair.v); err != nil {
			return nil, err
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

// Filters returns the current enrichment thresholds.
func (c *Config) Filters() Filters {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.Filters
}

// AutoBlacklist returns the auto-blacklist settings.
func (c *Config) AutoBlacklist() AutoBlacklist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.AutoBlacklist
}

// QuoteAmount returns the fixed buy amount for pump purchases.
func (c *Config) QuoteAmount() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.Trading.QuoteAmount
}

// Tier1Exchange returns the exchange name whose listing counts as tier-1.
func (c *Config) Tier1Exchange() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.Tier1Exchange
}

// DefaultChain returns the chain assumed for tokens that do not carry one.
func (c *Config) DefaultChain() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.DefaultChain
}

// PollInterval returns the feed polling period.
func (c *Config) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.fc.PollIntervalSeconds) * time.Second
}

// FailOpen reports whether a reputation-service failure lets tokens pass.
func (c *Config) FailOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fc.Rugcheck.FailOpen
}

// IsBlacklisted reports whether the developer is on the denylist.
func (c *Config) IsBlacklisted(developer string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, dev := range c.fc.BlacklistedDevs {
		if dev == developer {
			return true
		}
	}
	return false
}

// AddBlacklistedDeveloper appends the developer to the denylist. Returns
// false without modifying anything if the developer is already present,
// so callers can gate the one-time blacklist notification on the result.
func (c *Config) AddBlacklistedDeveloper(developer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, dev := range c.fc.BlacklistedDevs {
		if dev == developer {
			return false
		}
	}
	c.fc.BlacklistedDevs = append(c.fc.BlacklistedDevs, developer)
	return true
}

// BlacklistedDevelopers returns a copy of the denylist.
func (c *Config) BlacklistedDevelopers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.fc.BlacklistedDevs))
	copy(out, c.fc.BlacklistedDevs)
	return out
}

// CachedVerdict returns the cached reputation verdict for an address.
func (c *Config) CachedVerdict(address string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	verdict, ok := c.fc.Rugcheck.Cache[address]
	return verdict, ok
}

// SetCachedVerdict records a reputation verdict for an address.
func (c *Config) SetCachedVerdict(address, verdict string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fc.Rugcheck.Cache[address] = verdict
}
