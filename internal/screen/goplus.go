package screen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/7finger0x/Coinbot-project/internal/domain"
)

// DefaultGoPlusURL is the GoPlus token security API base.
const DefaultGoPlusURL = "https://api.gopluslabs.io/api/v1/token_security"

// GoPlusChecker queries the GoPlus token security API for a verdict.
type GoPlusChecker struct {
	baseURL string
	client  *http.Client
}

// NewGoPlusChecker creates a checker against baseURL (the default API
// when empty).
func NewGoPlusChecker(baseURL string) *GoPlusChecker {
	if baseURL == "" {
		baseURL = DefaultGoPlusURL
	}
	return &GoPlusChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ ReputationChecker = (*GoPlusChecker)(nil)

type goPlusSecurity struct {
	IsSellable     string `json:"is_sellable"`
	SellTax        string `json:"sell_tax"`
	BuyTax         string `json:"buy_tax"`
	TransferPaused string `json:"transfer_pausable"`
	IsBlacklisted  string `json:"is_blacklisted"`
	IsHoneypot     string `json:"is_honeypot"`
}

// Check fetches the token security report and maps it to a verdict.
// Honeypot characteristics, paused transfers, or taxes over 20% are bad.
func (g *GoPlusChecker) Check(ctx context.Context, token domain.Token) (string, error) {
	endpoint := fmt.Sprintf("%s/%s?contract_addresses=%s",
		g.baseURL, url.PathEscape(token.Chain), url.QueryEscape(token.Address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create security request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch security info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("security API status %d", resp.StatusCode)
	}

	var result struct {
		Code    int                       `json:"code"`
		Message string                    `json:"message"`
		Data    map[string]goPlusSecurity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode security response: %w", err)
	}
	if result.Code != 1 {
		return "", fmt.Errorf("security API error: %s", result.Message)
	}

	sec, ok := result.Data[strings.ToLower(token.Address)]
	if !ok {
		sec, ok = result.Data[token.Address]
	}
	if !ok {
		return "", fmt.Errorf("token %s missing from security response", token.Address)
	}

	if isRisky(sec) {
		return VerdictBad, nil
	}
	return VerdictGood, nil
}

func isRisky(sec goPlusSecurity) bool {
	if sec.IsHoneypot == "1" || sec.IsSellable == "0" {
		return true
	}
	if sec.TransferPaused == "1" || sec.IsBlacklisted == "1" {
		return true
	}
	if tax, err := strconv.ParseFloat(sec.SellTax, 64); err == nil && tax > 20.0 {
		return true
	}
	if tax, err := strconv.ParseFloat(sec.BuyTax, 64); err == nil && tax > 20.0 {
		return true
	}
	return false
}
