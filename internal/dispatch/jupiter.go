package dispatch

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/ilkamo/jupiter-go/jupiter"
)

// wrappedSolMint is the input mint for all buys.
const wrappedSolMint = "So11111111111111111111111111111111111111112"

// JupiterExecutor executes buys through the Jupiter swap API.
type JupiterExecutor struct {
	client        *jupiter.ClientWithResponses
	userPublicKey string
	slippageBps   int
}

// NewJupiterExecutor creates an executor for the given wallet. An empty
// apiURL uses the public Jupiter API.
func NewJupiterExecutor(apiURL, userPublicKey string) (*JupiterExecutor, error) {
	if apiURL == "" {
		apiURL = jupiter.DefaultAPIURL
	}
	client, err := jupiter.NewClientWithResponses(apiURL)
	if err != nil {
		return nil, fmt.Errorf("create jupiter client: %w", err)
	}
	return &JupiterExecutor{
		client:        client,
		userPublicKey: userPublicKey,
		slippageBps:   250,
	}, nil
}

var _ TradeExecutor = (*JupiterExecutor)(nil)

// Buy swaps quoteAmount SOL into the token at address. Returns true
// only when the swap request is accepted.
func (j *JupiterExecutor) Buy(ctx context.Context, address, quoteAmount string) (bool, error) {
	sol, err := strconv.ParseFloat(quoteAmount, 64)
	if err != nil {
		return false, fmt.Errorf("parse quote amount %q: %w", quoteAmount, err)
	}
	lamports := int64(sol * 1e9)

	slippageBps := j.slippageBps
	quote, err := j.client.GetQuoteWithResponse(ctx, &jupiter.GetQuoteParams{
		InputMint:   wrappedSolMint,
		OutputMint:  address,
		Amount:      lamports,
		SlippageBps: &slippageBps,
	})
	if err != nil {
		return false, fmt.Errorf("get swap quote for %s: %w", address, err)
	}
	if quote.JSON200 == nil {
		return false, fmt.Errorf("no valid quote for %s", address)
	}

	prioritizationFee := jupiter.SwapRequest_PrioritizationFeeLamports{}
	if err := prioritizationFee.UnmarshalJSON([]byte(`"auto"`)); err != nil {
		return false, fmt.Errorf("set prioritization fee: %w", err)
	}
	dynamicComputeUnitLimit := true

	swap, err := j.client.PostSwapWithResponse(ctx, jupiter.PostSwapJSONRequestBody{
		QuoteResponse:             *quote.JSON200,
		UserPublicKey:             j.userPublicKey,
		PrioritizationFeeLamports: &prioritizationFee,
		DynamicComputeUnitLimit:   &dynamicComputeUnitLimit,
	})
	if err != nil {
		return false, fmt.Errorf("execute swap for %s: %w", address, err)
	}
	if swap.JSON200 == nil {
		return false, fmt.Errorf("swap for %s declined", address)
	}

	log.Printf("[trade] bought %s SOL of %s", quoteAmount, address)
	return true, nil
}
