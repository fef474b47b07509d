// Package domain contains the core domain types for the exchange context.
package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/internal/asset"
)

// SwapQuote is a venue's offer to swap AmountIn of TokenIn for
// AmountOut of TokenOut on one network.
type SwapQuote struct {
	Venue       string
	ChainID     uint64
	TokenIn     *asset.Asset
	TokenOut    *asset.Asset
	AmountIn    asset.Amount
	AmountOut   asset.Amount
	GasEstimate uint64
	FeeTier     int // in hundredths of a bip (3000 = 0.30%), 0 when not applicable
	Timestamp   time.Time
}

// NewSwapQuote creates a quote observed now.
func NewSwapQuote(venue string, chainID uint64, amountIn, amountOut asset.Amount, gasEstimate uint64, feeTier int) SwapQuote {
	return SwapQuote{
		Venue:       venue,
		ChainID:     chainID,
		TokenIn:     amountIn.Asset(),
		TokenOut:    amountOut.Asset(),
		AmountIn:    amountIn,
		AmountOut:   amountOut,
		GasEstimate: gasEstimate,
		FeeTier:     feeTier,
		Timestamp:   time.Now(),
	}
}

// EffectiveRate returns AmountOut/AmountIn in display units.
func (q SwapQuote) EffectiveRate() decimal.Decimal {
	if q.AmountIn.IsZero() {
		return decimal.Zero
	}
	return q.AmountOut.ToDecimal().Div(q.AmountIn.ToDecimal())
}

// MinAmountOut returns the smallest acceptable output after applying
// the slippage tolerance in basis points.
func (q SwapQuote) MinAmountOut(slippageBps int64) asset.Amount {
	out := q.AmountOut.Raw()
	keep := big.NewInt(10000 - slippageBps)
	out.Mul(out, keep)
	out.Div(out, big.NewInt(10000))
	return asset.NewAmount(q.TokenOut, out)
}

// String returns a human-readable representation.
func (q SwapQuote) String() string {
	return fmt.Sprintf("%s@%d: %s -> %s", q.Venue, q.ChainID, q.AmountIn, q.AmountOut)
}

// SwapReceipt is the result of an executed swap.
type SwapReceipt struct {
	Venue     string
	ChainID   uint64
	TxHash    string
	AmountIn  asset.Amount
	AmountOut asset.Amount
	GasUsed   uint64
	Timestamp time.Time
}
