// Package sim provides a simulated swap venue for dry-run mode. Quotes
// are derived from a price source and fills are deterministic, so the
// rest of the pipeline can run without RPC endpoints or funded wallets.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/exchange/app"
	"github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const simGasEstimate = 120_000

// PriceFunc returns the price of a token in reference units on the
// given chain.
type PriceFunc func(ctx context.Context, symbol string, chainID uint64) (decimal.Decimal, error)

var _ app.Venue = (*Venue)(nil)

// Venue is a simulated DEX venue backed by a price source.
type Venue struct {
	prices PriceFunc
	feeBps decimal.Decimal
	logger logger.LoggerInterface
}

// NewVenue creates a simulated venue charging feeBps per swap.
func NewVenue(prices PriceFunc, feeBps decimal.Decimal, log logger.LoggerInterface) *Venue {
	return &Venue{
		prices: prices,
		feeBps: feeBps,
		logger: log,
	}
}

// Name identifies the venue.
func (v *Venue) Name() string { return "sim" }

// QuoteSwap prices an exact-input swap off the price source and applies
// the configured fee.
func (v *Venue) QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error) {
	priceIn, err := v.prices(ctx, tokenIn.Symbol(), chainID)
	if err != nil {
		return domain.SwapQuote{}, apperror.Wrap(err, apperror.CodeQuoteUnavailable,
			apperror.WithContext("symbol", tokenIn.Symbol()),
			apperror.WithContext("chain_id", chainID))
	}
	priceOut, err := v.prices(ctx, tokenOut.Symbol(), chainID)
	if err != nil {
		return domain.SwapQuote{}, apperror.Wrap(err, apperror.CodeQuoteUnavailable,
			apperror.WithContext("symbol", tokenOut.Symbol()),
			apperror.WithContext("chain_id", chainID))
	}
	if priceOut.IsZero() {
		return domain.SwapQuote{}, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessagef("zero price for %s on chain %d", tokenOut.Symbol(), chainID))
	}

	feeFactor := decimal.NewFromInt(10_000).Sub(v.feeBps).Div(decimal.NewFromInt(10_000))
	rate := asset.NewPriceNow(tokenIn, tokenOut, priceIn.Div(priceOut).Mul(feeFactor))

	amountOut, err := rate.Convert(amountIn)
	if err != nil {
		return domain.SwapQuote{}, fmt.Errorf("sim quote amount: %w", err)
	}

	return domain.NewSwapQuote(v.Name(), chainID, amountIn, amountOut, simGasEstimate, 0), nil
}

// ExecuteSwap fills at exactly the quoted amount.
func (v *Venue) ExecuteSwap(ctx context.Context, quote domain.SwapQuote, minOut asset.Amount) (domain.SwapReceipt, error) {
	below, err := quote.AmountOut.LessThan(minOut)
	if err != nil {
		return domain.SwapReceipt{}, err
	}
	if below {
		return domain.SwapReceipt{}, apperror.New(apperror.CodeSlippageExceeded,
			apperror.WithContext("amount_out", quote.AmountOut.String()),
			apperror.WithContext("min_out", minOut.String()))
	}

	txHash := "0xsim-" + uuid.NewString()
	v.logger.Info(ctx, "simulated swap executed",
		"chain_id", quote.ChainID,
		"amount_in", quote.AmountIn.String(),
		"amount_out", quote.AmountOut.String(),
		"tx_hash", txHash,
	)

	return domain.SwapReceipt{
		Venue:     v.Name(),
		ChainID:   quote.ChainID,
		TxHash:    txHash,
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		GasUsed:   simGasEstimate,
		Timestamp: time.Now(),
	}, nil
}
