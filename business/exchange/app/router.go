package app

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const tracerName = "chainarb/exchange"

// Router fans swap requests out to venues in fallback order: the first
// venue that can serve a request wins, the rest are spares.
type Router struct {
	venues      []Venue
	slippageBps int64
	logger      logger.LoggerInterface
	tracer      trace.Tracer
}

// NewRouter creates a Router over the given venues. Order matters: the
// first venue is the primary.
func NewRouter(venues []Venue, slippageBps int64, log logger.LoggerInterface) (*Router, error) {
	if len(venues) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("router needs at least one venue"))
	}

	return &Router{
		venues:      venues,
		slippageBps: slippageBps,
		logger:      log,
		tracer:      otel.Tracer(tracerName),
	}, nil
}

// Quote asks each venue in order and returns the first quote obtained.
// When every venue fails the joined failures are wrapped in a
// QUOTE_UNAVAILABLE error.
func (r *Router) Quote(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error) {
	ctx, span := r.tracer.Start(ctx, "exchange.quote",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(chainID)),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
		),
	)
	defer span.End()

	var failures []error
	for _, venue := range r.venues {
		quote, err := venue.QuoteSwap(ctx, chainID, tokenIn, tokenOut, amountIn)
		if err != nil {
			r.logger.Warn(ctx, "venue quote failed",
				"venue", venue.Name(),
				"chain_id", chainID,
				"error", err)
			failures = append(failures, err)
			continue
		}

		span.SetAttributes(attribute.String("venue", venue.Name()))
		return quote, nil
	}

	err := apperror.New(apperror.CodeQuoteUnavailable,
		apperror.WithCause(errors.Join(failures...)),
		apperror.WithContext("chain_id", chainID),
		apperror.WithContext("pair", tokenIn.Symbol()+"/"+tokenOut.Symbol()))
	span.RecordError(err)
	return domain.SwapQuote{}, err
}

// Swap executes a previously obtained quote on the venue that produced
// it, enforcing the configured slippage tolerance.
func (r *Router) Swap(ctx context.Context, quote domain.SwapQuote) (domain.SwapReceipt, error) {
	ctx, span := r.tracer.Start(ctx, "exchange.swap",
		trace.WithAttributes(
			attribute.String("venue", quote.Venue),
			attribute.Int64("chain_id", int64(quote.ChainID)),
		),
	)
	defer span.End()

	venue, ok := r.venueByName(quote.Venue)
	if !ok {
		return domain.SwapReceipt{}, apperror.New(apperror.CodeSwapFailed,
			apperror.WithMessagef("quote references unknown venue %q", quote.Venue))
	}

	minOut := quote.MinAmountOut(r.slippageBps)
	receipt, err := venue.ExecuteSwap(ctx, quote, minOut)
	if err != nil {
		span.RecordError(err)
		return domain.SwapReceipt{}, err
	}

	if below, cmpErr := receipt.AmountOut.LessThan(minOut); cmpErr == nil && below {
		err := apperror.New(apperror.CodeSlippageExceeded,
			apperror.WithContext("min_out", minOut.String()),
			apperror.WithContext("filled", receipt.AmountOut.String()))
		span.RecordError(err)
		return domain.SwapReceipt{}, err
	}

	r.logger.Info(ctx, "swap executed",
		"venue", receipt.Venue,
		"chain_id", receipt.ChainID,
		"in", receipt.AmountIn.String(),
		"out", receipt.AmountOut.String(),
		"tx", receipt.TxHash)
	return receipt, nil
}

func (r *Router) venueByName(name string) (Venue, bool) {
	for _, v := range r.venues {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}
