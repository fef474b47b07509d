package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/exchange/app"
	"github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/circuitbreaker"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/logger"
)

const (
	sushiTracerName = "chainarb/exchange/sushiswap"
	sushiMeterName  = "chainarb/exchange/sushiswap"

	// V2 swaps have no built-in gas estimate; use a flat figure.
	sushiGasEstimate = 130_000

	sushiDeadline = 5 * time.Minute
)

// Ensure SushiswapVenue implements Venue.
var _ app.Venue = (*SushiswapVenue)(nil)

// SushiswapVenue implements Venue for the Sushiswap V2-style router.
type SushiswapVenue struct {
	clients   map[uint64]*ethclient.Client
	router    common.Address
	routerABI abi.ABI
	sender    app.TxSender

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *venueMetrics
}

// NewSushiswapVenue creates a Sushiswap venue over the given RPC clients.
func NewSushiswapVenue(clients map[uint64]*ethclient.Client, cfg config.SushiswapConfig, sender app.TxSender, log logger.LoggerInterface) (*SushiswapVenue, error) {
	routerABI, err := abi.JSON(strings.NewReader(V2RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse V2 router ABI: %w", err)
	}

	metrics, err := newVenueMetrics(sushiMeterName, "sushiswap")
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return &SushiswapVenue{
		clients:   clients,
		router:    cfg.RouterAddressHex(),
		routerABI: routerABI,
		sender:    sender,
		logger:    log,
		cb:        circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("sushiswap-router")),
		tracer:    otel.Tracer(sushiTracerName),
		metrics:   metrics,
	}, nil
}

// Name identifies the venue.
func (v *SushiswapVenue) Name() string { return "sushiswap" }

// QuoteSwap retrieves an exact-input quote via getAmountsOut.
func (v *SushiswapVenue) QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error) {
	ctx, span := v.tracer.Start(ctx, "sushiswap.quote_swap",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(chainID)),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
		),
	)
	defer span.End()

	client, ok := v.clients[chainID]
	if !ok {
		return domain.SwapQuote{}, apperror.New(apperror.CodeNetworkNotConfigured,
			apperror.WithContext("chain_id", chainID))
	}

	v.metrics.quotesTotal.Add(ctx, 1)

	path := []common.Address{tokenIn.Address(), tokenOut.Address()}
	callData, err := v.routerABI.Pack("getAmountsOut", amountIn.Raw(), path)
	if err != nil {
		return domain.SwapQuote{}, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := v.cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{
			To:   &v.router,
			Data: callData,
		}, nil)
	})
	if err != nil {
		v.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "getAmountsOut failed")
		return domain.SwapQuote{}, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithMessage("getAmountsOut call failed"))
	}

	outputs, err := v.routerABI.Unpack("getAmountsOut", result)
	if err != nil {
		return domain.SwapQuote{}, fmt.Errorf("failed to decode result: %w", err)
	}
	amounts, ok := outputs[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return domain.SwapQuote{}, fmt.Errorf("unexpected getAmountsOut output")
	}

	amountOut := amounts[len(amounts)-1]
	if amountOut.Sign() == 0 {
		return domain.SwapQuote{}, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessagef("no liquidity for %s/%s on chain %d", tokenIn.Symbol(), tokenOut.Symbol(), chainID))
	}

	quote := domain.NewSwapQuote(v.Name(), chainID, amountIn, asset.NewAmount(tokenOut, amountOut), sushiGasEstimate, 0)
	span.SetAttributes(attribute.String("amount_out", amountOut.String()))
	span.SetStatus(codes.Ok, "quote received")
	return quote, nil
}

// ExecuteSwap submits swapExactTokensForTokens. The router reverts
// below amountOutMin, so a mined transaction implies the fill respected
// minOut.
func (v *SushiswapVenue) ExecuteSwap(ctx context.Context, quote domain.SwapQuote, minOut asset.Amount) (domain.SwapReceipt, error) {
	ctx, span := v.tracer.Start(ctx, "sushiswap.execute_swap",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(quote.ChainID)),
			attribute.String("amount_in", quote.AmountIn.String()),
		),
	)
	defer span.End()

	path := []common.Address{quote.TokenIn.Address(), quote.TokenOut.Address()}
	deadline := big.NewInt(time.Now().Add(sushiDeadline).Unix())

	callData, err := v.routerABI.Pack("swapExactTokensForTokens",
		quote.AmountIn.Raw(), minOut.Raw(), path, v.sender.Address(), deadline)
	if err != nil {
		return domain.SwapReceipt{}, fmt.Errorf("failed to encode swap: %w", err)
	}

	txHash, gasUsed, err := v.sender.SendContractCall(ctx, quote.ChainID, v.router, callData)
	if err != nil {
		span.RecordError(err)
		return domain.SwapReceipt{}, apperror.Wrap(err, apperror.CodeSwapFailed,
			apperror.WithContext("venue", v.Name()),
			apperror.WithContext("chain_id", quote.ChainID))
	}

	v.metrics.swapsTotal.Add(ctx, 1)
	span.SetAttributes(attribute.String("tx_hash", txHash))

	return domain.SwapReceipt{
		Venue:     v.Name(),
		ChainID:   quote.ChainID,
		TxHash:    txHash,
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		GasUsed:   gasUsed,
		Timestamp: time.Now(),
	}, nil
}
