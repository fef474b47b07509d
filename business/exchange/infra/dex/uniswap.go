package dex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
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
	uniswapTracerName = "chainarb/exchange/uniswap"
	uniswapMeterName  = "chainarb/exchange/uniswap"
)

// Ensure UniswapVenue implements Venue.
var _ app.Venue = (*UniswapVenue)(nil)

// venueMetrics holds OTEL metric instruments shared by the DEX venues.
type venueMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	swapsTotal   metric.Int64Counter
}

func newVenueMetrics(meterName, prefix string) (*venueMetrics, error) {
	meter := otel.Meter(meterName)
	m := &venueMetrics{}
	var err error

	if m.quotesTotal, err = meter.Int64Counter(prefix+"_quotes_total",
		metric.WithDescription("Total quote requests")); err != nil {
		return nil, err
	}
	if m.quoteLatency, err = meter.Float64Histogram(prefix+"_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.quoteErrors, err = meter.Int64Counter(prefix+"_quote_errors_total",
		metric.WithDescription("Total quote errors")); err != nil {
		return nil, err
	}
	if m.swapsTotal, err = meter.Int64Counter(prefix+"_swaps_total",
		metric.WithDescription("Total executed swaps")); err != nil {
		return nil, err
	}
	return m, nil
}

// UniswapVenue implements Venue for Uniswap V3 across networks.
type UniswapVenue struct {
	clients   map[uint64]*ethclient.Client
	quoter    common.Address
	router    common.Address
	quoterABI abi.ABI
	routerABI abi.ABI
	feeTiers  []int
	sender    app.TxSender

	logger logger.LoggerInterface
	cb     *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *venueMetrics
}

// NewUniswapVenue creates a Uniswap V3 venue over the given RPC clients.
func NewUniswapVenue(clients map[uint64]*ethclient.Client, cfg config.UniswapConfig, sender app.TxSender, log logger.LoggerInterface) (*UniswapVenue, error) {
	quoterABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}
	routerABI, err := abi.JSON(strings.NewReader(SwapRouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	metrics, err := newVenueMetrics(uniswapMeterName, "uniswap")
	if err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return &UniswapVenue{
		clients:   clients,
		quoter:    cfg.QuoterAddressHex(),
		router:    cfg.RouterAddressHex(),
		quoterABI: quoterABI,
		routerABI: routerABI,
		feeTiers:  []int{cfg.DefaultFeeTier, FeeTier005, FeeTier030, FeeTier100},
		sender:    sender,
		logger:    log,
		cb:        circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("uniswap-quoter")),
		tracer:    otel.Tracer(uniswapTracerName),
		metrics:   metrics,
	}, nil
}

// Name identifies the venue.
func (v *UniswapVenue) Name() string { return "uniswap" }

// QuoteSwap retrieves an exact-input quote, trying each fee tier and
// keeping the highest output.
func (v *UniswapVenue) QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error) {
	ctx, span := v.tracer.Start(ctx, "uniswap.quote_swap",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(chainID)),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	client, ok := v.clients[chainID]
	if !ok {
		return domain.SwapQuote{}, apperror.New(apperror.CodeNetworkNotConfigured,
			apperror.WithContext("chain_id", chainID))
	}

	start := time.Now()
	v.metrics.quotesTotal.Add(ctx, 1)

	var bestQuote *QuoteResult
	var bestFeeTier int

	for _, feeTier := range v.feeTiers {
		quote, err := v.quoteForFeeTier(ctx, client, tokenIn.Address(), tokenOut.Address(), amountIn, feeTier)
		if err != nil {
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", feeTier),
					attribute.String("error", err.Error()),
				),
			)
			continue
		}

		if bestQuote == nil || quote.AmountOut.Cmp(bestQuote.AmountOut) > 0 {
			bestQuote = quote
			bestFeeTier = feeTier
		}
	}

	v.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if bestQuote == nil {
		v.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "no valid quote")
		return domain.SwapQuote{}, apperror.New(apperror.CodeQuoteUnavailable,
			apperror.WithMessagef("no pool for %s/%s on chain %d", tokenIn.Symbol(), tokenOut.Symbol(), chainID))
	}

	amtOut := asset.NewAmount(tokenOut, bestQuote.AmountOut)
	result := domain.NewSwapQuote(v.Name(), chainID, amountIn, amtOut, bestQuote.GasEstimate.Uint64(), bestFeeTier)

	span.SetAttributes(
		attribute.String("amount_out", bestQuote.AmountOut.String()),
		attribute.Int("fee_tier", bestFeeTier),
	)
	span.SetStatus(codes.Ok, "quote received")

	return result, nil
}

func (v *UniswapVenue) quoteForFeeTier(ctx context.Context, client *ethclient.Client, tokenIn, tokenOut common.Address, amountIn asset.Amount, feeTier int) (*QuoteResult, error) {
	callData, err := v.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn.Raw(),
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := v.cb.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, ethereum.CallMsg{
			To:   &v.quoter,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithMessagef("quoter call failed for fee tier %d", feeTier))
	}

	outputs, err := v.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}

// ExecuteSwap submits exactInputSingle through the configured router.
// The router reverts below amountOutMinimum, so a mined transaction
// implies the fill respected minOut.
func (v *UniswapVenue) ExecuteSwap(ctx context.Context, quote domain.SwapQuote, minOut asset.Amount) (domain.SwapReceipt, error) {
	ctx, span := v.tracer.Start(ctx, "uniswap.execute_swap",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(quote.ChainID)),
			attribute.String("amount_in", quote.AmountIn.String()),
			attribute.String("min_out", minOut.String()),
		),
	)
	defer span.End()

	callData, err := v.routerABI.Pack("exactInputSingle", ExactInputSingleParams{
		TokenIn:           quote.TokenIn.Address(),
		TokenOut:          quote.TokenOut.Address(),
		Fee:               big.NewInt(int64(quote.FeeTier)),
		Recipient:         v.sender.Address(),
		AmountIn:          quote.AmountIn.Raw(),
		AmountOutMinimum:  minOut.Raw(),
		SqrtPriceLimitX96: big.NewInt(0),
	})
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
