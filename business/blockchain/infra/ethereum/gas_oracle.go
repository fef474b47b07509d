// Package ethereum provides chain infrastructure adapters built on
// go-ethereum clients.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/blockchain/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/cache"
	"github.com/ivoros/chainarb/internal/circuitbreaker"
	"github.com/ivoros/chainarb/internal/logger"
)

const (
	tracerName = "chainarb/blockchain/ethereum"
	meterName  = "chainarb/blockchain/ethereum"
)

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	CacheTTL    time.Duration // How long to cache gas prices
	MaxGasPrice *big.Int      // Maximum acceptable gas price (safety)
	DefaultGas  uint64        // Fallback gas limit when estimation fails
	// FallbackWei, when set, is returned for chains without an RPC
	// client instead of an error. Used in dry-run mode.
	FallbackWei *big.Int
}

// DefaultGasOracleConfig returns sensible defaults.
func DefaultGasOracleConfig() GasOracleConfig {
	maxGas := new(big.Int)
	maxGas.SetString("500000000000", 10) // 500 gwei max

	return GasOracleConfig{
		CacheTTL:    12 * time.Second, // ~1 mainnet block
		MaxGasPrice: maxGas,
		DefaultGas:  200_000,
	}
}

// gasOracleMetrics holds OTEL metric instruments.
type gasOracleMetrics struct {
	priceFetches metric.Int64Counter
	priceGwei    metric.Float64Gauge
	estimates    metric.Int64Counter
	cacheHits    metric.Int64Counter
}

// GasOracle serves gas prices and estimates across the configured chains.
type GasOracle struct {
	config  GasOracleConfig
	clients map[uint64]*ethclient.Client
	logger  logger.LoggerInterface

	priceCache *cache.Cache[uint64, *domain.GasPrice]
	cb         *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *gasOracleMetrics
}

// NewGasOracle creates a gas oracle over the given RPC clients.
func NewGasOracle(cfg GasOracleConfig, clients map[uint64]*ethclient.Client, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config:     cfg,
		clients:    clients,
		logger:     log,
		priceCache: cache.New[uint64, *domain.GasPrice](5 * time.Minute),
		cb:         circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer:     otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return g, nil
}

// initMetrics initializes OTEL metric instruments.
func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.priceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.priceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Last fetched gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.estimates, err = meter.Int64Counter(
		"gas_estimate_total",
		metric.WithDescription("Total gas estimation calls"),
		metric.WithUnit("{estimate}"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Gas price cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	return nil
}

func (g *GasOracle) client(chainID uint64) (*ethclient.Client, error) {
	c, ok := g.clients[chainID]
	if !ok {
		return nil, apperror.New(apperror.CodeNetworkNotConfigured,
			apperror.WithContext("chain_id", chainID))
	}
	return c, nil
}

// GasPrice retrieves the current gas price for the chain, with caching.
func (g *GasOracle) GasPrice(ctx context.Context, chainID uint64) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.price",
		trace.WithAttributes(attribute.Int64("chain_id", int64(chainID))),
	)
	defer span.End()

	if price, found := g.priceCache.Get(chainID); found {
		g.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return price, nil
	}

	client, err := g.client(chainID)
	if err != nil {
		if g.config.FallbackWei != nil {
			span.AddEvent("fallback_price")
			price := domain.NewGasPrice(chainID, g.config.FallbackWei)
			g.priceCache.Set(chainID, price, g.config.CacheTTL)
			return price, nil
		}
		span.RecordError(err)
		return nil, err
	}

	g.metrics.priceFetches.Add(ctx, 1)

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithMessagef("failed to get gas price on chain %d", chainID))
	}

	if g.config.MaxGasPrice != nil && wei.Cmp(g.config.MaxGasPrice) > 0 {
		g.logger.Warn(ctx, "gas price exceeds max, clamping",
			"chain_id", chainID, "wei", wei.String())
		wei = g.config.MaxGasPrice
	}

	price := domain.NewGasPrice(chainID, wei)
	g.priceCache.Set(chainID, price, g.config.CacheTTL)
	g.metrics.priceGwei.Record(ctx, price.Gwei(),
		metric.WithAttributes(attribute.Int64("chain_id", int64(chainID))))

	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// EstimateGas estimates the gas needed for a contract call, with a 10%
// safety margin.
func (g *GasOracle) EstimateGas(ctx context.Context, chainID uint64, to common.Address, data []byte) (uint64, error) {
	ctx, span := g.tracer.Start(ctx, "gas.estimate",
		trace.WithAttributes(
			attribute.Int64("chain_id", int64(chainID)),
			attribute.String("to", to.Hex()),
			attribute.Int("data_len", len(data)),
		),
	)
	defer span.End()

	client, err := g.client(chainID)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	g.metrics.estimates.Add(ctx, 1)

	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		return 0, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithMessagef("failed to estimate gas for %s", to.Hex()))
	}

	gas = gas + (gas / 10)

	span.SetAttributes(attribute.Int64("gas", int64(gas)))
	span.SetStatus(codes.Ok, "estimated")

	return gas, nil
}

// Estimate returns a full cost estimate, falling back to the default gas
// limit when estimation fails.
func (g *GasOracle) Estimate(ctx context.Context, chainID uint64, to common.Address, data []byte) (*domain.GasEstimate, error) {
	ctx, span := g.tracer.Start(ctx, "gas.full_estimate")
	defer span.End()

	price, err := g.GasPrice(ctx, chainID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	gasLimit, err := g.EstimateGas(ctx, chainID, to, data)
	if err != nil {
		gasLimit = g.config.DefaultGas
		span.AddEvent("using_default_gas", trace.WithAttributes(
			attribute.Int64("default", int64(gasLimit))))
	}

	estimate := domain.NewGasEstimate(gasLimit, price)

	span.SetAttributes(
		attribute.Int64("gas_limit", int64(estimate.GasLimit)),
		attribute.Float64("total_gwei", estimate.TotalGwei()),
	)
	span.SetStatus(codes.Ok, "estimated")

	return estimate, nil
}

// Close releases the oracle's cache.
func (g *GasOracle) Close() error {
	g.priceCache.Close()
	return nil
}
