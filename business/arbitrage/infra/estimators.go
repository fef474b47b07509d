// Package infra adapts the blockchain and bridge contexts into the fee
// estimators the arbitrage calculator consumes.
package infra

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/arbitrage/app"
	blockchainApp "github.com/ivoros/chainarb/business/blockchain/app"
	bridgeApp "github.com/ivoros/chainarb/business/bridge/app"
	pricingApp "github.com/ivoros/chainarb/business/pricing/app"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

// swapGasLimit is the gas budget assumed for a single DEX swap when
// pricing it ahead of execution.
const swapGasLimit = 150_000

// nativeSymbol prices gas through the wrapped native token, which the
// oracle quotes in the reference asset.
const nativeSymbol = "WETH"

// GasEstimator converts the current gas price of a chain into the cost
// of one swap, denominated in the reference asset.
type GasEstimator struct {
	blockchain *blockchainApp.Service
	oracle     pricingApp.PriceOracle
	logger     logger.LoggerInterface
}

// NewGasEstimator creates a GasEstimator.
func NewGasEstimator(blockchain *blockchainApp.Service, oracle pricingApp.PriceOracle, log logger.LoggerInterface) *GasEstimator {
	return &GasEstimator{
		blockchain: blockchain,
		oracle:     oracle,
		logger:     log,
	}
}

// SwapCost returns the reference-asset cost of one swap on chainID.
func (e *GasEstimator) SwapCost(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	gasPrice, err := e.blockchain.GasPrice(ctx, chainID)
	if err != nil {
		return decimal.Zero, err
	}

	// gas limit * wei price, scaled from wei to whole native units.
	costNative := decimal.NewFromBigInt(gasPrice.Wei, 0).
		Mul(decimal.NewFromInt(swapGasLimit)).
		Shift(-18)

	nativeQuote, err := e.oracle.GetPrice(ctx, nativeSymbol, chainID)
	if err != nil {
		return decimal.Zero, apperror.Wrap(err, apperror.CodeQuoteUnavailable,
			apperror.WithMessagef("no %s price to denominate gas on chain %d", nativeSymbol, chainID))
	}
	return costNative.Mul(nativeQuote.Price), nil
}

var _ app.GasEstimator = (*GasEstimator)(nil)

type route struct {
	from, to uint64
}

// BridgeEstimator prices transfers through the bridge service. The
// transit time of a route is remembered from the latest fee quote so
// Duration can answer without a network round trip.
type BridgeEstimator struct {
	bridge   *bridgeApp.Service
	registry *asset.Registry

	mu       sync.RWMutex
	lastETAs map[route]time.Duration
}

// defaultBridgeTime is assumed for routes that have never been quoted.
const defaultBridgeTime = 3 * time.Minute

// NewBridgeEstimator creates a BridgeEstimator.
func NewBridgeEstimator(bridge *bridgeApp.Service, registry *asset.Registry) *BridgeEstimator {
	return &BridgeEstimator{
		bridge:   bridge,
		registry: registry,
		lastETAs: make(map[route]time.Duration),
	}
}

// Fee quotes bridging amount of symbol between two chains and returns
// the fee in token units.
func (e *BridgeEstimator) Fee(ctx context.Context, fromChainID, toChainID uint64, symbol string, amount decimal.Decimal) (decimal.Decimal, error) {
	src, ok := e.registry.GetBySymbolAndChain(symbol, fromChainID)
	if !ok {
		return decimal.Zero, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessagef("%s is not registered on chain %d", symbol, fromChainID))
	}
	dst, ok := e.registry.GetBySymbolAndChain(symbol, toChainID)
	if !ok {
		return decimal.Zero, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessagef("%s is not registered on chain %d", symbol, toChainID))
	}

	amountIn, err := asset.ParseDecimal(src, amount)
	if err != nil {
		return decimal.Zero, err
	}
	quote, err := e.bridge.Quote(ctx, amountIn, dst)
	if err != nil {
		return decimal.Zero, err
	}

	e.mu.Lock()
	e.lastETAs[route{fromChainID, toChainID}] = quote.ETA
	e.mu.Unlock()

	return quote.Fee.ToDecimal(), nil
}

// Duration returns the expected transit time of a route.
func (e *BridgeEstimator) Duration(fromChainID, toChainID uint64) time.Duration {
	e.mu.RLock()
	eta, ok := e.lastETAs[route{fromChainID, toChainID}]
	e.mu.RUnlock()
	if !ok || eta <= 0 {
		return defaultBridgeTime
	}
	return eta
}

var _ app.BridgeEstimator = (*BridgeEstimator)(nil)
