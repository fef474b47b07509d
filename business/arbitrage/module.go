// Package arbitrage implements the arbitrage bounded context: scanning
// cross-network price spreads, modeling their profitability, and
// planning the trades worth executing.
package arbitrage

import (
	"context"

	"github.com/ivoros/chainarb/business/arbitrage/app"
	arbDI "github.com/ivoros/chainarb/business/arbitrage/di"
	"github.com/ivoros/chainarb/business/arbitrage/infra"
	blockchainDI "github.com/ivoros/chainarb/business/blockchain/di"
	bridgeDI "github.com/ivoros/chainarb/business/bridge/di"
	pricingDI "github.com/ivoros/chainarb/business/pricing/di"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbDI.GasEstimator, func(sr di.ServiceRegistry) app.GasEstimator {
		log := sr.Get("logger").(logger.LoggerInterface)
		return infra.NewGasEstimator(
			blockchainDI.GetBlockchainService(sr),
			pricingDI.GetPriceOracle(sr),
			log,
		)
	})

	di.RegisterToken(c, arbDI.BridgeEstimator, func(sr di.ServiceRegistry) app.BridgeEstimator {
		registry := sr.Get("assetRegistry").(*asset.Registry)
		return infra.NewBridgeEstimator(bridgeDI.GetBridgeService(sr), registry)
	})

	di.RegisterToken(c, arbDI.Calculator, func(sr di.ServiceRegistry) *app.Calculator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		return app.NewCalculator(
			arbDI.GetGasEstimator(sr),
			arbDI.GetBridgeEstimator(sr),
			registry,
			app.CalculatorConfig{
				SlippageBps:  cfg.Exchanges.SlippageBpsDecimal(),
				MinProfit:    cfg.Arbitrage.MinProfitDecimal(),
				SizingCoeff:  cfg.Arbitrage.SizingCoeffDecimal(),
				MinTradeSize: cfg.Arbitrage.MinTradeSizeDecimal(),
				MaxTradeSize: cfg.Arbitrage.MaxTradeSizeDecimal(),
			},
			log,
		)
	})

	di.RegisterToken(c, arbDI.Finder, func(sr di.ServiceRegistry) *app.Finder {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		return app.NewFinder(
			pricingDI.GetPricingService(sr),
			arbDI.GetCalculator(sr),
			registry,
			app.FinderConfig{
				Symbols:      cfg.Arbitrage.Symbols,
				DeviationPct: cfg.Arbitrage.DeviationPctDecimal(),
				Capital:      cfg.Execution.MaxExposureDecimal(),
			},
			log,
		)
	})

	di.RegisterToken(c, arbDI.Strategist, func(sr di.ServiceRegistry) *app.Strategist {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewStrategist(
			arbDI.GetGasEstimator(sr),
			arbDI.GetBridgeEstimator(sr),
			app.StrategistConfig{
				MaxExposure:       cfg.Execution.MaxExposureDecimal(),
				MinTradeSize:      cfg.Arbitrage.MinTradeSizeDecimal(),
				FlashLoansEnabled: cfg.Execution.FlashLoanEnabled,
			},
			log,
		)
	})

	return nil
}

// Startup initializes the arbitrage module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	arbDI.GetFinder(mono.Services())
	arbDI.GetStrategist(mono.Services())

	log.Info(ctx, "arbitrage module started",
		"symbols", cfg.Arbitrage.Symbols,
		"deviation_pct", cfg.Arbitrage.DeviationPct,
		"flash_loans", cfg.Execution.FlashLoanEnabled,
	)
	return nil
}
