// Package execution implements the execution bounded context: carrying
// planned strategies out against exchanges and bridges, one at a time.
package execution

import (
	"context"

	blockchainDI "github.com/ivoros/chainarb/business/blockchain/di"
	bridgeDI "github.com/ivoros/chainarb/business/bridge/di"
	exchangeDI "github.com/ivoros/chainarb/business/exchange/di"
	"github.com/ivoros/chainarb/business/execution/app"
	execDI "github.com/ivoros/chainarb/business/execution/di"
	"github.com/ivoros/chainarb/business/execution/infra/sim"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, execDI.FlashLoans, func(sr di.ServiceRegistry) app.FlashLoanProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return sim.NewProvider(cfg.Execution.FlashLoanFeeBpsDecimal(), log)
	})

	di.RegisterToken(c, execDI.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		return app.NewEngine(
			exchangeDI.GetExchangeRouter(sr),
			bridgeDI.GetBridgeService(sr),
			execDI.GetFlashLoans(sr),
			blockchainDI.GetWallet(sr),
			registry,
			app.EngineConfig{
				StepTimeout:     cfg.Execution.StepTimeout,
				ReferenceSymbol: cfg.Arbitrage.ReferenceSymbol,
			},
			log,
		)
	})

	return nil
}

// Startup initializes the execution module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	execDI.GetEngine(mono.Services())

	log.Info(ctx, "execution module started",
		"dry_run", cfg.Execution.DryRun,
		"flash_loans", cfg.Execution.FlashLoanEnabled,
		"step_timeout", cfg.Execution.StepTimeout.String(),
	)
	return nil
}
