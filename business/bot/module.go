// Package bot implements the bot bounded context: the scan loop and the
// operator-facing control surface over the whole pipeline.
package bot

import (
	"context"

	arbDI "github.com/ivoros/chainarb/business/arbitrage/di"
	"github.com/ivoros/chainarb/business/bot/app"
	botDI "github.com/ivoros/chainarb/business/bot/di"
	execDI "github.com/ivoros/chainarb/business/execution/di"
	ledgerDI "github.com/ivoros/chainarb/business/ledger/di"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the bot bounded context.
type Module struct{}

// RegisterServices registers all bot services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, botDI.Controller, func(sr di.ServiceRegistry) *app.Controller {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewController(
			arbDI.GetFinder(sr),
			arbDI.GetStrategist(sr),
			execDI.GetEngine(sr),
			ledgerDI.GetLedgerService(sr),
			cfg.Arbitrage.AutoExecute,
			log,
		)
	})

	return nil
}

// Startup launches the scan loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	controller := botDI.GetController(mono.Services())
	go controller.Run(ctx, cfg.Arbitrage.ScanInterval)

	log.Info(ctx, "bot module started",
		"scan_interval", cfg.Arbitrage.ScanInterval.String(),
		"auto_execute", cfg.Arbitrage.AutoExecute,
	)
	return nil
}
