// Package ledger implements the ledger bounded context: a persistent
// record of every trade and the profit-and-loss derived from it.
package ledger

import (
	"context"

	"github.com/ivoros/chainarb/business/ledger/app"
	ledgerDI "github.com/ivoros/chainarb/business/ledger/di"
	"github.com/ivoros/chainarb/business/ledger/infra/file"
	"github.com/ivoros/chainarb/business/ledger/infra/postgres"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the ledger bounded context.
type Module struct{}

// RegisterServices registers all ledger services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ledgerDI.Store, func(sr di.ServiceRegistry) app.Store {
		cfg := sr.Get("config").(*config.Config)

		switch cfg.Ledger.Backend {
		case "file":
			store, err := file.NewStore(cfg.Ledger.FilePath)
			if err != nil {
				panic("failed to open ledger file: " + err.Error())
			}
			return store
		case "postgres":
			store, err := postgres.NewStore(context.Background(), cfg.Ledger.PostgresDSN)
			if err != nil {
				panic("failed to connect ledger database: " + err.Error())
			}
			return store
		default:
			panic("unknown ledger backend: " + cfg.Ledger.Backend)
		}
	})

	di.RegisterToken(c, ledgerDI.LedgerService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewService(context.Background(),
			ledgerDI.GetStore(sr), cfg.Ledger.StartingBalanceDecimal(), log)
		if err != nil {
			panic("failed to create ledger service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the ledger module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	svc := ledgerDI.GetLedgerService(mono.Services())
	summary := svc.Summary()

	log.Info(ctx, "ledger module started",
		"backend", cfg.Ledger.Backend,
		"trades", summary.TotalTrades,
		"balance", summary.Balance.StringFixed(2),
	)
	return nil
}
