// Package bridge implements the bridge bounded context: cross-chain
// token transfers through providers with ordered fallback.
package bridge

import (
	"context"

	"github.com/ivoros/chainarb/business/bridge/app"
	bridgeDI "github.com/ivoros/chainarb/business/bridge/di"
	"github.com/ivoros/chainarb/business/bridge/infra/across"
	"github.com/ivoros/chainarb/business/bridge/infra/sim"
	"github.com/ivoros/chainarb/business/bridge/infra/socket"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the bridge bounded context.
type Module struct{}

// RegisterServices registers all bridge services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register providers - private dependency
	di.RegisterToken(c, bridgeDI.Providers, func(sr di.ServiceRegistry) []app.Provider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Bridges.Simulate {
			return []app.Provider{sim.NewProvider(cfg.Bridges.FeeBpsDecimal(), log)}
		}

		providers := make([]app.Provider, 0, len(cfg.Bridges.Providers))
		for _, name := range cfg.Bridges.Providers {
			switch name {
			case "socket":
				p, err := socket.NewClient(socket.Config{
					BaseURL: cfg.Bridges.Socket.BaseURL,
					APIKey:  cfg.Bridges.Socket.APIKey,
				}, log)
				if err != nil {
					panic("failed to create socket client: " + err.Error())
				}
				providers = append(providers, p)
			case "across":
				p, err := across.NewClient(across.Config{
					BaseURL: cfg.Bridges.Across.BaseURL,
				}, log)
				if err != nil {
					panic("failed to create across client: " + err.Error())
				}
				providers = append(providers, p)
			case "sim":
				providers = append(providers, sim.NewProvider(cfg.Bridges.FeeBpsDecimal(), log))
			default:
				panic("unknown bridge provider: " + name)
			}
		}
		return providers
	})

	// Register BridgeService (public - exposed to other modules)
	di.RegisterToken(c, bridgeDI.BridgeService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewService(bridgeDI.GetProviders(sr),
			cfg.Bridges.PollInterval, cfg.Bridges.Timeout, log)
		if err != nil {
			panic("failed to create bridge service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the bridge module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// Force construction so provider misconfiguration fails at startup.
	bridgeDI.GetBridgeService(mono.Services())

	log.Info(ctx, "bridge module started",
		"providers", cfg.Bridges.Providers,
		"simulate", cfg.Bridges.Simulate,
		"timeout", cfg.Bridges.Timeout.String(),
	)
	return nil
}
