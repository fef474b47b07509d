// Package pricing implements the pricing bounded context for cross-network
// oracle quotes.
package pricing

import (
	"context"

	"github.com/ivoros/chainarb/business/pricing/app"
	pricingDI "github.com/ivoros/chainarb/business/pricing/di"
	"github.com/ivoros/chainarb/business/pricing/infra/oracle"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct {
	stream *oracle.Stream
}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register PriceOracle - private dependency
	di.RegisterToken(c, pricingDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := oracle.ClientConfig{
			BaseURL:    cfg.Oracle.BaseURL,
			Timeout:    cfg.Oracle.Timeout,
			CacheTTL:   cfg.Oracle.CacheTTL,
			RatePerSec: cfg.Oracle.RatePerSec,
			RateBurst:  cfg.Oracle.RateBurst,
		}

		client, err := oracle.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create oracle client: " + err.Error())
		}
		return client
	})

	// Register PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		networks := make([]app.Network, 0, len(cfg.Networks))
		for name, n := range cfg.Networks {
			networks = append(networks, app.Network{Name: name, ChainID: n.ChainID})
		}

		return app.NewService(pricingDI.GetPriceOracle(sr), networks, cfg.Oracle.StaleAfter, log)
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// Force oracle construction so a bad base URL fails at startup.
	pricingDI.GetPriceOracle(mono.Services())

	// Optionally start the push stream; polling still works without it.
	if cfg.Oracle.StreamEnable && cfg.Oracle.StreamURL != "" {
		stream, err := oracle.NewStream(oracle.StreamConfig{URL: cfg.Oracle.StreamURL}, log)
		if err != nil {
			log.Warn(ctx, "oracle stream setup failed, falling back to polling", "error", err)
		} else if _, err := stream.Subscribe(ctx, cfg.Arbitrage.Symbols); err != nil {
			log.Warn(ctx, "oracle stream subscribe failed, falling back to polling", "error", err)
			stream.Close()
		} else {
			m.stream = stream
			log.Info(ctx, "oracle stream connected", "url", cfg.Oracle.StreamURL)
		}
	}

	log.Info(ctx, "pricing module started", "networks", len(cfg.Networks))
	return nil
}
