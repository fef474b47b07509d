// Package exchange implements the exchange bounded context: quoting and
// executing swaps on DEX venues with ordered fallback.
package exchange

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	blockchainDI "github.com/ivoros/chainarb/business/blockchain/di"
	"github.com/ivoros/chainarb/business/exchange/app"
	exchangeDI "github.com/ivoros/chainarb/business/exchange/di"
	"github.com/ivoros/chainarb/business/exchange/infra/dex"
	"github.com/ivoros/chainarb/business/exchange/infra/sim"
	pricingDI "github.com/ivoros/chainarb/business/pricing/di"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the exchange bounded context.
type Module struct{}

// RegisterServices registers all exchange services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register venues - private dependency
	di.RegisterToken(c, exchangeDI.Venues, func(sr di.ServiceRegistry) []app.Venue {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Exchanges.Simulate {
			return []app.Venue{simulatedVenue(sr, cfg, log)}
		}

		clients := sr.Get("ethClients").(map[uint64]*ethclient.Client)
		sender := blockchainDI.GetWallet(sr)

		venues := make([]app.Venue, 0, len(cfg.Exchanges.Venues))
		for _, name := range cfg.Exchanges.Venues {
			switch name {
			case "uniswap":
				v, err := dex.NewUniswapVenue(clients, cfg.Exchanges.Uniswap, sender, log)
				if err != nil {
					panic("failed to create uniswap venue: " + err.Error())
				}
				venues = append(venues, v)
			case "sushiswap":
				v, err := dex.NewSushiswapVenue(clients, cfg.Exchanges.Sushiswap, sender, log)
				if err != nil {
					panic("failed to create sushiswap venue: " + err.Error())
				}
				venues = append(venues, v)
			case "sim":
				venues = append(venues, simulatedVenue(sr, cfg, log))
			default:
				panic("unknown exchange venue: " + name)
			}
		}
		return venues
	})

	// Register Router (public - exposed to other modules)
	di.RegisterToken(c, exchangeDI.ExchangeRouter, func(sr di.ServiceRegistry) *app.Router {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		router, err := app.NewRouter(exchangeDI.GetVenues(sr), int64(cfg.Exchanges.SlippageBps), log)
		if err != nil {
			panic("failed to create exchange router: " + err.Error())
		}
		return router
	})

	return nil
}

// simulatedVenue builds a sim venue priced off the oracle.
func simulatedVenue(sr di.ServiceRegistry, cfg *config.Config, log logger.LoggerInterface) app.Venue {
	oracle := pricingDI.GetPriceOracle(sr)
	prices := sim.PriceFunc(func(ctx context.Context, symbol string, chainID uint64) (decimal.Decimal, error) {
		quote, err := oracle.GetPrice(ctx, symbol, chainID)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return quote.Price, nil
	})
	return sim.NewVenue(prices, cfg.Exchanges.FeeBpsDecimal(), log)
}

// Startup initializes the exchange module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// Force router construction so venue misconfiguration fails at startup.
	exchangeDI.GetExchangeRouter(mono.Services())

	log.Info(ctx, "exchange module started",
		"venues", cfg.Exchanges.Venues,
		"simulate", cfg.Exchanges.Simulate,
	)
	return nil
}
