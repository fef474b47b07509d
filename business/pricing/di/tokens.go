// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/ivoros/chainarb/business/pricing/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService = di.NewToken[*app.Service]("pricing.Service")
)

// Private dependency tokens - internal to pricing module
var (
	PriceOracle = di.NewToken[app.PriceOracle]("pricing:priceOracle")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, PricingService)
}

func GetPriceOracle(c di.ServiceRegistry) app.PriceOracle {
	return di.GetToken(c, PriceOracle)
}
