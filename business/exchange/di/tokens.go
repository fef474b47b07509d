// Package di contains dependency injection tokens for the exchange context.
package di

import (
	"github.com/ivoros/chainarb/business/exchange/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ExchangeRouter = di.NewToken[*app.Router]("exchange.Router")
)

// Private dependency tokens - internal to exchange module
var (
	Venues = di.NewToken[[]app.Venue]("exchange:venues")
)

// Helper functions for type-safe access
func GetExchangeRouter(c di.ServiceRegistry) *app.Router {
	return di.GetToken(c, ExchangeRouter)
}

func GetVenues(c di.ServiceRegistry) []app.Venue {
	return di.GetToken(c, Venues)
}
