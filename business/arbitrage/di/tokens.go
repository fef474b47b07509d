// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/ivoros/chainarb/business/arbitrage/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Finder     = di.NewToken[*app.Finder]("arbitrage.Finder")
	Strategist = di.NewToken[*app.Strategist]("arbitrage.Strategist")
)

// Private dependency tokens - internal to arbitrage module
var (
	Calculator      = di.NewToken[*app.Calculator]("arbitrage:calculator")
	GasEstimator    = di.NewToken[app.GasEstimator]("arbitrage:gasEstimator")
	BridgeEstimator = di.NewToken[app.BridgeEstimator]("arbitrage:bridgeEstimator")
)

// Helper functions for type-safe access
func GetFinder(c di.ServiceRegistry) *app.Finder {
	return di.GetToken(c, Finder)
}

func GetStrategist(c di.ServiceRegistry) *app.Strategist {
	return di.GetToken(c, Strategist)
}

func GetCalculator(c di.ServiceRegistry) *app.Calculator {
	return di.GetToken(c, Calculator)
}

func GetGasEstimator(c di.ServiceRegistry) app.GasEstimator {
	return di.GetToken(c, GasEstimator)
}

func GetBridgeEstimator(c di.ServiceRegistry) app.BridgeEstimator {
	return di.GetToken(c, BridgeEstimator)
}
