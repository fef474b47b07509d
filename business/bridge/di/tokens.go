// Package di contains dependency injection tokens for the bridge context.
package di

import (
	"github.com/ivoros/chainarb/business/bridge/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BridgeService = di.NewToken[*app.Service]("bridge.Service")
)

// Private dependency tokens - internal to bridge module
var (
	Providers = di.NewToken[[]app.Provider]("bridge:providers")
)

// Helper functions for type-safe access
func GetBridgeService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, BridgeService)
}

func GetProviders(c di.ServiceRegistry) []app.Provider {
	return di.GetToken(c, Providers)
}
