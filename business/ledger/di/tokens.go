// Package di contains dependency injection tokens for the ledger context.
package di

import (
	"github.com/ivoros/chainarb/business/ledger/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LedgerService = di.NewToken[*app.Service]("ledger.Service")
)

// Private dependency tokens - internal to ledger module
var (
	Store = di.NewToken[app.Store]("ledger:store")
)

// Helper functions for type-safe access
func GetLedgerService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, LedgerService)
}

func GetStore(c di.ServiceRegistry) app.Store {
	return di.GetToken(c, Store)
}
