// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/ivoros/chainarb/business/execution/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Engine = di.NewToken[*app.Engine]("execution.Engine")
)

// Private dependency tokens - internal to execution module
var (
	FlashLoans = di.NewToken[app.FlashLoanProvider]("execution:flashLoans")
)

// Helper functions for type-safe access
func GetEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, Engine)
}

func GetFlashLoans(c di.ServiceRegistry) app.FlashLoanProvider {
	return di.GetToken(c, FlashLoans)
}
