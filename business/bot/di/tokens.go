// Package di contains dependency injection tokens for the bot context.
package di

import (
	"github.com/ivoros/chainarb/business/bot/app"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Controller = di.NewToken[*app.Controller]("bot.Controller")
)

// Helper functions for type-safe access
func GetController(c di.ServiceRegistry) *app.Controller {
	return di.GetToken(c, Controller)
}
