// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/ivoros/chainarb/business/blockchain/app"
	"github.com/ivoros/chainarb/business/blockchain/infra/wallet"
	"github.com/ivoros/chainarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.Service]("blockchain.Service")
	Wallet            = di.NewToken[*wallet.Wallet]("blockchain.Wallet")
)

// Private dependency tokens - internal to blockchain module
var (
	GasOracle   = di.NewToken[app.GasOracle]("blockchain:gasOracle")
	HeadWatcher = di.NewToken[app.HeadWatcher]("blockchain:headWatcher")
)

// Helper functions for type-safe access
func GetBlockchainService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, BlockchainService)
}

func GetWallet(c di.ServiceRegistry) *wallet.Wallet {
	return di.GetToken(c, Wallet)
}

func GetGasOracle(c di.ServiceRegistry) app.GasOracle {
	return di.GetToken(c, GasOracle)
}

func GetHeadWatcher(c di.ServiceRegistry) app.HeadWatcher {
	return di.GetToken(c, HeadWatcher)
}
