// Package blockchain implements the blockchain bounded context: chain
// head tracking, gas pricing, and transaction submission.
package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ivoros/chainarb/business/blockchain/app"
	blockchainDI "github.com/ivoros/chainarb/business/blockchain/di"
	"github.com/ivoros/chainarb/business/blockchain/infra/ethereum"
	"github.com/ivoros/chainarb/business/blockchain/infra/wallet"
	"github.com/ivoros/chainarb/internal/config"
	"github.com/ivoros/chainarb/internal/di"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register GasOracle - private dependency
	di.RegisterToken(c, blockchainDI.GasOracle, func(sr di.ServiceRegistry) app.GasOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clients := sr.Get("ethClients").(map[uint64]*ethclient.Client)

		oracleCfg := ethereum.DefaultGasOracleConfig()
		if cfg.Execution.DryRun {
			// 0.1 gwei so simulated runs still price gas.
			oracleCfg.FallbackWei = big.NewInt(100_000_000)
		}

		oracle, err := ethereum.NewGasOracle(oracleCfg, clients, log)
		if err != nil {
			panic("failed to create gas oracle: " + err.Error())
		}
		return oracle
	})

	// Register HeadWatcher - private dependency
	di.RegisterToken(c, blockchainDI.HeadWatcher, func(sr di.ServiceRegistry) app.HeadWatcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clients := sr.Get("ethClients").(map[uint64]*ethclient.Client)

		watcherCfg := ethereum.DefaultWatcherConfig()
		for _, n := range cfg.Networks {
			if n.WebSocketURL != "" {
				watcherCfg.WSURLs[n.ChainID] = n.WebSocketURL
			}
		}

		watcher, err := ethereum.NewWatcher(watcherCfg, clients, log)
		if err != nil {
			panic("failed to create head watcher: " + err.Error())
		}
		return watcher
	})

	// Register Wallet (public - used by the trading contexts as tx sender)
	di.RegisterToken(c, blockchainDI.Wallet, func(sr di.ServiceRegistry) *wallet.Wallet {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		clients := sr.Get("ethClients").(map[uint64]*ethclient.Client)

		w, err := wallet.New(wallet.Config{
			Address:    cfg.Wallet.Address,
			PrivateKey: cfg.Wallet.PrivateKey,
			DryRun:     cfg.Execution.DryRun,
		}, clients, blockchainDI.GetGasOracle(sr), log)
		if err != nil {
			panic("failed to create wallet: " + err.Error())
		}
		return w
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.Service {
		return app.NewService(blockchainDI.GetHeadWatcher(sr), blockchainDI.GetGasOracle(sr))
	})

	return nil
}

// Startup initializes the blockchain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	// Force wallet construction so a bad key fails at startup.
	blockchainDI.GetWallet(mono.Services())

	svc := blockchainDI.GetBlockchainService(mono.Services())
	if _, err := svc.WatchHeads(ctx); err != nil {
		log.Warn(ctx, "head watching unavailable", "error", err)
	}

	log.Info(ctx, "blockchain module started",
		"networks", len(cfg.Networks),
		"dry_run", cfg.Execution.DryRun,
	)
	return nil
}
