// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/blockchain/domain"
)

// HeadWatcher tracks the latest block on each configured chain.
type HeadWatcher interface {
	// Watch starts head tracking and returns a channel of observed heads.
	Watch(ctx context.Context) (<-chan domain.Head, error)

	// Latest returns the most recent head seen on the chain.
	Latest(chainID uint64) (domain.Head, bool)

	// State returns the watcher's connection state for the chain.
	State(chainID uint64) domain.ConnectionState
}

// GasOracle provides gas prices and estimates per chain.
type GasOracle interface {
	// GasPrice retrieves the current suggested gas price.
	GasPrice(ctx context.Context, chainID uint64) (*domain.GasPrice, error)

	// EstimateGas estimates the gas needed for a contract call.
	EstimateGas(ctx context.Context, chainID uint64, to common.Address, data []byte) (uint64, error)

	// Estimate returns a full cost estimate for a contract call.
	Estimate(ctx context.Context, chainID uint64, to common.Address, data []byte) (*domain.GasEstimate, error)
}
