package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GasEstimator prices a swap transaction on a given chain in reference
// asset units.
type GasEstimator interface {
	SwapCost(ctx context.Context, chainID uint64) (decimal.Decimal, error)
}

// BridgeEstimator prices and times a cross-chain transfer. Fee is
// returned in the same units as amount.
type BridgeEstimator interface {
	Fee(ctx context.Context, fromChainID, toChainID uint64, symbol string, amount decimal.Decimal) (decimal.Decimal, error)
	Duration(fromChainID, toChainID uint64) time.Duration
}
