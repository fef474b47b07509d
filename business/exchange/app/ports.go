// Package app contains application services and port definitions for the exchange context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/internal/asset"
)

// Venue defines the interface for a swap venue (a DEX or a simulator).
type Venue interface {
	// Name identifies the venue ("uniswap", "sushiswap", "sim").
	Name() string

	// QuoteSwap asks the venue for an exact-input quote on one network.
	QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error)

	// ExecuteSwap performs the swap described by quote, rejecting fills
	// below minOut.
	ExecuteSwap(ctx context.Context, quote domain.SwapQuote, minOut asset.Amount) (domain.SwapReceipt, error)
}

// TxSender submits signed transactions on a network. Implemented by the
// blockchain context's wallet.
type TxSender interface {
	// Address is the sending account, used as swap recipient.
	Address() common.Address
	SendContractCall(ctx context.Context, chainID uint64, to common.Address, data []byte) (txHash string, gasUsed uint64, err error)
}
