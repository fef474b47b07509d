// Package app contains application services and port definitions for the bridge context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/bridge/domain"
	"github.com/ivoros/chainarb/internal/asset"
)

// Provider is a bridge capable of moving a token between chains.
type Provider interface {
	// Name identifies the provider.
	Name() string

	// Quote prices moving amountIn to the destination token's chain.
	// The destination token must carry the same symbol as the source.
	Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error)

	// Initiate starts the transfer to the recipient address.
	Initiate(ctx context.Context, quote domain.TransferQuote, recipient common.Address) (domain.Transfer, error)

	// Status retrieves the current state of a transfer.
	Status(ctx context.Context, transferID string) (domain.TransferStatus, error)
}
