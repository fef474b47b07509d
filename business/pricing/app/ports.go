// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"

	"github.com/ivoros/chainarb/business/pricing/domain"
)

// PriceOracle defines the interface for token price providers.
type PriceOracle interface {
	// GetPrice retrieves the price of a token on one network, denominated
	// in the reference asset.
	GetPrice(ctx context.Context, symbol string, chainID uint64) (domain.NetworkQuote, error)
}

// PriceStream pushes oracle price updates as they arrive.
type PriceStream interface {
	// Subscribe starts streaming updates for the given symbols. The
	// returned channel is closed when the stream shuts down.
	Subscribe(ctx context.Context, symbols []string) (<-chan domain.NetworkQuote, error)
	Close() error
}
