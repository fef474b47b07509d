// Package domain contains the core domain types for the bridge context.
package domain

import (
	"time"

	"github.com/ivoros/chainarb/internal/asset"
)

// TransferStatus is the lifecycle state of a cross-chain transfer.
type TransferStatus string

const (
	StatusPending   TransferStatus = "pending"
	StatusInFlight  TransferStatus = "in_flight"
	StatusCompleted TransferStatus = "completed"
	StatusFailed    TransferStatus = "failed"
)

// IsTerminal reports whether the transfer can no longer change state.
func (s TransferStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// TransferQuote prices a cross-chain transfer. AmountIn is denominated
// in the source-chain token, AmountOut and Fee in the destination-chain
// token.
type TransferQuote struct {
	Provider  string
	AmountIn  asset.Amount
	AmountOut asset.Amount
	Fee       asset.Amount
	ETA       time.Duration
	Timestamp time.Time
}

// FromChainID returns the source chain.
func (q TransferQuote) FromChainID() uint64 {
	return q.AmountIn.Asset().ChainID()
}

// ToChainID returns the destination chain.
func (q TransferQuote) ToChainID() uint64 {
	return q.AmountOut.Asset().ChainID()
}

// Transfer is an initiated cross-chain transfer.
type Transfer struct {
	ID        string
	Provider  string
	// TxRef is the source-chain transaction hash. It survives into
	// failure reports so stuck funds can be traced by hand.
	TxRef     string
	AmountIn  asset.Amount
	AmountOut asset.Amount
	Status    TransferStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithStatus returns a copy of the transfer in the given state.
func (t Transfer) WithStatus(status TransferStatus) Transfer {
	t.Status = status
	t.UpdatedAt = time.Now()
	return t
}
