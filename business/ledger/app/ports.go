// Package app contains the ledger service and its port definitions.
package app

import (
	"context"

	"github.com/ivoros/chainarb/business/ledger/domain"
)

// Store persists trade records. Implementations must return records
// from Load in the order they were appended.
type Store interface {
	Append(ctx context.Context, record domain.TradeRecord) error
	Load(ctx context.Context) ([]domain.TradeRecord, error)
	Reset(ctx context.Context) error
	Close()
}
