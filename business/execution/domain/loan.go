package domain

import (
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/internal/asset"
)

// Loan is an uncollateralized loan that must be repaid, with its fee,
// before the borrowing transaction settles.
type Loan struct {
	ID        string
	ChainID   uint64
	Asset     *asset.Asset
	Principal decimal.Decimal
	Fee       decimal.Decimal
}

// Owed is the amount that satisfies the lender.
func (l Loan) Owed() decimal.Decimal {
	return l.Principal.Add(l.Fee)
}
