// Package app contains the execution engine and its port definitions.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/internal/asset"
)

// FlashLoanProvider lends uncollateralized capital for the duration of
// one atomic trade.
type FlashLoanProvider interface {
	// Borrow opens a loan of amount units of a on chainID.
	Borrow(ctx context.Context, chainID uint64, a *asset.Asset, amount decimal.Decimal) (domain.Loan, error)
	// Repay settles the loan from repayment. Implementations reject a
	// repayment below principal plus fee with INSUFFICIENT_REPAYMENT.
	Repay(ctx context.Context, loan domain.Loan, repayment decimal.Decimal) error
}

// FundsRecipient exposes the on-chain address bridged funds are
// delivered to. The blockchain wallet satisfies it.
type FundsRecipient interface {
	Address() common.Address
}
