// Package sim provides an in-memory flash loan provider for dry runs
// and tests.
package sim

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

var tenThousand = decimal.NewFromInt(10_000)

// Provider lends from an unlimited pool and enforces repayment the way
// a lending pool contract would: the full principal plus fee, or the
// whole transaction is rejected.
type Provider struct {
	feeBps decimal.Decimal
	logger logger.LoggerInterface

	mu    sync.Mutex
	loans map[string]domain.Loan
}

// NewProvider creates a Provider charging feeBps per loan.
func NewProvider(feeBps decimal.Decimal, log logger.LoggerInterface) *Provider {
	return &Provider{
		feeBps: feeBps,
		logger: log,
		loans:  make(map[string]domain.Loan),
	}
}

// Borrow opens a loan.
func (p *Provider) Borrow(ctx context.Context, chainID uint64, a *asset.Asset, amount decimal.Decimal) (domain.Loan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Loan{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("loan principal must be positive"))
	}

	loan := domain.Loan{
		ID:        uuid.NewString(),
		ChainID:   chainID,
		Asset:     a,
		Principal: amount,
		Fee:       amount.Mul(p.feeBps).Div(tenThousand),
	}

	p.mu.Lock()
	p.loans[loan.ID] = loan
	p.mu.Unlock()

	p.logger.Debug(ctx, "flash loan opened",
		"loan_id", loan.ID,
		"chain_id", chainID,
		"principal", amount.StringFixed(2),
		"fee", loan.Fee.StringFixed(4))
	return loan, nil
}

// Repay settles a loan. A repayment below principal plus fee fails and
// leaves the loan open.
func (p *Provider) Repay(ctx context.Context, loan domain.Loan, repayment decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	held, ok := p.loans[loan.ID]
	if !ok {
		return apperror.New(apperror.CodeNotFound,
			apperror.WithMessagef("no open loan %s", loan.ID))
	}
	if repayment.LessThan(held.Owed()) {
		return apperror.New(apperror.CodeInsufficientRepayment,
			apperror.WithContext("loan_id", loan.ID),
			apperror.WithContext("owed", held.Owed().String()),
			apperror.WithContext("offered", repayment.String()))
	}

	delete(p.loans, loan.ID)
	p.logger.Debug(ctx, "flash loan repaid",
		"loan_id", loan.ID,
		"repayment", repayment.StringFixed(2))
	return nil
}

// OpenLoans reports how many loans are outstanding.
func (p *Provider) OpenLoans() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loans)
}
