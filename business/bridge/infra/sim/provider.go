// Package sim provides a simulated bridge provider for dry-run mode.
// Transfers are held in memory and complete after a fixed number of
// status checks.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/bridge/app"
	"github.com/ivoros/chainarb/business/bridge/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

// completesAfter is how many status checks a transfer stays in flight.
const completesAfter = 2

var _ app.Provider = (*Provider)(nil)

type simTransfer struct {
	transfer domain.Transfer
	checks   int
}

// Provider is a simulated bridge charging feeBps per transfer.
type Provider struct {
	feeBps decimal.Decimal
	logger logger.LoggerInterface

	mu        sync.Mutex
	transfers map[string]*simTransfer
}

// NewProvider creates a simulated bridge provider.
func NewProvider(feeBps decimal.Decimal, log logger.LoggerInterface) *Provider {
	return &Provider{
		feeBps:    feeBps,
		logger:    log,
		transfers: make(map[string]*simTransfer),
	}
}

// Name identifies the provider.
func (p *Provider) Name() string { return "sim" }

// Quote prices a transfer at the configured fee.
func (p *Provider) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	feeValue := amountIn.ToDecimal().Mul(p.feeBps).Div(decimal.NewFromInt(10_000))
	outValue := amountIn.ToDecimal().Sub(feeValue)

	amountOut, err := asset.ParseDecimal(dest, outValue)
	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure)
	}
	fee, err := asset.ParseDecimal(dest, feeValue)
	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure)
	}

	return domain.TransferQuote{
		Provider:  p.Name(),
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       fee,
		ETA:       time.Duration(completesAfter) * time.Second,
		Timestamp: time.Now(),
	}, nil
}

// Initiate records the transfer in memory.
func (p *Provider) Initiate(ctx context.Context, quote domain.TransferQuote, recipient common.Address) (domain.Transfer, error) {
	now := time.Now()
	transfer := domain.Transfer{
		ID:        uuid.NewString(),
		Provider:  p.Name(),
		TxRef:     "0xsimbridge-" + uuid.NewString(),
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	p.mu.Lock()
	p.transfers[transfer.ID] = &simTransfer{transfer: transfer}
	p.mu.Unlock()

	p.logger.Info(ctx, "simulated bridge transfer initiated",
		"transfer_id", transfer.ID,
		"from_chain", quote.FromChainID(),
		"to_chain", quote.ToChainID(),
		"amount", quote.AmountIn.String())

	return transfer, nil
}

// Status advances the transfer one step per check.
func (p *Provider) Status(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.transfers[transferID]
	if !ok {
		return "", apperror.New(apperror.CodeNotFound,
			apperror.WithMessagef("unknown transfer %s", transferID))
	}

	st.checks++
	switch {
	case st.checks > completesAfter:
		st.transfer = st.transfer.WithStatus(domain.StatusCompleted)
	case st.checks > 1:
		st.transfer = st.transfer.WithStatus(domain.StatusInFlight)
	}

	return st.transfer.Status, nil
}
