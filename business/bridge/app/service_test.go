package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/bridge/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

type mockLogger struct{}

func (mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = mockLogger{}

// stubProvider completes after statusAfter polls unless told to fail.
type stubProvider struct {
	name        string
	quoteErr    error
	initErr     error
	failAt      bool
	statusAfter int

	quoteCalls  int
	statusCalls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	p.quoteCalls++
	if p.quoteErr != nil {
		return domain.TransferQuote{}, p.quoteErr
	}
	out, err := asset.ParseDecimal(dest, amountIn.ToDecimal())
	if err != nil {
		return domain.TransferQuote{}, err
	}
	return domain.TransferQuote{
		Provider:  p.name,
		AmountIn:  amountIn,
		AmountOut: out,
		Timestamp: time.Now(),
	}, nil
}

func (p *stubProvider) Initiate(ctx context.Context, quote domain.TransferQuote, recipient common.Address) (domain.Transfer, error) {
	if p.initErr != nil {
		return domain.Transfer{}, p.initErr
	}
	return domain.Transfer{
		ID:        "xfer-1",
		Provider:  p.name,
		TxRef:     "0xsrc-tx",
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

func (p *stubProvider) Status(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	p.statusCalls++
	if p.failAt {
		return domain.StatusFailed, nil
	}
	if p.statusCalls > p.statusAfter {
		return domain.StatusCompleted, nil
	}
	return domain.StatusInFlight, nil
}

func usdcAmount(t *testing.T, value string) asset.Amount {
	t.Helper()
	a, err := asset.ParseString(asset.USDC, value)
	if err != nil {
		t.Fatalf("parse amount: %v", err)
	}
	return a
}

func newTestService(t *testing.T, providers ...Provider) *Service {
	t.Helper()
	svc, err := NewService(providers, time.Millisecond, 200*time.Millisecond, mockLogger{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestTransferCompletes(t *testing.T) {
	primary := &stubProvider{name: "socket", statusAfter: 2}
	svc := newTestService(t, primary)

	transfer, err := svc.Transfer(context.Background(),
		usdcAmount(t, "1000"), asset.USDCArbitrum, common.Address{})
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if transfer.Status != domain.StatusCompleted {
		t.Errorf("Status = %s, want completed", transfer.Status)
	}
	if transfer.AmountOut.Asset().ChainID() != asset.ChainIDArbitrum {
		t.Errorf("AmountOut chain = %d, want %d",
			transfer.AmountOut.Asset().ChainID(), asset.ChainIDArbitrum)
	}
}

func TestQuoteFallsBackToSecondary(t *testing.T) {
	primary := &stubProvider{name: "socket", quoteErr: apperror.New(apperror.CodeServiceUnavailable)}
	secondary := &stubProvider{name: "across", statusAfter: 1}
	svc := newTestService(t, primary, secondary)

	quote, err := svc.Quote(context.Background(), usdcAmount(t, "500"), asset.USDCArbitrum)
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.Provider != "across" {
		t.Errorf("Provider = %s, want across", quote.Provider)
	}
	if primary.quoteCalls != 1 {
		t.Errorf("primary quoteCalls = %d, want 1", primary.quoteCalls)
	}
}

func TestQuoteAllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "socket", quoteErr: apperror.New(apperror.CodeServiceUnavailable)}
	secondary := &stubProvider{name: "across", quoteErr: apperror.New(apperror.CodeServiceUnavailable)}
	svc := newTestService(t, primary, secondary)

	_, err := svc.Quote(context.Background(), usdcAmount(t, "500"), asset.USDCArbitrum)
	if !apperror.HasCode(err, apperror.CodeBridgeFailure) {
		t.Fatalf("Quote() error = %v, want BRIDGE_FAILURE", err)
	}
}

func TestQuoteRejectsSymbolMismatch(t *testing.T) {
	svc := newTestService(t, &stubProvider{name: "socket"})

	_, err := svc.Quote(context.Background(), usdcAmount(t, "500"), asset.ETHArb)
	if !apperror.HasCode(err, apperror.CodeBridgeRejected) {
		t.Fatalf("Quote() error = %v, want BRIDGE_REJECTED", err)
	}
}

func TestTransferTimeoutCarriesTxRef(t *testing.T) {
	// Never completes within the 200ms confirmation window.
	primary := &stubProvider{name: "socket", statusAfter: 1 << 30}
	svc := newTestService(t, primary)

	transfer, err := svc.Transfer(context.Background(),
		usdcAmount(t, "1000"), asset.USDCArbitrum, common.Address{})
	if !apperror.HasCode(err, apperror.CodeBridgeTimeout) {
		t.Fatalf("Transfer() error = %v, want BRIDGE_TIMEOUT", err)
	}

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatal("error is not an AppError")
	}
	if appErr.Context["tx_ref"] != "0xsrc-tx" {
		t.Errorf("tx_ref context = %v, want 0xsrc-tx", appErr.Context["tx_ref"])
	}
	if transfer.TxRef != "0xsrc-tx" {
		t.Errorf("transfer.TxRef = %s, want 0xsrc-tx", transfer.TxRef)
	}
}

func TestTransferProviderReportsFailure(t *testing.T) {
	primary := &stubProvider{name: "socket", failAt: true}
	svc := newTestService(t, primary)

	_, err := svc.Transfer(context.Background(),
		usdcAmount(t, "1000"), asset.USDCArbitrum, common.Address{})
	if !apperror.HasCode(err, apperror.CodeBridgeFailure) {
		t.Fatalf("Transfer() error = %v, want BRIDGE_FAILURE", err)
	}
}
