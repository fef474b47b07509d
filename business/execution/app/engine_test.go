package app

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
	bridgeApp "github.com/ivoros/chainarb/business/bridge/app"
	bridgeDomain "github.com/ivoros/chainarb/business/bridge/domain"
	exchangeApp "github.com/ivoros/chainarb/business/exchange/app"
	exchangeDomain "github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/business/execution/infra/sim"
	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

// stubVenue fills swaps at fixed per-chain token prices, with the
// reference asset pinned at 1. sellBoost inflates token-to-reference
// fills so same-chain round trips can be made profitable in tests.
type stubVenue struct {
	prices    map[uint64]decimal.Decimal
	sellBoost decimal.Decimal
	block     chan struct{}
}

func (v *stubVenue) Name() string { return "stub" }

func (v *stubVenue) price(a *asset.Asset) decimal.Decimal {
	if p, ok := v.prices[a.ChainID()]; ok && a.Symbol() == "USDT" {
		return p
	}
	return decimal.NewFromInt(1)
}

func (v *stubVenue) QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (exchangeDomain.SwapQuote, error) {
	if v.block != nil {
		select {
		case <-v.block:
		case <-ctx.Done():
			return exchangeDomain.SwapQuote{}, ctx.Err()
		}
	}
	out := amountIn.ToDecimal().Mul(v.price(tokenIn)).Div(v.price(tokenOut))
	if tokenOut.Symbol() != "USDT" && !v.sellBoost.IsZero() {
		out = out.Mul(v.sellBoost)
	}
	amountOut, err := asset.ParseDecimal(tokenOut, out)
	if err != nil {
		return exchangeDomain.SwapQuote{}, err
	}
	return exchangeDomain.NewSwapQuote("stub", chainID, amountIn, amountOut, 90_000, 0), nil
}

func (v *stubVenue) ExecuteSwap(ctx context.Context, quote exchangeDomain.SwapQuote, minOut asset.Amount) (exchangeDomain.SwapReceipt, error) {
	return exchangeDomain.SwapReceipt{
		Venue:     "stub",
		ChainID:   quote.ChainID,
		TxHash:    "0xswap",
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		GasUsed:   90_000,
		Timestamp: time.Now(),
	}, nil
}

// stubBridgeProvider transfers at zero fee. When stall is set the
// transfer initiates but never completes.
type stubBridgeProvider struct {
	stall bool
}

func (p *stubBridgeProvider) Name() string { return "stub-bridge" }

func (p *stubBridgeProvider) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (bridgeDomain.TransferQuote, error) {
	amountOut, err := asset.ParseDecimal(dest, amountIn.ToDecimal())
	if err != nil {
		return bridgeDomain.TransferQuote{}, err
	}
	return bridgeDomain.TransferQuote{
		Provider:  "stub-bridge",
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       asset.NewAmountFromInt64(dest, 0),
		ETA:       time.Millisecond,
		Timestamp: time.Now(),
	}, nil
}

func (p *stubBridgeProvider) Initiate(ctx context.Context, quote bridgeDomain.TransferQuote, recipient common.Address) (bridgeDomain.Transfer, error) {
	return bridgeDomain.Transfer{
		ID:        "transfer-1",
		Provider:  "stub-bridge",
		TxRef:     "0xbridge-src",
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		Status:    bridgeDomain.StatusPending,
		CreatedAt: time.Now(),
	}, nil
}

func (p *stubBridgeProvider) Status(ctx context.Context, transferID string) (bridgeDomain.TransferStatus, error) {
	if p.stall {
		return bridgeDomain.StatusInFlight, nil
	}
	return bridgeDomain.StatusCompleted, nil
}

type stubRecipient struct{}

func (stubRecipient) Address() common.Address {
	return common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
}

func testStrategy(useFlashLoan bool, tradeSize string) arbDomain.Strategy {
	opp := arbDomain.NewOpportunity("USDT",
		pricingDomain.NewNetworkQuote("USDT", "polygon", asset.ChainIDPolygon, decimal.RequireFromString("0.975")),
		pricingDomain.NewNetworkQuote("USDT", "arbitrum", asset.ChainIDArbitrum, decimal.RequireFromString("0.99")),
		decimal.RequireFromString("1.54"),
		arbDomain.ProfitabilityAnalysis{IsProfitable: true})
	return arbDomain.NewStrategy(opp, useFlashLoan, decimal.RequireFromString(tradeSize), arbDomain.FeeEstimates{})
}

func newTestEngine(t *testing.T, venue *stubVenue, bridgeProvider bridgeApp.Provider, loans FlashLoanProvider) *Engine {
	t.Helper()
	router, err := exchangeApp.NewRouter([]exchangeApp.Venue{venue}, 50, &mockLogger{})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	bridge, err := bridgeApp.NewService([]bridgeApp.Provider{bridgeProvider},
		time.Millisecond, 100*time.Millisecond, &mockLogger{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewEngine(router, bridge, loans, stubRecipient{}, asset.DefaultRegistry(),
		EngineConfig{StepTimeout: time.Second, ReferenceSymbol: "USDC"}, &mockLogger{})
}

func spreadPrices() map[uint64]decimal.Decimal {
	return map[uint64]decimal.Decimal{
		asset.ChainIDPolygon:  decimal.RequireFromString("0.975"),
		asset.ChainIDArbitrum: decimal.RequireFromString("0.99"),
	}
}

func TestExecuteStandardRoundTrip(t *testing.T) {
	engine := newTestEngine(t,
		&stubVenue{prices: spreadPrices()},
		&stubBridgeProvider{},
		sim.NewProvider(decimal.NewFromInt(9), &mockLogger{}))

	exec, err := engine.Execute(context.Background(), testStrategy(false, "5000"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exec.Status != domain.StatusCompleted {
		t.Fatalf("Status = %s, want completed (error: %s)", exec.Status, exec.Error)
	}
	if exec.CompletedSteps() != 4 {
		t.Errorf("CompletedSteps = %d, want 4", exec.CompletedSteps())
	}
	if exec.NetProfit.LessThanOrEqual(decimal.Zero) {
		t.Errorf("NetProfit = %s, want > 0", exec.NetProfit)
	}
	if exec.ManualInterventionRequired {
		t.Error("clean run must not flag manual intervention")
	}
}

func TestExecuteBridgeStallStrandsFunds(t *testing.T) {
	engine := newTestEngine(t,
		&stubVenue{prices: spreadPrices()},
		&stubBridgeProvider{stall: true},
		sim.NewProvider(decimal.NewFromInt(9), &mockLogger{}))

	exec, err := engine.Execute(context.Background(), testStrategy(false, "5000"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exec.Status != domain.StatusFailed {
		t.Fatalf("Status = %s, want failed", exec.Status)
	}
	if exec.CompletedSteps() != 1 {
		t.Errorf("CompletedSteps = %d, want only the buy", exec.CompletedSteps())
	}
	if exec.Steps[1].Status != domain.StepFailed {
		t.Errorf("Steps[1].Status = %s, want failed", exec.Steps[1].Status)
	}
	if exec.Steps[1].TxRef != "0xbridge-src" {
		t.Errorf("Steps[1].TxRef = %q, want the in-flight transfer hash", exec.Steps[1].TxRef)
	}
	if !exec.ManualInterventionRequired {
		t.Error("stranded bridge transfer must require manual intervention")
	}
	if exec.Steps[2].Status != domain.StepPending {
		t.Errorf("Steps[2].Status = %s, later steps must never run", exec.Steps[2].Status)
	}
}

func TestExecuteFlashLoanInsufficientRepayment(t *testing.T) {
	loans := sim.NewProvider(decimal.NewFromInt(9), &mockLogger{})
	// Flat prices: the round trip returns exactly the principal, which
	// cannot cover the loan fee.
	engine := newTestEngine(t,
		&stubVenue{prices: map[uint64]decimal.Decimal{}},
		&stubBridgeProvider{},
		loans)

	exec, err := engine.Execute(context.Background(), testStrategy(true, "5000"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exec.Status != domain.StatusFailed {
		t.Fatalf("Status = %s, want failed", exec.Status)
	}
	if exec.Steps[3].Status != domain.StepFailed {
		t.Errorf("Steps[3].Status = %s, want the repay step failed", exec.Steps[3].Status)
	}
	if loans.OpenLoans() != 1 {
		t.Errorf("OpenLoans = %d, unrepaid loan must stay open", loans.OpenLoans())
	}
}

func TestExecuteFlashLoanProfitable(t *testing.T) {
	loans := sim.NewProvider(decimal.NewFromInt(9), &mockLogger{})
	engine := newTestEngine(t,
		&stubVenue{prices: map[uint64]decimal.Decimal{}, sellBoost: decimal.RequireFromString("1.01")},
		&stubBridgeProvider{},
		loans)

	exec, err := engine.Execute(context.Background(), testStrategy(true, "5000"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if exec.Status != domain.StatusCompleted {
		t.Fatalf("Status = %s, want completed (error: %s)", exec.Status, exec.Error)
	}
	if exec.NetProfit.LessThanOrEqual(decimal.Zero) {
		t.Errorf("NetProfit = %s, want > 0", exec.NetProfit)
	}
	if loans.OpenLoans() != 0 {
		t.Errorf("OpenLoans = %d, want 0 after repayment", loans.OpenLoans())
	}
	for i, step := range exec.Steps {
		if step.ChainID != asset.ChainIDPolygon {
			t.Errorf("Steps[%d].ChainID = %d, borrowed trade must stay on one chain", i, step.ChainID)
		}
	}
}

func TestExecuteRejectsConcurrentTrade(t *testing.T) {
	block := make(chan struct{})
	engine := newTestEngine(t,
		&stubVenue{prices: spreadPrices(), block: block},
		&stubBridgeProvider{},
		sim.NewProvider(decimal.NewFromInt(9), &mockLogger{}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Execute(context.Background(), testStrategy(false, "5000"))
	}()

	for !engine.Busy() {
		time.Sleep(time.Millisecond)
	}
	_, err := engine.Execute(context.Background(), testStrategy(false, "5000"))
	if !apperror.HasCode(err, apperror.CodeExecutionInProgress) {
		t.Fatalf("second Execute() error = %v, want EXECUTION_IN_PROGRESS", err)
	}

	close(block)
	<-done
	if engine.Busy() {
		t.Error("engine must release the trade slot after finishing")
	}
}
