package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
	execDomain "github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/business/ledger/domain"
	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
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

type memStore struct {
	records []domain.TradeRecord
}

func (s *memStore) Append(ctx context.Context, r domain.TradeRecord) error {
	s.records = append(s.records, r)
	return nil
}

func (s *memStore) Load(ctx context.Context) ([]domain.TradeRecord, error) {
	out := make([]domain.TradeRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Reset(ctx context.Context) error {
	s.records = nil
	return nil
}

func (s *memStore) Close() {}

func finishedExecution(status execDomain.Status, profit string) *execDomain.Execution {
	opp := arbDomain.NewOpportunity("USDT",
		pricingDomain.NewNetworkQuote("USDT", "polygon", 137, decimal.RequireFromString("0.975")),
		pricingDomain.NewNetworkQuote("USDT", "arbitrum", 42161, decimal.RequireFromString("0.99")),
		decimal.RequireFromString("1.54"),
		arbDomain.ProfitabilityAnalysis{IsProfitable: true})
	strategy := arbDomain.NewStrategy(opp, false, decimal.NewFromInt(5000), arbDomain.FeeEstimates{})

	exec := execDomain.NewExecution(strategy)
	exec.Start()
	if status == execDomain.StatusCompleted {
		exec.Complete(decimal.RequireFromString(profit))
	} else {
		exec.NetProfit = decimal.RequireFromString(profit)
		exec.Status = execDomain.StatusFailed
		exec.Error = "bridge stalled"
	}
	return exec
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), &memStore{}, decimal.NewFromInt(10_000), &mockLogger{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestRecordTradeOnlySuccessMovesBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, "75")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusFailed, "0")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}

	summary := svc.Summary()
	if summary.TotalTrades != 2 || summary.Successful != 1 || summary.Failed != 1 {
		t.Errorf("summary counts = %d/%d/%d, want 2/1/1",
			summary.TotalTrades, summary.Successful, summary.Failed)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(10_075)) {
		t.Errorf("Balance = %s, want 10075", summary.Balance)
	}
	if !summary.WinRate.Equal(decimal.NewFromInt(50)) {
		t.Errorf("WinRate = %s, want 50", summary.WinRate)
	}
}

func TestSummaryIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.RecordTrade(context.Background(), finishedExecution(execDomain.StatusCompleted, "10")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}

	first := svc.Summary()
	second := svc.Summary()
	if !first.Balance.Equal(second.Balance) || first.TotalTrades != second.TotalTrades {
		t.Errorf("repeated Summary() diverged: %+v vs %+v", first, second)
	}
}

func TestHistoryPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	profits := []string{"1", "2", "3", "4", "5"}
	for _, p := range profits {
		if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, p)); err != nil {
			t.Fatalf("RecordTrade() error = %v", err)
		}
	}

	page := svc.History(2, 0)
	if len(page) != 2 {
		t.Fatalf("History(2, 0) = %d records, want 2", len(page))
	}
	if !page[0].NetProfit.Equal(decimal.NewFromInt(5)) || !page[1].NetProfit.Equal(decimal.NewFromInt(4)) {
		t.Errorf("History(2, 0) profits = %s, %s, want newest first", page[0].NetProfit, page[1].NetProfit)
	}

	page = svc.History(10, 3)
	if len(page) != 2 {
		t.Errorf("History(10, 3) = %d records, want the 2 remaining", len(page))
	}

	if got := svc.History(10, 99); got != nil {
		t.Errorf("History past the end = %v, want nil", got)
	}
	if got := svc.History(0, 0); got != nil {
		t.Errorf("History with zero limit = %v, want nil", got)
	}
}

func TestResetRestoresStartingBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, "250")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	summary := svc.Summary()
	if summary.TotalTrades != 0 {
		t.Errorf("TotalTrades after reset = %d, want 0", summary.TotalTrades)
	}
	if !summary.Balance.Equal(decimal.NewFromInt(10_000)) {
		t.Errorf("Balance after reset = %s, want the starting balance", summary.Balance)
	}
	if pts := svc.PnLSeries(); len(pts) != 0 {
		t.Errorf("PnLSeries after reset has %d points, want 0", len(pts))
	}
}

func TestPnLSeriesSkipsFailedTrades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, "100")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusFailed, "0")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}

	points := svc.PnLSeries()
	if len(points) != 2 {
		t.Fatalf("PnLSeries() = %d points, want one per trade", len(points))
	}
	if !points[0].Balance.Equal(decimal.NewFromInt(10_100)) {
		t.Errorf("points[0].Balance = %s, want 10100", points[0].Balance)
	}
	if !points[1].Balance.Equal(points[0].Balance) {
		t.Errorf("failed trade moved the balance: %s -> %s", points[0].Balance, points[1].Balance)
	}
}

func TestSummaryBreakdowns(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, "75")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}
	if _, err := svc.RecordTrade(ctx, finishedExecution(execDomain.StatusCompleted, "-25")); err != nil {
		t.Fatalf("RecordTrade() error = %v", err)
	}

	summary := svc.Summary()
	if !summary.LargestWin.Equal(decimal.NewFromInt(75)) {
		t.Errorf("LargestWin = %s, want 75", summary.LargestWin)
	}
	if !summary.LargestLoss.Equal(decimal.NewFromInt(-25)) {
		t.Errorf("LargestLoss = %s, want -25", summary.LargestLoss)
	}
	if !summary.ROI.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("ROI = %s, want 0.5", summary.ROI)
	}
	if !summary.ByToken["USDT"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("ByToken[USDT] = %s, want 50", summary.ByToken["USDT"])
	}
	if !summary.ByRoute["polygon->arbitrum"].Equal(decimal.NewFromInt(50)) {
		t.Errorf("ByRoute = %s, want 50", summary.ByRoute["polygon->arbitrum"])
	}
}
