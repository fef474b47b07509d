package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	execDomain "github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/business/ledger/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/logger"

	"github.com/shopspring/decimal"
)

const meterName = "chainarb/ledger/app"

// Service is the single writer over the trade ledger. All mutation goes
// through its mutex; readers get copies and can never observe a
// half-written record.
type Service struct {
	store           Store
	startingBalance decimal.Decimal
	logger          logger.LoggerInterface

	mu      sync.RWMutex
	records []domain.TradeRecord

	tradesTotal metric.Int64Counter
	pnlGauge    metric.Float64Gauge
}

// NewService creates the ledger service and loads persisted history.
func NewService(ctx context.Context, store Store, startingBalance decimal.Decimal, log logger.LoggerInterface) (*Service, error) {
	records, err := store.Load(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithMessage("loading trade history"))
	}

	meter := otel.Meter(meterName)
	trades, _ := meter.Int64Counter("ledger_trades_total",
		metric.WithDescription("Trades recorded in the ledger"))
	pnl, _ := meter.Float64Gauge("ledger_net_pnl",
		metric.WithDescription("Cumulative net profit and loss"))

	s := &Service{
		store:           store,
		startingBalance: startingBalance,
		logger:          log,
		records:         records,
		tradesTotal:     trades,
		pnlGauge:        pnl,
	}

	log.Info(ctx, "ledger loaded",
		"trades", len(records),
		"starting_balance", startingBalance.StringFixed(2))
	return s, nil
}

// RecordTrade appends the outcome of one execution. Every terminal
// execution is recorded, win or lose; only completed trades move the
// balance.
func (s *Service) RecordTrade(ctx context.Context, exec *execDomain.Execution) (domain.TradeRecord, error) {
	record := recordFromExecution(exec)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Append(ctx, record); err != nil {
		return domain.TradeRecord{}, apperror.Wrap(err, apperror.CodeLedgerStoreFailed,
			apperror.WithContext("trade_id", record.ID))
	}
	s.records = append(s.records, record)

	summary := domain.Summarize(s.records, s.startingBalance)
	s.tradesTotal.Add(ctx, 1)
	s.pnlGauge.Record(ctx, summary.NetPnL.InexactFloat64())

	s.logger.Info(ctx, "trade recorded",
		"trade_id", record.ID,
		"status", string(record.Status),
		"net_profit", record.NetProfit.StringFixed(2),
		"balance", summary.Balance.StringFixed(2))
	return record, nil
}

// Summary recomputes the ledger aggregate. Calling it is side-effect
// free and repeatable.
func (s *Service) Summary() domain.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Summarize(s.records, s.startingBalance)
}

// History returns up to limit records, newest first, skipping offset.
// Out-of-range arguments yield an empty slice, never a panic.
func (s *Service) History(limit, offset int) []domain.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit <= 0 || offset < 0 || offset >= n {
		return nil
	}

	out := make([]domain.TradeRecord, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// PnLSeries returns the balance curve over successful trades.
func (s *Service) PnLSeries() []domain.PnLPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance := s.startingBalance
	points := make([]domain.PnLPoint, 0, len(s.records))
	for _, r := range s.records {
		if r.Succeeded() {
			balance = balance.Add(r.NetProfit)
		}
		points = append(points, domain.PnLPoint{
			Timestamp: r.Timestamp,
			Balance:   balance,
			TradeID:   r.ID,
		})
	}
	return points
}

// Reset wipes the ledger and restores the starting balance.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx); err != nil {
		return apperror.Wrap(err, apperror.CodeLedgerStoreFailed)
	}
	s.records = nil
	s.logger.Info(ctx, "ledger reset",
		"starting_balance", s.startingBalance.StringFixed(2))
	return nil
}

// Close releases the underlying store.
func (s *Service) Close() {
	s.store.Close()
}

func recordFromExecution(exec *execDomain.Execution) domain.TradeRecord {
	opp := exec.Strategy.Opportunity
	status := domain.TradeCompleted
	if exec.Status != execDomain.StatusCompleted {
		status = domain.TradeFailed
	}
	return domain.TradeRecord{
		ID:                 uuid.NewString(),
		ExecutionID:        exec.ID,
		Symbol:             opp.Symbol,
		BuyNetwork:         opp.BuyNetwork,
		SellNetwork:        opp.SellNetwork,
		BuyPrice:           opp.BuyQuote.Price,
		SellPrice:          opp.SellQuote.Price,
		TradeSize:          exec.Strategy.TradeSize,
		Status:             status,
		NetProfit:          exec.NetProfit,
		GasUsed:            exec.GasUsed,
		Duration:           exec.Duration(),
		ManualIntervention: exec.ManualInterventionRequired,
		Error:              exec.Error,
		Timestamp:          time.Now(),
	}
}
