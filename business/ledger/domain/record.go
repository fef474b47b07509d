// Package domain contains the core domain types for the ledger context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus is the terminal outcome recorded for a trade.
type TradeStatus string

const (
	TradeCompleted TradeStatus = "completed"
	TradeFailed    TradeStatus = "failed"
)

// TradeRecord is the immutable ledger entry for one finished trade.
// Failed trades are recorded too; an audit trail that only remembers
// wins is worthless.
type TradeRecord struct {
	ID          string          `json:"id"`
	ExecutionID string          `json:"execution_id"`
	Symbol      string          `json:"symbol"`
	BuyNetwork  string          `json:"buy_network"`
	SellNetwork string          `json:"sell_network"`
	BuyPrice    decimal.Decimal `json:"buy_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	TradeSize   decimal.Decimal `json:"trade_size"`
	Status      TradeStatus     `json:"status"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	GasUsed     uint64          `json:"gas_used"`
	Duration    time.Duration   `json:"duration"`
	// ManualIntervention marks trades that left funds mid-route.
	ManualIntervention bool      `json:"manual_intervention"`
	Error              string    `json:"error,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// Succeeded reports whether the trade completed.
func (r TradeRecord) Succeeded() bool {
	return r.Status == TradeCompleted
}

// PnLPoint is one point of the running balance curve.
type PnLPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Balance   decimal.Decimal `json:"balance"`
	TradeID   string          `json:"trade_id"`
}

// Summary aggregates the ledger. It is always derived from the records
// and never stored, so it cannot drift from them.
type Summary struct {
	TotalTrades  int
	Successful   int
	Failed       int
	NetPnL       decimal.Decimal
	Balance      decimal.Decimal
	WinRate      decimal.Decimal
	AvgProfit    decimal.Decimal
	// ROI is NetPnL over the starting balance, in percent.
	ROI          decimal.Decimal
	LargestWin   decimal.Decimal
	LargestLoss  decimal.Decimal
	TotalGasUsed uint64
	// ByToken and ByRoute break NetPnL down per symbol and per
	// "buy->sell" network pair, completed trades only.
	ByToken      map[string]decimal.Decimal
	ByRoute      map[string]decimal.Decimal
	FirstTradeAt time.Time
	LastTradeAt  time.Time
}

// Summarize computes the summary of records on top of startingBalance.
func Summarize(records []TradeRecord, startingBalance decimal.Decimal) Summary {
	s := Summary{
		Balance: startingBalance,
		ByToken: make(map[string]decimal.Decimal),
		ByRoute: make(map[string]decimal.Decimal),
	}
	for _, r := range records {
		s.TotalTrades++
		s.TotalGasUsed += r.GasUsed
		if r.Succeeded() {
			s.Successful++
			s.NetPnL = s.NetPnL.Add(r.NetProfit)
			s.Balance = s.Balance.Add(r.NetProfit)
			if r.NetProfit.GreaterThan(s.LargestWin) {
				s.LargestWin = r.NetProfit
			}
			if r.NetProfit.LessThan(s.LargestLoss) {
				s.LargestLoss = r.NetProfit
			}
			route := r.BuyNetwork + "->" + r.SellNetwork
			s.ByToken[r.Symbol] = s.ByToken[r.Symbol].Add(r.NetProfit)
			s.ByRoute[route] = s.ByRoute[route].Add(r.NetProfit)
		} else {
			s.Failed++
		}
		if s.FirstTradeAt.IsZero() || r.Timestamp.Before(s.FirstTradeAt) {
			s.FirstTradeAt = r.Timestamp
		}
		if r.Timestamp.After(s.LastTradeAt) {
			s.LastTradeAt = r.Timestamp
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.Successful)).
			Div(decimal.NewFromInt(int64(s.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}
	if s.Successful > 0 {
		s.AvgProfit = s.NetPnL.Div(decimal.NewFromInt(int64(s.Successful)))
	}
	if startingBalance.IsPositive() {
		s.ROI = s.NetPnL.Div(startingBalance).Mul(decimal.NewFromInt(100))
	}
	return s
}
