// Package domain contains the core domain types for the arbitrage context.
package domain

import "github.com/shopspring/decimal"

// CostBreakdown itemizes the costs of a cross-chain round trip. The
// forward bridge fee is charged in-kind on the token flow; the other
// three come out of reference-unit proceeds.
type CostBreakdown struct {
	BuyGas           decimal.Decimal
	SellGas          decimal.Decimal
	BridgeFeeForward decimal.Decimal // token units, already deducted from the flow
	BridgeFeeReturn  decimal.Decimal
}

// Total returns the costs deducted from proceeds: both gas legs plus the
// return bridge fee. The forward fee is excluded because it already
// reduced the sellable token amount.
func (c CostBreakdown) Total() decimal.Decimal {
	return c.BuyGas.Add(c.SellGas).Add(c.BridgeFeeReturn)
}

// ProfitabilityAnalysis models one candidate trade end to end: the
// expected amount at each step, the itemized costs, and the verdict.
// All reference-unit values are denominated in the configured reference
// token (a dollar stablecoin, so fiat figures track them 1:1).
type ProfitabilityAnalysis struct {
	IsProfitable bool
	CapitalIn    decimal.Decimal

	// Expected amounts along the standard four-step path.
	TokensBought     decimal.Decimal // after slippage allowance
	TokensBridged    decimal.Decimal // after the forward bridge fee
	ExpectedProceeds decimal.Decimal // reference units on the sell network

	Costs      CostBreakdown
	NetProfit  decimal.Decimal
	FiatProfit decimal.Decimal
	ROI        decimal.Decimal

	RecommendedSize decimal.Decimal
	// Reason explains an unprofitable verdict or a floored size.
	Reason string
}

// NotProfitable builds the normal negative result. An unprofitable
// candidate is an answer, not an error.
func NotProfitable(capital decimal.Decimal, reason string) ProfitabilityAnalysis {
	return ProfitabilityAnalysis{
		CapitalIn: capital,
		Reason:    reason,
	}
}
