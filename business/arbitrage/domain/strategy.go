package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StepAction identifies one kind of execution step.
type StepAction string

const (
	ActionBuy           StepAction = "buy"
	ActionBridgeForward StepAction = "bridge_forward"
	ActionSell          StepAction = "sell"
	ActionBridgeBack    StepAction = "bridge_back"

	// Flash-loan path actions.
	ActionFlashLoan  StepAction = "flash_loan"
	ActionLoanBuy    StepAction = "loan_buy"
	ActionAtomicSwap StepAction = "atomic_swap"
	ActionRepay      StepAction = "repay"
)

// PlannedStep describes one step of a strategy before execution.
type PlannedStep struct {
	Index       int
	Action      StepAction
	ChainID     uint64
	Description string
}

// FeeEstimates carries the fresh cost estimates taken at build time.
type FeeEstimates struct {
	BuyGas     decimal.Decimal
	SellGas    decimal.Decimal
	BridgeFee  decimal.Decimal
	BridgeTime time.Duration
}

// Strategy is a fully parameterized execution plan for one opportunity.
// It is built once per execution attempt and immutable thereafter.
type Strategy struct {
	ID           string
	Opportunity  Opportunity
	UseFlashLoan bool
	TradeSize    decimal.Decimal
	Estimates    FeeEstimates
	Plan         []PlannedStep
	CreatedAt    time.Time
}

// NewStrategy assembles a strategy around one of the two four-step
// plans: the standard buy/bridge/sell/bridge-back round trip, or the
// borrowed-capital variant that must settle within a single network.
func NewStrategy(opp Opportunity, useFlashLoan bool, tradeSize decimal.Decimal, estimates FeeEstimates) Strategy {
	plan := standardPlan(opp, tradeSize)
	if useFlashLoan {
		plan = flashLoanPlan(opp, tradeSize)
	}

	return Strategy{
		ID:           uuid.NewString(),
		Opportunity:  opp,
		UseFlashLoan: useFlashLoan,
		TradeSize:    tradeSize,
		Estimates:    estimates,
		Plan:         plan,
		CreatedAt:    time.Now(),
	}
}

func standardPlan(opp Opportunity, tradeSize decimal.Decimal) []PlannedStep {
	return []PlannedStep{
		{
			Index:       0,
			Action:      ActionBuy,
			ChainID:     opp.BuyChainID,
			Description: fmt.Sprintf("buy %s %s on %s at %s", tradeSize, opp.Symbol, opp.BuyNetwork, opp.BuyQuote.Price),
		},
		{
			Index:       1,
			Action:      ActionBridgeForward,
			ChainID:     opp.BuyChainID,
			Description: fmt.Sprintf("bridge %s from %s to %s", opp.Symbol, opp.BuyNetwork, opp.SellNetwork),
		},
		{
			Index:       2,
			Action:      ActionSell,
			ChainID:     opp.SellChainID,
			Description: fmt.Sprintf("sell %s on %s at %s", opp.Symbol, opp.SellNetwork, opp.SellQuote.Price),
		},
		{
			Index:       3,
			Action:      ActionBridgeBack,
			ChainID:     opp.SellChainID,
			Description: fmt.Sprintf("bridge proceeds from %s back to %s", opp.SellNetwork, opp.BuyNetwork),
		},
	}
}

func flashLoanPlan(opp Opportunity, tradeSize decimal.Decimal) []PlannedStep {
	return []PlannedStep{
		{
			Index:       0,
			Action:      ActionFlashLoan,
			ChainID:     opp.BuyChainID,
			Description: fmt.Sprintf("borrow %s %s on %s", tradeSize, opp.Symbol, opp.BuyNetwork),
		},
		{
			Index:       1,
			Action:      ActionLoanBuy,
			ChainID:     opp.BuyChainID,
			Description: fmt.Sprintf("buy %s with borrowed capital at %s", opp.Symbol, opp.BuyQuote.Price),
		},
		{
			Index:       2,
			Action:      ActionAtomicSwap,
			ChainID:     opp.BuyChainID,
			Description: fmt.Sprintf("swap %s back to the loan asset at %s", opp.Symbol, opp.SellQuote.Price),
		},
		{
			Index:       3,
			Action:      ActionRepay,
			ChainID:     opp.BuyChainID,
			Description: "repay principal plus fee from swap proceeds",
		},
	}
}
