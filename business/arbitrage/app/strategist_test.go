package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/arbitrage/domain"
	"github.com/ivoros/chainarb/internal/asset"
)

func testOpportunity(recommended string) domain.Opportunity {
	return domain.NewOpportunity("USDT",
		quote("USDT", "polygon", asset.ChainIDPolygon, "0.975"),
		quote("USDT", "arbitrum", asset.ChainIDArbitrum, "0.99"),
		decimal.RequireFromString("1.54"),
		domain.ProfitabilityAnalysis{
			IsProfitable:    true,
			RecommendedSize: decimal.RequireFromString(recommended),
		})
}

func newTestStrategist(flashLoans bool) *Strategist {
	return NewStrategist(
		stubGas{cost: decimal.NewFromInt(5)},
		stubBridge{feeBps: decimal.NewFromInt(10), dur: 3 * time.Minute},
		StrategistConfig{
			MaxExposure:       decimal.NewFromInt(5_000),
			MinTradeSize:      decimal.NewFromInt(100),
			FlashLoansEnabled: flashLoans,
		},
		&mockLogger{})
}

func TestBuildStrategyClipsToExposure(t *testing.T) {
	strategist := newTestStrategist(false)

	strategy, err := strategist.BuildStrategy(context.Background(), testOpportunity("8000"))
	if err != nil {
		t.Fatalf("BuildStrategy() error = %v", err)
	}
	if strategy.UseFlashLoan {
		t.Error("flash loans disabled, strategy must not borrow")
	}
	if !strategy.TradeSize.Equal(decimal.NewFromInt(5_000)) {
		t.Errorf("TradeSize = %s, want exposure cap 5000", strategy.TradeSize)
	}
	wantActions := []domain.StepAction{
		domain.ActionBuy, domain.ActionBridgeForward, domain.ActionSell, domain.ActionBridgeBack,
	}
	if len(strategy.Plan) != len(wantActions) {
		t.Fatalf("plan has %d steps, want %d", len(strategy.Plan), len(wantActions))
	}
	for i, step := range strategy.Plan {
		if step.Action != wantActions[i] {
			t.Errorf("Plan[%d].Action = %s, want %s", i, step.Action, wantActions[i])
		}
	}
}

func TestBuildStrategyBorrowsAboveExposure(t *testing.T) {
	strategist := newTestStrategist(true)

	strategy, err := strategist.BuildStrategy(context.Background(), testOpportunity("8000"))
	if err != nil {
		t.Fatalf("BuildStrategy() error = %v", err)
	}
	if !strategy.UseFlashLoan {
		t.Fatal("recommended size above exposure with flash loans on must borrow")
	}
	if !strategy.TradeSize.Equal(decimal.NewFromInt(8_000)) {
		t.Errorf("TradeSize = %s, want recommended 8000", strategy.TradeSize)
	}
	wantActions := []domain.StepAction{
		domain.ActionFlashLoan, domain.ActionLoanBuy, domain.ActionAtomicSwap, domain.ActionRepay,
	}
	for i, step := range strategy.Plan {
		if step.Action != wantActions[i] {
			t.Errorf("Plan[%d].Action = %s, want %s", i, step.Action, wantActions[i])
		}
		if step.ChainID != asset.ChainIDPolygon {
			t.Errorf("Plan[%d].ChainID = %d, borrowed plan must stay on the buy chain", i, step.ChainID)
		}
	}
}

func TestBuildStrategyWithinExposureUsesRecommended(t *testing.T) {
	strategist := newTestStrategist(true)

	strategy, err := strategist.BuildStrategy(context.Background(), testOpportunity("3000"))
	if err != nil {
		t.Fatalf("BuildStrategy() error = %v", err)
	}
	if strategy.UseFlashLoan {
		t.Error("size within exposure must not borrow")
	}
	if !strategy.TradeSize.Equal(decimal.NewFromInt(3_000)) {
		t.Errorf("TradeSize = %s, want 3000", strategy.TradeSize)
	}
	if strategy.Estimates.BridgeTime != 3*time.Minute {
		t.Errorf("BridgeTime = %s, want 3m", strategy.Estimates.BridgeTime)
	}
	if strategy.Estimates.BridgeFee.LessThanOrEqual(decimal.Zero) {
		t.Errorf("BridgeFee = %s, want > 0", strategy.Estimates.BridgeFee)
	}
}

func TestBuildStrategyFloorsTinySize(t *testing.T) {
	strategist := newTestStrategist(false)

	strategy, err := strategist.BuildStrategy(context.Background(), testOpportunity("10"))
	if err != nil {
		t.Fatalf("BuildStrategy() error = %v", err)
	}
	if !strategy.TradeSize.Equal(decimal.NewFromInt(100)) {
		t.Errorf("TradeSize = %s, want floor 100", strategy.TradeSize)
	}
}
