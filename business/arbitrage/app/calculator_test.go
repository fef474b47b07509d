package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
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

type stubGas struct {
	cost decimal.Decimal
	err  error
}

func (s stubGas) SwapCost(ctx context.Context, chainID uint64) (decimal.Decimal, error) {
	return s.cost, s.err
}

type stubBridge struct {
	feeBps decimal.Decimal
	err    error
	dur    time.Duration
}

func (s stubBridge) Fee(ctx context.Context, fromChainID, toChainID uint64, symbol string, amount decimal.Decimal) (decimal.Decimal, error) {
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return amount.Mul(s.feeBps).Div(decimal.NewFromInt(10_000)), nil
}

func (s stubBridge) Duration(fromChainID, toChainID uint64) time.Duration {
	return s.dur
}

func testCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		SlippageBps:  decimal.NewFromInt(30),
		MinProfit:    decimal.NewFromInt(1),
		SizingCoeff:  decimal.NewFromInt(50),
		MinTradeSize: decimal.NewFromInt(100),
		MaxTradeSize: decimal.NewFromInt(250_000),
	}
}

func quote(symbol, network string, chainID uint64, price string) pricingDomain.NetworkQuote {
	return pricingDomain.NewNetworkQuote(symbol, network, chainID, decimal.RequireFromString(price))
}

func TestCalculateProfitableSpread(t *testing.T) {
	calc := NewCalculator(
		stubGas{cost: decimal.NewFromInt(5)},
		stubBridge{feeBps: decimal.NewFromInt(10)},
		asset.DefaultRegistry(),
		testCalculatorConfig(),
		&mockLogger{},
	)

	buy := quote("USDT", "polygon", asset.ChainIDPolygon, "0.975")
	sell := quote("USDT", "arbitrum", asset.ChainIDArbitrum, "0.99")

	analysis, err := calc.Calculate(context.Background(), buy, sell, decimal.NewFromInt(10_000))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if !analysis.IsProfitable {
		t.Fatalf("expected profitable analysis, got reason %q", analysis.Reason)
	}
	if analysis.NetProfit.LessThanOrEqual(decimal.Zero) {
		t.Errorf("NetProfit = %s, want > 0", analysis.NetProfit)
	}
	if !analysis.FiatProfit.Equal(analysis.NetProfit) {
		t.Errorf("FiatProfit = %s, want %s", analysis.FiatProfit, analysis.NetProfit)
	}
	if analysis.TokensBridged.GreaterThanOrEqual(analysis.TokensBought) {
		t.Errorf("TokensBridged = %s, want less than TokensBought %s",
			analysis.TokensBridged, analysis.TokensBought)
	}
	if analysis.ROI.LessThanOrEqual(decimal.Zero) {
		t.Errorf("ROI = %s, want > 0", analysis.ROI)
	}
}

func TestCalculateEqualPricesNotProfitable(t *testing.T) {
	calc := NewCalculator(
		stubGas{cost: decimal.NewFromInt(5)},
		stubBridge{feeBps: decimal.NewFromInt(10)},
		asset.DefaultRegistry(),
		testCalculatorConfig(),
		&mockLogger{},
	)

	buy := quote("USDT", "polygon", asset.ChainIDPolygon, "1.0")
	sell := quote("USDT", "arbitrum", asset.ChainIDArbitrum, "1.0")

	analysis, err := calc.Calculate(context.Background(), buy, sell, decimal.NewFromInt(10_000))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if analysis.IsProfitable {
		t.Fatal("equal prices must not be profitable")
	}
	if analysis.NetProfit.GreaterThanOrEqual(decimal.Zero) {
		t.Errorf("NetProfit = %s, want < 0 after fees", analysis.NetProfit)
	}
}

func TestCalculateBridgeFeeSwallowsSpread(t *testing.T) {
	cfg := testCalculatorConfig()
	calc := NewCalculator(
		stubGas{cost: decimal.NewFromInt(5)},
		// 50 bps bridge fee against a 10 bps spread.
		stubBridge{feeBps: decimal.NewFromInt(50)},
		asset.DefaultRegistry(),
		cfg,
		&mockLogger{},
	)

	buy := quote("USDT", "polygon", asset.ChainIDPolygon, "1.000")
	sell := quote("USDT", "arbitrum", asset.ChainIDArbitrum, "1.001")

	analysis, err := calc.Calculate(context.Background(), buy, sell, decimal.NewFromInt(10_000))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if analysis.IsProfitable {
		t.Fatal("fee-dominated spread must not be profitable")
	}
	if !analysis.RecommendedSize.Equal(cfg.MinTradeSize) {
		t.Errorf("RecommendedSize = %s, want floor %s", analysis.RecommendedSize, cfg.MinTradeSize)
	}
	if analysis.Reason == "" {
		t.Error("expected a reason explaining the floored size")
	}
}

func TestCalculateUnlistedToken(t *testing.T) {
	calc := NewCalculator(
		stubGas{cost: decimal.NewFromInt(5)},
		stubBridge{feeBps: decimal.NewFromInt(10)},
		asset.DefaultRegistry(),
		testCalculatorConfig(),
		&mockLogger{},
	)

	buy := quote("NOPE", "polygon", asset.ChainIDPolygon, "0.975")
	sell := quote("NOPE", "arbitrum", asset.ChainIDArbitrum, "0.99")

	analysis, err := calc.Calculate(context.Background(), buy, sell, decimal.NewFromInt(10_000))
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if analysis.IsProfitable {
		t.Fatal("unlisted token must not be profitable")
	}
	if analysis.Reason != "token not listed on both networks" {
		t.Errorf("Reason = %q", analysis.Reason)
	}
}

func TestCalculatePropagatesEstimatorError(t *testing.T) {
	calc := NewCalculator(
		stubGas{err: context.DeadlineExceeded},
		stubBridge{feeBps: decimal.NewFromInt(10)},
		asset.DefaultRegistry(),
		testCalculatorConfig(),
		&mockLogger{},
	)

	buy := quote("USDT", "polygon", asset.ChainIDPolygon, "0.975")
	sell := quote("USDT", "arbitrum", asset.ChainIDArbitrum, "0.99")

	if _, err := calc.Calculate(context.Background(), buy, sell, decimal.NewFromInt(10_000)); err == nil {
		t.Fatal("expected estimator failure to surface as an error")
	}
}
