package app

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/arbitrage/domain"
	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const tracerName = "chainarb/arbitrage/app"

var (
	oneHundred  = decimal.NewFromInt(100)
	tenThousand = decimal.NewFromInt(10_000)
)

// CalculatorConfig holds the tunables of profitability analysis.
type CalculatorConfig struct {
	// SlippageBps is shaved off the buy fill before any fee is applied.
	SlippageBps decimal.Decimal
	// MinProfit is the fiat profit floor below which a candidate is
	// reported as unprofitable even when net profit is positive.
	MinProfit decimal.Decimal
	// SizingCoeff scales the cost-recovery trade size upward so the
	// trade clears fixed costs with headroom, not at break-even.
	SizingCoeff decimal.Decimal
	// MinTradeSize and MaxTradeSize clamp the recommended size.
	MinTradeSize decimal.Decimal
	MaxTradeSize decimal.Decimal
}

// Calculator runs the full cost model over a candidate price spread.
// It never treats "not worth trading" as an error: adapters failing to
// answer is an error, a thin spread is an analysis result.
type Calculator struct {
	gas      GasEstimator
	bridge   BridgeEstimator
	registry *asset.Registry
	cfg      CalculatorConfig
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewCalculator creates a Calculator.
func NewCalculator(gas GasEstimator, bridge BridgeEstimator, registry *asset.Registry, cfg CalculatorConfig, log logger.LoggerInterface) *Calculator {
	return &Calculator{
		gas:      gas,
		bridge:   bridge,
		registry: registry,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

// Calculate models a buy on the cheap network, a bridge to the dear
// network, a sell there, and a bridge of the proceeds back, and reports
// whether the round trip beats its costs at the given capital.
func (c *Calculator) Calculate(ctx context.Context, buy, sell pricingDomain.NetworkQuote, capital decimal.Decimal) (domain.ProfitabilityAnalysis, error) {
	ctx, span := c.tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("symbol", buy.Symbol),
			attribute.String("buy_network", buy.Network),
			attribute.String("sell_network", sell.Network),
		))
	defer span.End()

	if _, ok := c.registry.CrossListings(buy.Symbol, buy.ChainID, sell.ChainID); !ok {
		return domain.NotProfitable(capital, "token not listed on both networks"), nil
	}
	if buy.Price.IsZero() || capital.LessThanOrEqual(decimal.Zero) {
		return domain.NotProfitable(capital, "no capital or zero buy price"), nil
	}

	slippage := decimal.NewFromInt(1).Sub(c.cfg.SlippageBps.Div(tenThousand))
	tokensBought := capital.Div(buy.Price).Mul(slippage)

	forwardFee, err := c.bridge.Fee(ctx, buy.ChainID, sell.ChainID, buy.Symbol, tokensBought)
	if err != nil {
		return domain.ProfitabilityAnalysis{}, err
	}
	tokensBridged := tokensBought.Sub(forwardFee)
	if tokensBridged.LessThanOrEqual(decimal.Zero) {
		return domain.NotProfitable(capital, "bridge fee exceeds purchased amount"), nil
	}

	proceeds := tokensBridged.Mul(sell.Price)

	buyGas, err := c.gas.SwapCost(ctx, buy.ChainID)
	if err != nil {
		return domain.ProfitabilityAnalysis{}, err
	}
	sellGas, err := c.gas.SwapCost(ctx, sell.ChainID)
	if err != nil {
		return domain.ProfitabilityAnalysis{}, err
	}
	returnFee, err := c.bridge.Fee(ctx, sell.ChainID, buy.ChainID, buy.Symbol, proceeds)
	if err != nil {
		return domain.ProfitabilityAnalysis{}, err
	}

	costs := domain.CostBreakdown{
		BuyGas:           buyGas,
		SellGas:          sellGas,
		BridgeFeeForward: forwardFee,
		BridgeFeeReturn:  returnFee,
	}

	netProfit := proceeds.Sub(capital).Sub(costs.Total())
	// The reference asset is a dollar stablecoin, so fiat profit and
	// net profit coincide.
	fiatProfit := netProfit
	roi := netProfit.Div(capital).Mul(oneHundred)

	analysis := domain.ProfitabilityAnalysis{
		IsProfitable:     netProfit.GreaterThan(decimal.Zero) && fiatProfit.GreaterThanOrEqual(c.cfg.MinProfit),
		CapitalIn:        capital,
		TokensBought:     tokensBought,
		TokensBridged:    tokensBridged,
		ExpectedProceeds: proceeds,
		Costs:            costs,
		NetProfit:        netProfit,
		FiatProfit:       fiatProfit,
		ROI:              roi,
	}
	analysis.RecommendedSize, analysis.Reason = c.recommendSize(buy.Price, sell.Price, forwardFee, tokensBought, costs)
	if !analysis.IsProfitable && analysis.Reason == "" {
		analysis.Reason = "net profit below threshold"
	}

	span.SetAttributes(
		attribute.Bool("profitable", analysis.IsProfitable),
		attribute.String("net_profit", netProfit.String()),
	)
	return analysis, nil
}

// recommendSize solves for the capital at which fixed costs stop eating
// the spread. The per-unit margin is the spread ratio minus the forward
// bridge fee ratio; fixed costs divided by that margin is break-even,
// scaled by the sizing coefficient and clamped to the configured range.
func (c *Calculator) recommendSize(buyPrice, sellPrice, forwardFee, tokensBought decimal.Decimal, costs domain.CostBreakdown) (decimal.Decimal, string) {
	spreadRatio := sellPrice.Sub(buyPrice).Div(buyPrice)
	feeRatio := decimal.Zero
	if tokensBought.GreaterThan(decimal.Zero) {
		feeRatio = forwardFee.Div(tokensBought)
	}
	margin := spreadRatio.Sub(feeRatio)
	if margin.LessThanOrEqual(decimal.Zero) {
		return c.cfg.MinTradeSize, "insufficient margin: spread does not cover bridge fee"
	}

	fixed := costs.BuyGas.Add(costs.SellGas).Add(costs.BridgeFeeReturn)
	size := fixed.Mul(c.cfg.SizingCoeff).Div(margin)
	if size.LessThan(c.cfg.MinTradeSize) {
		size = c.cfg.MinTradeSize
	}
	if size.GreaterThan(c.cfg.MaxTradeSize) {
		size = c.cfg.MaxTradeSize
	}
	return size, ""
}
