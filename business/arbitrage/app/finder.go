package app

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/ivoros/chainarb/business/arbitrage/domain"
	pricingApp "github.com/ivoros/chainarb/business/pricing/app"
	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const meterName = "chainarb/arbitrage/app"

// FinderConfig holds the scan parameters.
type FinderConfig struct {
	// Symbols are the tokens scanned each cycle.
	Symbols []string
	// DeviationPct is the minimum absolute spread, in percent, for a
	// network pair to reach the calculator at all.
	DeviationPct decimal.Decimal
	// Capital is the working budget handed to the calculator.
	Capital decimal.Decimal
}

// Finder scans configured symbols for cross-network price spreads and
// turns the profitable ones into opportunities. A scan never fails:
// symbols whose quotes or analysis error out are logged and skipped, so
// one flaky network cannot blind the whole cycle.
type Finder struct {
	pricing    *pricingApp.Service
	calculator *Calculator
	registry   *asset.Registry
	cfg        FinderConfig
	logger     logger.LoggerInterface

	scansTotal         metric.Int64Counter
	opportunitiesTotal metric.Int64Counter
}

// NewFinder creates a Finder.
func NewFinder(pricing *pricingApp.Service, calculator *Calculator, registry *asset.Registry, cfg FinderConfig, log logger.LoggerInterface) *Finder {
	meter := otel.Meter(meterName)
	scans, _ := meter.Int64Counter("arbitrage_scans_total",
		metric.WithDescription("Completed opportunity scan cycles"))
	found, _ := meter.Int64Counter("arbitrage_opportunities_total",
		metric.WithDescription("Profitable opportunities emitted by scans"))
	return &Finder{
		pricing:            pricing,
		calculator:         calculator,
		registry:           registry,
		cfg:                cfg,
		logger:             log,
		scansTotal:         scans,
		opportunitiesTotal: found,
	}
}

// FindOpportunities runs one scan cycle over every configured symbol
// and returns the profitable opportunities found.
func (f *Finder) FindOpportunities(ctx context.Context) []domain.Opportunity {
	var opportunities []domain.Opportunity
	for _, symbol := range f.cfg.Symbols {
		opportunities = append(opportunities, f.scanSymbol(ctx, symbol)...)
	}
	f.scansTotal.Add(ctx, 1)
	f.opportunitiesTotal.Add(ctx, int64(len(opportunities)))
	return opportunities
}

func (f *Finder) scanSymbol(ctx context.Context, symbol string) []domain.Opportunity {
	chains := f.registry.ChainsFor(symbol)
	if len(chains) < 2 {
		f.logger.Debug(ctx, "symbol not cross-listed, skipping", "symbol", symbol)
		return nil
	}

	priceSet, err := f.pricing.FetchPriceSet(ctx, symbol)
	if err != nil {
		f.logger.Warn(ctx, "price fetch failed, skipping symbol",
			"symbol", symbol,
			"error", err)
		return nil
	}

	var opportunities []domain.Opportunity
	for i := 0; i < len(priceSet.Quotes); i++ {
		for j := i + 1; j < len(priceSet.Quotes); j++ {
			opp, ok := f.evaluatePair(ctx, priceSet.Quotes[i], priceSet.Quotes[j])
			if ok {
				opportunities = append(opportunities, opp)
			}
		}
	}
	return opportunities
}

// evaluatePair orients a quote pair cheap-side-buy and runs the
// calculator when the spread clears the deviation threshold.
func (f *Finder) evaluatePair(ctx context.Context, a, b pricingDomain.NetworkQuote) (domain.Opportunity, bool) {
	if a.ChainID == b.ChainID {
		return domain.Opportunity{}, false
	}
	buy, sell := a, b
	if sell.Price.LessThan(buy.Price) {
		buy, sell = sell, buy
	}
	if buy.Price.IsZero() {
		return domain.Opportunity{}, false
	}

	spreadPct := sell.Price.Sub(buy.Price).Div(buy.Price).Mul(oneHundred)
	if spreadPct.Abs().LessThan(f.cfg.DeviationPct) {
		return domain.Opportunity{}, false
	}

	analysis, err := f.calculator.Calculate(ctx, buy, sell, f.cfg.Capital)
	if err != nil {
		f.logger.Warn(ctx, "profitability analysis failed",
			"symbol", buy.Symbol,
			"buy_network", buy.Network,
			"sell_network", sell.Network,
			"error", err)
		return domain.Opportunity{}, false
	}
	if !analysis.IsProfitable {
		f.logger.Debug(ctx, "spread found but not profitable",
			"symbol", buy.Symbol,
			"spread_pct", spreadPct.StringFixed(4),
			"reason", analysis.Reason)
		return domain.Opportunity{}, false
	}

	opp := domain.NewOpportunity(buy.Symbol, buy, sell, spreadPct, analysis)
	f.logger.Info(ctx, "opportunity found",
		"symbol", opp.Symbol,
		"buy_network", opp.BuyNetwork,
		"sell_network", opp.SellNetwork,
		"spread_pct", spreadPct.StringFixed(4),
		"net_profit", analysis.NetProfit.StringFixed(2))
	return opp, true
}

// RankByProfit orders opportunities by fiat profit, best first.
func RankByProfit(opportunities []domain.Opportunity) []domain.Opportunity {
	sorted := make([]domain.Opportunity, len(opportunities))
	copy(sorted, opportunities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Analysis.FiatProfit.GreaterThan(sorted[j].Analysis.FiatProfit)
	})
	return sorted
}
