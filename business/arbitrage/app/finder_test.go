package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/arbitrage/domain"
	pricingApp "github.com/ivoros/chainarb/business/pricing/app"
	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
)

type stubOracle struct {
	prices map[uint64]string
}

func (o stubOracle) GetPrice(ctx context.Context, symbol string, chainID uint64) (pricingDomain.NetworkQuote, error) {
	price, ok := o.prices[chainID]
	if !ok {
		return pricingDomain.NetworkQuote{}, apperror.New(apperror.CodeQuoteUnavailable)
	}
	network := "polygon"
	if chainID == asset.ChainIDArbitrum {
		network = "arbitrum"
	}
	return pricingDomain.NewNetworkQuote(symbol, network, chainID, decimal.RequireFromString(price)), nil
}

func newTestFinder(t *testing.T, prices map[uint64]string) *Finder {
	t.Helper()
	pricing := pricingApp.NewService(
		stubOracle{prices: prices},
		[]pricingApp.Network{
			{Name: "polygon", ChainID: asset.ChainIDPolygon},
			{Name: "arbitrum", ChainID: asset.ChainIDArbitrum},
		},
		time.Minute,
		&mockLogger{},
	)
	calc := NewCalculator(
		stubGas{cost: decimal.NewFromInt(5)},
		stubBridge{feeBps: decimal.NewFromInt(10)},
		asset.DefaultRegistry(),
		testCalculatorConfig(),
		&mockLogger{},
	)
	return NewFinder(pricing, calc, asset.DefaultRegistry(), FinderConfig{
		Symbols:      []string{"USDT"},
		DeviationPct: decimal.RequireFromString("0.5"),
		Capital:      decimal.NewFromInt(10_000),
	}, &mockLogger{})
}

func TestFindOpportunitiesEmitsProfitableSpread(t *testing.T) {
	finder := newTestFinder(t, map[uint64]string{
		asset.ChainIDPolygon:  "0.975",
		asset.ChainIDArbitrum: "0.99",
	})

	opps := finder.FindOpportunities(context.Background())
	if len(opps) != 1 {
		t.Fatalf("FindOpportunities() = %d opportunities, want 1", len(opps))
	}
	opp := opps[0]
	if opp.BuyNetwork != "polygon" || opp.SellNetwork != "arbitrum" {
		t.Errorf("orientation = buy %s / sell %s, want cheap side bought", opp.BuyNetwork, opp.SellNetwork)
	}
	if opp.SpreadPct.LessThan(decimal.RequireFromString("1.5")) {
		t.Errorf("SpreadPct = %s, want about 1.54", opp.SpreadPct)
	}
	if !opp.Analysis.IsProfitable {
		t.Error("emitted opportunity must carry a profitable analysis")
	}
}

func TestFindOpportunitiesEqualPrices(t *testing.T) {
	finder := newTestFinder(t, map[uint64]string{
		asset.ChainIDPolygon:  "1.0",
		asset.ChainIDArbitrum: "1.0",
	})

	if opps := finder.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("equal prices produced %d opportunities, want 0", len(opps))
	}
}

func TestFindOpportunitiesBelowDeviationThreshold(t *testing.T) {
	finder := newTestFinder(t, map[uint64]string{
		asset.ChainIDPolygon:  "1.000",
		asset.ChainIDArbitrum: "1.002",
	})

	if opps := finder.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("0.2%% spread produced %d opportunities, want 0", len(opps))
	}
}

func TestFindOpportunitiesOracleDownReturnsEmpty(t *testing.T) {
	finder := newTestFinder(t, map[uint64]string{})

	if opps := finder.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("dead oracle produced %d opportunities, want 0", len(opps))
	}
}

func TestRankByProfit(t *testing.T) {
	oppWithProfit := func(profit string) domain.Opportunity {
		return domain.Opportunity{
			Analysis: domain.ProfitabilityAnalysis{
				FiatProfit: decimal.RequireFromString(profit),
			},
		}
	}

	ranked := RankByProfit([]domain.Opportunity{
		oppWithProfit("2"), oppWithProfit("90"), oppWithProfit("40"),
	})
	want := []string{"90", "40", "2"}
	for i, w := range want {
		if !ranked[i].Analysis.FiatProfit.Equal(decimal.RequireFromString(w)) {
			t.Errorf("ranked[%d].FiatProfit = %s, want %s", i, ranked[i].Analysis.FiatProfit, w)
		}
	}
}
