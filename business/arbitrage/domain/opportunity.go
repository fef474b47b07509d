package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pricingDomain "github.com/ivoros/chainarb/business/pricing/domain"
)

// Opportunity is a priced cross-chain arbitrage candidate: buy on the
// cheap network, sell on the dear one.
type Opportunity struct {
	ID          string
	Symbol      string
	BuyNetwork  string
	SellNetwork string
	BuyChainID  uint64
	SellChainID uint64
	BuyQuote    pricingDomain.NetworkQuote
	SellQuote   pricingDomain.NetworkQuote
	// SpreadPct is the signed percentage difference, sell over buy.
	SpreadPct decimal.Decimal
	Analysis  ProfitabilityAnalysis
	Timestamp time.Time
}

// NewOpportunity creates an Opportunity with a fresh ID.
func NewOpportunity(symbol string, buy, sell pricingDomain.NetworkQuote, spreadPct decimal.Decimal, analysis ProfitabilityAnalysis) Opportunity {
	return Opportunity{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		BuyNetwork:  buy.Network,
		SellNetwork: sell.Network,
		BuyChainID:  buy.ChainID,
		SellChainID: sell.ChainID,
		BuyQuote:    buy,
		SellQuote:   sell,
		SpreadPct:   spreadPct,
		Analysis:    analysis,
		Timestamp:   time.Now(),
	}
}

// IsProfitable reports whether the analysis cleared both thresholds.
func (o Opportunity) IsProfitable() bool {
	return o.Analysis.IsProfitable
}
