package domain

import "github.com/shopspring/decimal"

// Spread represents the price difference of one token between two networks.
type Spread struct {
	Symbol      string
	Buy         NetworkQuote // cheaper network
	Sell        NetworkQuote // dearer network
	Absolute    decimal.Decimal // sell - buy
	BasisPoints decimal.Decimal // (sell - buy) / buy * 10000
}

// HasEdge reports whether the sell side is strictly above the buy side.
func (s Spread) HasEdge() bool {
	return s.Absolute.IsPositive()
}

// Percent returns the spread as a percentage of the buy price.
func (s Spread) Percent() decimal.Decimal {
	return s.BasisPoints.Div(decimal.NewFromInt(100))
}

// CalculateSpread computes the spread between a buy-side and a sell-side quote.
func CalculateSpread(buy, sell NetworkQuote) Spread {
	absolute := sell.Price.Sub(buy.Price)
	bps := decimal.Zero
	if !buy.Price.IsZero() {
		bps = absolute.Div(buy.Price).Mul(decimal.NewFromInt(10000))
	}

	return Spread{
		Symbol:      buy.Symbol,
		Buy:         buy,
		Sell:        sell,
		Absolute:    absolute,
		BasisPoints: bps,
	}
}

// BestSpread finds the widest positive spread in a price set by pairing
// the cheapest network with the dearest one. Returns false when the set
// has fewer than two quotes or the widest spread is not positive.
func BestSpread(set PriceSet) (Spread, bool) {
	if len(set.Quotes) < 2 {
		return Spread{}, false
	}

	buy, _ := set.Cheapest()
	sell, _ := set.Dearest()
	if buy.ChainID == sell.ChainID {
		return Spread{}, false
	}

	spread := CalculateSpread(buy, sell)
	if !spread.HasEdge() {
		return Spread{}, false
	}
	return spread, true
}
