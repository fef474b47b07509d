// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NetworkQuote is the oracle price of a token on one network,
// denominated in the reference asset (e.g. USDC).
type NetworkQuote struct {
	Symbol    string
	Network   string
	ChainID   uint64
	Price     decimal.Decimal
	Timestamp time.Time
}

// NewNetworkQuote creates a quote observed now.
func NewNetworkQuote(symbol, network string, chainID uint64, price decimal.Decimal) NetworkQuote {
	return NetworkQuote{
		Symbol:    symbol,
		Network:   network,
		ChainID:   chainID,
		Price:     price,
		Timestamp: time.Now(),
	}
}

// IsStale reports whether the quote is older than maxAge.
func (q NetworkQuote) IsStale(maxAge time.Duration) bool {
	return time.Since(q.Timestamp) > maxAge
}

// String returns a human-readable representation.
func (q NetworkQuote) String() string {
	return fmt.Sprintf("%s@%s=%s", q.Symbol, q.Network, q.Price)
}

// PriceSet holds quotes for one symbol across several networks.
type PriceSet struct {
	Symbol    string
	Quotes    []NetworkQuote
	Timestamp time.Time
}

// NewPriceSet creates a PriceSet snapshotted now.
func NewPriceSet(symbol string, quotes []NetworkQuote) PriceSet {
	return PriceSet{
		Symbol:    symbol,
		Quotes:    quotes,
		Timestamp: time.Now(),
	}
}

// Cheapest returns the quote with the lowest price, or false when the
// set holds fewer than one quote.
func (s PriceSet) Cheapest() (NetworkQuote, bool) {
	if len(s.Quotes) == 0 {
		return NetworkQuote{}, false
	}
	best := s.Quotes[0]
	for _, q := range s.Quotes[1:] {
		if q.Price.LessThan(best.Price) {
			best = q
		}
	}
	return best, true
}

// Dearest returns the quote with the highest price, or false when the
// set is empty.
func (s PriceSet) Dearest() (NetworkQuote, bool) {
	if len(s.Quotes) == 0 {
		return NetworkQuote{}, false
	}
	best := s.Quotes[0]
	for _, q := range s.Quotes[1:] {
		if q.Price.GreaterThan(best.Price) {
			best = q
		}
	}
	return best, true
}
