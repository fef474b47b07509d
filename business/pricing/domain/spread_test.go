package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func quote(symbol, network string, chainID uint64, price string) NetworkQuote {
	return NetworkQuote{
		Symbol:    symbol,
		Network:   network,
		ChainID:   chainID,
		Price:     decimal.RequireFromString(price),
		Timestamp: time.Now(),
	}
}

func TestCalculateSpread(t *testing.T) {
	tests := []struct {
		name         string
		buyPrice     string
		sellPrice    string
		wantAbsolute string
		wantBPS      string
		wantEdge     bool
	}{
		{
			name:         "equal_prices_no_spread",
			buyPrice:     "3400.00",
			sellPrice:    "3400.00",
			wantAbsolute: "0",
			wantBPS:      "0",
			wantEdge:     false,
		},
		{
			name:         "one_percent_spread",
			buyPrice:     "3400.00",
			sellPrice:    "3434.00",
			wantAbsolute: "34",
			wantBPS:      "100", // 34/3400 * 10000
			wantEdge:     true,
		},
		{
			name:         "inverted_prices_negative_spread",
			buyPrice:     "3434.00",
			sellPrice:    "3400.00",
			wantAbsolute: "-34",
			wantBPS:      "-99", // -34/3434 * 10000 ~ -99
			wantEdge:     false,
		},
		{
			name:         "zero_buy_price_no_panic",
			buyPrice:     "0",
			sellPrice:    "3400.00",
			wantAbsolute: "3400",
			wantBPS:      "0", // division by zero avoided
			wantEdge:     true,
		},
		{
			name:         "tiny_spread",
			buyPrice:     "3400.00",
			sellPrice:    "3400.34",
			wantAbsolute: "0.34",
			wantBPS:      "1",
			wantEdge:     true,
		},
		{
			name:         "large_spread_10pct",
			buyPrice:     "3000.00",
			sellPrice:    "3300.00",
			wantAbsolute: "300",
			wantBPS:      "1000",
			wantEdge:     true,
		},
		{
			name:         "small_numbers",
			buyPrice:     "0.001",
			sellPrice:    "0.00101",
			wantAbsolute: "0.00001",
			wantBPS:      "100",
			wantEdge:     true,
		},
		{
			name:         "high_precision",
			buyPrice:     "3456.789012345678",
			sellPrice:    "3460.245801357913",
			wantAbsolute: "3.456789012235",
			wantBPS:      "10",
			wantEdge:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buy := quote("WETH", "ethereum", 1, tt.buyPrice)
			sell := quote("WETH", "arbitrum", 42161, tt.sellPrice)

			spread := CalculateSpread(buy, sell)

			wantAbsolute := decimal.RequireFromString(tt.wantAbsolute)
			if !spread.Absolute.Equal(wantAbsolute) {
				t.Errorf("Absolute = %s, want %s", spread.Absolute, wantAbsolute)
			}

			wantBPS := decimal.RequireFromString(tt.wantBPS)
			bpsRounded := spread.BasisPoints.Round(0)
			if !bpsRounded.Equal(wantBPS) {
				t.Errorf("BasisPoints = %s (rounded: %s), want %s",
					spread.BasisPoints, bpsRounded, wantBPS)
			}

			if spread.HasEdge() != tt.wantEdge {
				t.Errorf("HasEdge = %v, want %v", spread.HasEdge(), tt.wantEdge)
			}

			if spread.Symbol != "WETH" {
				t.Errorf("Symbol = %q, want WETH", spread.Symbol)
			}
		})
	}
}

func TestBestSpread(t *testing.T) {
	tests := []struct {
		name        string
		quotes      []NetworkQuote
		wantFound   bool
		wantBuyID   uint64
		wantSellID  uint64
		wantBPSCeil string
	}{
		{
			name: "three_networks_picks_extremes",
			quotes: []NetworkQuote{
				quote("WETH", "ethereum", 1, "2500"),
				quote("WETH", "arbitrum", 42161, "2490"),
				quote("WETH", "optimism", 10, "2520"),
			},
			wantFound:   true,
			wantBuyID:   42161,
			wantSellID:  10,
			wantBPSCeil: "121", // 30/2490*10000 ~ 120.48
		},
		{
			name: "flat_prices_no_opportunity",
			quotes: []NetworkQuote{
				quote("WETH", "ethereum", 1, "2500"),
				quote("WETH", "arbitrum", 42161, "2500"),
			},
			wantFound: false,
		},
		{
			name: "single_quote_not_enough",
			quotes: []NetworkQuote{
				quote("WETH", "ethereum", 1, "2500"),
			},
			wantFound: false,
		},
		{
			name:      "empty_set",
			quotes:    nil,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spread, found := BestSpread(NewPriceSet("WETH", tt.quotes))
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}

			if spread.Buy.ChainID != tt.wantBuyID {
				t.Errorf("buy chain = %d, want %d", spread.Buy.ChainID, tt.wantBuyID)
			}
			if spread.Sell.ChainID != tt.wantSellID {
				t.Errorf("sell chain = %d, want %d", spread.Sell.ChainID, tt.wantSellID)
			}

			ceil := decimal.RequireFromString(tt.wantBPSCeil)
			if spread.BasisPoints.Round(0).GreaterThan(ceil) {
				t.Errorf("BasisPoints = %s, want <= %s", spread.BasisPoints, ceil)
			}
		})
	}
}

func TestPriceSetExtremes(t *testing.T) {
	set := NewPriceSet("USDT", []NetworkQuote{
		quote("USDT", "ethereum", 1, "1.001"),
		quote("USDT", "polygon", 137, "0.998"),
		quote("USDT", "arbitrum", 42161, "1.003"),
	})

	cheapest, ok := set.Cheapest()
	if !ok || cheapest.ChainID != 137 {
		t.Errorf("Cheapest = %v (ok=%v), want polygon", cheapest, ok)
	}

	dearest, ok := set.Dearest()
	if !ok || dearest.ChainID != 42161 {
		t.Errorf("Dearest = %v (ok=%v), want arbitrum", dearest, ok)
	}

	empty := NewPriceSet("USDT", nil)
	if _, ok := empty.Cheapest(); ok {
		t.Error("Cheapest on empty set should report false")
	}
}

func TestNetworkQuoteIsStale(t *testing.T) {
	q := quote("WETH", "ethereum", 1, "2500")
	if q.IsStale(time.Minute) {
		t.Error("fresh quote reported stale")
	}

	q.Timestamp = time.Now().Add(-2 * time.Minute)
	if !q.IsStale(time.Minute) {
		t.Error("old quote not reported stale")
	}
}

func BenchmarkCalculateSpread(b *testing.B) {
	buy := quote("WETH", "ethereum", 1, "3456.789")
	sell := quote("WETH", "arbitrum", 42161, "3460.123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CalculateSpread(buy, sell)
	}
}
