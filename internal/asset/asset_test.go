package asset

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		asset   *Asset
		input   string
		wantRaw string
		wantErr bool
	}{
		{
			name:    "one ether",
			asset:   WETH,
			input:   "1",
			wantRaw: "1000000000000000000",
		},
		{
			name:    "fractional usdc",
			asset:   USDC,
			input:   "1250.50",
			wantRaw: "1250500000",
		},
		{
			name:    "too many decimals for usdc",
			asset:   USDC,
			input:   "0.0000001",
			wantErr: true,
		},
		{
			name:    "negative rejected",
			asset:   WETH,
			input:   "-1",
			wantErr: true,
		},
		{
			name:    "garbage rejected",
			asset:   WETH,
			input:   "not-a-number",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.asset, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseString(%q) expected error, got %s", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseString(%q) unexpected error: %v", tt.input, err)
			}
			if got.Raw().String() != tt.wantRaw {
				t.Errorf("ParseString(%q) raw = %s, want %s", tt.input, got.Raw(), tt.wantRaw)
			}
		})
	}
}

func TestAmountArithmeticRejectsMixedAssets(t *testing.T) {
	oneUSDC := NewAmountFromInt64(USDC, 1_000_000)
	oneUSDCPolygon := NewAmountFromInt64(USDCPolygon, 1_000_000)

	if _, err := oneUSDC.Add(oneUSDCPolygon); err == nil {
		t.Error("Add across chains should fail even for the same symbol")
	}
	if _, err := oneUSDC.Sub(oneUSDCPolygon); err == nil {
		t.Error("Sub across chains should fail even for the same symbol")
	}
	if oneUSDC.Equals(oneUSDCPolygon) {
		t.Error("same raw value on different chains must not be equal")
	}
}

func TestAmountSubUnderflow(t *testing.T) {
	small := NewAmountFromInt64(WETH, 100)
	large := NewAmountFromInt64(WETH, 200)

	if _, err := small.Sub(large); err != ErrNegativeResult {
		t.Errorf("Sub underflow error = %v, want ErrNegativeResult", err)
	}
}

func TestPriceConvertAcrossDecimals(t *testing.T) {
	// 1 WETH (18 decimals) at 2000 USDC/WETH -> 2000 USDC (6 decimals)
	price := NewPrice(WETH, USDC, decimal.RequireFromString("2000"), time.Now())
	oneWETH := NewAmount(WETH, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	got, err := price.Convert(oneWETH)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	want := big.NewInt(2_000_000_000) // 2000 * 10^6
	if got.Raw().Cmp(want) != 0 {
		t.Errorf("Convert = %s, want %s", got.Raw(), want)
	}

	// Wrong base asset must be rejected.
	if _, err := price.Convert(NewAmountFromInt64(USDC, 1)); err == nil {
		t.Error("Convert with quote-denominated amount should fail")
	}
}

func TestPriceInvertRoundTrip(t *testing.T) {
	price := NewPriceNow(WETH, USDC, decimal.RequireFromString("2500"))
	inv := price.Invert()

	if inv.Base() != USDC || inv.Quote() != WETH {
		t.Fatalf("Invert pair = %s, want USDC/WETH", inv.Pair())
	}
	want := decimal.RequireFromString("0.0004")
	if !inv.Rate().Equal(want) {
		t.Errorf("Invert rate = %s, want %s", inv.Rate(), want)
	}
}

func TestRegistryCrossListings(t *testing.T) {
	r := DefaultRegistry()

	chains := r.ChainsFor("USDC")
	wantChains := []uint64{ChainIDEthereum, ChainIDOptimism, ChainIDPolygon, ChainIDBase, ChainIDArbitrum}
	if len(chains) != len(wantChains) {
		t.Fatalf("ChainsFor(USDC) = %v, want %d chains", chains, len(wantChains))
	}

	listings, ok := r.CrossListings("USDC", ChainIDEthereum, ChainIDArbitrum)
	if !ok {
		t.Fatal("CrossListings(USDC, ethereum, arbitrum) not found")
	}
	if listings[0].ChainID() != ChainIDEthereum || listings[1].ChainID() != ChainIDArbitrum {
		t.Errorf("CrossListings order mismatch: %v", listings)
	}

	// WBTC is Ethereum-only, so a polygon cross-listing must fail.
	if _, ok := r.CrossListings("WBTC", ChainIDEthereum, ChainIDPolygon); ok {
		t.Error("CrossListings(WBTC, polygon) should not resolve")
	}
}

func TestRegistryGetBySymbolAndChain(t *testing.T) {
	r := DefaultRegistry()

	a, ok := r.GetBySymbolAndChain("WETH", ChainIDArbitrum)
	if !ok {
		t.Fatal("WETH on arbitrum not found")
	}
	if a.Address() != AddrWETHArbitrum {
		t.Errorf("WETH arbitrum address = %s, want %s", a.Address(), AddrWETHArbitrum)
	}

	if _, ok := r.GetBySymbolAndChain("WETH", 999); ok {
		t.Error("unknown chain should not resolve")
	}
}
