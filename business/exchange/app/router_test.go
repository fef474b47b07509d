package app

import (
	"context"
	"testing"

	"github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/internal/apperror"
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

// stubVenue serves canned quotes and fills.
type stubVenue struct {
	name       string
	quoteErr   error
	swapErr    error
	outRaw     int64 // quoted output
	fillRaw    int64 // executed output (0 = same as quote)
	quoteCalls int
	swapCalls  int
}

func (v *stubVenue) Name() string { return v.name }

func (v *stubVenue) QuoteSwap(ctx context.Context, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (domain.SwapQuote, error) {
	v.quoteCalls++
	if v.quoteErr != nil {
		return domain.SwapQuote{}, v.quoteErr
	}
	out := asset.NewAmountFromInt64(tokenOut, v.outRaw)
	return domain.NewSwapQuote(v.name, chainID, amountIn, out, 150_000, 3000), nil
}

func (v *stubVenue) ExecuteSwap(ctx context.Context, quote domain.SwapQuote, minOut asset.Amount) (domain.SwapReceipt, error) {
	v.swapCalls++
	if v.swapErr != nil {
		return domain.SwapReceipt{}, v.swapErr
	}
	fill := v.fillRaw
	if fill == 0 {
		fill = quote.AmountOut.Raw().Int64()
	}
	return domain.SwapReceipt{
		Venue:     v.name,
		ChainID:   quote.ChainID,
		TxHash:    "0xstub",
		AmountIn:  quote.AmountIn,
		AmountOut: asset.NewAmountFromInt64(quote.TokenOut, fill),
		GasUsed:   120_000,
	}, nil
}

func oneWETH() asset.Amount {
	amt, err := asset.ParseString(asset.WETH, "1")
	if err != nil {
		panic(err)
	}
	return amt
}

func TestRouter_Quote_PrimaryWins(t *testing.T) {
	primary := &stubVenue{name: "uniswap", outRaw: 2_500_000_000}
	fallback := &stubVenue{name: "sushiswap", outRaw: 2_400_000_000}

	router, err := NewRouter([]Venue{primary, fallback}, 50, &mockLogger{})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	quote, err := router.Quote(context.Background(), 1, asset.WETH, asset.USDC, oneWETH())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if quote.Venue != "uniswap" {
		t.Errorf("venue = %s, want uniswap", quote.Venue)
	}
	if fallback.quoteCalls != 0 {
		t.Errorf("fallback was consulted %d times, want 0", fallback.quoteCalls)
	}
}

func TestRouter_Quote_FallsBack(t *testing.T) {
	primary := &stubVenue{
		name:     "uniswap",
		quoteErr: apperror.New(apperror.CodeSwapFailed),
	}
	fallback := &stubVenue{name: "sushiswap", outRaw: 2_400_000_000}

	router, _ := NewRouter([]Venue{primary, fallback}, 50, &mockLogger{})

	quote, err := router.Quote(context.Background(), 1, asset.WETH, asset.USDC, oneWETH())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	if quote.Venue != "sushiswap" {
		t.Errorf("venue = %s, want sushiswap", quote.Venue)
	}
	if primary.quoteCalls != 1 || fallback.quoteCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.quoteCalls, fallback.quoteCalls)
	}
}

func TestRouter_Quote_AllVenuesFail(t *testing.T) {
	primary := &stubVenue{name: "uniswap", quoteErr: apperror.New(apperror.CodeSwapFailed)}
	fallback := &stubVenue{name: "sushiswap", quoteErr: apperror.New(apperror.CodeCircuitOpen)}

	router, _ := NewRouter([]Venue{primary, fallback}, 50, &mockLogger{})

	_, err := router.Quote(context.Background(), 1, asset.WETH, asset.USDC, oneWETH())
	if err == nil {
		t.Fatal("expected error when every venue fails")
	}
	if code := apperror.GetCode(err); code != apperror.CodeQuoteUnavailable {
		t.Errorf("code = %s, want %s", code, apperror.CodeQuoteUnavailable)
	}
}

func TestRouter_Swap_EnforcesSlippage(t *testing.T) {
	// Quote 2500 USDC, fill only 2200 USDC: far below a 50 bps tolerance.
	venue := &stubVenue{name: "uniswap", outRaw: 2_500_000_000, fillRaw: 2_200_000_000}

	router, _ := NewRouter([]Venue{venue}, 50, &mockLogger{})

	quote, err := router.Quote(context.Background(), 1, asset.WETH, asset.USDC, oneWETH())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	_, err = router.Swap(context.Background(), quote)
	if err == nil {
		t.Fatal("expected slippage rejection")
	}
	if code := apperror.GetCode(err); code != apperror.CodeSlippageExceeded {
		t.Errorf("code = %s, want %s", code, apperror.CodeSlippageExceeded)
	}
}

func TestRouter_Swap_RoutesToQuotingVenue(t *testing.T) {
	primary := &stubVenue{name: "uniswap", quoteErr: apperror.New(apperror.CodeSwapFailed)}
	fallback := &stubVenue{name: "sushiswap", outRaw: 2_400_000_000}

	router, _ := NewRouter([]Venue{primary, fallback}, 50, &mockLogger{})

	quote, err := router.Quote(context.Background(), 1, asset.WETH, asset.USDC, oneWETH())
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}

	receipt, err := router.Swap(context.Background(), quote)
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	if receipt.Venue != "sushiswap" {
		t.Errorf("receipt venue = %s, want sushiswap", receipt.Venue)
	}
	if primary.swapCalls != 0 {
		t.Errorf("primary executed %d swaps, want 0", primary.swapCalls)
	}
}

func TestRouter_Swap_UnknownVenue(t *testing.T) {
	router, _ := NewRouter([]Venue{&stubVenue{name: "uniswap", outRaw: 1}}, 50, &mockLogger{})

	quote := domain.NewSwapQuote("ghost", 1, oneWETH(), asset.NewAmountFromInt64(asset.USDC, 1), 0, 0)
	if _, err := router.Swap(context.Background(), quote); err == nil {
		t.Fatal("expected error for unknown venue")
	}
}
