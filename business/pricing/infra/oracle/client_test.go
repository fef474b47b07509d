package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
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

func newTestClient(t *testing.T, baseURL string, cacheTTL time.Duration) *Client {
	t.Helper()

	cfg := DefaultClientConfig(baseURL)
	cfg.CacheTTL = cacheTTL
	cfg.RatePerSec = 1000 // keep the limiter out of the way

	client, err := NewClient(cfg, &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create oracle client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_GetPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "WETH" {
			t.Errorf("expected symbol WETH, got %s", got)
		}
		if got := r.URL.Query().Get("chain_id"); got != "1" {
			t.Errorf("expected chain_id 1, got %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(priceResponse{
			Symbol:    "WETH",
			Network:   "ethereum",
			ChainID:   1,
			Price:     "2501.125",
			Timestamp: time.Now().Unix(),
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	quote, err := client.GetPrice(context.Background(), "WETH", 1)
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}

	if quote.Symbol != "WETH" || quote.Network != "ethereum" || quote.ChainID != 1 {
		t.Errorf("unexpected quote identity: %+v", quote)
	}
	want := decimal.RequireFromString("2501.125")
	if !quote.Price.Equal(want) {
		t.Errorf("price = %s, want %s", quote.Price, want)
	}
}

func TestClient_GetPrice_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.GetPrice(context.Background(), "NOPE", 1)
	if err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if code := apperror.GetCode(err); code != apperror.CodePriceNotFound {
		t.Errorf("error code = %s, want %s", code, apperror.CodePriceNotFound)
	}
}

func TestClient_GetPrice_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{Code: 2001, Message: "upstream feed down"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.GetPrice(context.Background(), "WETH", 1)
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if code := apperror.GetCode(err); code != apperror.CodeOracleUnavailable {
		t.Errorf("error code = %s, want %s", code, apperror.CodeOracleUnavailable)
	}
}

func TestClient_GetPrice_CachesResponses(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(priceResponse{
			Symbol:    "WETH",
			Network:   "ethereum",
			ChainID:   1,
			Price:     "2500",
			Timestamp: time.Now().Unix(),
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.GetPrice(ctx, "WETH", 1); err != nil {
			t.Fatalf("GetPrice call %d failed: %v", i, err)
		}
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", got)
	}

	// Different chain must miss the cache.
	if _, err := client.GetPrice(ctx, "WETH", 42161); err != nil {
		t.Fatalf("GetPrice on second chain failed: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 after second chain", got)
	}
}

func TestClient_GetPrice_UnparseablePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(priceResponse{
			Symbol:  "WETH",
			Network: "ethereum",
			ChainID: 1,
			Price:   "not-a-price",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.GetPrice(context.Background(), "WETH", 1)
	if err == nil {
		t.Fatal("expected error for unparseable price")
	}
	if code := apperror.GetCode(err); code != apperror.CodePriceNotFound {
		t.Errorf("error code = %s, want %s", code, apperror.CodePriceNotFound)
	}
}
