// Package oracle implements the PriceOracle port against an HTTP price API.
package oracle

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/pricing/app"
	"github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/cache"
	"github.com/ivoros/chainarb/internal/circuitbreaker"
	"github.com/ivoros/chainarb/internal/httpclient"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/ratelimit"
)

const (
	tracerName = "chainarb/pricing/oracle"
	meterName  = "chainarb/pricing/oracle"

	priceEndpoint = "/v1/price"

	httpTimeout = 5 * time.Second
)

// Ensure Client implements PriceOracle.
var _ app.PriceOracle = (*Client)(nil)

// ClientConfig holds configuration for the oracle client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration // 0 = caching disabled
	RatePerSec float64
	RateBurst  int
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:    baseURL,
		Timeout:    httpTimeout,
		CacheTTL:   2 * time.Second,
		RatePerSec: 10,
		RateBurst:  5,
	}
}

// Client fetches token prices from the oracle HTTP API. Responses are
// cached briefly and requests go through a rate limiter and a circuit
// breaker.
type Client struct {
	config  ClientConfig
	client  httpclient.Client
	cache   *cache.Cache[string, domain.NetworkQuote]
	breaker *circuitbreaker.CircuitBreaker[domain.NetworkQuote]
	limiter *ratelimit.Limiter
	logger  logger.LoggerInterface

	tracer       trace.Tracer
	requestCount metric.Int64Counter
	cacheHits    metric.Int64Counter
}

// NewClient creates a new oracle client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("oracle base URL is required"))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 10
	}

	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(meterName)

	requestCount, err := meter.Int64Counter("oracle_requests_total",
		metric.WithDescription("Total oracle price requests"))
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64Counter("oracle_cache_hits_total",
		metric.WithDescription("Oracle responses served from cache"))
	if err != nil {
		return nil, err
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("oracle"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var quoteCache *cache.Cache[string, domain.NetworkQuote]
	if cfg.CacheTTL > 0 {
		quoteCache = cache.New[string, domain.NetworkQuote](cfg.CacheTTL)
	}

	return &Client{
		config:       cfg,
		client:       client,
		cache:        quoteCache,
		breaker:      circuitbreaker.New[domain.NetworkQuote](circuitbreaker.DefaultConfig("oracle")),
		limiter:      ratelimit.New(cfg.RatePerSec, cfg.RateBurst),
		logger:       log,
		tracer:       tracer,
		requestCount: requestCount,
		cacheHits:    cacheHits,
	}, nil
}

// priceResponse is the oracle API response for a single price.
type priceResponse struct {
	Symbol    string `json:"symbol"`
	Network   string `json:"network"`
	ChainID   uint64 `json:"chain_id"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

// GetPrice retrieves the price of a token on one network.
func (c *Client) GetPrice(ctx context.Context, symbol string, chainID uint64) (domain.NetworkQuote, error) {
	ctx, span := c.tracer.Start(ctx, "oracle.get_price",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.Int64("chain_id", int64(chainID)),
		),
	)
	defer span.End()

	key := fmt.Sprintf("%s:%d", symbol, chainID)
	if c.cache != nil {
		if quote, ok := c.cache.Get(key); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			c.cacheHits.Add(ctx, 1)
			return quote, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.NetworkQuote{}, apperror.Wrap(err, apperror.CodeRateLimitExceeded)
	}

	quote, err := c.breaker.Execute(func() (domain.NetworkQuote, error) {
		return c.fetch(ctx, symbol, chainID)
	})
	if err != nil {
		span.RecordError(err)
		if c.breaker.IsOpen() {
			return domain.NetworkQuote{}, apperror.Wrap(err, apperror.CodeCircuitOpen,
				apperror.WithContext("provider", "oracle"))
		}
		return domain.NetworkQuote{}, err
	}

	if c.cache != nil {
		c.cache.Set(key, quote, c.config.CacheTTL)
	}
	return quote, nil
}

func (c *Client) fetch(ctx context.Context, symbol string, chainID uint64) (domain.NetworkQuote, error) {
	c.requestCount.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", symbol)))

	var result priceResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "price"),
			httpclient.NewLabel("symbol", symbol),
		),
		httpclient.WithResponseErrorHandler(oracleErrorHandler),
	).
		SetQueryParam("symbol", symbol).
		SetQueryParam("chain_id", strconv.FormatUint(chainID, 10)).
		SetResult(&result).
		Get(ctx, priceEndpoint)

	if err != nil {
		if apperror.HasCode(err, apperror.CodePriceNotFound) {
			return domain.NetworkQuote{}, err
		}
		return domain.NetworkQuote{}, apperror.Wrap(err, apperror.CodeOracleUnavailable,
			apperror.WithContext("symbol", symbol),
			apperror.WithContext("chain_id", chainID))
	}
	if resp.IsError() {
		return domain.NetworkQuote{}, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	price, err := decimal.NewFromString(result.Price)
	if err != nil {
		return domain.NetworkQuote{}, apperror.Wrap(err, apperror.CodePriceNotFound,
			apperror.WithMessagef("unparseable price %q for %s", result.Price, symbol))
	}

	ts := time.Now()
	if result.Timestamp > 0 {
		ts = time.Unix(result.Timestamp, 0)
	}

	c.logger.Debug(ctx, "fetched oracle price",
		"symbol", symbol,
		"chain_id", chainID,
		"price", price.String())

	return domain.NetworkQuote{
		Symbol:    result.Symbol,
		Network:   result.Network,
		ChainID:   result.ChainID,
		Price:     price,
		Timestamp: ts,
	}, nil
}

// Close releases the client's cache resources.
func (c *Client) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	return nil
}

// APIError represents an error response from the oracle API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("oracle API error %d: %s", e.Code, e.Message)
}

// oracleErrorHandler parses oracle API error responses.
func oracleErrorHandler(statusCode int, body []byte) error {
	if statusCode == 404 {
		return apperror.New(apperror.CodePriceNotFound)
	}
	if statusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
