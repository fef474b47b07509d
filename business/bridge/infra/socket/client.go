// Package socket implements the bridge Provider port against the Socket
// HTTP API.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/bridge/app"
	"github.com/ivoros/chainarb/business/bridge/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/circuitbreaker"
	"github.com/ivoros/chainarb/internal/httpclient"
	"github.com/ivoros/chainarb/internal/logger"
)

const (
	tracerName = "chainarb/bridge/socket"
	meterName  = "chainarb/bridge/socket"

	quoteEndpoint    = "/v2/quote"
	transferEndpoint = "/v2/transfer"
	statusEndpoint   = "/v2/status"

	httpTimeout = 10 * time.Second
)

// Ensure Client implements Provider.
var _ app.Provider = (*Client)(nil)

// Config holds configuration for the Socket client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client bridges tokens through the Socket API.
type Client struct {
	config  Config
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[domain.TransferQuote]
	logger  logger.LoggerInterface

	tracer        trace.Tracer
	transferCount metric.Int64Counter
}

// NewClient creates a Socket bridge client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("socket base URL is required"))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)
	meter := otel.Meter(meterName)

	transferCount, err := meter.Int64Counter("bridge_transfers_total",
		metric.WithDescription("Bridge transfers initiated through Socket"))
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["API-KEY"] = cfg.APIKey
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("socket"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		config:        cfg,
		client:        client,
		breaker:       circuitbreaker.New[domain.TransferQuote](circuitbreaker.DefaultConfig("socket")),
		logger:        log,
		tracer:        tracer,
		transferCount: transferCount,
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return "socket" }

// quoteResponse is the Socket quote payload. Amounts are raw base units.
type quoteResponse struct {
	ToAmount string `json:"to_amount"`
	Fee      string `json:"fee"`
	ETASec   int64  `json:"eta_sec"`
}

// Quote prices a transfer through Socket.
func (c *Client) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	ctx, span := c.tracer.Start(ctx, "socket.quote",
		trace.WithAttributes(
			attribute.String("symbol", dest.Symbol()),
			attribute.Int64("from_chain", int64(amountIn.Asset().ChainID())),
			attribute.Int64("to_chain", int64(dest.ChainID())),
		),
	)
	defer span.End()

	quote, err := c.breaker.Execute(func() (domain.TransferQuote, error) {
		return c.fetchQuote(ctx, amountIn, dest)
	})
	if err != nil {
		span.RecordError(err)
		if c.breaker.IsOpen() {
			return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeCircuitOpen,
				apperror.WithContext("provider", "socket"))
		}
		return domain.TransferQuote{}, err
	}
	return quote, nil
}

func (c *Client) fetchQuote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	var result quoteResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "quote")),
		httpclient.WithResponseErrorHandler(socketErrorHandler),
	).
		SetQueryParam("from_chain_id", strconv.FormatUint(amountIn.Asset().ChainID(), 10)).
		SetQueryParam("to_chain_id", strconv.FormatUint(dest.ChainID(), 10)).
		SetQueryParam("from_token", amountIn.Asset().Address().Hex()).
		SetQueryParam("to_token", dest.Address().Hex()).
		SetQueryParam("amount", amountIn.Raw().String()).
		SetResult(&result).
		Get(ctx, quoteEndpoint)

	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "socket"))
	}
	if resp.IsError() {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	toAmount, ok := new(big.Int).SetString(result.ToAmount, 10)
	if !ok {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("unparseable to_amount %q", result.ToAmount))
	}
	fee, ok := new(big.Int).SetString(result.Fee, 10)
	if !ok {
		fee = big.NewInt(0)
	}

	return domain.TransferQuote{
		Provider:  c.Name(),
		AmountIn:  amountIn,
		AmountOut: asset.NewAmount(dest, toAmount),
		Fee:       asset.NewAmount(dest, fee),
		ETA:       time.Duration(result.ETASec) * time.Second,
		Timestamp: time.Now(),
	}, nil
}

// transferRequest is the Socket transfer initiation payload.
type transferRequest struct {
	FromChainID uint64 `json:"from_chain_id"`
	ToChainID   uint64 `json:"to_chain_id"`
	FromToken   string `json:"from_token"`
	ToToken     string `json:"to_token"`
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
}

type transferResponse struct {
	TransferID string `json:"transfer_id"`
	TxHash     string `json:"tx_hash"`
}

// Initiate starts the transfer to the recipient address.
func (c *Client) Initiate(ctx context.Context, quote domain.TransferQuote, recipient common.Address) (domain.Transfer, error) {
	ctx, span := c.tracer.Start(ctx, "socket.initiate")
	defer span.End()

	c.transferCount.Add(ctx, 1)

	var result transferResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "transfer")),
		httpclient.WithResponseErrorHandler(socketErrorHandler),
	).
		SetBody(transferRequest{
			FromChainID: quote.FromChainID(),
			ToChainID:   quote.ToChainID(),
			FromToken:   quote.AmountIn.Asset().Address().Hex(),
			ToToken:     quote.AmountOut.Asset().Address().Hex(),
			Amount:      quote.AmountIn.Raw().String(),
			Recipient:   recipient.Hex(),
		}).
		SetResult(&result).
		Post(ctx, transferEndpoint)

	if err != nil {
		span.RecordError(err)
		return domain.Transfer{}, apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "socket"))
	}
	if resp.IsError() {
		return domain.Transfer{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	span.SetAttributes(attribute.String("transfer_id", result.TransferID))

	now := time.Now()
	return domain.Transfer{
		ID:        result.TransferID,
		Provider:  c.Name(),
		TxRef:     result.TxHash,
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

// Status retrieves the current state of a transfer.
func (c *Client) Status(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	ctx, span := c.tracer.Start(ctx, "socket.status",
		trace.WithAttributes(attribute.String("transfer_id", transferID)),
	)
	defer span.End()

	var result statusResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "status")),
		httpclient.WithResponseErrorHandler(socketErrorHandler),
	).
		SetQueryParam("transfer_id", transferID).
		SetResult(&result).
		Get(ctx, statusEndpoint)

	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "socket"))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	switch result.Status {
	case "pending":
		return domain.StatusPending, nil
	case "in_flight", "bridging":
		return domain.StatusInFlight, nil
	case "completed", "claimed":
		return domain.StatusCompleted, nil
	case "failed", "refunded":
		return domain.StatusFailed, nil
	default:
		c.logger.Warn(ctx, "unknown socket transfer status",
			"transfer_id", transferID, "status", result.Status)
		return domain.StatusInFlight, nil
	}
}

// APIError represents an error response from the Socket API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("socket API error %d: %s", e.Code, e.Message)
}

// socketErrorHandler parses Socket API error responses.
func socketErrorHandler(statusCode int, body []byte) error {
	if statusCode == 422 {
		return apperror.New(apperror.CodeBridgeRejected)
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
