// Package across implements the bridge Provider port against the Across
// HTTP API. It serves as the fallback behind Socket.
package across

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
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
	tracerName = "chainarb/bridge/across"

	feesEndpoint     = "/api/suggested-fees"
	depositsEndpoint = "/api/deposits"
	statusEndpoint   = "/api/deposits/status"

	httpTimeout = 10 * time.Second
)

var _ app.Provider = (*Client)(nil)

// Config holds configuration for the Across client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client bridges tokens through the Across API.
type Client struct {
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[domain.TransferQuote]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates an Across bridge client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("across base URL is required"))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("across"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client:  client,
		breaker: circuitbreaker.New[domain.TransferQuote](circuitbreaker.DefaultConfig("across")),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// Name identifies the provider.
func (c *Client) Name() string { return "across" }

// feesResponse is the suggested-fees payload. The relay fee is
// denominated in the input token's base units.
type feesResponse struct {
	RelayFeeTotal string `json:"relay_fee_total"`
	FillTimeSec   int64  `json:"estimated_fill_time_sec"`
}

// Quote prices a transfer through Across.
func (c *Client) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	ctx, span := c.tracer.Start(ctx, "across.quote",
		trace.WithAttributes(
			attribute.String("symbol", dest.Symbol()),
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
				apperror.WithContext("provider", "across"))
		}
		return domain.TransferQuote{}, err
	}
	return quote, nil
}

func (c *Client) fetchQuote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	var result feesResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "suggested-fees")),
	).
		SetQueryParam("origin_chain_id", strconv.FormatUint(amountIn.Asset().ChainID(), 10)).
		SetQueryParam("destination_chain_id", strconv.FormatUint(dest.ChainID(), 10)).
		SetQueryParam("input_token", amountIn.Asset().Address().Hex()).
		SetQueryParam("output_token", dest.Address().Hex()).
		SetQueryParam("amount", amountIn.Raw().String()).
		SetResult(&result).
		Get(ctx, feesEndpoint)

	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "across"))
	}
	if resp.IsError() {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	feeRaw, ok := new(big.Int).SetString(result.RelayFeeTotal, 10)
	if !ok {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("unparseable relay fee %q", result.RelayFeeTotal))
	}
	fee := asset.NewAmount(amountIn.Asset(), feeRaw)

	// Fee comes off the transferred amount; convert through display
	// units in case decimals differ between listings.
	outValue := amountIn.ToDecimal().Sub(fee.ToDecimal())
	if outValue.IsNegative() {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeRejected,
			apperror.WithMessagef("relay fee exceeds transfer of %s", amountIn.String()))
	}
	amountOut, err := asset.ParseDecimal(dest, outValue)
	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure)
	}

	destFee, err := asset.ParseDecimal(dest, fee.ToDecimal())
	if err != nil {
		return domain.TransferQuote{}, apperror.Wrap(err, apperror.CodeBridgeFailure)
	}

	return domain.TransferQuote{
		Provider:  c.Name(),
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Fee:       destFee,
		ETA:       time.Duration(result.FillTimeSec) * time.Second,
		Timestamp: time.Now(),
	}, nil
}

type depositRequest struct {
	OriginChainID      uint64 `json:"origin_chain_id"`
	DestinationChainID uint64 `json:"destination_chain_id"`
	InputToken         string `json:"input_token"`
	OutputToken        string `json:"output_token"`
	Amount             string `json:"amount"`
	Recipient          string `json:"recipient"`
}

type depositResponse struct {
	DepositID string `json:"deposit_id"`
	TxHash    string `json:"deposit_tx_hash"`
}

// Initiate starts the transfer to the recipient address.
func (c *Client) Initiate(ctx context.Context, quote domain.TransferQuote, recipient common.Address) (domain.Transfer, error) {
	ctx, span := c.tracer.Start(ctx, "across.initiate")
	defer span.End()

	var result depositResponse
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "deposits")),
	).
		SetBody(depositRequest{
			OriginChainID:      quote.FromChainID(),
			DestinationChainID: quote.ToChainID(),
			InputToken:         quote.AmountIn.Asset().Address().Hex(),
			OutputToken:        quote.AmountOut.Asset().Address().Hex(),
			Amount:             quote.AmountIn.Raw().String(),
			Recipient:          recipient.Hex(),
		}).
		SetResult(&result).
		Post(ctx, depositsEndpoint)

	if err != nil {
		span.RecordError(err)
		return domain.Transfer{}, apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "across"))
	}
	if resp.IsError() {
		return domain.Transfer{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	span.SetAttributes(attribute.String("deposit_id", result.DepositID))

	now := time.Now()
	return domain.Transfer{
		ID:        result.DepositID,
		Provider:  c.Name(),
		TxRef:     result.TxHash,
		AmountIn:  quote.AmountIn,
		AmountOut: quote.AmountOut,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Status retrieves the current state of a deposit.
func (c *Client) Status(ctx context.Context, transferID string) (domain.TransferStatus, error) {
	var result struct {
		Status string `json:"status"`
	}
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "deposit-status")),
	).
		SetQueryParam("deposit_id", transferID).
		SetResult(&result).
		Get(ctx, statusEndpoint)

	if err != nil {
		return "", apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", "across"))
	}
	if resp.IsError() {
		return "", apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("HTTP %d: %s", resp.StatusCode, resp.String()))
	}

	switch result.Status {
	case "pending":
		return domain.StatusPending, nil
	case "filling":
		return domain.StatusInFlight, nil
	case "filled":
		return domain.StatusCompleted, nil
	case "expired", "refunded":
		return domain.StatusFailed, nil
	default:
		c.logger.Warn(ctx, "unknown across deposit status",
			"deposit_id", transferID, "status", result.Status)
		return domain.StatusInFlight, nil
	}
}
