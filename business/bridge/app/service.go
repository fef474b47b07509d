package app

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ivoros/chainarb/business/bridge/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const tracerName = "chainarb/bridge"

// Service moves tokens between chains through providers in fallback
// order: the first provider that can quote a transfer carries it.
type Service struct {
	providers    []Provider
	pollInterval time.Duration
	timeout      time.Duration
	logger       logger.LoggerInterface
	tracer       trace.Tracer
}

// NewService creates a bridge Service. Provider order matters: the first
// provider is the primary.
func NewService(providers []Provider, pollInterval, timeout time.Duration, log logger.LoggerInterface) (*Service, error) {
	if len(providers) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("bridge needs at least one provider"))
	}

	return &Service{
		providers:    providers,
		pollInterval: pollInterval,
		timeout:      timeout,
		logger:       log,
		tracer:       otel.Tracer(tracerName),
	}, nil
}

// Quote asks each provider in order and returns the first quote obtained.
// When every provider fails the joined failures are wrapped in a
// BRIDGE_FAILURE error.
func (s *Service) Quote(ctx context.Context, amountIn asset.Amount, dest *asset.Asset) (domain.TransferQuote, error) {
	ctx, span := s.tracer.Start(ctx, "bridge.quote",
		trace.WithAttributes(
			attribute.String("symbol", dest.Symbol()),
			attribute.Int64("from_chain", int64(amountIn.Asset().ChainID())),
			attribute.Int64("to_chain", int64(dest.ChainID())),
		),
	)
	defer span.End()

	if amountIn.Asset().Symbol() != dest.Symbol() {
		return domain.TransferQuote{}, apperror.New(apperror.CodeBridgeRejected,
			apperror.WithMessagef("cannot bridge %s into %s", amountIn.Asset().Symbol(), dest.Symbol()))
	}

	var failures []error
	for _, p := range s.providers {
		quote, err := p.Quote(ctx, amountIn, dest)
		if err != nil {
			s.logger.Warn(ctx, "bridge quote failed",
				"provider", p.Name(),
				"to_chain", dest.ChainID(),
				"error", err)
			failures = append(failures, err)
			continue
		}

		span.SetAttributes(attribute.String("provider", p.Name()))
		return quote, nil
	}

	err := apperror.New(apperror.CodeBridgeFailure,
		apperror.WithCause(errors.Join(failures...)),
		apperror.WithContext("symbol", dest.Symbol()),
		apperror.WithContext("to_chain", dest.ChainID()))
	span.RecordError(err)
	return domain.TransferQuote{}, err
}

// Transfer bridges amountIn to the destination token's chain and blocks
// until the transfer completes or the confirmation window elapses. On
// timeout the returned error carries the source transaction reference,
// since funds may be in flight.
func (s *Service) Transfer(ctx context.Context, amountIn asset.Amount, dest *asset.Asset, recipient common.Address) (domain.Transfer, error) {
	ctx, span := s.tracer.Start(ctx, "bridge.transfer",
		trace.WithAttributes(
			attribute.String("symbol", dest.Symbol()),
			attribute.Int64("from_chain", int64(amountIn.Asset().ChainID())),
			attribute.Int64("to_chain", int64(dest.ChainID())),
			attribute.String("amount", amountIn.String()),
		),
	)
	defer span.End()

	quote, err := s.Quote(ctx, amountIn, dest)
	if err != nil {
		return domain.Transfer{}, err
	}

	provider, ok := s.providerByName(quote.Provider)
	if !ok {
		return domain.Transfer{}, apperror.New(apperror.CodeBridgeFailure,
			apperror.WithMessagef("quote references unknown provider %q", quote.Provider))
	}

	transfer, err := provider.Initiate(ctx, quote, recipient)
	if err != nil {
		span.RecordError(err)
		return domain.Transfer{}, apperror.Wrap(err, apperror.CodeBridgeFailure,
			apperror.WithContext("provider", provider.Name()))
	}

	span.SetAttributes(attribute.String("transfer_id", transfer.ID))
	s.logger.Info(ctx, "bridge transfer initiated",
		"provider", transfer.Provider,
		"transfer_id", transfer.ID,
		"tx_ref", transfer.TxRef,
		"amount", transfer.AmountIn.String())

	return s.await(ctx, provider, transfer)
}

// await polls the provider until the transfer reaches a terminal state
// or the confirmation window elapses.
func (s *Service) await(ctx context.Context, provider Provider, transfer domain.Transfer) (domain.Transfer, error) {
	ctx, span := s.tracer.Start(ctx, "bridge.await",
		trace.WithAttributes(attribute.String("transfer_id", transfer.ID)),
	)
	defer span.End()

	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return transfer, s.timeoutError(transfer, ctx.Err())
		case <-deadline.C:
			err := s.timeoutError(transfer, nil)
			span.RecordError(err)
			return transfer, err
		case <-ticker.C:
			status, err := provider.Status(ctx, transfer.ID)
			if err != nil {
				s.logger.Warn(ctx, "bridge status check failed",
					"transfer_id", transfer.ID, "error", err)
				continue
			}

			if status != transfer.Status {
				transfer = transfer.WithStatus(status)
				s.logger.Info(ctx, "bridge transfer status",
					"transfer_id", transfer.ID, "status", status)
			}

			switch status {
			case domain.StatusCompleted:
				span.SetAttributes(attribute.String("status", string(status)))
				return transfer, nil
			case domain.StatusFailed:
				err := apperror.New(apperror.CodeBridgeFailure,
					apperror.WithMessagef("transfer %s failed at provider", transfer.ID),
					apperror.WithContext("tx_ref", transfer.TxRef))
				span.RecordError(err)
				return transfer, err
			}
		}
	}
}

func (s *Service) timeoutError(transfer domain.Transfer, cause error) error {
	opts := []apperror.Option{
		apperror.WithMessagef("transfer %s not confirmed within %s", transfer.ID, s.timeout),
		apperror.WithContext("provider", transfer.Provider),
		apperror.WithContext("tx_ref", transfer.TxRef),
	}
	if cause != nil {
		opts = append(opts, apperror.WithCause(cause))
	}
	return apperror.New(apperror.CodeBridgeTimeout, opts...)
}

func (s *Service) providerByName(name string) (Provider, bool) {
	for _, p := range s.providers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}
