package oracle

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/pricing/app"
	"github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/logger"
	"github.com/ivoros/chainarb/internal/wsconn"
)

// Ensure Stream implements PriceStream.
var _ app.PriceStream = (*Stream)(nil)

// StreamConfig holds configuration for the oracle price stream.
type StreamConfig struct {
	URL        string
	BufferSize int
}

// Stream receives push price updates over WebSocket. It complements the
// polling client for symbols where the oracle supports streaming.
type Stream struct {
	config StreamConfig
	conn   *wsconn.Client
	logger logger.LoggerInterface

	mu      sync.Mutex
	updates chan domain.NetworkQuote
	closed  bool
}

// NewStream creates a new oracle price stream.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) (*Stream, error) {
	if cfg.URL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("oracle stream URL is required"))
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}

	conn, err := wsconn.New(wsconn.DefaultConfig(cfg.URL, "oracle-stream"))
	if err != nil {
		return nil, err
	}

	return &Stream{
		config: cfg,
		conn:   conn,
		logger: log,
	}, nil
}

// subscribeRequest is the stream subscription message.
type subscribeRequest struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// priceUpdate is a pushed price message.
type priceUpdate struct {
	Symbol    string `json:"symbol"`
	Network   string `json:"network"`
	ChainID   uint64 `json:"chain_id"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// Subscribe connects and starts streaming updates for the given symbols.
func (s *Stream) Subscribe(ctx context.Context, symbols []string) (<-chan domain.NetworkQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, apperror.New(apperror.CodeInvalidState,
			apperror.WithMessage("stream already closed"))
	}
	if s.updates != nil {
		return s.updates, nil
	}

	s.updates = make(chan domain.NetworkQuote, s.config.BufferSize)

	s.conn.OnMessage(func(ctx context.Context, msg []byte) {
		var update priceUpdate
		if err := json.Unmarshal(msg, &update); err != nil {
			s.logger.Warn(ctx, "unparseable stream message", "error", err)
			return
		}
		price, err := decimal.NewFromString(update.Price)
		if err != nil {
			s.logger.Warn(ctx, "unparseable stream price",
				"symbol", update.Symbol, "price", update.Price)
			return
		}

		quote := domain.NetworkQuote{
			Symbol:    update.Symbol,
			Network:   update.Network,
			ChainID:   update.ChainID,
			Price:     price,
			Timestamp: time.Unix(update.Timestamp, 0),
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		select {
		case s.updates <- quote:
		default:
			// A full buffer means the consumer is far behind; drop.
			s.logger.Warn(ctx, "stream buffer full, dropping update", "symbol", update.Symbol)
		}
		s.mu.Unlock()
	})

	s.conn.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			s.logger.Warn(context.Background(), "oracle stream state change",
				"state", string(state), "error", err)
		}
	})

	if err := s.conn.Connect(ctx); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeOracleUnavailable,
			apperror.WithMessage("oracle stream connect failed"))
	}

	if err := s.conn.SendJSON(ctx, subscribeRequest{Op: "subscribe", Symbols: symbols}); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeOracleUnavailable,
			apperror.WithMessage("oracle stream subscribe failed"))
	}

	return s.updates, nil
}

// Close shuts the stream down and closes the update channel.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.conn.Close()
	if s.updates != nil {
		close(s.updates)
	}
	return err
}
