package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivoros/chainarb/business/pricing/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/logger"
)

// Network identifies one scanned network.
type Network struct {
	Name    string
	ChainID uint64
}

// Service coordinates price fetching across networks.
type Service struct {
	oracle     PriceOracle
	networks   []Network
	staleAfter time.Duration
	logger     logger.LoggerInterface
}

// NewService creates a new pricing Service.
func NewService(oracle PriceOracle, networks []Network, staleAfter time.Duration, log logger.LoggerInterface) *Service {
	return &Service{
		oracle:     oracle,
		networks:   networks,
		staleAfter: staleAfter,
		logger:     log,
	}
}

// Networks returns the networks this service scans.
func (s *Service) Networks() []Network {
	return s.networks
}

// FetchPriceSet fetches the price of one symbol on every configured
// network concurrently. Networks that fail to quote are logged and
// skipped; an error is returned only when no network produced a usable
// quote.
func (s *Service) FetchPriceSet(ctx context.Context, symbol string) (domain.PriceSet, error) {
	var (
		mu     sync.Mutex
		quotes []domain.NetworkQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, network := range s.networks {
		g.Go(func() error {
			quote, err := s.oracle.GetPrice(gctx, symbol, network.ChainID)
			if err != nil {
				s.logger.Warn(gctx, "oracle quote failed",
					"symbol", symbol,
					"network", network.Name,
					"error", err)
				return nil // keep the other networks going
			}
			if quote.IsStale(s.staleAfter) {
				s.logger.Warn(gctx, "discarding stale quote",
					"symbol", symbol,
					"network", network.Name,
					"age", time.Since(quote.Timestamp).String())
				return nil
			}

			mu.Lock()
			quotes = append(quotes, quote)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.PriceSet{}, err
	}

	if len(quotes) == 0 {
		return domain.PriceSet{}, apperror.New(apperror.CodeOracleUnavailable,
			apperror.WithContext("symbol", symbol))
	}

	return domain.NewPriceSet(symbol, quotes), nil
}

// FetchAll fetches price sets for several symbols. Symbols with no
// usable quotes are dropped from the result.
func (s *Service) FetchAll(ctx context.Context, symbols []string) ([]domain.PriceSet, error) {
	var (
		mu   sync.Mutex
		sets []domain.PriceSet
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		g.Go(func() error {
			set, err := s.FetchPriceSet(gctx, symbol)
			if err != nil {
				s.logger.Warn(gctx, "no quotes for symbol", "symbol", symbol, "error", err)
				return nil
			}
			mu.Lock()
			sets = append(sets, set)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}
