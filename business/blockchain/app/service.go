package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ivoros/chainarb/business/blockchain/domain"
)

// Service coordinates chain-level concerns for the other contexts.
type Service struct {
	watcher HeadWatcher
	oracle  GasOracle
}

// NewService creates a blockchain Service.
func NewService(watcher HeadWatcher, oracle GasOracle) *Service {
	return &Service{watcher: watcher, oracle: oracle}
}

// WatchHeads starts head tracking across all configured chains.
func (s *Service) WatchHeads(ctx context.Context) (<-chan domain.Head, error) {
	return s.watcher.Watch(ctx)
}

// LatestHead returns the most recent head seen on the chain.
func (s *Service) LatestHead(chainID uint64) (domain.Head, bool) {
	return s.watcher.Latest(chainID)
}

// ConnectionState returns the watcher state for the chain.
func (s *Service) ConnectionState(chainID uint64) domain.ConnectionState {
	return s.watcher.State(chainID)
}

// GasPrice retrieves the current gas price on the chain.
func (s *Service) GasPrice(ctx context.Context, chainID uint64) (*domain.GasPrice, error) {
	return s.oracle.GasPrice(ctx, chainID)
}

// EstimateCall returns a full gas cost estimate for a contract call.
func (s *Service) EstimateCall(ctx context.Context, chainID uint64, to common.Address, data []byte) (*domain.GasEstimate, error) {
	return s.oracle.Estimate(ctx, chainID, to, data)
}
