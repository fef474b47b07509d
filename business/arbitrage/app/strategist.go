package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ivoros/chainarb/business/arbitrage/domain"
	"github.com/ivoros/chainarb/internal/logger"
)

// StrategistConfig holds trade sizing limits.
type StrategistConfig struct {
	// MaxExposure caps how much of our own capital one trade may hold.
	MaxExposure decimal.Decimal
	// MinTradeSize is the floor below which a trade is not worth gas.
	MinTradeSize decimal.Decimal
	// FlashLoansEnabled allows borrowing when the recommended size
	// exceeds MaxExposure.
	FlashLoansEnabled bool
}

// Strategist turns a profitable opportunity into an executable plan:
// it fixes the trade size, decides whether borrowed capital is needed,
// and fetches fresh fee estimates so the plan reflects conditions at
// build time, not at scan time.
type Strategist struct {
	gas    GasEstimator
	bridge BridgeEstimator
	cfg    StrategistConfig
	logger logger.LoggerInterface
}

// NewStrategist creates a Strategist.
func NewStrategist(gas GasEstimator, bridge BridgeEstimator, cfg StrategistConfig, log logger.LoggerInterface) *Strategist {
	return &Strategist{
		gas:    gas,
		bridge: bridge,
		cfg:    cfg,
		logger: log,
	}
}

// BuildStrategy plans the execution of one opportunity.
func (s *Strategist) BuildStrategy(ctx context.Context, opp domain.Opportunity) (domain.Strategy, error) {
	recommended := opp.Analysis.RecommendedSize

	tradeSize := recommended
	if tradeSize.GreaterThan(s.cfg.MaxExposure) {
		tradeSize = s.cfg.MaxExposure
	}
	if tradeSize.LessThan(s.cfg.MinTradeSize) {
		tradeSize = s.cfg.MinTradeSize
	}
	useFlashLoan := s.WouldUseFlashLoan(recommended)
	if useFlashLoan {
		// Borrowed capital lets the trade run at the recommended size
		// instead of being clipped to our own exposure limit.
		tradeSize = recommended
	}

	estimates, err := s.estimateFees(ctx, opp, tradeSize)
	if err != nil {
		return domain.Strategy{}, err
	}

	strategy := domain.NewStrategy(opp, useFlashLoan, tradeSize, estimates)
	s.logger.Info(ctx, "strategy built",
		"strategy_id", strategy.ID,
		"symbol", opp.Symbol,
		"trade_size", tradeSize.StringFixed(2),
		"flash_loan", useFlashLoan,
		"steps", len(strategy.Plan))
	return strategy, nil
}

func (s *Strategist) estimateFees(ctx context.Context, opp domain.Opportunity, tradeSize decimal.Decimal) (domain.FeeEstimates, error) {
	buyGas, err := s.gas.SwapCost(ctx, opp.BuyChainID)
	if err != nil {
		return domain.FeeEstimates{}, err
	}
	sellGas, err := s.gas.SwapCost(ctx, opp.SellChainID)
	if err != nil {
		return domain.FeeEstimates{}, err
	}

	tokens := tradeSize
	if opp.BuyQuote.Price.GreaterThan(decimal.Zero) {
		tokens = tradeSize.Div(opp.BuyQuote.Price)
	}
	bridgeFee, err := s.bridge.Fee(ctx, opp.BuyChainID, opp.SellChainID, opp.Symbol, tokens)
	if err != nil {
		return domain.FeeEstimates{}, err
	}

	return domain.FeeEstimates{
		BuyGas:     buyGas,
		SellGas:    sellGas,
		BridgeFee:  bridgeFee,
		BridgeTime: s.bridge.Duration(opp.BuyChainID, opp.SellChainID),
	}, nil
}

// WouldUseFlashLoan reports whether a recommended size would be funded
// with a flash loan rather than clipped to the exposure cap.
func (s *Strategist) WouldUseFlashLoan(recommended decimal.Decimal) bool {
	return s.cfg.FlashLoansEnabled && recommended.GreaterThan(s.cfg.MaxExposure)
}
