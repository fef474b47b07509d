package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
	bridgeApp "github.com/ivoros/chainarb/business/bridge/app"
	bridgeDomain "github.com/ivoros/chainarb/business/bridge/domain"
	exchangeApp "github.com/ivoros/chainarb/business/exchange/app"
	exchangeDomain "github.com/ivoros/chainarb/business/exchange/domain"
	"github.com/ivoros/chainarb/business/execution/domain"
	"github.com/ivoros/chainarb/internal/apperror"
	"github.com/ivoros/chainarb/internal/asset"
	"github.com/ivoros/chainarb/internal/logger"
)

const (
	tracerName = "chainarb/execution/app"
	meterName  = "chainarb/execution/app"
)

// EngineConfig holds execution parameters.
type EngineConfig struct {
	// StepTimeout bounds each step individually.
	StepTimeout time.Duration
	// ReferenceSymbol is the stablecoin trades are sized and settled in.
	ReferenceSymbol string
}

// Engine carries strategies out step by step. One trade runs at a
// time: capital committed to an in-flight execution must not be
// promised to a second one. Steps are strictly sequential and a failed
// step terminates the run with no compensation; whatever already
// settled on-chain stays settled.
type Engine struct {
	router    *exchangeApp.Router
	bridge    *bridgeApp.Service
	loans     FlashLoanProvider
	recipient FundsRecipient
	registry  *asset.Registry
	cfg       EngineConfig
	logger    logger.LoggerInterface
	tracer    trace.Tracer

	executionsTotal metric.Int64Counter
	active          atomic.Bool
}

// NewEngine creates an Engine.
func NewEngine(router *exchangeApp.Router, bridge *bridgeApp.Service, loans FlashLoanProvider, recipient FundsRecipient, registry *asset.Registry, cfg EngineConfig, log logger.LoggerInterface) *Engine {
	meter := otel.Meter(meterName)
	executions, _ := meter.Int64Counter("executions_total",
		metric.WithDescription("Finished trade executions by status"))
	return &Engine{
		router:          router,
		bridge:          bridge,
		loans:           loans,
		recipient:       recipient,
		registry:        registry,
		cfg:             cfg,
		logger:          log,
		tracer:          otel.Tracer(tracerName),
		executionsTotal: executions,
	}
}

// Busy reports whether a trade is currently in flight.
func (e *Engine) Busy() bool {
	return e.active.Load()
}

// Execute runs one strategy to a terminal state. The returned execution
// records the outcome even when it failed; the error return is reserved
// for refusing to start, notably when another trade is in flight.
func (e *Engine) Execute(ctx context.Context, strategy arbDomain.Strategy) (*domain.Execution, error) {
	if !e.active.CompareAndSwap(false, true) {
		return nil, apperror.New(apperror.CodeExecutionInProgress,
			apperror.WithContext("strategy_id", strategy.ID))
	}
	defer e.active.Store(false)

	ctx, span := e.tracer.Start(ctx, "execution.execute",
		trace.WithAttributes(
			attribute.String("strategy_id", strategy.ID),
			attribute.String("symbol", strategy.Opportunity.Symbol),
			attribute.Bool("flash_loan", strategy.UseFlashLoan),
		))
	defer span.End()

	exec := domain.NewExecution(strategy)
	exec.Start()
	e.logger.Info(ctx, "execution started",
		"execution_id", exec.ID,
		"symbol", strategy.Opportunity.Symbol,
		"trade_size", strategy.TradeSize.StringFixed(2),
		"flash_loan", strategy.UseFlashLoan)

	if strategy.UseFlashLoan {
		e.runFlashLoan(ctx, exec)
	} else {
		e.runStandard(ctx, exec)
	}

	e.executionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(exec.Status))))
	span.SetAttributes(attribute.String("status", string(exec.Status)))

	if exec.Status == domain.StatusCompleted {
		e.logger.Info(ctx, "execution completed",
			"execution_id", exec.ID,
			"net_profit", exec.NetProfit.StringFixed(2),
			"gas_used", exec.GasUsed,
			"duration", exec.Duration().String())
	} else {
		e.logger.Error(ctx, "execution failed",
			"execution_id", exec.ID,
			"completed_steps", exec.CompletedSteps(),
			"manual_intervention", exec.ManualInterventionRequired,
			"error", exec.Error)
	}
	return exec, nil
}

// runStandard buys on the cheap network, bridges, sells on the dear
// network, and bridges the proceeds home.
func (e *Engine) runStandard(ctx context.Context, exec *domain.Execution) {
	opp := exec.Strategy.Opportunity

	refBuy, token, tokenSell, refSell, err := e.resolveAssets(opp)
	if err != nil {
		exec.FailStep(0, "", err)
		return
	}

	capital, err := asset.ParseDecimal(refBuy, exec.Strategy.TradeSize)
	if err != nil {
		exec.FailStep(0, "", err)
		return
	}

	bought, err := e.swapStep(ctx, exec, 0, opp.BuyChainID, refBuy, token, capital)
	if err != nil {
		return
	}

	bridged, err := e.bridgeStep(ctx, exec, 1, bought.AmountOut, tokenSell)
	if err != nil {
		return
	}

	sold, err := e.swapStep(ctx, exec, 2, opp.SellChainID, tokenSell, refSell, bridged.AmountOut)
	if err != nil {
		return
	}

	returned, err := e.bridgeStep(ctx, exec, 3, sold.AmountOut, refBuy)
	if err != nil {
		return
	}

	exec.Complete(returned.AmountOut.ToDecimal().Sub(exec.Strategy.TradeSize))
}

// runFlashLoan borrows the reference asset, swaps it through the token
// and back on one network, and repays from the proceeds.
func (e *Engine) runFlashLoan(ctx context.Context, exec *domain.Execution) {
	opp := exec.Strategy.Opportunity
	chainID := opp.BuyChainID
	size := exec.Strategy.TradeSize

	ref, ok := e.registry.GetBySymbolAndChain(e.cfg.ReferenceSymbol, chainID)
	if !ok {
		exec.FailStep(0, "", e.unlisted(e.cfg.ReferenceSymbol, chainID))
		return
	}
	token, ok := e.registry.GetBySymbolAndChain(opp.Symbol, chainID)
	if !ok {
		exec.FailStep(0, "", e.unlisted(opp.Symbol, chainID))
		return
	}

	exec.StartStep(0)
	stepCtx, cancel := e.stepContext(ctx)
	loan, err := e.loans.Borrow(stepCtx, chainID, ref, size)
	cancel()
	if err != nil {
		exec.FailStep(0, "", e.stepError(err))
		return
	}
	exec.CompleteStep(0, loan.ID, size, size, 0)

	principal, err := asset.ParseDecimal(ref, size)
	if err != nil {
		exec.FailStep(1, "", err)
		return
	}
	bought, err := e.swapStep(ctx, exec, 1, chainID, ref, token, principal)
	if err != nil {
		return
	}

	swapped, err := e.swapStep(ctx, exec, 2, chainID, token, ref, bought.AmountOut)
	if err != nil {
		return
	}

	exec.StartStep(3)
	proceeds := swapped.AmountOut.ToDecimal()
	stepCtx, cancel = e.stepContext(ctx)
	err = e.loans.Repay(stepCtx, loan, proceeds)
	cancel()
	if err != nil {
		exec.FailStep(3, loan.ID, e.stepError(err))
		return
	}
	profit := proceeds.Sub(loan.Owed())
	exec.CompleteStep(3, loan.ID, proceeds, profit, 0)
	exec.Complete(profit)
}

func (e *Engine) swapStep(ctx context.Context, exec *domain.Execution, idx int, chainID uint64, tokenIn, tokenOut *asset.Asset, amountIn asset.Amount) (exchangeDomain.SwapReceipt, error) {
	exec.StartStep(idx)
	stepCtx, cancel := e.stepContext(ctx)
	defer cancel()

	quote, err := e.router.Quote(stepCtx, chainID, tokenIn, tokenOut, amountIn)
	if err != nil {
		err = e.stepError(err)
		exec.FailStep(idx, "", err)
		return exchangeDomain.SwapReceipt{}, err
	}
	receipt, err := e.router.Swap(stepCtx, quote)
	if err != nil {
		err = e.stepError(err)
		exec.FailStep(idx, "", err)
		return exchangeDomain.SwapReceipt{}, err
	}

	exec.CompleteStep(idx, receipt.TxHash, amountIn.ToDecimal(), receipt.AmountOut.ToDecimal(), receipt.GasUsed)
	return receipt, nil
}

func (e *Engine) bridgeStep(ctx context.Context, exec *domain.Execution, idx int, amountIn asset.Amount, dest *asset.Asset) (bridgeDomain.Transfer, error) {
	exec.StartStep(idx)
	stepCtx, cancel := e.stepContext(ctx)
	defer cancel()

	transfer, err := e.bridge.Transfer(stepCtx, amountIn, dest, e.recipient.Address())
	if err != nil {
		err = e.stepError(err)
		txRef := inFlightRef(err)
		exec.FailStep(idx, txRef, err)
		if txRef != "" {
			// The transfer was initiated but never confirmed: funds are
			// parked somewhere on the route and need a human.
			exec.ManualInterventionRequired = true
		}
		return bridgeDomain.Transfer{}, err
	}

	exec.CompleteStep(idx, transfer.TxRef, amountIn.ToDecimal(), transfer.AmountOut.ToDecimal(), 0)
	return transfer, nil
}

func (e *Engine) resolveAssets(opp arbDomain.Opportunity) (refBuy, token, tokenSell, refSell *asset.Asset, err error) {
	var ok bool
	if refBuy, ok = e.registry.GetBySymbolAndChain(e.cfg.ReferenceSymbol, opp.BuyChainID); !ok {
		return nil, nil, nil, nil, e.unlisted(e.cfg.ReferenceSymbol, opp.BuyChainID)
	}
	if token, ok = e.registry.GetBySymbolAndChain(opp.Symbol, opp.BuyChainID); !ok {
		return nil, nil, nil, nil, e.unlisted(opp.Symbol, opp.BuyChainID)
	}
	if tokenSell, ok = e.registry.GetBySymbolAndChain(opp.Symbol, opp.SellChainID); !ok {
		return nil, nil, nil, nil, e.unlisted(opp.Symbol, opp.SellChainID)
	}
	if refSell, ok = e.registry.GetBySymbolAndChain(e.cfg.ReferenceSymbol, opp.SellChainID); !ok {
		return nil, nil, nil, nil, e.unlisted(e.cfg.ReferenceSymbol, opp.SellChainID)
	}
	return refBuy, token, tokenSell, refSell, nil
}

func (e *Engine) unlisted(symbol string, chainID uint64) error {
	return apperror.New(apperror.CodeTokenNotListed,
		apperror.WithMessagef("%s is not listed on chain %d", symbol, chainID))
}

func (e *Engine) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.StepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.StepTimeout)
}

// stepError normalizes a step failure: bare deadline hits become
// timeouts, errors that already carry a code pass through untouched so
// their context (bridge transfer references in particular) survives.
func (e *Engine) stepError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.CodeTimeout)
	}
	return err
}

// inFlightRef extracts the transfer reference a bridge error carries,
// if any. A non-empty reference means money left the source chain.
func inFlightRef(err error) string {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return ""
	}
	if ref, ok := appErr.Context["tx_ref"].(string); ok {
		return ref
	}
	return ""
}
