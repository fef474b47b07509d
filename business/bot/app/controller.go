// Package app contains the bot controller, the orchestration layer the
// scan loop and the dashboard both drive.
package app

import (
	"context"
	"sync"
	"time"

	arbApp "github.com/ivoros/chainarb/business/arbitrage/app"
	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
	execApp "github.com/ivoros/chainarb/business/execution/app"
	execDomain "github.com/ivoros/chainarb/business/execution/domain"
	ledgerApp "github.com/ivoros/chainarb/business/ledger/app"
	ledgerDomain "github.com/ivoros/chainarb/business/ledger/domain"
	"github.com/ivoros/chainarb/internal/logger"
)

// Status is a point-in-time snapshot of the bot.
type Status struct {
	Busy          bool
	AutoExecute   bool
	LastScanAt    time.Time
	Opportunities int
	Summary       ledgerDomain.Summary
}

// Controller wires scanning, planning, execution and bookkeeping into
// the operations an operator (or the scan loop) invokes.
type Controller struct {
	finder     *arbApp.Finder
	strategist *arbApp.Strategist
	engine     *execApp.Engine
	ledger     *ledgerApp.Service
	logger     logger.LoggerInterface

	mu          sync.RWMutex
	lastScan    []arbDomain.Opportunity
	lastScanAt  time.Time
	autoExecute bool
}

// NewController creates a Controller.
func NewController(finder *arbApp.Finder, strategist *arbApp.Strategist, engine *execApp.Engine, ledger *ledgerApp.Service, autoExecute bool, log logger.LoggerInterface) *Controller {
	return &Controller{
		finder:      finder,
		strategist:  strategist,
		engine:      engine,
		ledger:      ledger,
		autoExecute: autoExecute,
		logger:      log,
	}
}

// Scan runs one opportunity scan and returns the results best first.
func (c *Controller) Scan(ctx context.Context) []arbDomain.Opportunity {
	ranked := arbApp.RankByProfit(c.finder.FindOpportunities(ctx))

	c.mu.Lock()
	c.lastScan = ranked
	c.lastScanAt = time.Now()
	c.mu.Unlock()

	return ranked
}

// Opportunities returns the results of the most recent scan.
func (c *Controller) Opportunities() []arbDomain.Opportunity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]arbDomain.Opportunity, len(c.lastScan))
	copy(out, c.lastScan)
	return out
}

// Execute plans and runs one opportunity, then records the outcome.
// The trade lands in the ledger whatever happened to it.
func (c *Controller) Execute(ctx context.Context, opp arbDomain.Opportunity) (*execDomain.Execution, error) {
	strategy, err := c.strategist.BuildStrategy(ctx, opp)
	if err != nil {
		return nil, err
	}

	exec, err := c.engine.Execute(ctx, strategy)
	if err != nil {
		return nil, err
	}

	if _, err := c.ledger.RecordTrade(ctx, exec); err != nil {
		c.logger.Error(ctx, "trade finished but could not be recorded",
			"execution_id", exec.ID,
			"error", err)
	}
	return exec, nil
}

// Status reports the current state of the bot.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{
		Busy:          c.engine.Busy(),
		AutoExecute:   c.autoExecute,
		LastScanAt:    c.lastScanAt,
		Opportunities: len(c.lastScan),
		Summary:       c.ledger.Summary(),
	}
}

// SetAutoExecute toggles autonomous trading and reports the new state.
func (c *Controller) SetAutoExecute(on bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoExecute = on
	return c.autoExecute
}

// ToggleAutoExecute flips autonomous trading and reports the new state.
func (c *Controller) ToggleAutoExecute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoExecute = !c.autoExecute
	return c.autoExecute
}

// WouldBorrow reports whether executing the opportunity would take a
// flash loan instead of capping the size at max exposure.
func (c *Controller) WouldBorrow(opp arbDomain.Opportunity) bool {
	return c.strategist.WouldUseFlashLoan(opp.Analysis.RecommendedSize)
}

// History returns recorded trades, newest first.
func (c *Controller) History(limit, offset int) []ledgerDomain.TradeRecord {
	return c.ledger.History(limit, offset)
}

// PnLSeries returns the balance curve.
func (c *Controller) PnLSeries() []ledgerDomain.PnLPoint {
	return c.ledger.PnLSeries()
}

// ResetLedger wipes the trade history.
func (c *Controller) ResetLedger(ctx context.Context) error {
	return c.ledger.Reset(ctx)
}

// Run scans on the given interval until ctx is cancelled. With
// auto-execute on, each scan that finds opportunities trades the best
// one, unless a trade is already in flight, in which case the cycle
// only scans.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info(ctx, "bot loop started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			c.logger.Info(ctx, "bot loop stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

func (c *Controller) tick(ctx context.Context) {
	opportunities := c.Scan(ctx)
	if len(opportunities) == 0 {
		return
	}

	c.mu.RLock()
	auto := c.autoExecute
	c.mu.RUnlock()
	if !auto {
		return
	}
	if c.engine.Busy() {
		c.logger.Debug(ctx, "trade in flight, skipping auto-execution")
		return
	}

	best := opportunities[0]
	if _, err := c.Execute(ctx, best); err != nil {
		c.logger.Warn(ctx, "auto-execution refused",
			"opportunity_id", best.ID,
			"error", err)
	}
}
