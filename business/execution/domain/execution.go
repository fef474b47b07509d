// Package domain contains the core domain types for the execution context.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	arbDomain "github.com/ivoros/chainarb/business/arbitrage/domain"
)

// Status is the lifecycle state of an execution.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StepStatus is the lifecycle state of a single step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Step is one executed (or attempted) action of a strategy plan.
type Step struct {
	Index       int
	Action      arbDomain.StepAction
	ChainID     uint64
	Status      StepStatus
	TxRef       string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	GasUsed     uint64
	StartedAt   time.Time
	CompletedAt time.Time
	Error       string
}

// Execution is the record of carrying out one strategy. Steps run
// strictly in plan order; the first failure stops the run, nothing is
// unwound.
type Execution struct {
	ID          string
	Strategy    arbDomain.Strategy
	Steps       []Step
	Status      Status
	StartedAt   time.Time
	CompletedAt time.Time
	GasUsed     uint64
	NetProfit   decimal.Decimal
	Error       string
	// ManualInterventionRequired flags runs whose funds are parked
	// mid-route, typically after a bridge failed with money in flight.
	ManualInterventionRequired bool
}

// NewExecution creates a pending execution whose steps mirror the plan.
func NewExecution(strategy arbDomain.Strategy) *Execution {
	steps := make([]Step, len(strategy.Plan))
	for i, planned := range strategy.Plan {
		steps[i] = Step{
			Index:   planned.Index,
			Action:  planned.Action,
			ChainID: planned.ChainID,
			Status:  StepPending,
		}
	}
	return &Execution{
		ID:       uuid.NewString(),
		Strategy: strategy,
		Steps:    steps,
		Status:   StatusPending,
	}
}

// Start marks the execution running.
func (e *Execution) Start() {
	e.Status = StatusRunning
	e.StartedAt = time.Now()
}

// StartStep marks step i running.
func (e *Execution) StartStep(i int) {
	e.Steps[i].Status = StepRunning
	e.Steps[i].StartedAt = time.Now()
}

// CompleteStep records the outcome of step i.
func (e *Execution) CompleteStep(i int, txRef string, amountIn, amountOut decimal.Decimal, gasUsed uint64) {
	step := &e.Steps[i]
	step.Status = StepCompleted
	step.TxRef = txRef
	step.AmountIn = amountIn
	step.AmountOut = amountOut
	step.GasUsed = gasUsed
	step.CompletedAt = time.Now()
	e.GasUsed += gasUsed
}

// FailStep records the failure of step i and terminates the execution.
// txRef may carry the reference of an in-flight transfer the step could
// not confirm.
func (e *Execution) FailStep(i int, txRef string, err error) {
	step := &e.Steps[i]
	step.Status = StepFailed
	step.TxRef = txRef
	step.Error = err.Error()
	step.CompletedAt = time.Now()

	e.Status = StatusFailed
	e.Error = err.Error()
	e.CompletedAt = time.Now()
}

// Complete marks the execution successful with its realized profit.
func (e *Execution) Complete(netProfit decimal.Decimal) {
	e.Status = StatusCompleted
	e.NetProfit = netProfit
	e.CompletedAt = time.Now()
}

// Duration is the wall time the execution took so far, or in total
// once it is terminal.
func (e *Execution) Duration() time.Duration {
	if e.CompletedAt.IsZero() {
		return time.Since(e.StartedAt)
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// CompletedSteps counts the steps that finished successfully.
func (e *Execution) CompletedSteps() int {
	n := 0
	for _, s := range e.Steps {
		if s.Status == StepCompleted {
			n++
		}
	}
	return n
}

// IsTerminal reports whether the execution has finished.
func (e *Execution) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}
