package sim

import (
	"context"

	"github.com/rw1nkler/xls/ir"
)

// ProcState is the persistent state a proc carries between ticks: the state
// value declared in its signature and the head of its token chain.
type ProcState struct {
	State ir.Value
	Token ir.Value
}

// NewProcState returns pr's state as of a segment boundary.
func NewProcState(pr *ir.Proc) *ProcState {
	ps := &ProcState{}
	ps.Reset(pr)
	return ps
}

// Reset reapplies the declared initializer and restarts the token chain.
// The scheduler performs this transition at the start of every segment.
func (ps *ProcState) Reset(pr *ir.Proc) {
	ps.State = pr.Init
	ps.Token = ir.Token{}
}

// Status is the outcome of one step attempt.
type Status uint8

const (
	// Completed: every node produced a value and the next state is valid.
	Completed Status = iota
	// Stalled: a receive found its channel not ready; the attempt was
	// discarded and must be retried within the same tick.
	Stalled
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case Stalled:
		return "stalled"
	default:
		return "invalid"
	}
}

// EffectKind distinguishes the two channel operations.
type EffectKind uint8

const (
	EffectSend EffectKind = iota
	EffectRecv
)

func (k EffectKind) String() string {
	if k == EffectSend {
		return "send"
	}
	return "recv"
}

// Effect records one channel operation performed during a completed step,
// in token-chain order.
type Effect struct {
	Node  *ir.Node
	Chan  *ir.Chan
	Kind  EffectKind
	Value ir.Value
}

// StepResult is the outcome of evaluating one proc for one tick.
type StepResult struct {
	Status  Status
	State   ir.Value
	Token   ir.Value
	Effects []Effect

	// StallNode and StallChan identify the receive that could not complete
	// when Status is Stalled.
	StallNode *ir.Node
	StallChan *ir.Chan
}

// Backend evaluates procs.  Both backends implement this one contract and
// must produce identical results for identical inputs; the scheduler
// commits or rolls back the queues based on the returned status.
//
// A Step must not commit queue effects itself, and a non-nil error is a
// backend failure, never a recoverable condition.
type Backend interface {
	// Name identifies the backend in diagnostics and traces.
	Name() string

	Step(ctx context.Context, pr *ir.Proc, st *ProcState, qs *Queues) (StepResult, error)
}
