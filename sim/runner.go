package sim

import (
	"context"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/rw1nkler/xls/ir"
)

// Runner drives one backend across a segmented tick schedule.  The
// simulation is logically single-threaded and tick-synchronous: every proc
// steps exactly once per tick (or is left stalled and retried within the
// tick) before any proc sees the next tick.
type Runner struct {
	pkg     *ir.Package
	backend Backend
	queues  *Queues
	tracer  Tracer

	states []*ProcState
	tick   int
}

// NewRunner returns a runner over pkg with all proc state at its segment
// boundary values.  tracer may be nil.
func NewRunner(pkg *ir.Package, backend Backend, qs *Queues, tracer Tracer) *Runner {
	if tracer == nil {
		tracer = NopTracer{}
	}
	states := make([]*ProcState, len(pkg.Procs))
	for i, pr := range pkg.Procs {
		states[i] = NewProcState(pr)
	}
	return &Runner{pkg: pkg, backend: backend, queues: qs, tracer: tracer, states: states}
}

// States returns the per-proc states in package declaration order.
func (r *Runner) States() []*ProcState { return r.states }

// Run executes the whole schedule.  At each segment boundary every proc's
// state resets to its initializer; queues carry over untouched.
func (r *Runner) Run(ctx context.Context, sched Schedule) error {
	for segIdx, segLen := range sched {
		for i, pr := range r.pkg.Procs {
			r.states[i].Reset(pr)
		}
		logctx.Debug(ctx, "segment start",
			zap.Int("segment", segIdx), zap.Int("ticks", segLen))
		for i := 0; i < segLen; i++ {
			if err := r.runTick(ctx); err != nil {
				return err
			}
			r.tick++
		}
	}
	return nil
}

// runTick advances every proc by one tick.  Stalled procs are retried on
// later passes within the tick, so an upstream send landing mid-tick
// unblocks a downstream receive in the same cycle.  A pass that completes
// no proc while stalled procs remain means the blocking receives can never
// be satisfied.
func (r *Runner) runTick(ctx context.Context) error {
	r.tracer.OnTick(ctx, r.tick)
	pending := make([]int, 0, len(r.pkg.Procs))
	for i := range r.pkg.Procs {
		pending = append(pending, i)
	}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return &ScheduleExceededError{Tick: r.tick, Cause: err}
		}
		var (
			next    []int
			stalls  []Stall
			stepped bool
		)
		for _, i := range pending {
			pr := r.pkg.Procs[i]
			res, err := r.backend.Step(ctx, pr, r.states[i], r.queues)
			if err != nil {
				return &BackendError{Backend: r.backend.Name(), Proc: pr.Name, Err: err}
			}
			switch res.Status {
			case Completed:
				r.queues.Commit()
				r.states[i].State = res.State
				r.states[i].Token = res.Token
				stepped = true
				for _, e := range res.Effects {
					r.tracer.OnEffect(ctx, r.tick, pr.Name, e)
					logctx.Debug(ctx, "effect",
						zap.Int("tick", r.tick),
						zap.String("proc", pr.Name),
						zap.Stringer("kind", e.Kind),
						zap.String("channel", e.Chan.Name),
						zap.String("value", ir.FormatValue(e.Value)))
				}
			case Stalled:
				r.queues.Rollback()
				next = append(next, i)
				stalls = append(stalls, Stall{
					Proc:    pr.Name,
					Node:    res.StallNode.String(),
					Channel: res.StallChan.Name,
				})
			}
		}
		if !stepped {
			return &DeadlockError{Tick: r.tick, Stalls: stalls}
		}
		pending = next
	}
	return nil
}
