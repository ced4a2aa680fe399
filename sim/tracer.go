package sim

import (
	"context"

	"github.com/rw1nkler/xls/ir"
)

// Tracer observes a run.  Implementations must not mutate what they are
// handed; tracing never alters simulation results.
type Tracer interface {
	OnRunStart(ctx context.Context, pkg *ir.Package, backend string, sched Schedule)
	OnTick(ctx context.Context, tick int)
	OnEffect(ctx context.Context, tick int, proc string, e Effect)
	OnRunEnd(ctx context.Context, passed bool)
}

// NopTracer discards all events.
type NopTracer struct{}

func (NopTracer) OnRunStart(context.Context, *ir.Package, string, Schedule) {}
func (NopTracer) OnTick(context.Context, int)                               {}
func (NopTracer) OnEffect(context.Context, int, string, Effect)             {}
func (NopTracer) OnRunEnd(context.Context, bool)                            {}
