// Package harness drives a backend across a segmented tick schedule,
// feeding channel inputs and comparing observed channel outputs against
// expectations.  Structural problems fail fast; value mismatches are
// collected so one run reports every divergence.
package harness

import (
	"context"
	"fmt"
	"slices"

	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// Config describes one run.
type Config struct {
	Schedule sim.Schedule
	// Inputs seeds each named channel's queue before the first tick.
	Inputs map[string][]ir.Value
	// Expected holds the output stream each named channel must produce.
	// Channels absent from the map are observed but not checked.
	Expected map[string][]ir.Value
	// Tracer observes the run; nil means no tracing.
	Tracer sim.Tracer
}

// Mismatch is one divergence between an expected and an observed output.
// Expected or Observed is nil past the end of the shorter stream.
type Mismatch struct {
	Channel  string
	Index    int
	Expected ir.Value
	Observed ir.Value
}

func (m Mismatch) String() string {
	return fmt.Sprintf("channel %s[%d]: expected %s, observed %s",
		m.Channel, m.Index, formatOpt(m.Expected), formatOpt(m.Observed))
}

func formatOpt(v ir.Value) string {
	if v == nil {
		return "(nothing)"
	}
	return ir.FormatValue(v)
}

// Result is the outcome of a completed run.
type Result struct {
	Passed     bool
	Observed   map[string][]ir.Value
	Mismatches []Mismatch
}

// Run executes pkg on backend across cfg.Schedule.  It returns an error for
// structural failures (malformed IR, unknown channels, deadlock, backend
// failure); output mismatches land in the Result instead.
func Run(ctx context.Context, pkg *ir.Package, backend sim.Backend, cfg Config) (*Result, error) {
	if err := ir.VerifyPackage(pkg); err != nil {
		return nil, err
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = sim.NopTracer{}
	}
	qs := sim.NewQueues(pkg)
	if err := seedInputs(pkg, qs, cfg.Inputs); err != nil {
		return nil, err
	}
	for name := range cfg.Expected {
		c := pkg.Chan(name)
		if c == nil {
			return nil, &ChannelMismatchError{Channel: name, Msg: "no such channel in package"}
		}
		if !c.CanSend() {
			return nil, &ChannelMismatchError{Channel: name, Msg: "expected outputs on a receive-only channel"}
		}
	}

	tracer.OnRunStart(ctx, pkg, backend.Name(), cfg.Schedule)
	runner := sim.NewRunner(pkg, backend, qs, tracer)
	if err := runner.Run(ctx, cfg.Schedule); err != nil {
		tracer.OnRunEnd(ctx, false)
		return nil, err
	}

	res := &Result{Observed: make(map[string][]ir.Value)}
	for _, c := range pkg.Chans {
		if !c.CanSend() {
			continue
		}
		q, err := qs.Get(c.ID)
		if err != nil {
			return nil, err
		}
		res.Observed[c.Name] = q.Drain()
	}
	res.Mismatches = compare(cfg.Expected, res.Observed)
	res.Passed = len(res.Mismatches) == 0
	tracer.OnRunEnd(ctx, res.Passed)
	logctx.Info(ctx, "run finished",
		zap.String("package", pkg.Name),
		zap.String("backend", backend.Name()),
		zap.Stringer("schedule", cfg.Schedule),
		zap.Bool("passed", res.Passed),
		zap.Int("mismatches", len(res.Mismatches)))
	return res, nil
}

func seedInputs(pkg *ir.Package, qs *sim.Queues, inputs map[string][]ir.Value) error {
	names := maps.Keys(inputs)
	slices.Sort(names)
	for _, name := range names {
		c := pkg.Chan(name)
		if c == nil {
			return &ChannelMismatchError{Channel: name, Msg: "no such channel in package"}
		}
		if !c.CanReceive() {
			return &ChannelMismatchError{Channel: name, Msg: "inputs for a send-only channel"}
		}
		q := qs.ByName(name)
		for i, v := range inputs[name] {
			if !ir.TypeEq(v.Type(), c.Elem) {
				return &ChannelMismatchError{
					Channel: name,
					Msg: fmt.Sprintf("input %d has type %s, channel carries %s",
						i, v.Type(), c.Elem),
				}
			}
			q.Push(v)
		}
	}
	return nil
}

// compare collects every divergence; it never short-circuits, so a failing
// run reports all of them.
func compare(expected, observed map[string][]ir.Value) (out []Mismatch) {
	names := maps.Keys(expected)
	slices.Sort(names)
	for _, name := range names {
		want, got := expected[name], observed[name]
		n := len(want)
		if len(got) > n {
			n = len(got)
		}
		for i := 0; i < n; i++ {
			var w, g ir.Value
			if i < len(want) {
				w = want[i]
			}
			if i < len(got) {
				g = got[i]
			}
			if w == nil || g == nil || !ir.ValueEq(w, g) {
				out = append(out, Mismatch{Channel: name, Index: i, Expected: w, Observed: g})
			}
		}
	}
	return out
}
