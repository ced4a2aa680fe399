// Package jit is the compiled execution backend.  Proc graphs translate
// ahead of time into linear instruction programs run on a frame machine;
// compiled artifacts are cached by content fingerprint and reused across
// ticks and segments.
package jit

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rw1nkler/xls"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// Engine implements sim.Backend over compiled programs.
type Engine struct {
	mu    sync.Mutex
	cache *simplelru.LRU[xls.Fingerprint, *Prog]
}

var _ sim.Backend = (*Engine)(nil)

// New returns an engine with an empty artifact cache.
func New() *Engine {
	cache, err := simplelru.NewLRU[xls.Fingerprint, *Prog](128, nil)
	if err != nil {
		panic(err)
	}
	return &Engine{cache: cache}
}

// Name implements sim.Backend.
func (e *Engine) Name() string { return "compiled" }

// Step runs pr's compiled program for one tick.
func (e *Engine) Step(ctx context.Context, pr *ir.Proc, st *sim.ProcState, qs *sim.Queues) (sim.StepResult, error) {
	prog, err := e.prog(ctx, qs.Package(), pr)
	if err != nil {
		return sim.StepResult{}, err
	}
	m := &machine{frame: make([]ir.Value, prog.slots)}
	return m.run(prog, st, qs)
}

// Precompile translates every proc in pkg, populating the cache so that no
// compilation happens mid-run.  Procs compile concurrently; the barrier at
// return keeps compilation invisible to tick ordering.
func (e *Engine) Precompile(ctx context.Context, pkg *ir.Package) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, pr := range pkg.Procs {
		pr := pr
		eg.Go(func() error {
			_, err := e.prog(ctx, pkg, pr)
			return err
		})
	}
	return eg.Wait()
}

func (e *Engine) prog(ctx context.Context, pkg *ir.Package, pr *ir.Proc) (*Prog, error) {
	fp := fingerprint(pkg, pr)
	e.mu.Lock()
	defer e.mu.Unlock()
	if prog, exists := e.cache.Get(fp); exists {
		return prog, nil
	}
	prog, err := Compile(pkg, pr)
	if err != nil {
		return nil, err
	}
	logctx.Debug(ctx, "compiled proc",
		zap.String("proc", pr.Name),
		zap.Stringer("fingerprint", fp),
		zap.Int("instrs", len(prog.instrs)),
		zap.Int("slots", prog.slots))
	e.cache.Add(fp, prog)
	return prog, nil
}

// fingerprint identifies a compiled artifact.  The declarations of the
// channels the proc touches are part of the identity: flow control and
// element types compile into the receive instructions, so identical proc
// text over different channels must not share an artifact.
func fingerprint(pkg *ir.Package, pr *ir.Proc) xls.Fingerprint {
	seen := make(map[int64]bool)
	var ids []int64
	for _, n := range pr.Body {
		if n.Op.SideEffecting() && !seen[n.ChannelID] {
			seen[n.ChannelID] = true
			ids = append(ids, n.ChannelID)
		}
	}
	slices.Sort(ids)
	sb := &strings.Builder{}
	for _, id := range ids {
		if c := pkg.ChanByID(id); c != nil {
			sb.WriteString(ir.FormatChan(c))
		}
	}
	sb.WriteString(ir.FormatProc(pr))
	return xls.Hash(nil, []byte(sb.String()))
}
