package jit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/internal/testutil"
	"github.com/rw1nkler/xls/interp"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
	"github.com/rw1nkler/xls/simtests"
)

func runVec(t *testing.T, backend sim.Backend, vec simtests.ProcVec) (map[string][]ir.Value, []*sim.ProcState) {
	t.Helper()
	ctx := testutil.Context(t)
	pkg, err := ir.LoadPackage(vec.IR)
	require.NoError(t, err)
	require.NoError(t, ir.VerifyPackage(pkg))
	sched, err := sim.ParseSchedule(vec.Schedule)
	require.NoError(t, err)

	qs := sim.NewQueues(pkg)
	for name, vals := range vec.Inputs {
		q := qs.ByName(name)
		require.NotNil(t, q, "channel %s", name)
		for _, v := range vals {
			q.Push(v)
		}
	}
	r := sim.NewRunner(pkg, backend, qs, nil)
	require.NoError(t, r.Run(ctx, sched))

	observed := make(map[string][]ir.Value)
	for _, c := range pkg.Chans {
		if c.CanSend() {
			q, err := qs.Get(c.ID)
			require.NoError(t, err)
			observed[c.Name] = q.Drain()
		}
	}
	return observed, r.States()
}

func TestEngineVecs(t *testing.T) {
	t.Parallel()
	for _, vec := range simtests.ProcVecs() {
		vec := vec
		t.Run(vec.Name, func(t *testing.T) {
			t.Parallel()
			observed, _ := runVec(t, New(), vec)
			for name, want := range vec.Want {
				got := observed[name]
				require.Len(t, got, len(want), "channel %s", name)
				for i := range want {
					require.True(t, ir.ValueEq(want[i], got[i]),
						"channel %s[%d]: want %s, got %s",
						name, i, ir.FormatValue(want[i]), ir.FormatValue(got[i]))
				}
			}
		})
	}
}

// Both backends must agree on output streams and final state, vector by
// vector.
func TestBackendEquivalence(t *testing.T) {
	t.Parallel()
	for _, vec := range simtests.ProcVecs() {
		vec := vec
		t.Run(vec.Name, func(t *testing.T) {
			t.Parallel()
			gotJit, statesJit := runVec(t, New(), vec)
			gotInterp, statesInterp := runVec(t, interp.New(), vec)

			require.Equal(t, len(gotInterp), len(gotJit))
			for name, want := range gotInterp {
				got := gotJit[name]
				require.Len(t, got, len(want), "channel %s", name)
				for i := range want {
					require.True(t, ir.ValueEq(want[i], got[i]), "channel %s[%d]", name, i)
				}
			}
			require.Equal(t, len(statesInterp), len(statesJit))
			for i := range statesInterp {
				require.True(t, ir.ValueEq(statesInterp[i].State, statesJit[i].State), "proc %d state", i)
				require.True(t, ir.ValueEq(statesInterp[i].Token, statesJit[i].Token), "proc %d token", i)
			}
		})
	}
}

func TestCompileFoldsConstants(t *testing.T) {
	t.Parallel()
	pkg, err := ir.LoadPackage(simtests.TokenOrderIR)
	require.NoError(t, err)
	prog, err := Compile(pkg, pkg.Procs[0])
	require.NoError(t, err)

	// Both send payloads are literals: the program is two sends plus the
	// constants they and next touch, with no arithmetic left.
	var sends, consts int
	for _, ix := range prog.instrs {
		switch ix.(type) {
		case sendI:
			sends++
		case constI:
			consts++
		case stateI:
		default:
			t.Fatalf("unexpected instruction %T", ix)
		}
	}
	require.Equal(t, 2, sends)
	require.Equal(t, 3, consts)
}

const deadCodeIR = `package dead

chan out(bits[8], id=1, kind=streaming, ops=send_only, flow_control=ready_valid, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(3)) {
  literal.1: bits[8] = literal(value=7, id=1)
  tuple_index.2: bits[8] = tuple_index(st, index=0, id=2)
  add.3: bits[8] = add(tuple_index.2, literal.1, id=3)
  neg.4: bits[8] = neg(add.3, id=4)
  send.5: token = send(tkn, literal.1, channel_id=1, id=5)
  next(send.5, st)
}
`

func TestCompileDropsDeadNodes(t *testing.T) {
	t.Parallel()
	pkg, err := ir.LoadPackage(deadCodeIR)
	require.NoError(t, err)
	prog, err := Compile(pkg, pkg.Procs[0])
	require.NoError(t, err)
	// add.3 and neg.4 reach neither an effect nor next; they must not
	// compile to instructions.
	for _, ix := range prog.instrs {
		switch ix.(type) {
		case binI, unI:
			t.Fatalf("dead node compiled to %T", ix)
		}
	}
}

const flowChanIR = `package fc

chan in(bits[8], id=1, kind=streaming, ops=receive_only, flow_control=%s, metadata="""""")

proc p(tkn: token, st: (bits[8]), init=(0)) {
  literal.1: bits[1] = literal(value=0, id=1)
  receive.2: (token, bits[8]) = receive(tkn, predicate=literal.1, channel_id=1, id=2)
  tuple_index.3: token = tuple_index(receive.2, index=0, id=3)
  next(tuple_index.3, st)
}
`

// Identical proc text over channels with different flow control must not
// share a compiled artifact: the false-predicate receive completes on a
// flow none channel but stalls on ready_valid.
func TestEngineDistinguishesChannelFlow(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	none, err := ir.LoadPackage(fmt.Sprintf(flowChanIR, "none"))
	require.NoError(t, err)
	rv, err := ir.LoadPackage(fmt.Sprintf(flowChanIR, "ready_valid"))
	require.NoError(t, err)
	require.NotEqual(t,
		fingerprint(none, none.Procs[0]),
		fingerprint(rv, rv.Procs[0]))

	e := New()
	res, err := e.Step(ctx, none.Procs[0], sim.NewProcState(none.Procs[0]), sim.NewQueues(none))
	require.NoError(t, err)
	require.Equal(t, sim.Completed, res.Status)

	res, err = e.Step(ctx, rv.Procs[0], sim.NewProcState(rv.Procs[0]), sim.NewQueues(rv))
	require.NoError(t, err)
	require.Equal(t, sim.Stalled, res.Status)
	require.Equal(t, "in", res.StallChan.Name)
}

func TestEngineCachesByFingerprint(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	e := New()
	pkg, err := ir.LoadPackage(simtests.PipelineIR)
	require.NoError(t, err)
	require.NoError(t, e.Precompile(ctx, pkg))
	require.Equal(t, 2, e.cache.Len())

	// Reloading the same text yields the same fingerprints: nothing new
	// compiles.
	pkg2, err := ir.LoadPackage(simtests.PipelineIR)
	require.NoError(t, err)
	require.NoError(t, e.Precompile(ctx, pkg2))
	require.Equal(t, 2, e.cache.Len())
}
