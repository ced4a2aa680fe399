package tracedb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/harness"
	"github.com/rw1nkler/xls/internal/testutil"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
	"github.com/rw1nkler/xls/simtests"
	"github.com/rw1nkler/xls/tracedb"
)

func TestRecordRun(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	db := testutil.NewDB(t)
	rec := tracedb.NewRecorder(db)

	pkg, err := ir.LoadPackage(simtests.AccumIR)
	require.NoError(t, err)
	backend, err := harness.NewBackend(harness.BackendInterpreter)
	require.NoError(t, err)
	res, err := harness.Run(ctx, pkg, backend, harness.Config{
		Schedule: sim.Schedule{2},
		Inputs: map[string][]ir.Value{
			"in_ch":   simtests.B(64, 42, 101),
			"in_ch_2": simtests.B(64, 10, 6),
		},
		Expected: map[string][]ir.Value{
			"out_ch": simtests.B(64, 62, 127),
		},
		Tracer: rec,
	})
	require.NoError(t, err)
	require.True(t, res.Passed)

	runs, err := tracedb.ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, rec.RunID(), runs[0].ID)
	require.Equal(t, "accum", runs[0].Package)
	require.Equal(t, "interpreter", runs[0].Backend)
	require.Equal(t, "2", runs[0].Schedule)
	require.NotNil(t, runs[0].Passed)
	require.True(t, *runs[0].Passed)

	events, err := tracedb.Events(ctx, db, rec.RunID())
	require.NoError(t, err)
	// Per tick: two receives and two sends.
	require.Len(t, events, 8)
	require.Equal(t, "recv", events[0].Kind)
	require.Equal(t, "in_ch", events[0].Channel)
	require.Equal(t, "bits[64]:42", events[0].Value)
	require.Equal(t, "send", events[2].Kind)
	require.Equal(t, "out_ch", events[2].Channel)
	require.Equal(t, "bits[64]:62", events[2].Value)
	// Events replay in execution order.
	for i, e := range events {
		require.Equal(t, int64(i), e.Seq)
		require.Equal(t, i/4, e.Tick)
		require.Equal(t, "test_proc", e.Proc)
	}
}

func TestRecorderSeparatesRuns(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	db := testutil.NewDB(t)
	rec := tracedb.NewRecorder(db)

	pkg, err := ir.LoadPackage(simtests.TokenOrderIR)
	require.NoError(t, err)
	backend, err := harness.NewBackend(harness.BackendCompiled)
	require.NoError(t, err)
	cfg := harness.Config{Schedule: sim.Schedule{1}, Tracer: rec}

	_, err = harness.Run(ctx, pkg, backend, cfg)
	require.NoError(t, err)
	first := rec.RunID()
	_, err = harness.Run(ctx, pkg, backend, cfg)
	require.NoError(t, err)
	second := rec.RunID()
	require.NotEqual(t, first, second)

	runs, err := tracedb.ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ev1, err := tracedb.Events(ctx, db, first)
	require.NoError(t, err)
	ev2, err := tracedb.Events(ctx, db, second)
	require.NoError(t, err)
	require.Len(t, ev1, 2)
	require.Len(t, ev2, 2)
}
