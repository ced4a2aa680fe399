package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/dslx"
	"github.com/rw1nkler/xls/harness"
	"github.com/rw1nkler/xls/internal/testutil"
	"github.com/rw1nkler/xls/interp"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/jit"
	"github.com/rw1nkler/xls/sim"
	"github.com/rw1nkler/xls/simtests"
)

func writeFile(dir, name, contents string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)
}

func TestEvalProc(t *testing.T) {
	t.Parallel()
	type testCase struct {
		name     string
		backend  string
		schedule string
		want     map[string][]ir.Value
	}
	tcs := []testCase{
		{
			name:     "interp one segment",
			backend:  harness.BackendInterpreter,
			schedule: "2",
			want: map[string][]ir.Value{
				"out_ch":   simtests.B(64, 62, 127),
				"out_ch_2": simtests.B(64, 55, 55),
			},
		},
		{
			name:     "interp two segments",
			backend:  harness.BackendInterpreter,
			schedule: "1,1",
			want: map[string][]ir.Value{
				"out_ch":   simtests.B(64, 62, 117),
				"out_ch_2": simtests.B(64, 55, 55),
			},
		},
		{
			name:     "compiled one segment",
			backend:  harness.BackendCompiled,
			schedule: "2",
			want: map[string][]ir.Value{
				"out_ch":   simtests.B(64, 62, 127),
				"out_ch_2": simtests.B(64, 55, 55),
			},
		},
		{
			name:     "compiled two segments",
			backend:  harness.BackendCompiled,
			schedule: "1,1",
			want: map[string][]ir.Value{
				"out_ch":   simtests.B(64, 62, 117),
				"out_ch_2": simtests.B(64, 55, 55),
			},
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := testutil.Context(t)
			pkg, err := ir.LoadPackage(simtests.AccumIR)
			require.NoError(t, err)
			backend, err := harness.NewBackend(tc.backend)
			require.NoError(t, err)
			sched, err := sim.ParseSchedule(tc.schedule)
			require.NoError(t, err)
			res, err := harness.Run(ctx, pkg, backend, harness.Config{
				Schedule: sched,
				Inputs: map[string][]ir.Value{
					"in_ch":   simtests.B(64, 42, 101),
					"in_ch_2": simtests.B(64, 10, 6),
				},
				Expected: tc.want,
			})
			require.NoError(t, err)
			require.True(t, res.Passed, "mismatches: %v", res.Mismatches)
		})
	}
}

func TestBackendEquivalence(t *testing.T) {
	t.Parallel()
	for _, vec := range simtests.ProcVecs() {
		vec := vec
		t.Run(vec.Name, func(t *testing.T) {
			t.Parallel()
			ctx := testutil.Context(t)
			sched, err := sim.ParseSchedule(vec.Schedule)
			require.NoError(t, err)
			run := func(backend sim.Backend) map[string][]ir.Value {
				pkg, err := ir.LoadPackage(vec.IR)
				require.NoError(t, err)
				res, err := harness.Run(ctx, pkg, backend, harness.Config{
					Schedule: sched,
					Inputs:   vec.Inputs,
				})
				require.NoError(t, err)
				return res.Observed
			}
			a := run(interp.New())
			b := run(jit.New())
			require.Equal(t, len(a), len(b))
			for name, want := range a {
				got := b[name]
				require.Len(t, got, len(want), "channel %s", name)
				for i := range want {
					require.True(t, ir.ValueEq(want[i], got[i]),
						"channel %s[%d]: interp %s, compiled %s",
						name, i, ir.FormatValue(want[i]), ir.FormatValue(got[i]))
				}
			}
		})
	}
}

// Running the segments of a schedule one at a time, with a fresh runner per
// segment over the same queues, matches a single segmented run: state resets
// at the boundary, channel contents carry over.
func TestSegmentedScheduleEqualsRepeatedRuns(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	pkg, err := ir.LoadPackage(simtests.AccumIR)
	require.NoError(t, err)

	qs := sim.NewQueues(pkg)
	for _, v := range simtests.B(64, 42, 101) {
		qs.ByName("in_ch").Push(v)
	}
	for _, v := range simtests.B(64, 10, 6) {
		qs.ByName("in_ch_2").Push(v)
	}
	for i := 0; i < 2; i++ {
		r := sim.NewRunner(pkg, interp.New(), qs, nil)
		require.NoError(t, r.Run(ctx, sim.Schedule{1}))
	}

	got := qs.ByName("out_ch").Drain()
	want := simtests.B(64, 62, 117)
	require.Len(t, got, len(want))
	for i := range want {
		require.True(t, ir.ValueEq(want[i], got[i]), "out_ch[%d]", i)
	}
}

func TestConvertScenario(t *testing.T) {
	t.Parallel()
	src := []dslx.File{{Name: "a.x", Src: "fn f() -> u32 { u32:42 }"}}
	pkg, err := dslx.Convert(src, dslx.Options{})
	require.NoError(t, err)
	require.Equal(t, "a", pkg.Name)
	f := pkg.Fn("__a__f")
	require.NotNil(t, f)
	n := f.Ret
	require.Equal(t, ir.OpLiteral, n.Op)
	require.Equal(t, int32(1), n.ID)
	require.Equal(t, []ir.Pos{{File: 0, Line: 0, Col: 20}}, n.Pos)

	// The converted function evaluates to its literal on both paths:
	// directly, and after a print/parse round trip.
	out, err := interp.EvalFunction(f, nil)
	require.NoError(t, err)
	require.True(t, ir.ValueEq(ir.NewBits(32, 42), out))
	pkg2, err := ir.LoadPackage(ir.Format(pkg))
	require.NoError(t, err)
	out, err = interp.EvalFunction(pkg2.Fn("__a__f"), nil)
	require.NoError(t, err)
	require.True(t, ir.ValueEq(ir.NewBits(32, 42), out))

	_, err = dslx.Convert(src, dslx.Options{PackageName: "a-name-with-minuses"})
	require.EqualError(t, err,
		"package name 'a-name-with-minuses' (len: 19) is not a valid package name")
}

// Parsing formatted output reproduces the package.
func TestLoadIdempotence(t *testing.T) {
	t.Parallel()
	for _, text := range []string{
		simtests.AccumIR,
		simtests.TokenOrderIR,
		simtests.PipelineIR,
		simtests.PredSendIR,
	} {
		pkg, err := ir.LoadPackage(text)
		require.NoError(t, err)
		out := ir.Format(pkg)
		pkg2, err := ir.LoadPackage(out)
		require.NoError(t, err)
		require.Equal(t, out, ir.Format(pkg2))

		for i, pr := range pkg.Procs {
			o1, err := ir.TopoSort(pr.AllNodes())
			require.NoError(t, err)
			o2, err := ir.TopoSort(pkg2.Procs[i].AllNodes())
			require.NoError(t, err)
			require.Len(t, o2, len(o1))
			for j := range o1 {
				require.Equal(t, o1[j].ID, o2[j].ID)
				require.Equal(t, o1[j].Name, o2[j].Name)
			}
		}
	}
}

func TestRunSpecEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	dir := t.TempDir()
	write := func(name, contents string) {
		require.NoError(t, writeFile(dir, name, contents))
	}
	write("pipeline.ir", simtests.PipelineIR)
	write("in.txt", harness.FormatStream(simtests.B(32, 3, 5)))
	write("out.txt", harness.FormatStream(simtests.B(32, 8, 12)))
	write("run.yaml", `ir: pipeline.ir
backend: compiled
ticks: "2"
inputs:
  in: in.txt
expected:
  out: out.txt
`)

	rs, err := harness.LoadRunSpec(dir + "/run.yaml")
	require.NoError(t, err)
	pkg, backend, cfg, err := rs.Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, "compiled", backend.Name())

	res, err := harness.Run(ctx, pkg, backend, cfg)
	require.NoError(t, err)
	require.True(t, res.Passed, "mismatches: %v", res.Mismatches)
}
