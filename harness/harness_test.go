package harness_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/harness"
	"github.com/rw1nkler/xls/internal/testutil"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
	"github.com/rw1nkler/xls/simtests"
)

func writeFile(dir, name, contents string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)
}

func loadAccum(t *testing.T) *ir.Package {
	t.Helper()
	pkg, err := ir.LoadPackage(simtests.AccumIR)
	require.NoError(t, err)
	return pkg
}

func accumInputs() map[string][]ir.Value {
	return map[string][]ir.Value{
		"in_ch":   simtests.B(64, 42, 101),
		"in_ch_2": simtests.B(64, 10, 6),
	}
}

func TestRunPasses(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	backend, err := harness.NewBackend(harness.BackendInterpreter)
	require.NoError(t, err)
	res, err := harness.Run(ctx, loadAccum(t), backend, harness.Config{
		Schedule: sim.Schedule{2},
		Inputs:   accumInputs(),
		Expected: map[string][]ir.Value{
			"out_ch":   simtests.B(64, 62, 127),
			"out_ch_2": simtests.B(64, 55, 55),
		},
	})
	require.NoError(t, err)
	require.True(t, res.Passed)
	require.Empty(t, res.Mismatches)
	require.Len(t, res.Observed["out_ch"], 2)
}

// A failing run reports every divergence, not just the first.
func TestRunCollectsAllMismatches(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	backend, err := harness.NewBackend(harness.BackendCompiled)
	require.NoError(t, err)
	res, err := harness.Run(ctx, loadAccum(t), backend, harness.Config{
		Schedule: sim.Schedule{2},
		Inputs:   accumInputs(),
		Expected: map[string][]ir.Value{
			// Both values wrong, and one extra expectation past the end.
			"out_ch": simtests.B(64, 1, 2, 3),
		},
	})
	require.NoError(t, err)
	require.False(t, res.Passed)
	require.Len(t, res.Mismatches, 3)
	require.Equal(t, "out_ch", res.Mismatches[0].Channel)
	require.Equal(t, 0, res.Mismatches[0].Index)
	require.Nil(t, res.Mismatches[2].Observed)
	require.Contains(t, res.Mismatches[2].String(), "(nothing)")
}

func TestRunChannelMismatches(t *testing.T) {
	t.Parallel()
	ctx := testutil.Context(t)
	backend, err := harness.NewBackend(harness.BackendInterpreter)
	require.NoError(t, err)
	type testCase struct {
		name string
		cfg  harness.Config
		msg  string
	}
	tcs := []testCase{
		{
			name: "unknown input channel",
			cfg: harness.Config{
				Schedule: sim.Schedule{1},
				Inputs:   map[string][]ir.Value{"nope": simtests.B(64, 1)},
			},
			msg: "no such channel",
		},
		{
			name: "wrong value type",
			cfg: harness.Config{
				Schedule: sim.Schedule{1},
				Inputs:   map[string][]ir.Value{"in_ch": simtests.B(32, 1)},
			},
			msg: "has type bits[32], channel carries bits[64]",
		},
		{
			name: "inputs on send-only channel",
			cfg: harness.Config{
				Schedule: sim.Schedule{1},
				Inputs:   map[string][]ir.Value{"out_ch": simtests.B(64, 1)},
			},
			msg: "send-only",
		},
		{
			name: "expectations on receive-only channel",
			cfg: harness.Config{
				Schedule: sim.Schedule{1},
				Expected: map[string][]ir.Value{"in_ch": simtests.B(64, 1)},
			},
			msg: "receive-only",
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := harness.Run(ctx, loadAccum(t), backend, tc.cfg)
			var cme *harness.ChannelMismatchError
			require.ErrorAs(t, err, &cme)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Parallel()
	_, err := harness.NewBackend("llvm")
	require.ErrorContains(t, err, `unknown backend "llvm"`)
}

func TestParseStream(t *testing.T) {
	t.Parallel()
	vals, err := harness.ParseStream(strings.NewReader("bits[64]:42\n\nbits[64]:101\n"), ir.BitsType{Width: 64})
	require.NoError(t, err)
	require.Len(t, vals, 2)
	require.True(t, ir.ValueEq(ir.NewBits(64, 42), vals[0]))
	require.True(t, ir.ValueEq(ir.NewBits(64, 101), vals[1]))

	_, err = harness.ParseStream(strings.NewReader("bits[8]:1\n"), ir.BitsType{Width: 64})
	require.ErrorContains(t, err, "want bits[64]")

	_, err = harness.ParseStream(strings.NewReader("garbage\n"), ir.BitsType{Width: 64})
	require.Error(t, err)
}

func TestFormatStreamRoundTrip(t *testing.T) {
	t.Parallel()
	vals := simtests.B(64, 1, 2, 3)
	s := harness.FormatStream(vals)
	require.Equal(t, "bits[64]:1\nbits[64]:2\nbits[64]:3\n", s)
	back, err := harness.ParseStream(strings.NewReader(s), ir.BitsType{Width: 64})
	require.NoError(t, err)
	require.Len(t, back, 3)
}

func TestRunSpec(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	write := func(name, contents string) {
		require.NoError(t, writeFile(dir, name, contents))
	}
	write("accum.ir", simtests.AccumIR)
	write("in_ch.txt", harness.FormatStream(simtests.B(64, 42, 101)))
	write("in_ch_2.txt", harness.FormatStream(simtests.B(64, 10, 6)))
	write("out_ch.txt", harness.FormatStream(simtests.B(64, 62, 117)))
	write("spec.yaml", `ir: accum.ir
backend: compiled
ticks: "1,1"
inputs:
  in_ch: in_ch.txt
  in_ch_2: in_ch_2.txt
expected:
  out_ch: out_ch.txt
`)
	rs, err := harness.LoadRunSpec(dir + "/spec.yaml")
	require.NoError(t, err)
	require.Equal(t, "compiled", rs.Backend)

	pkg, backend, cfg, err := rs.Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, "accum", pkg.Name)
	require.Equal(t, sim.Schedule{1, 1}, cfg.Schedule)

	res, err := harness.Run(testutil.Context(t), pkg, backend, cfg)
	require.NoError(t, err)
	require.True(t, res.Passed, "mismatches: %v", res.Mismatches)
}

func TestLoadRunSpecErrors(t *testing.T) {
	t.Parallel()
	_, err := harness.LoadRunSpec(testutil.WriteFile(t, "empty.yaml", "backend: interpreter\n"))
	require.ErrorContains(t, err, "no ir path")

	_, err = harness.LoadRunSpec(testutil.WriteFile(t, "noticks.yaml", "ir: x.ir\n"))
	require.ErrorContains(t, err, "no tick schedule")
}
