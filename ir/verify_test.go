package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/ir"
)

func TestVerifyErrors(t *testing.T) {
	t.Parallel()
	type testCase struct {
		name string
		src  string
		msg  string
	}
	tcs := []testCase{
		{
			"duplicate_id_across_functions",
			"package p\n" +
				"fn f() -> bits[8] {\n  ret literal.1: bits[8] = literal(value=1, id=1)\n}\n" +
				"fn g() -> bits[8] {\n  ret literal.1: bits[8] = literal(value=2, id=1)\n}\n",
			"duplicate node id 1",
		},
		{
			"ret_type_mismatch",
			"package p\nfn f() -> bits[8] {\n  ret literal.1: bits[16] = literal(value=1, id=1)\n}\n",
			"does not match function return type bits[8]",
		},
		{
			"add_operand_type",
			"package p\nfn f(a: bits[8], b: bits[16]) -> bits[8] {\n  ret add.1: bits[8] = add(a, b, id=1)\n}\n",
			"operand b has type bits[16], want bits[8]",
		},
		{
			"eq_result_not_bool",
			"package p\nfn f(a: bits[8], b: bits[8]) -> bits[8] {\n  ret eq.1: bits[8] = eq(a, b, id=1)\n}\n",
			"eq result must have type bits[1]",
		},
		{
			"eq_of_tokens",
			"package p\nfn f(a: token, b: token) -> bits[1] {\n  ret eq.1: bits[1] = eq(a, b, id=1)\n}\n",
			"eq of token values",
		},
		{
			"tuple_index_out_of_range",
			"package p\nfn f(x: (bits[8])) -> bits[8] {\n  ret tuple_index.1: bits[8] = tuple_index(x, index=1, id=1)\n}\n",
			"out of range",
		},
		{
			"concat_width",
			"package p\nfn f(a: bits[8], b: bits[8]) -> bits[8] {\n  ret concat.1: bits[8] = concat(a, b, id=1)\n}\n",
			"does not match total width 16",
		},
		{
			"bit_slice_range",
			"package p\nfn f(a: bits[8]) -> bits[4] {\n  ret bit_slice.1: bits[4] = bit_slice(a, start=6, width=4, id=1)\n}\n",
			"out of range",
		},
		{
			"zero_ext_narrowing",
			"package p\nfn f(a: bits[8]) -> bits[4] {\n  ret zero_ext.1: bits[4] = zero_ext(a, new_bit_count=4, id=1)\n}\n",
			"narrower than operand width",
		},
		{
			"sel_covered_with_default",
			"package p\nfn f(p: bits[1], a: bits[8], b: bits[8], c: bits[8]) -> bits[8] {\n" +
				"  ret sel.5: bits[8] = sel(p, cases=[a, b], default=c, id=5)\n}\n",
			"cases cover the selector",
		},
		{
			"sel_uncovered_without_default",
			"package p\nfn f(p: bits[2], a: bits[8], b: bits[8]) -> bits[8] {\n" +
				"  ret sel.4: bits[8] = sel(p, cases=[a, b], id=4)\n}\n",
			"no default is given",
		},
		{
			"send_outside_proc",
			"package p\nfn f(t: token, v: bits[8]) -> token {\n  ret send.1: token = send(t, v, channel_id=1, id=1)\n}\n",
			"send outside a proc",
		},
		{
			"send_unknown_channel",
			"package p\n\nproc q(tkn: token, st: bits[1], init=0) {\n" +
				"  literal.1: bits[64] = literal(value=5, id=1)\n" +
				"  send.2: token = send(tkn, literal.1, channel_id=7, id=2)\n" +
				"  next(send.2, st)\n}\n",
			"unknown channel id 7",
		},
		{
			"send_wrong_direction",
			"package p\n\n" +
				"chan c(bits[64], id=1, kind=streaming, ops=receive_only, flow_control=ready_valid, metadata=\"\"\"\"\"\")\n\n" +
				"proc q(tkn: token, st: bits[1], init=0) {\n" +
				"  literal.1: bits[64] = literal(value=5, id=1)\n" +
				"  send.2: token = send(tkn, literal.1, channel_id=1, id=2)\n" +
				"  next(send.2, st)\n}\n",
			"send on receive_only channel c",
		},
		{
			"receive_wrong_direction",
			"package p\n\n" +
				"chan c(bits[64], id=1, kind=streaming, ops=send_only, flow_control=ready_valid, metadata=\"\"\"\"\"\")\n\n" +
				"proc q(tkn: token, st: bits[1], init=0) {\n" +
				"  receive.1: (token, bits[64]) = receive(tkn, channel_id=1, id=1)\n" +
				"  tuple_index.2: token = tuple_index(receive.1, index=0, id=2)\n" +
				"  next(tuple_index.2, st)\n}\n",
			"receive on send_only channel c",
		},
		{
			"send_value_type",
			"package p\n\n" +
				"chan c(bits[32], id=1, kind=streaming, ops=send_only, flow_control=ready_valid, metadata=\"\"\"\"\"\")\n\n" +
				"proc q(tkn: token, st: bits[1], init=0) {\n" +
				"  literal.1: bits[64] = literal(value=5, id=1)\n" +
				"  send.2: token = send(tkn, literal.1, channel_id=1, id=2)\n" +
				"  next(send.2, st)\n}\n",
			"does not match channel c type bits[32]",
		},
		{
			"next_state_type",
			"package p\n\nproc q(tkn: token, st: bits[8], init=0) {\n" +
				"  literal.1: bits[16] = literal(value=3, id=1)\n" +
				"  next(tkn, literal.1)\n}\n",
			"next state type bits[16] does not match state type bits[8]",
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			pkg, err := ir.ParsePackage(tc.src)
			require.NoError(t, err)
			err = ir.VerifyPackage(pkg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestVerifyReportsPackage(t *testing.T) {
	t.Parallel()
	pkg, err := ir.ParsePackage(accumIR)
	require.NoError(t, err)
	pr := pkg.Procs[0]
	pr.Body[1].ID = pr.Body[0].ID

	err = ir.VerifyPackage(pkg)
	var merr *ir.MalformedIRError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, "foo", merr.Pkg)
	require.Contains(t, merr.Error(), "duplicate node id")
}

func TestVerifyAcceptsValid(t *testing.T) {
	t.Parallel()
	pkg, err := ir.ParsePackage(accumIR)
	require.NoError(t, err)
	require.NoError(t, ir.VerifyPackage(pkg))
}
