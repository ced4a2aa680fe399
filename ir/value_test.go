package ir_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/ir"
)

func TestValueRoundTrip(t *testing.T) {
	t.Parallel()
	// Each entry is already in canonical form, so parsing and
	// re-formatting must reproduce it exactly.
	tcs := []string{
		"bits[1]:0",
		"bits[1]:1",
		"bits[64]:42",
		"bits[64]:18446744073709551615",
		"bits[128]:340282366920938463463374607431768211455",
		"token",
		"()",
		"(bits[8]:1, bits[8]:2)",
		"(token, bits[64]:5)",
		"((bits[4]:3, token), bits[2]:0)",
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			v, err := ir.ParseValue(tc)
			require.NoError(t, err)
			require.Equal(t, tc, ir.FormatValue(v))
		})
	}
}

func TestParseValueHex(t *testing.T) {
	t.Parallel()
	v, err := ir.ParseValue("bits[16]:0xabcd")
	require.NoError(t, err)
	require.Equal(t, "bits[16]:43981", ir.FormatValue(v))
}

func TestParseValueErrors(t *testing.T) {
	t.Parallel()
	tcs := []string{
		"",
		"bits[64]",
		"bits[64]:",
		"bits[0]:1",
		"(bits[1]:1",
		"(bits[1]:1,)",
		"frob",
		"bits[8]:1 trailing",
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := ir.ParseValue(tc)
			require.Error(t, err)
		})
	}
}

func TestValueEq(t *testing.T) {
	t.Parallel()
	type testCase struct {
		a, b string
		eq   bool
	}
	tcs := []testCase{
		{"bits[8]:1", "bits[8]:1", true},
		{"bits[8]:1", "bits[8]:2", false},
		{"bits[8]:1", "bits[9]:1", false},
		{"token", "token", true},
		{"token", "bits[1]:0", false},
		{"(bits[8]:1, token)", "(bits[8]:1, token)", true},
		{"(bits[8]:1, token)", "(bits[8]:1, bits[1]:0)", false},
		{"(bits[8]:1)", "bits[8]:1", false},
		{"()", "()", true},
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			a, err := ir.ParseValue(tc.a)
			require.NoError(t, err)
			b, err := ir.ParseValue(tc.b)
			require.NoError(t, err)
			require.Equal(t, tc.eq, ir.ValueEq(a, b))
		})
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()
	type testCase struct {
		ty   ir.Type
		want string
	}
	tcs := []testCase{
		{ir.BitsType{Width: 8}, "bits[8]:0"},
		{ir.TokenType{}, "token"},
		{ir.TupleType{}, "()"},
		{ir.TupleType{Elems: []ir.Type{ir.BitsType{Width: 64}, ir.TokenType{}}}, "(bits[64]:0, token)"},
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			v := ir.ZeroValue(tc.ty)
			require.Equal(t, tc.want, ir.FormatValue(v))
			require.True(t, ir.TypeEq(tc.ty, v.Type()))
		})
	}
}

func TestTypeString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "bits[64]", ir.BitsType{Width: 64}.String())
	require.Equal(t, "token", ir.TokenType{}.String())
	require.Equal(t, "(bits[64], bits[1])", ir.TupleType{
		Elems: []ir.Type{ir.BitsType{Width: 64}, ir.BitsType{Width: 1}},
	}.String())
	require.Equal(t, "()", ir.TupleType{}.String())
}
