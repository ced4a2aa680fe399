package dslx_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rw1nkler/xls/dslx"
	"github.com/rw1nkler/xls/ir"
)

const (
	aDotX = "fn f() -> u32 { u32:42 }"
	bDotX = "fn f() -> u32 { u32:64 }"
)

func TestConvertSingleFile(t *testing.T) {
	t.Parallel()
	type testCase struct {
		file   string
		src    string
		golden string
	}
	tcs := []testCase{
		{
			"a.x", aDotX,
			`package a

file_number 0 "a.x"

fn __a__f() -> bits[32] {
  ret literal.1: bits[32] = literal(value=42, id=1, pos=[(0,0,20)])
}
`,
		},
		{
			"b.x", bDotX,
			`package b

file_number 0 "b.x"

fn __b__f() -> bits[32] {
  ret literal.1: bits[32] = literal(value=64, id=1, pos=[(0,0,20)])
}
`,
		},
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			pkg, err := dslx.Convert([]dslx.File{{Name: tc.file, Src: tc.src}}, dslx.Options{})
			require.NoError(t, err)
			require.Equal(t, tc.golden, ir.Format(pkg))
		})
	}
}

func TestConvertMultiFile(t *testing.T) {
	t.Parallel()
	const golden = `package my_entry

file_number 0 "a.x"
file_number 1 "b.x"

fn __a__f() -> bits[32] {
  ret literal.1: bits[32] = literal(value=42, id=1, pos=[(0,0,20)])
}

fn __b__f() -> bits[32] {
  ret literal.2: bits[32] = literal(value=64, id=2, pos=[(1,0,20)])
}
`
	pkg, err := dslx.Convert(
		[]dslx.File{{Name: "a.x", Src: aDotX}, {Name: "b.x", Src: bDotX}},
		dslx.Options{PackageName: "my_entry"},
	)
	require.NoError(t, err)
	require.Equal(t, golden, ir.Format(pkg))
}

func TestBadPackageName(t *testing.T) {
	t.Parallel()
	const want = "package name 'a-name-with-minuses' (len: 19) is not a valid package name"

	_, err := dslx.Convert(
		[]dslx.File{{Name: "a-name-with-minuses.x", Src: aDotX}}, dslx.Options{})
	require.EqualError(t, err, want)

	_, err = dslx.Convert(
		[]dslx.File{{Name: "foo.x", Src: aDotX}},
		dslx.Options{PackageName: "a-name-with-minuses"})
	require.EqualError(t, err, want)
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()
	type testCase struct {
		src string
		msg string
	}
	tcs := []testCase{
		{"fn f() -> u32 { u64:42 }", "literal type bits[64] does not match return type bits[32]"},
		{"fn f() -> u32 { u32:5000000000 }", "does not fit"},
		{"fn f() -> bogus { u32:42 }", "unsupported type"},
		{"fn f() { u32:42 }", `expected "->"`},
		{"const X = u32:3;", "expected 'fn'"},
		{"fn f() -> u32 { u32:42 ", `expected "}"`},
	}
	for i, tc := range tcs {
		tc := tc
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			_, err := dslx.Convert([]dslx.File{{Name: "a.x", Src: tc.src}}, dslx.Options{})
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestConvertSignedAndHex(t *testing.T) {
	t.Parallel()
	pkg, err := dslx.Convert([]dslx.File{
		{Name: "a.x", Src: "fn neg() -> s8 { s8:-1 }\nfn hex() -> u16 { u16:0xff }"},
	}, dslx.Options{})
	require.NoError(t, err)

	neg := pkg.Fn("__a__neg")
	require.NotNil(t, neg)
	require.True(t, ir.ValueEq(ir.NewBits(8, 255), neg.Ret.Value))
	hex := pkg.Fn("__a__hex")
	require.NotNil(t, hex)
	require.True(t, ir.ValueEq(ir.NewBits(16, 0xff), hex.Ret.Value))
	require.Equal(t, []ir.Pos{{File: 0, Line: 1, Col: 22}}, hex.Ret.Pos)
}

func TestConvertFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.x")
	require.NoError(t, os.WriteFile(path, []byte(aDotX), 0o644))

	pkg, err := dslx.ConvertFiles([]string{path}, dslx.Options{})
	require.NoError(t, err)
	require.Equal(t, "a", pkg.Name)
	require.NotNil(t, pkg.Fn("__a__f"))
}
