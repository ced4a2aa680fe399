// Package dslx lowers a small subset of the DSLX source language into IR
// packages: top-level functions whose body is a single typed literal, e.g.
// "fn f() -> u32 { u32:42 }".  The subset is enough to drive the IR
// pipeline end to end; the full language is out of scope.
package dslx

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rw1nkler/xls/ir"
)

// File is one source file presented to Convert.  Name appears in the
// package's file table exactly as given.
type File struct {
	Name string
	Src  string
}

// Options configure a conversion.
type Options struct {
	// PackageName overrides the package name derived from the first
	// file's stem.
	PackageName string
}

// Convert lowers files into a single IR package.  Functions are renamed
// "__<stem>__<name>" after their file of origin, file table entries follow
// input order, and node ids increment across the whole package.
func Convert(files []File, opts Options) (*ir.Package, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	name := opts.PackageName
	if name == "" {
		name = stem(files[0].Name)
	}
	pkg, err := ir.NewPackage(name)
	if err != nil {
		return nil, err
	}
	for i, f := range files {
		pkg.SetFile(i, f.Name)
		if err := convertFile(pkg, i, f); err != nil {
			return nil, err
		}
	}
	if err := ir.VerifyPackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// ConvertFiles reads paths from disk and converts them.
func ConvertFiles(paths []string, opts Options) (*ir.Package, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: filepath.Base(p), Src: string(src)})
	}
	return Convert(files, opts)
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func convertFile(pkg *ir.Package, fileno int, f File) error {
	sc := &scanner{name: f.Name, src: f.Src}
	fileStem := stem(f.Name)
	for !sc.eof() {
		kw, err := sc.ident()
		if err != nil || kw != "fn" {
			return sc.errf("expected 'fn'")
		}
		fname, err := sc.ident()
		if err != nil {
			return err
		}
		if err := sc.expect("("); err != nil {
			return err
		}
		if err := sc.expect(")"); err != nil {
			return err
		}
		if err := sc.expect("->"); err != nil {
			return err
		}
		retTy, err := sc.bitsType()
		if err != nil {
			return err
		}
		if err := sc.expect("{"); err != nil {
			return err
		}
		litTy, err := sc.bitsType()
		if err != nil {
			return err
		}
		if !ir.TypeEq(litTy, retTy) {
			return sc.errf("literal type %s does not match return type %s", litTy, retTy)
		}
		if err := sc.expect(":"); err != nil {
			return err
		}
		text, off, err := sc.number()
		if err != nil {
			return err
		}
		v, err := ir.ParseValue(fmt.Sprintf("%s:%s", litTy, text))
		if err != nil {
			return sc.errAt(off, "%v", err)
		}
		if err := sc.expect("}"); err != nil {
			return err
		}

		line, col := sc.lineCol0(off)
		id := pkg.NextID()
		n := &ir.Node{
			ID:    id,
			Name:  fmt.Sprintf("literal.%d", id),
			Op:    ir.OpLiteral,
			Type:  litTy,
			Value: v,
			Pos:   []ir.Pos{{File: fileno, Line: line, Col: col}},
		}
		fn := &ir.Fn{
			Name:    fmt.Sprintf("__%s__%s", fileStem, fname),
			RetType: retTy,
			Body:    []*ir.Node{n},
			Ret:     n,
		}
		if err := pkg.AddFn(fn); err != nil {
			return err
		}
	}
	return nil
}

// scanner tracks a byte position in one source file.  Positions recorded on
// IR nodes are zero-based, matching the converter's output format.
type scanner struct {
	name string
	src  string
	pos  int
}

func (s *scanner) eof() bool {
	s.skipSpace()
	return s.pos >= len(s.src)
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && strings.HasPrefix(s.src[s.pos:], "//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) expect(tok string) error {
	s.skipSpace()
	if !strings.HasPrefix(s.src[s.pos:], tok) {
		return s.errf("expected %q", tok)
	}
	s.pos += len(tok)
	return nil
}

func (s *scanner) ident() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", s.errf("expected identifier")
	}
	return s.src[start:s.pos], nil
}

// number scans a literal and returns its text and starting offset.
func (s *scanner) number() (string, int, error) {
	s.skipSpace()
	start := s.pos
	if s.pos < len(s.src) && s.src[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.src) && (isIdentByte(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
	if s.pos == start {
		return "", 0, s.errf("expected literal value")
	}
	return strings.ReplaceAll(s.src[start:s.pos], "_", ""), start, nil
}

// bitsType parses a uN or sN type reference.
func (s *scanner) bitsType() (ir.BitsType, error) {
	s.skipSpace()
	off := s.pos
	id, err := s.ident()
	if err != nil {
		return ir.BitsType{}, err
	}
	if len(id) < 2 || (id[0] != 'u' && id[0] != 's') {
		return ir.BitsType{}, s.errAt(off, "unsupported type %q", id)
	}
	w, err := strconv.Atoi(id[1:])
	if err != nil || w < 1 {
		return ir.BitsType{}, s.errAt(off, "unsupported type %q", id)
	}
	return ir.BitsType{Width: w}, nil
}

func (s *scanner) errf(format string, args ...any) error {
	return s.errAt(s.pos, format, args...)
}

func (s *scanner) errAt(off int, format string, args ...any) error {
	line, col := s.lineCol0(off)
	return fmt.Errorf("%s:%d:%d: %s", s.name, line+1, col+1, fmt.Sprintf(format, args...))
}

func (s *scanner) lineCol0(off int) (line, col int) {
	for i := 0; i < off && i < len(s.src); i++ {
		if s.src[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

func isIdentByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
