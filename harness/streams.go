package harness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.brendoncarroll.net/exp/slices2"

	"github.com/rw1nkler/xls/ir"
)

// ParseStream reads one typed value per line ("bits[64]:42"), skipping
// blank lines, and checks each against the channel element type.
func ParseStream(r io.Reader, elem ir.Type) ([]ir.Value, error) {
	var out []ir.Value
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		v, err := ir.ParseValue(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
		if !ir.TypeEq(v.Type(), elem) {
			return nil, fmt.Errorf("line %d: value has type %s, want %s", lineno, v.Type(), elem)
		}
		out = append(out, v)
	}
	return out, sc.Err()
}

// ReadStreamFile parses a stream file from disk.
func ReadStreamFile(path string, elem ir.Type) ([]ir.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vals, err := ParseStream(f, elem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vals, nil
}

// FormatStream renders values in the stream file format, one per line.
func FormatStream(vals []ir.Value) string {
	lines := slices2.Map(vals, ir.FormatValue)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
