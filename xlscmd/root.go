// Package xlscmd implements the xls command line tool.
package xlscmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
	"github.com/rw1nkler/xls/tracedb"
)

func Root() star.Command {
	return root
}

var root = star.NewDir(star.Metadata{
	Short: "simulate dataflow IR packages",
}, map[star.Symbol]star.Command{
	"eval-proc": evalProc,
	"eval-fn":   evalFn,
	"parse":     parseCmd,
	"convert":   convert,
	"run":       runCmd,
	"runs":      runs,
})

var irFileParam = star.Param[*ir.Package]{
	Name: "ir",
	Parse: func(x string) (*ir.Package, error) {
		src, err := os.ReadFile(x)
		if err != nil {
			return nil, err
		}
		return ir.LoadPackage(string(src))
	},
}

var ticksParam = star.Param[sim.Schedule]{
	Name:    "ticks",
	Default: star.Ptr("1"),
	Parse:   sim.ParseSchedule,
}

var backendParam = star.Param[string]{
	Name:    "backend",
	Default: star.Ptr("interpreter"),
	Parse:   star.ParseString,
}

var dbParam = star.Param[*sqlx.DB]{
	Name:    "db",
	Default: star.Ptr(":memory:"),
	Parse: func(x string) (*sqlx.DB, error) {
		db, err := tracedb.Open(x)
		if err != nil {
			return nil, err
		}
		if err := tracedb.Setup(context.Background(), db); err != nil {
			return nil, err
		}
		return db, nil
	},
}

// chanStream is one "--input ch=file" or "--expect ch=file" binding.
type chanStream struct {
	Channel string
	Path    string
}

func parseChanStream(x string) (chanStream, error) {
	name, path, ok := strings.Cut(x, "=")
	if !ok || name == "" || path == "" {
		return chanStream{}, fmt.Errorf("want <channel>=<file>, got %q", x)
	}
	return chanStream{Channel: name, Path: path}, nil
}
