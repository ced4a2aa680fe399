package xlscmd

import (
	"fmt"
	"path/filepath"

	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/harness"
	"github.com/rw1nkler/xls/tracedb"
)

var runCmd = star.Command{
	Metadata: star.Metadata{
		Short: "execute a YAML run spec",
	},
	Flags: []star.IParam{dbParam},
	Pos:   []star.IParam{specFileParam},
	F: func(c star.Context) error {
		path := specFileParam.Load(c)
		rs, err := harness.LoadRunSpec(path)
		if err != nil {
			return err
		}
		pkg, backend, cfg, err := rs.Resolve(filepath.Dir(path))
		if err != nil {
			return err
		}
		db := dbParam.Load(c)
		defer db.Close()
		cfg.Tracer = tracedb.NewRecorder(db)

		res, err := harness.Run(c.Context, pkg, backend, cfg)
		if err != nil {
			return err
		}
		if !res.Passed {
			for _, m := range res.Mismatches {
				c.Printf("MISMATCH %s\n", m)
			}
			return fmt.Errorf("%d output mismatches", len(res.Mismatches))
		}
		c.Printf("PASS %s (%s, ticks=%s)\n", pkg.Name, backend.Name(), cfg.Schedule)
		return nil
	},
}

var specFileParam = star.Param[string]{
	Name:  "spec",
	Parse: star.ParseString,
}
