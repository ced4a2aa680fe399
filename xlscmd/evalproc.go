package xlscmd

import (
	"fmt"
	"slices"

	"go.brendoncarroll.net/star"
	"golang.org/x/exp/maps"

	"github.com/rw1nkler/xls/harness"
	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/tracedb"
)

var evalProc = star.Command{
	Metadata: star.Metadata{
		Short: "evaluate the procs of an IR package across a tick schedule",
	},
	Flags: []star.IParam{ticksParam, backendParam, inputParam, expectParam, dbParam},
	Pos:   []star.IParam{irFileParam},
	F: func(c star.Context) error {
		ctx := c.Context
		pkg := irFileParam.Load(c)
		backend, err := harness.NewBackend(backendParam.Load(c))
		if err != nil {
			return err
		}
		inputs, err := loadStreams(pkg, inputParam.LoadAll(c))
		if err != nil {
			return err
		}
		expected, err := loadStreams(pkg, expectParam.LoadAll(c))
		if err != nil {
			return err
		}
		db := dbParam.Load(c)
		defer db.Close()
		rec := tracedb.NewRecorder(db)

		res, err := harness.Run(ctx, pkg, backend, harness.Config{
			Schedule: ticksParam.Load(c),
			Inputs:   inputs,
			Expected: expected,
			Tracer:   rec,
		})
		if err != nil {
			return err
		}
		names := maps.Keys(res.Observed)
		slices.Sort(names)
		for _, name := range names {
			vals := res.Observed[name]
			c.Printf("Channel %s (%d values):\n", name, len(vals))
			for _, v := range vals {
				c.Printf("  %s\n", ir.FormatValue(v))
			}
		}
		if !res.Passed {
			for _, m := range res.Mismatches {
				c.Printf("MISMATCH %s\n", m)
			}
			return fmt.Errorf("%d output mismatches", len(res.Mismatches))
		}
		return nil
	},
}

var inputParam = star.Param[chanStream]{
	Name:     "input",
	Repeated: true,
	Parse:    parseChanStream,
}

var expectParam = star.Param[chanStream]{
	Name:     "expect",
	Repeated: true,
	Parse:    parseChanStream,
}

func loadStreams(pkg *ir.Package, bindings []chanStream) (map[string][]ir.Value, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	out := make(map[string][]ir.Value, len(bindings))
	for _, b := range bindings {
		ch := pkg.Chan(b.Channel)
		if ch == nil {
			return nil, fmt.Errorf("package %s has no channel %q", pkg.Name, b.Channel)
		}
		vals, err := harness.ReadStreamFile(b.Path, ch.Elem)
		if err != nil {
			return nil, err
		}
		out[b.Channel] = append(out[b.Channel], vals...)
	}
	return out, nil
}
