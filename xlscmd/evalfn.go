package xlscmd

import (
	"fmt"

	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/interp"
	"github.com/rw1nkler/xls/ir"
)

var evalFn = star.Command{
	Metadata: star.Metadata{
		Short: "evaluate a function in an IR package",
	},
	Pos: []star.IParam{irFileParam, entryParam, argParam},
	F: func(c star.Context) error {
		pkg := irFileParam.Load(c)
		entry := entryParam.Load(c)
		f := pkg.Fn(entry)
		if f == nil {
			return fmt.Errorf("package %s has no function %q", pkg.Name, entry)
		}
		out, err := interp.EvalFunction(f, argParam.LoadAll(c))
		if err != nil {
			return err
		}
		c.Printf("%s\n", ir.FormatValue(out))
		return nil
	},
}

var entryParam = star.Param[string]{
	Name:  "entry",
	Parse: star.ParseString,
}

var argParam = star.Param[ir.Value]{
	Name:     "arg",
	Repeated: true,
	Parse:    ir.ParseValue,
}
