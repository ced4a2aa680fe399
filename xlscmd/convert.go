package xlscmd

import (
	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/dslx"
	"github.com/rw1nkler/xls/ir"
)

var convert = star.Command{
	Metadata: star.Metadata{
		Short: "convert source files to an IR package",
	},
	Flags: []star.IParam{packageNameParam},
	Pos:   []star.IParam{srcFileParam},
	F: func(c star.Context) error {
		pkg, err := dslx.ConvertFiles(srcFileParam.LoadAll(c), dslx.Options{
			PackageName: packageNameParam.Load(c),
		})
		if err != nil {
			return err
		}
		c.Printf("%s", ir.Format(pkg))
		return nil
	},
}

var parseCmd = star.Command{
	Metadata: star.Metadata{
		Short: "load an IR package and pretty-print it",
	},
	Pos: []star.IParam{irFileParam},
	F: func(c star.Context) error {
		c.Printf("%s", ir.Format(irFileParam.Load(c)))
		return nil
	},
}

var packageNameParam = star.Param[string]{
	Name:    "package-name",
	Default: star.Ptr(""),
	Parse:   star.ParseString,
}

var srcFileParam = star.Param[string]{
	Name:     "src",
	Repeated: true,
	Parse:    star.ParseString,
}
