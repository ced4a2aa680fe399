package xlscmd

import (
	"go.brendoncarroll.net/star"

	"github.com/rw1nkler/xls/tracedb"
)

var runs = star.Command{
	Metadata: star.Metadata{
		Short: "list recorded simulation runs",
	},
	Flags: []star.IParam{dbParam},
	F: func(c star.Context) error {
		db := dbParam.Load(c)
		defer db.Close()
		rs, err := tracedb.ListRuns(c.Context, db)
		if err != nil {
			return err
		}
		for _, r := range rs {
			status := "running"
			if r.Passed != nil {
				status = "failed"
				if *r.Passed {
					status = "passed"
				}
			}
			c.Printf("%s %s %s ticks=%s %s %s\n",
				r.ID, r.Package, r.Backend, r.Schedule, r.StartedAt, status)
		}
		return nil
	},
}
