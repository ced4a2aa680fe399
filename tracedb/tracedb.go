// Package tracedb records simulation runs in SQLite so that channel
// traffic can be inspected after the fact.  Recording is an observer; it
// never influences simulation results.
package tracedb

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open opens (or creates) a trace database.  ":memory:" works for tests.
func Open(p string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writes; one connection avoids lock churn.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Setup creates the schema if it does not exist.
func Setup(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT NOT NULL,
			package TEXT NOT NULL,
			backend TEXT NOT NULL,
			schedule TEXT NOT NULL,
			started_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			passed INTEGER,

			PRIMARY KEY(id)
		) WITHOUT ROWID, STRICT;`,
		`CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			proc TEXT NOT NULL,
			node_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			channel TEXT NOT NULL,
			value TEXT NOT NULL,

			FOREIGN KEY(run_id) REFERENCES runs(id),
			PRIMARY KEY(run_id, seq)
		) WITHOUT ROWID, STRICT;`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Run is one recorded run.
type Run struct {
	ID        string `db:"id"`
	Package   string `db:"package"`
	Backend   string `db:"backend"`
	Schedule  string `db:"schedule"`
	StartedAt string `db:"started_at"`
	// Passed is nil while the run is in flight.
	Passed *bool `db:"passed"`
}

// Event is one recorded channel operation.
type Event struct {
	RunID   string `db:"run_id"`
	Seq     int64  `db:"seq"`
	Tick    int    `db:"tick"`
	Proc    string `db:"proc"`
	NodeID  int64  `db:"node_id"`
	Kind    string `db:"kind"`
	Channel string `db:"channel"`
	Value   string `db:"value"`
}

// ListRuns returns all recorded runs, newest first.
func ListRuns(ctx context.Context, db *sqlx.DB) (ret []Run, _ error) {
	err := db.SelectContext(ctx, &ret, `SELECT id, package, backend, schedule, started_at, passed
		FROM runs ORDER BY started_at DESC, id`)
	return ret, err
}

// Events returns the channel operations of one run in execution order.
func Events(ctx context.Context, db *sqlx.DB, runID string) (ret []Event, _ error) {
	err := db.SelectContext(ctx, &ret, `SELECT run_id, seq, tick, proc, node_id, kind, channel, value
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	return ret, err
}
