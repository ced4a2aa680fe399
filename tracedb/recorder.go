package tracedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// Recorder implements sim.Tracer by writing run and event rows.  Database
// failures are logged and otherwise swallowed: a broken trace store must
// not fail a simulation.
type Recorder struct {
	db    *sqlx.DB
	runID string
	seq   int64
}

var _ sim.Tracer = (*Recorder)(nil)

// NewRecorder returns a recorder over an opened, set-up database.
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// RunID returns the id of the current (or last) recorded run.
func (r *Recorder) RunID() string { return r.runID }

func (r *Recorder) OnRunStart(ctx context.Context, pkg *ir.Package, backend string, sched sim.Schedule) {
	r.runID = uuid.NewString()
	r.seq = 0
	_, err := r.db.ExecContext(ctx, `INSERT INTO runs (id, package, backend, schedule)
		VALUES (?, ?, ?, ?)`, r.runID, pkg.Name, backend, sched.String())
	if err != nil {
		logctx.Error(ctx, "tracedb: recording run", zap.Error(err))
	}
}

func (r *Recorder) OnTick(ctx context.Context, tick int) {}

func (r *Recorder) OnEffect(ctx context.Context, tick int, proc string, e sim.Effect) {
	seq := r.seq
	r.seq++
	_, err := r.db.ExecContext(ctx, `INSERT INTO events (run_id, seq, tick, proc, node_id, kind, channel, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID, seq, tick, proc, int64(e.Node.ID), e.Kind.String(), e.Chan.Name,
		ir.FormatValue(e.Value))
	if err != nil {
		logctx.Error(ctx, "tracedb: recording effect", zap.Error(err))
	}
}

func (r *Recorder) OnRunEnd(ctx context.Context, passed bool) {
	_, err := r.db.ExecContext(ctx, `UPDATE runs SET passed = ? WHERE id = ?`, passed, r.runID)
	if err != nil {
		logctx.Error(ctx, "tracedb: finishing run", zap.Error(err))
	}
}
