package sim

import (
	"fmt"

	"github.com/rw1nkler/xls/ir"
)

// Queue is the runtime transport for one channel: an ordered sequence of
// pending values plus the bookkeeping for one in-flight step attempt.
// Receives advance a cursor and sends land in a staged tail, so the whole
// attempt can be committed (effects become visible to later procs in the
// same tick) or rolled back (a stall leaves the queue untouched).
type Queue struct {
	ch     *ir.Chan
	vals   []ir.Value
	cursor int
	staged []ir.Value
}

// Chan returns the channel this queue transports.
func (q *Queue) Chan() *ir.Chan { return q.ch }

// Push appends a committed value, the form used when the harness seeds
// inputs.  Seeded values are indistinguishable from values sent by another
// proc in the same package.
func (q *Queue) Push(v ir.Value) {
	if q.ch.Kind == ir.KindSingleValue {
		q.vals = append(q.vals[:0], v)
		return
	}
	q.vals = append(q.vals, v)
}

// Recv takes the value at the head of the queue.  It reports false when no
// value is available and the caller must stall.  On single-value channels
// the slot is read without being consumed.
func (q *Queue) Recv() (ir.Value, bool) {
	if q.ch.Kind == ir.KindSingleValue {
		if len(q.vals) == 0 {
			return nil, false
		}
		return q.vals[len(q.vals)-1], true
	}
	if q.cursor >= len(q.vals) {
		return nil, false
	}
	v := q.vals[q.cursor]
	q.cursor++
	return v, true
}

// Send stages a value.  Staged values become pending on Commit; they are
// not visible to receives within the same step attempt.
func (q *Queue) Send(v ir.Value) {
	q.staged = append(q.staged, v)
}

// Commit finalizes the current step attempt: consumed values are dropped
// and staged sends become pending.
func (q *Queue) Commit() {
	if q.ch.Kind == ir.KindSingleValue {
		if len(q.staged) > 0 {
			q.vals = append(q.vals[:0], q.staged[len(q.staged)-1])
			q.staged = q.staged[:0]
		}
		return
	}
	q.vals = append(q.vals[q.cursor:], q.staged...)
	q.cursor = 0
	q.staged = q.staged[:0]
}

// Rollback discards the current step attempt: the cursor rewinds and staged
// sends are dropped, leaving no trace of the attempt.
func (q *Queue) Rollback() {
	q.cursor = 0
	q.staged = q.staged[:0]
}

// Len returns the number of committed pending values.
func (q *Queue) Len() int { return len(q.vals) - q.cursor }

// Drain removes and returns all committed pending values in FIFO order.
func (q *Queue) Drain() []ir.Value {
	out := q.vals[q.cursor:]
	q.vals = nil
	q.cursor = 0
	return out
}

// Queues holds one Queue per channel of a package.
type Queues struct {
	pkg  *ir.Package
	byID map[int64]*Queue
}

// NewQueues creates empty queues for every channel in pkg.
func NewQueues(pkg *ir.Package) *Queues {
	qs := &Queues{pkg: pkg, byID: make(map[int64]*Queue, len(pkg.Chans))}
	for _, c := range pkg.Chans {
		qs.byID[c.ID] = &Queue{ch: c}
	}
	return qs
}

// Package returns the package the queues were built for.
func (qs *Queues) Package() *ir.Package { return qs.pkg }

// Get returns the queue for the channel with the given id.
func (qs *Queues) Get(id int64) (*Queue, error) {
	q, ok := qs.byID[id]
	if !ok {
		return nil, fmt.Errorf("no queue for channel id %d", id)
	}
	return q, nil
}

// ByName returns the queue for the named channel, or nil.
func (qs *Queues) ByName(name string) *Queue {
	c := qs.pkg.Chan(name)
	if c == nil {
		return nil
	}
	return qs.byID[c.ID]
}

// Commit commits the in-flight step attempt on every queue.
func (qs *Queues) Commit() {
	for _, q := range qs.byID {
		q.Commit()
	}
}

// Rollback rolls back the in-flight step attempt on every queue.
func (qs *Queues) Rollback() {
	for _, q := range qs.byID {
		q.Rollback()
	}
}
