package sim

import (
	"fmt"
	"strings"
)

// Stall identifies one proc blocked on one receive.
type Stall struct {
	Proc    string
	Node    string
	Channel string
}

func (s Stall) String() string {
	return fmt.Sprintf("proc %s blocked at %s on channel %s", s.Proc, s.Node, s.Channel)
}

// DeadlockError reports that a tick could not complete: a scheduler pass
// made no progress while procs remained stalled, so the blocking receives
// are unsatisfiable.
type DeadlockError struct {
	Tick   int
	Stalls []Stall
}

func (e *DeadlockError) Error() string {
	msgs := make([]string, len(e.Stalls))
	for i, s := range e.Stalls {
		msgs[i] = s.String()
	}
	return fmt.Sprintf("deadlock at tick %d: %s", e.Tick, strings.Join(msgs, "; "))
}

// ScheduleExceededError reports that the run was cut off before the
// schedule completed, the safety net for runs bounded by a deadline.
type ScheduleExceededError struct {
	Tick  int
	Cause error
}

func (e *ScheduleExceededError) Error() string {
	return fmt.Sprintf("schedule exceeded at tick %d: %v", e.Tick, e.Cause)
}

func (e *ScheduleExceededError) Unwrap() error { return e.Cause }

// BackendError wraps a failure inside a backend step.  Backend failures
// are reported as such, never downgraded to a different backend.
type BackendError struct {
	Backend string
	Proc    string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed on proc %s: %v", e.Backend, e.Proc, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
