package harness

import (
	"fmt"

	"github.com/rw1nkler/xls/interp"
	"github.com/rw1nkler/xls/jit"
	"github.com/rw1nkler/xls/sim"
)

// Backend selector names accepted by NewBackend.
const (
	BackendInterpreter = "interpreter"
	BackendCompiled    = "compiled"
)

// NewBackend constructs the named backend.  There is no fallback between
// backends: an unknown name is an error.
func NewBackend(name string) (sim.Backend, error) {
	switch name {
	case BackendInterpreter:
		return interp.New(), nil
	case BackendCompiled:
		return jit.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
