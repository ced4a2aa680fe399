package jit

import "fmt"

// CompileError reports that a proc could not be translated.  It surfaces as
// a backend failure; the engine never falls back to another backend.
type CompileError struct {
	Proc string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling proc %s: %v", e.Proc, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
