package ir

import "fmt"

// ParseError reports a syntax error in IR text.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// MalformedIRError reports a structural violation in a package: duplicate
// ids, cyclic references, or type mismatches.  It aborts a run before any
// ticks execute.
type MalformedIRError struct {
	Pkg  string
	Node string
	Msg  string
}

func (e *MalformedIRError) Error() string {
	msg := e.Msg
	if e.Node != "" {
		msg = fmt.Sprintf("node %s: %s", e.Node, msg)
	}
	if e.Pkg != "" {
		msg = fmt.Sprintf("package %s: %s", e.Pkg, msg)
	}
	return msg
}
