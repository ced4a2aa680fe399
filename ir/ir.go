// Package ir models dataflow packages: typed values, channels, functions,
// and procs whose bodies are directed acyclic graphs of operation nodes.
// Packages parse from and print to a stable text format, and expose the
// deterministic node ordering that evaluation depends on.
package ir

import (
	"fmt"
)

// Package is a named collection of channels, functions, and procs, plus a
// table of file names used for source position tagging.
type Package struct {
	Name  string
	Files []string
	Chans []*Chan
	Fns   []*Fn
	Procs []*Proc

	chansByID   map[int64]*Chan
	chansByName map[string]*Chan
	members     map[string]bool
	nextID      int32
}

// NewPackage returns an empty package.  The name must satisfy the
// identifier grammar; see ValidatePackageName.
func NewPackage(name string) (*Package, error) {
	if err := ValidatePackageName(name); err != nil {
		return nil, err
	}
	return &Package{
		Name:        name,
		chansByID:   make(map[int64]*Chan),
		chansByName: make(map[string]*Chan),
		members:     make(map[string]bool),
		nextID:      1,
	}, nil
}

// ValidatePackageName checks name against the identifier grammar: a letter
// or underscore followed by letters, digits, and underscores.
func ValidatePackageName(name string) error {
	if !isIdent(name) {
		return fmt.Errorf("package name '%s' (len: %d) is not a valid package name", name, len(name))
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// SetFile records path under file number n in the file table.
func (p *Package) SetFile(n int, path string) {
	for len(p.Files) <= n {
		p.Files = append(p.Files, "")
	}
	p.Files[n] = path
}

// AddChan declares a channel.  Names and ids must be unique among the
// package's channels.
func (p *Package) AddChan(c *Chan) error {
	if _, exists := p.chansByName[c.Name]; exists {
		return &MalformedIRError{Pkg: p.Name, Msg: fmt.Sprintf("duplicate channel name %q", c.Name)}
	}
	if _, exists := p.chansByID[c.ID]; exists {
		return &MalformedIRError{Pkg: p.Name, Msg: fmt.Sprintf("duplicate channel id %d", c.ID)}
	}
	p.Chans = append(p.Chans, c)
	p.chansByID[c.ID] = c
	p.chansByName[c.Name] = c
	return nil
}

// AddFn adds a function.  Functions and procs share one namespace.
func (p *Package) AddFn(f *Fn) error {
	if err := p.claim(f.Name); err != nil {
		return err
	}
	p.Fns = append(p.Fns, f)
	return nil
}

// AddProc adds a proc.
func (p *Package) AddProc(pr *Proc) error {
	if err := p.claim(pr.Name); err != nil {
		return err
	}
	p.Procs = append(p.Procs, pr)
	return nil
}

func (p *Package) claim(name string) error {
	if p.members[name] {
		return &MalformedIRError{Pkg: p.Name, Msg: fmt.Sprintf("duplicate member name %q", name)}
	}
	p.members[name] = true
	return nil
}

// Chan returns the channel with the given name, or nil.
func (p *Package) Chan(name string) *Chan { return p.chansByName[name] }

// ChanByID returns the channel with the given id, or nil.
func (p *Package) ChanByID(id int64) *Chan { return p.chansByID[id] }

// Fn returns the function with the given name, or nil.
func (p *Package) Fn(name string) *Fn {
	for _, f := range p.Fns {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Proc returns the proc with the given name, or nil.
func (p *Package) Proc(name string) *Proc {
	for _, pr := range p.Procs {
		if pr.Name == name {
			return pr
		}
	}
	return nil
}

// NextID hands out a fresh node id, one past every id seen so far.
func (p *Package) NextID() int32 {
	id := p.nextID
	p.nextID++
	return id
}

// NoteID keeps the fresh-id counter above an explicitly assigned id.
func (p *Package) NoteID(id int32) {
	if id >= p.nextID {
		p.nextID = id + 1
	}
}

// ChanKind distinguishes FIFO channels from single-value registers.
type ChanKind uint8

const (
	KindStreaming ChanKind = iota
	KindSingleValue
)

var chanKindNames = map[ChanKind]string{
	KindStreaming:   "streaming",
	KindSingleValue: "single_value",
}

func (k ChanKind) String() string { return chanKindNames[k] }

// ChanDir is the direction class of a channel relative to the package.
type ChanDir uint8

const (
	SendReceive ChanDir = iota
	SendOnly
	ReceiveOnly
)

var chanDirNames = map[ChanDir]string{
	SendReceive: "send_receive",
	SendOnly:    "send_only",
	ReceiveOnly: "receive_only",
}

func (d ChanDir) String() string { return chanDirNames[d] }

// FlowControl is the handshake discipline of a channel.
type FlowControl uint8

const (
	FlowNone FlowControl = iota
	FlowReadyValid
)

var flowControlNames = map[FlowControl]string{
	FlowNone:       "none",
	FlowReadyValid: "ready_valid",
}

func (f FlowControl) String() string { return flowControlNames[f] }

// Chan is a typed channel declaration.
type Chan struct {
	Name     string
	ID       int64
	Elem     Type
	Kind     ChanKind
	Dir      ChanDir
	Flow     FlowControl
	Metadata string
}

// CanSend reports whether package procs may send on the channel.
func (c *Chan) CanSend() bool { return c.Dir != ReceiveOnly }

// CanReceive reports whether package procs may receive on the channel.
func (c *Chan) CanReceive() bool { return c.Dir != SendOnly }

// Fn is a pure function: parameters, a body graph, and a return node.
type Fn struct {
	Name    string
	Params  []*Node
	RetType Type
	Body    []*Node
	Ret     *Node
}

// AllNodes returns the function's nodes in declaration order.
func (f *Fn) AllNodes() []*Node {
	ns := make([]*Node, 0, len(f.Params)+len(f.Body))
	ns = append(ns, f.Params...)
	return append(ns, f.Body...)
}

// Proc is a stateful process stepped once per tick.  Token is the parameter
// threading side-effect order, State the persistent state parameter, and
// Init the value State resets to at segment boundaries.  Next yields the
// token and state carried into the following tick.
type Proc struct {
	Name  string
	Token *Node
	State *Node
	Init  Value
	Body  []*Node
	Next  *Node
}

// Params returns the token and state parameters.
func (pr *Proc) Params() []*Node { return []*Node{pr.Token, pr.State} }

// AllNodes returns the proc's nodes in declaration order, ending with next.
func (pr *Proc) AllNodes() []*Node {
	ns := make([]*Node, 0, len(pr.Body)+3)
	ns = append(ns, pr.Token, pr.State)
	ns = append(ns, pr.Body...)
	return append(ns, pr.Next)
}
