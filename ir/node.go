package ir

// Pos locates a node in original source as (file table index, line, column),
// all zero-based.
type Pos struct {
	File int
	Line int
	Col  int
}

// Node is one operation in a function or proc body.  Operand references are
// non-owning edges to earlier nodes of the same graph.
type Node struct {
	// ID is unique within the package and follows declaration order.
	ID   int32
	Name string
	Op   Op
	Type Type

	// Operands holds data edges in operand order.  Reference-valued
	// attributes (predicate, sel default) are included as trailing operands
	// so ordering constraints are graph edges, never printing artifacts.
	Operands []*Node

	Value      Value // OpLiteral
	Index      int   // OpTupleIndex
	Start      int   // OpBitSlice
	Width      int   // OpBitSlice
	NewWidth   int   // OpZeroExt, OpSignExt
	ChannelID  int64 // OpSend, OpReceive
	HasPred    bool  // OpSend, OpReceive: the last operand is the predicate
	NumCases   int   // OpSel
	HasDefault bool  // OpSel: the operand after the cases is the default

	Pos []Pos
}

// Predicate returns the predicate operand of a send or receive, or nil.
func (n *Node) Predicate() *Node {
	if !n.HasPred {
		return nil
	}
	return n.Operands[len(n.Operands)-1]
}

// TokenOperand returns the token operand of a send or receive.
func (n *Node) TokenOperand() *Node { return n.Operands[0] }

// Data returns the payload operand of a send.
func (n *Node) Data() *Node { return n.Operands[1] }

// SelCases returns the case operands of a sel.
func (n *Node) SelCases() []*Node { return n.Operands[1 : 1+n.NumCases] }

// SelDefault returns the default operand of a sel, or nil.
func (n *Node) SelDefault() *Node {
	if !n.HasDefault {
		return nil
	}
	return n.Operands[1+n.NumCases]
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
