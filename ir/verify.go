package ir

import "fmt"

// VerifyPackage checks the structural invariants that evaluation relies on:
// a valid package name, package-wide unique node ids, acyclic graphs whose
// operands are members of the same graph, and agreement between each node's
// declared type and what its op produces.
func VerifyPackage(p *Package) error {
	if err := ValidatePackageName(p.Name); err != nil {
		return &MalformedIRError{Msg: err.Error()}
	}
	ids := make(map[int32]string)
	for _, f := range p.Fns {
		if err := verifyGraph(p, f.AllNodes(), ids, false); err != nil {
			return pkgErr(p, err)
		}
		if !TypeEq(f.Ret.Type, f.RetType) {
			return pkgErr(p, nodeErrf(f.Ret, "ret type %s does not match function return type %s", f.Ret.Type, f.RetType))
		}
	}
	for _, pr := range p.Procs {
		if err := verifyGraph(p, pr.AllNodes(), ids, true); err != nil {
			return pkgErr(p, err)
		}
		if !TypeEq(pr.Init.Type(), pr.State.Type) {
			return pkgErr(p, nodeErrf(pr.State, "init value type %s does not match state type %s", pr.Init.Type(), pr.State.Type))
		}
		if !TypeEq(pr.Next.Operands[1].Type, pr.State.Type) {
			return pkgErr(p, nodeErrf(pr.Next, "next state type %s does not match state type %s", pr.Next.Operands[1].Type, pr.State.Type))
		}
	}
	return nil
}

func pkgErr(p *Package, err error) error {
	if e, ok := err.(*MalformedIRError); ok {
		e.Pkg = p.Name
		return e
	}
	return &MalformedIRError{Pkg: p.Name, Msg: err.Error()}
}

func nodeErrf(n *Node, format string, args ...any) *MalformedIRError {
	return &MalformedIRError{Node: n.Name, Msg: fmt.Sprintf(format, args...)}
}

func verifyGraph(p *Package, nodes []*Node, ids map[int32]string, inProc bool) error {
	members := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		members[n] = true
	}
	for _, n := range nodes {
		if n.ID < 1 {
			return nodeErrf(n, "node has no id")
		}
		if prev, dup := ids[n.ID]; dup {
			return nodeErrf(n, "duplicate node id %d (also %s)", n.ID, prev)
		}
		ids[n.ID] = n.Name
		for _, operand := range n.Operands {
			if !members[operand] {
				return nodeErrf(n, "operand %s is not part of the same graph", operand)
			}
		}
		if err := verifyNode(p, n, inProc); err != nil {
			return err
		}
	}
	if _, err := TopoSort(nodes); err != nil {
		return err
	}
	return nil
}

func verifyNode(p *Package, n *Node, inProc bool) error {
	if n.Type == nil {
		return nodeErrf(n, "node has no type")
	}
	bitsOperand := func(i int) (BitsType, error) {
		t, ok := n.Operands[i].Type.(BitsType)
		if !ok {
			return BitsType{}, nodeErrf(n, "operand %s must have bits type, has %s", n.Operands[i], n.Operands[i].Type)
		}
		return t, nil
	}
	sameAsResult := func(i int) error {
		if !TypeEq(n.Operands[i].Type, n.Type) {
			return nodeErrf(n, "operand %s has type %s, want %s", n.Operands[i], n.Operands[i].Type, n.Type)
		}
		return nil
	}
	positional := len(n.Operands)
	if n.HasPred {
		positional--
	}
	if n.Op == OpSel {
		positional = 1
	}

	switch n.Op {
	case OpParam:
		if len(n.Operands) != 0 {
			return nodeErrf(n, "param takes no operands")
		}

	case OpLiteral:
		if len(n.Operands) != 0 {
			return nodeErrf(n, "literal takes no operands")
		}
		if n.Value == nil {
			return nodeErrf(n, "literal has no value")
		}
		if !TypeEq(n.Value.Type(), n.Type) {
			return nodeErrf(n, "literal value type %s does not match node type %s", n.Value.Type(), n.Type)
		}

	case OpTuple:
		t, ok := n.Type.(TupleType)
		if !ok || len(t.Elems) != len(n.Operands) {
			return nodeErrf(n, "tuple type %s does not match %d operands", n.Type, len(n.Operands))
		}
		for i, operand := range n.Operands {
			if !TypeEq(operand.Type, t.Elems[i]) {
				return nodeErrf(n, "tuple element %d has type %s, want %s", i, operand.Type, t.Elems[i])
			}
		}

	case OpTupleIndex:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		t, ok := n.Operands[0].Type.(TupleType)
		if !ok {
			return nodeErrf(n, "tuple_index of non-tuple type %s", n.Operands[0].Type)
		}
		if n.Index < 0 || n.Index >= len(t.Elems) {
			return nodeErrf(n, "tuple_index %d out of range for %s", n.Index, t)
		}
		if !TypeEq(n.Type, t.Elems[n.Index]) {
			return nodeErrf(n, "tuple_index element type %s does not match node type %s", t.Elems[n.Index], n.Type)
		}

	case OpIdentity:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		return sameAsResult(0)

	case OpAdd, OpSub, OpUDiv, OpSDiv, OpUMod, OpSMod:
		if err := wantOperands(n, 2); err != nil {
			return err
		}
		if _, ok := n.Type.(BitsType); !ok {
			return nodeErrf(n, "%s result must have bits type, has %s", n.Op, n.Type)
		}
		for i := range n.Operands {
			if err := sameAsResult(i); err != nil {
				return err
			}
		}

	case OpUMul, OpSMul:
		if err := wantOperands(n, 2); err != nil {
			return err
		}
		if _, ok := n.Type.(BitsType); !ok {
			return nodeErrf(n, "%s result must have bits type, has %s", n.Op, n.Type)
		}
		for i := range n.Operands {
			if _, err := bitsOperand(i); err != nil {
				return err
			}
		}

	case OpAnd, OpOr, OpXor, OpNand, OpNor:
		if len(n.Operands) < 1 {
			return nodeErrf(n, "%s needs at least one operand", n.Op)
		}
		if _, ok := n.Type.(BitsType); !ok {
			return nodeErrf(n, "%s result must have bits type, has %s", n.Op, n.Type)
		}
		for i := range n.Operands {
			if err := sameAsResult(i); err != nil {
				return err
			}
		}

	case OpNot, OpNeg:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		if _, ok := n.Type.(BitsType); !ok {
			return nodeErrf(n, "%s result must have bits type, has %s", n.Op, n.Type)
		}
		return sameAsResult(0)

	case OpEq, OpNe:
		if err := wantOperands(n, 2); err != nil {
			return err
		}
		if !TypeEq(n.Operands[0].Type, n.Operands[1].Type) {
			return nodeErrf(n, "%s operand types %s and %s differ", n.Op, n.Operands[0].Type, n.Operands[1].Type)
		}
		if _, isTok := n.Operands[0].Type.(TokenType); isTok {
			return nodeErrf(n, "%s of token values", n.Op)
		}
		return wantBool(n)

	case OpUGt, OpUGe, OpULt, OpULe, OpSGt, OpSGe, OpSLt, OpSLe:
		if err := wantOperands(n, 2); err != nil {
			return err
		}
		a, err := bitsOperand(0)
		if err != nil {
			return err
		}
		b, err := bitsOperand(1)
		if err != nil {
			return err
		}
		if a.Width != b.Width {
			return nodeErrf(n, "%s operand widths %d and %d differ", n.Op, a.Width, b.Width)
		}
		return wantBool(n)

	case OpShll, OpShrl, OpShra:
		if err := wantOperands(n, 2); err != nil {
			return err
		}
		if err := sameAsResult(0); err != nil {
			return err
		}
		if _, err := bitsOperand(1); err != nil {
			return err
		}

	case OpConcat:
		if len(n.Operands) < 1 {
			return nodeErrf(n, "concat needs at least one operand")
		}
		total := 0
		for i := range n.Operands {
			t, err := bitsOperand(i)
			if err != nil {
				return err
			}
			total += t.Width
		}
		if !TypeEq(n.Type, BitsType{Width: total}) {
			return nodeErrf(n, "concat result type %s does not match total width %d", n.Type, total)
		}

	case OpBitSlice:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		t, err := bitsOperand(0)
		if err != nil {
			return err
		}
		if n.Start < 0 || n.Width < 0 || n.Start+n.Width > t.Width {
			return nodeErrf(n, "bit_slice [%d, %d) out of range for bits[%d]", n.Start, n.Start+n.Width, t.Width)
		}
		if !TypeEq(n.Type, BitsType{Width: n.Width}) {
			return nodeErrf(n, "bit_slice result type %s does not match width %d", n.Type, n.Width)
		}

	case OpZeroExt, OpSignExt:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		t, err := bitsOperand(0)
		if err != nil {
			return err
		}
		if n.NewWidth < t.Width {
			return nodeErrf(n, "%s new_bit_count %d is narrower than operand width %d", n.Op, n.NewWidth, t.Width)
		}
		if !TypeEq(n.Type, BitsType{Width: n.NewWidth}) {
			return nodeErrf(n, "%s result type %s does not match new_bit_count %d", n.Op, n.Type, n.NewWidth)
		}

	case OpAndReduce, OpOrReduce, OpXorReduce:
		if err := wantOperands(n, 1); err != nil {
			return err
		}
		if _, err := bitsOperand(0); err != nil {
			return err
		}
		return wantBool(n)

	case OpSel:
		if positional != 1 || n.NumCases < 1 {
			return nodeErrf(n, "sel needs a selector and at least one case")
		}
		sel, err := bitsOperand(0)
		if err != nil {
			return err
		}
		for _, c := range n.SelCases() {
			if !TypeEq(c.Type, n.Type) {
				return nodeErrf(n, "sel case %s has type %s, want %s", c, c.Type, n.Type)
			}
		}
		covered := sel.Width < 31 && 1<<uint(sel.Width) == n.NumCases
		if covered && n.HasDefault {
			return nodeErrf(n, "sel has a default but the cases cover the selector")
		}
		if !covered && !n.HasDefault {
			return nodeErrf(n, "sel cases do not cover bits[%d] and no default is given", sel.Width)
		}
		if d := n.SelDefault(); d != nil && !TypeEq(d.Type, n.Type) {
			return nodeErrf(n, "sel default has type %s, want %s", d.Type, n.Type)
		}

	case OpAfterAll:
		for i := range n.Operands {
			if _, isTok := n.Operands[i].Type.(TokenType); !isTok {
				return nodeErrf(n, "after_all operand %s is not a token", n.Operands[i])
			}
		}
		if _, isTok := n.Type.(TokenType); !isTok {
			return nodeErrf(n, "after_all result must be a token")
		}

	case OpSend:
		if !inProc {
			return nodeErrf(n, "send outside a proc")
		}
		if positional != 2 {
			return nodeErrf(n, "send takes a token and a value, got %d operands", positional)
		}
		if _, isTok := n.Type.(TokenType); !isTok {
			return nodeErrf(n, "send result must be a token")
		}
		c, err := verifyChannelOp(p, n)
		if err != nil {
			return err
		}
		if !c.CanSend() {
			return nodeErrf(n, "send on %s channel %s", c.Dir, c.Name)
		}
		if !TypeEq(n.Data().Type, c.Elem) {
			return nodeErrf(n, "send value type %s does not match channel %s type %s", n.Data().Type, c.Name, c.Elem)
		}

	case OpReceive:
		if !inProc {
			return nodeErrf(n, "receive outside a proc")
		}
		if positional != 1 {
			return nodeErrf(n, "receive takes a token, got %d operands", positional)
		}
		c, err := verifyChannelOp(p, n)
		if err != nil {
			return err
		}
		if !c.CanReceive() {
			return nodeErrf(n, "receive on %s channel %s", c.Dir, c.Name)
		}
		want := TupleType{Elems: []Type{TokenType{}, c.Elem}}
		if !TypeEq(n.Type, want) {
			return nodeErrf(n, "receive result type %s, want %s", n.Type, want)
		}

	case OpNext:
		if len(n.Operands) != 2 {
			return nodeErrf(n, "next takes a token and a state value")
		}
		if _, isTok := n.Operands[0].Type.(TokenType); !isTok {
			return nodeErrf(n, "next token operand %s is not a token", n.Operands[0])
		}

	default:
		return nodeErrf(n, "unknown op")
	}
	return nil
}

func verifyChannelOp(p *Package, n *Node) (*Chan, error) {
	if _, isTok := n.TokenOperand().Type.(TokenType); !isTok {
		return nil, nodeErrf(n, "%s token operand %s is not a token", n.Op, n.TokenOperand())
	}
	if pred := n.Predicate(); pred != nil && !TypeEq(pred.Type, BitsType{Width: 1}) {
		return nil, nodeErrf(n, "predicate %s must have type bits[1], has %s", pred, pred.Type)
	}
	c := p.ChanByID(n.ChannelID)
	if c == nil {
		return nil, nodeErrf(n, "unknown channel id %d", n.ChannelID)
	}
	return c, nil
}

func wantOperands(n *Node, want int) error {
	if len(n.Operands) != want {
		return nodeErrf(n, "%s takes %d operands, got %d", n.Op, want, len(n.Operands))
	}
	return nil
}

func wantBool(n *Node) error {
	if !TypeEq(n.Type, BitsType{Width: 1}) {
		return nodeErrf(n, "%s result must have type bits[1], has %s", n.Op, n.Type)
	}
	return nil
}
