package jit

import (
	"fmt"

	"github.com/rw1nkler/xls/ir"
)

// Prog is a compiled proc: a linear instruction sequence over a frame of
// value slots.  Instruction order follows the deterministic topological
// order of the graph, so channel effects replay in token-chain order.
type Prog struct {
	proc   *ir.Proc
	instrs []instr
	slots  int

	// tokenSlot and stateSlot hold the next-tick token and state once the
	// program has run.
	tokenSlot int
	stateSlot int
}

// Compile translates pr ahead of time.  Literals and constant-operand pure
// nodes fold to constants, and pure nodes that reach neither an effect nor
// next are dropped.
func Compile(pkg *ir.Package, pr *ir.Proc) (*Prog, error) {
	order, err := ir.TopoSort(pr.AllNodes())
	if err != nil {
		return nil, &CompileError{Proc: pr.Name, Err: err}
	}
	c := &compiler{
		pkg:    pkg,
		slots:  make(map[*ir.Node]int),
		consts: make(map[*ir.Node]ir.Value),
	}
	live := markLive(pr)
	for _, n := range order {
		if !live[n] {
			continue
		}
		if err := c.emit(pr, n); err != nil {
			return nil, &CompileError{Proc: pr.Name, Err: err}
		}
	}
	tokenSlot := c.materialize(pr.Next.Operands[0])
	stateSlot := c.materialize(pr.Next.Operands[1])
	return &Prog{proc: pr, instrs: c.instrs, slots: c.nslots,
		tokenSlot: tokenSlot, stateSlot: stateSlot}, nil
}

// markLive finds the nodes whose value can reach a channel effect or the
// next-tick state.  Everything else is dead and compiles to nothing.
func markLive(pr *ir.Proc) map[*ir.Node]bool {
	live := make(map[*ir.Node]bool)
	var visit func(n *ir.Node)
	visit = func(n *ir.Node) {
		if live[n] {
			return
		}
		live[n] = true
		for _, operand := range n.Operands {
			visit(operand)
		}
	}
	for _, n := range pr.Body {
		if n.Op.SideEffecting() {
			visit(n)
		}
	}
	visit(pr.Next)
	return live
}

type compiler struct {
	pkg    *ir.Package
	slots  map[*ir.Node]int
	consts map[*ir.Node]ir.Value
	instrs []instr
	nslots int
}

func (c *compiler) emit(pr *ir.Proc, n *ir.Node) error {
	switch n.Op {
	case ir.OpParam:
		switch n {
		case pr.Token:
			c.consts[n] = ir.Token{}
		case pr.State:
			c.add(stateI{dst: c.alloc(n)})
		default:
			return fmt.Errorf("unknown param %s", n)
		}

	case ir.OpNext:
		// handled by the caller via stateSlot

	case ir.OpLiteral:
		c.consts[n] = n.Value

	case ir.OpIdentity:
		operand := n.Operands[0]
		if v, ok := c.consts[operand]; ok {
			c.consts[n] = v
		} else {
			c.slots[n] = c.slots[operand]
		}

	case ir.OpSend:
		pred := -1
		if p := n.Predicate(); p != nil {
			pred = c.materialize(p)
		}
		ch := c.pkg.ChanByID(n.ChannelID)
		if ch == nil {
			return fmt.Errorf("node %s: unknown channel id %d", n, n.ChannelID)
		}
		c.add(sendI{node: n, chanID: n.ChannelID, data: c.materialize(n.Data()), pred: pred})
		c.consts[n] = ir.Token{}

	case ir.OpReceive:
		pred := -1
		if p := n.Predicate(); p != nil {
			pred = c.materialize(p)
		}
		ch := c.pkg.ChanByID(n.ChannelID)
		if ch == nil {
			return fmt.Errorf("node %s: unknown channel id %d", n, n.ChannelID)
		}
		c.add(recvI{node: n, chanID: n.ChannelID, dst: c.alloc(n), pred: pred,
			flow: ch.Flow, elem: ch.Elem})

	default:
		if v, ok, err := c.fold(n); err != nil {
			return err
		} else if ok {
			c.consts[n] = v
			return nil
		}
		xs := make([]int, len(n.Operands))
		for i, operand := range n.Operands {
			xs[i] = c.materialize(operand)
		}
		ix, err := buildPure(n, c.alloc(n), xs)
		if err != nil {
			return err
		}
		c.add(ix)
	}
	return nil
}

// fold evaluates a pure node whose operands are all constants by running
// its instruction on a scratch frame at compile time.
func (c *compiler) fold(n *ir.Node) (ir.Value, bool, error) {
	frame := make([]ir.Value, len(n.Operands)+1)
	xs := make([]int, len(n.Operands))
	for i, operand := range n.Operands {
		v, ok := c.consts[operand]
		if !ok {
			return nil, false, nil
		}
		frame[i] = v
		xs[i] = i
	}
	dst := len(n.Operands)
	ix, err := buildPure(n, dst, xs)
	if err != nil {
		return nil, false, err
	}
	m := &machine{frame: frame}
	if err := m.execPure(ix); err != nil {
		return nil, false, err
	}
	return frame[dst], true, nil
}

// materialize returns the slot holding n's value, emitting a constI for
// folded nodes on first use.
func (c *compiler) materialize(n *ir.Node) int {
	if slot, ok := c.slots[n]; ok {
		return slot
	}
	v, ok := c.consts[n]
	if !ok {
		panic(fmt.Sprintf("node %s has neither slot nor constant", n))
	}
	slot := c.alloc(n)
	c.add(constI{dst: slot, v: v})
	return slot
}

func (c *compiler) alloc(n *ir.Node) int {
	slot := c.nslots
	c.nslots++
	c.slots[n] = slot
	return slot
}

func (c *compiler) add(ix instr) { c.instrs = append(c.instrs, ix) }

// buildPure constructs the instruction for a pure op with the given operand
// and destination slots.
func buildPure(n *ir.Node, dst int, xs []int) (instr, error) {
	switch n.Op {
	case ir.OpAdd, ir.OpSub, ir.OpUMul, ir.OpSMul,
		ir.OpUDiv, ir.OpSDiv, ir.OpUMod, ir.OpSMod,
		ir.OpUGt, ir.OpUGe, ir.OpULt, ir.OpULe,
		ir.OpSGt, ir.OpSGe, ir.OpSLt, ir.OpSLe,
		ir.OpShll, ir.OpShrl, ir.OpShra:
		width := 0
		if bt, ok := n.Type.(ir.BitsType); ok {
			width = bt.Width
		}
		return binI{dst: dst, x: xs[0], y: xs[1], op: n.Op, width: width}, nil

	case ir.OpNot, ir.OpNeg:
		return unI{dst: dst, x: xs[0], op: n.Op}, nil

	case ir.OpEq:
		return eqI{dst: dst, x: xs[0], y: xs[1]}, nil
	case ir.OpNe:
		return eqI{dst: dst, x: xs[0], y: xs[1], negate: true}, nil

	case ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpNand, ir.OpNor:
		return logicI{dst: dst, xs: xs, op: n.Op}, nil

	case ir.OpTuple:
		return tupleI{dst: dst, xs: xs}, nil
	case ir.OpTupleIndex:
		return tupleIndexI{dst: dst, x: xs[0], index: n.Index}, nil
	case ir.OpConcat:
		return concatI{dst: dst, xs: xs}, nil
	case ir.OpBitSlice:
		return sliceI{dst: dst, x: xs[0], start: n.Start, width: n.Width}, nil
	case ir.OpZeroExt:
		return extI{dst: dst, x: xs[0], newWidth: n.NewWidth}, nil
	case ir.OpSignExt:
		return extI{dst: dst, x: xs[0], newWidth: n.NewWidth, signed: true}, nil

	case ir.OpAndReduce, ir.OpOrReduce, ir.OpXorReduce:
		return reduceI{dst: dst, x: xs[0], op: n.Op}, nil

	case ir.OpSel:
		dflt := -1
		if n.HasDefault {
			dflt = xs[1+n.NumCases]
		}
		return selI{dst: dst, sel: xs[0], cases: xs[1 : 1+n.NumCases], dflt: dflt}, nil

	case ir.OpAfterAll:
		return constI{dst: dst, v: ir.Token{}}, nil

	default:
		return nil, fmt.Errorf("node %s: cannot compile op %s", n, n.Op)
	}
}
