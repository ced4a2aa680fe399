package jit

import "github.com/rw1nkler/xls/ir"

// instr is one compiled instruction.  Instructions read and write frame
// slots resolved at compile time.
type instr interface {
	isInstr()
}

type baseInstr struct{}

func (baseInstr) isInstr() {}

// constants / parameters

type constI struct {
	dst int
	v   ir.Value
	baseInstr
}

type stateI struct {
	dst int
	baseInstr
}

// arithmetic / comparison

type binI struct {
	dst, x, y int
	op        ir.Op
	width     int
	baseInstr
}

type unI struct {
	dst, x int
	op     ir.Op
	baseInstr
}

type eqI struct {
	dst, x, y int
	negate    bool
	baseInstr
}

// variadic bitwise ops: and, or, xor, nand, nor

type logicI struct {
	dst int
	xs  []int
	op  ir.Op
	baseInstr
}

// make / break

type tupleI struct {
	dst int
	xs  []int
	baseInstr
}

type tupleIndexI struct {
	dst, x int
	index  int
	baseInstr
}

type concatI struct {
	dst int
	xs  []int
	baseInstr
}

type sliceI struct {
	dst, x       int
	start, width int
	baseInstr
}

type extI struct {
	dst, x   int
	newWidth int
	signed   bool
	baseInstr
}

type reduceI struct {
	dst, x int
	op     ir.Op
	baseInstr
}

type selI struct {
	dst, sel int
	cases    []int
	// dflt is -1 when the cases cover the selector.
	dflt int
	baseInstr
}

// channels

type sendI struct {
	node   *ir.Node
	chanID int64
	data   int
	// pred is -1 for unconditional sends.
	pred int
	baseInstr
}

type recvI struct {
	node   *ir.Node
	chanID int64
	dst    int
	pred   int
	flow   ir.FlowControl
	elem   ir.Type
	baseInstr
}
