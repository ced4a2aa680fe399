package ir

// Op identifies the operation a Node computes.
type Op uint8

const (
	OpInvalid Op = iota

	OpParam
	OpLiteral
	OpTuple
	OpTupleIndex
	OpIdentity

	OpAdd
	OpSub
	OpUMul
	OpSMul
	OpUDiv
	OpSDiv
	OpUMod
	OpSMod

	OpAnd
	OpOr
	OpXor
	OpNand
	OpNor
	OpNot
	OpNeg

	OpEq
	OpNe
	OpUGt
	OpUGe
	OpULt
	OpULe
	OpSGt
	OpSGe
	OpSLt
	OpSLe

	OpShll
	OpShrl
	OpShra
	OpConcat
	OpBitSlice
	OpZeroExt
	OpSignExt
	OpAndReduce
	OpOrReduce
	OpXorReduce
	OpSel

	OpAfterAll
	OpSend
	OpReceive
	OpNext
)

var opNames = [...]string{
	OpParam:      "param",
	OpLiteral:    "literal",
	OpTuple:      "tuple",
	OpTupleIndex: "tuple_index",
	OpIdentity:   "identity",
	OpAdd:        "add",
	OpSub:        "sub",
	OpUMul:       "umul",
	OpSMul:       "smul",
	OpUDiv:       "udiv",
	OpSDiv:       "sdiv",
	OpUMod:       "umod",
	OpSMod:       "smod",
	OpAnd:        "and",
	OpOr:         "or",
	OpXor:        "xor",
	OpNand:       "nand",
	OpNor:        "nor",
	OpNot:        "not",
	OpNeg:        "neg",
	OpEq:         "eq",
	OpNe:         "ne",
	OpUGt:        "ugt",
	OpUGe:        "uge",
	OpULt:        "ult",
	OpULe:        "ule",
	OpSGt:        "sgt",
	OpSGe:        "sge",
	OpSLt:        "slt",
	OpSLe:        "sle",
	OpShll:       "shll",
	OpShrl:       "shrl",
	OpShra:       "shra",
	OpConcat:     "concat",
	OpBitSlice:   "bit_slice",
	OpZeroExt:    "zero_ext",
	OpSignExt:    "sign_ext",
	OpAndReduce:  "and_reduce",
	OpOrReduce:   "or_reduce",
	OpXorReduce:  "xor_reduce",
	OpSel:        "sel",
	OpAfterAll:   "after_all",
	OpSend:       "send",
	OpReceive:    "receive",
	OpNext:       "next",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "invalid"
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for i, name := range opNames {
		if name != "" {
			m[name] = Op(i)
		}
	}
	return m
}()

// OpByName returns the op with the given textual name.
func OpByName(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// SideEffecting reports whether the op interacts with channels.  Evaluation
// order between side-effecting nodes is fixed by their token chain.
func (o Op) SideEffecting() bool {
	return o == OpSend || o == OpReceive
}
