package interp

import (
	"fmt"

	"github.com/rw1nkler/xls/ir"
)

// EvalNode computes one pure node from its operand values.  Side-effecting
// ops (send, receive) and params are the caller's concern.
func EvalNode(n *ir.Node, args []ir.Value) (ir.Value, error) {
	switch n.Op {
	case ir.OpLiteral:
		return n.Value, nil

	case ir.OpTuple:
		return ir.Tuple(append([]ir.Value{}, args...)), nil

	case ir.OpTupleIndex:
		return args[0].(ir.Tuple)[n.Index], nil

	case ir.OpIdentity:
		return args[0], nil

	case ir.OpAdd:
		return args[0].(ir.Bits).Add(args[1].(ir.Bits)), nil
	case ir.OpSub:
		return args[0].(ir.Bits).Sub(args[1].(ir.Bits)), nil
	case ir.OpUMul:
		return ir.UMul(args[0].(ir.Bits), args[1].(ir.Bits), n.Type.(ir.BitsType).Width), nil
	case ir.OpSMul:
		return ir.SMul(args[0].(ir.Bits), args[1].(ir.Bits), n.Type.(ir.BitsType).Width), nil
	case ir.OpUDiv:
		return args[0].(ir.Bits).UDiv(args[1].(ir.Bits)), nil
	case ir.OpSDiv:
		return args[0].(ir.Bits).SDiv(args[1].(ir.Bits)), nil
	case ir.OpUMod:
		return args[0].(ir.Bits).UMod(args[1].(ir.Bits)), nil
	case ir.OpSMod:
		return args[0].(ir.Bits).SMod(args[1].(ir.Bits)), nil

	case ir.OpAnd:
		return foldBits(args, ir.Bits.And), nil
	case ir.OpOr:
		return foldBits(args, ir.Bits.Or), nil
	case ir.OpXor:
		return foldBits(args, ir.Bits.Xor), nil
	case ir.OpNand:
		return foldBits(args, ir.Bits.And).Not(), nil
	case ir.OpNor:
		return foldBits(args, ir.Bits.Or).Not(), nil
	case ir.OpNot:
		return args[0].(ir.Bits).Not(), nil
	case ir.OpNeg:
		return args[0].(ir.Bits).Neg(), nil

	case ir.OpEq:
		return boolBits(ir.ValueEq(args[0], args[1])), nil
	case ir.OpNe:
		return boolBits(!ir.ValueEq(args[0], args[1])), nil
	case ir.OpUGt:
		return boolBits(ucmp(args) > 0), nil
	case ir.OpUGe:
		return boolBits(ucmp(args) >= 0), nil
	case ir.OpULt:
		return boolBits(ucmp(args) < 0), nil
	case ir.OpULe:
		return boolBits(ucmp(args) <= 0), nil
	case ir.OpSGt:
		return boolBits(scmp(args) > 0), nil
	case ir.OpSGe:
		return boolBits(scmp(args) >= 0), nil
	case ir.OpSLt:
		return boolBits(scmp(args) < 0), nil
	case ir.OpSLe:
		return boolBits(scmp(args) <= 0), nil

	case ir.OpShll:
		return args[0].(ir.Bits).Shll(args[1].(ir.Bits)), nil
	case ir.OpShrl:
		return args[0].(ir.Bits).Shrl(args[1].(ir.Bits)), nil
	case ir.OpShra:
		return args[0].(ir.Bits).Shra(args[1].(ir.Bits)), nil

	case ir.OpConcat:
		xs := make([]ir.Bits, len(args))
		for i, a := range args {
			xs[i] = a.(ir.Bits)
		}
		return ir.Concat(xs...), nil

	case ir.OpBitSlice:
		return args[0].(ir.Bits).Slice(n.Start, n.Width), nil
	case ir.OpZeroExt:
		return args[0].(ir.Bits).ZeroExt(n.NewWidth), nil
	case ir.OpSignExt:
		return args[0].(ir.Bits).SignExt(n.NewWidth), nil

	case ir.OpAndReduce:
		return args[0].(ir.Bits).AndReduce(), nil
	case ir.OpOrReduce:
		return args[0].(ir.Bits).OrReduce(), nil
	case ir.OpXorReduce:
		return args[0].(ir.Bits).XorReduce(), nil

	case ir.OpSel:
		return selValue(n, args), nil

	case ir.OpAfterAll:
		return ir.Token{}, nil

	default:
		return nil, fmt.Errorf("node %s: cannot evaluate op %s", n, n.Op)
	}
}

func foldBits(args []ir.Value, f func(ir.Bits, ir.Bits) ir.Bits) ir.Bits {
	acc := args[0].(ir.Bits)
	for _, a := range args[1:] {
		acc = f(acc, a.(ir.Bits))
	}
	return acc
}

func boolBits(b bool) ir.Bits {
	if b {
		return ir.NewBits(1, 1)
	}
	return ir.ZeroBits(1)
}

func ucmp(args []ir.Value) int { return args[0].(ir.Bits).UCmp(args[1].(ir.Bits)) }
func scmp(args []ir.Value) int { return args[0].(ir.Bits).SCmp(args[1].(ir.Bits)) }

// selValue picks the case named by the selector, falling back to the
// default when the selector exceeds the case count.
func selValue(n *ir.Node, args []ir.Value) ir.Value {
	sel := args[0].(ir.Bits).Big()
	cases := args[1 : 1+n.NumCases]
	if sel.IsUint64() && sel.Uint64() < uint64(len(cases)) {
		return cases[sel.Uint64()]
	}
	return args[1+n.NumCases]
}
