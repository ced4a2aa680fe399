package jit

import (
	"fmt"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// machine executes a compiled program against a frame of value slots.  One
// machine serves one step attempt; it is cheap to construct.
type machine struct {
	frame   []ir.Value
	effects []sim.Effect
}

// run executes prog for one tick.  Channel effects go to qs uncommitted; a
// not-ready receive aborts with a stalled result.
func (m *machine) run(prog *Prog, st *sim.ProcState, qs *sim.Queues) (sim.StepResult, error) {
	for _, ix := range prog.instrs {
		switch ix := ix.(type) {
		case stateI:
			m.frame[ix.dst] = st.State

		case sendI:
			q, err := qs.Get(ix.chanID)
			if err != nil {
				return sim.StepResult{}, err
			}
			if ix.pred >= 0 && m.frame[ix.pred].(ir.Bits).IsZero() {
				continue
			}
			v := m.frame[ix.data]
			q.Send(v)
			m.effects = append(m.effects, sim.Effect{
				Node: ix.node, Chan: q.Chan(), Kind: sim.EffectSend, Value: v,
			})

		case recvI:
			q, err := qs.Get(ix.chanID)
			if err != nil {
				return sim.StepResult{}, err
			}
			if ix.pred >= 0 && m.frame[ix.pred].(ir.Bits).IsZero() {
				if ix.flow == ir.FlowReadyValid {
					return sim.StepResult{Status: sim.Stalled, StallNode: ix.node, StallChan: q.Chan()}, nil
				}
				m.frame[ix.dst] = ir.Tuple{ir.Token{}, ir.ZeroValue(ix.elem)}
				continue
			}
			v, ok := q.Recv()
			if !ok {
				return sim.StepResult{Status: sim.Stalled, StallNode: ix.node, StallChan: q.Chan()}, nil
			}
			m.frame[ix.dst] = ir.Tuple{ir.Token{}, v}
			m.effects = append(m.effects, sim.Effect{
				Node: ix.node, Chan: q.Chan(), Kind: sim.EffectRecv, Value: v,
			})

		default:
			if err := m.execPure(ix); err != nil {
				return sim.StepResult{}, err
			}
		}
	}
	return sim.StepResult{
		Status:  sim.Completed,
		Token:   m.frame[prog.tokenSlot],
		State:   m.frame[prog.stateSlot],
		Effects: m.effects,
	}, nil
}

// execPure runs one channel-free instruction.  The compiler also calls this
// to fold constants.
func (m *machine) execPure(ix instr) error {
	switch ix := ix.(type) {
	case constI:
		m.frame[ix.dst] = ix.v

	case binI:
		x, y := m.frame[ix.x].(ir.Bits), m.frame[ix.y].(ir.Bits)
		m.frame[ix.dst] = m.bin(ix, x, y)

	case unI:
		x := m.frame[ix.x].(ir.Bits)
		if ix.op == ir.OpNot {
			m.frame[ix.dst] = x.Not()
		} else {
			m.frame[ix.dst] = x.Neg()
		}

	case eqI:
		eq := ir.ValueEq(m.frame[ix.x], m.frame[ix.y])
		m.frame[ix.dst] = boolBits(eq != ix.negate)

	case logicI:
		acc := m.frame[ix.xs[0]].(ir.Bits)
		for _, s := range ix.xs[1:] {
			y := m.frame[s].(ir.Bits)
			switch ix.op {
			case ir.OpAnd, ir.OpNand:
				acc = acc.And(y)
			case ir.OpOr, ir.OpNor:
				acc = acc.Or(y)
			case ir.OpXor:
				acc = acc.Xor(y)
			}
		}
		if ix.op == ir.OpNand || ix.op == ir.OpNor {
			acc = acc.Not()
		}
		m.frame[ix.dst] = acc

	case tupleI:
		t := make(ir.Tuple, len(ix.xs))
		for i, s := range ix.xs {
			t[i] = m.frame[s]
		}
		m.frame[ix.dst] = t

	case tupleIndexI:
		m.frame[ix.dst] = m.frame[ix.x].(ir.Tuple)[ix.index]

	case concatI:
		xs := make([]ir.Bits, len(ix.xs))
		for i, s := range ix.xs {
			xs[i] = m.frame[s].(ir.Bits)
		}
		m.frame[ix.dst] = ir.Concat(xs...)

	case sliceI:
		m.frame[ix.dst] = m.frame[ix.x].(ir.Bits).Slice(ix.start, ix.width)

	case extI:
		x := m.frame[ix.x].(ir.Bits)
		if ix.signed {
			m.frame[ix.dst] = x.SignExt(ix.newWidth)
		} else {
			m.frame[ix.dst] = x.ZeroExt(ix.newWidth)
		}

	case reduceI:
		x := m.frame[ix.x].(ir.Bits)
		switch ix.op {
		case ir.OpAndReduce:
			m.frame[ix.dst] = x.AndReduce()
		case ir.OpOrReduce:
			m.frame[ix.dst] = x.OrReduce()
		case ir.OpXorReduce:
			m.frame[ix.dst] = x.XorReduce()
		}

	case selI:
		sel := m.frame[ix.sel].(ir.Bits).Big()
		if sel.IsUint64() && sel.Uint64() < uint64(len(ix.cases)) {
			m.frame[ix.dst] = m.frame[ix.cases[sel.Uint64()]]
		} else {
			m.frame[ix.dst] = m.frame[ix.dflt]
		}

	default:
		return fmt.Errorf("unknown instruction %T", ix)
	}
	return nil
}

func (m *machine) bin(ix binI, x, y ir.Bits) ir.Value {
	switch ix.op {
	case ir.OpAdd:
		return x.Add(y)
	case ir.OpSub:
		return x.Sub(y)
	case ir.OpUMul:
		return ir.UMul(x, y, ix.width)
	case ir.OpSMul:
		return ir.SMul(x, y, ix.width)
	case ir.OpUDiv:
		return x.UDiv(y)
	case ir.OpSDiv:
		return x.SDiv(y)
	case ir.OpUMod:
		return x.UMod(y)
	case ir.OpSMod:
		return x.SMod(y)
	case ir.OpUGt:
		return boolBits(x.UCmp(y) > 0)
	case ir.OpUGe:
		return boolBits(x.UCmp(y) >= 0)
	case ir.OpULt:
		return boolBits(x.UCmp(y) < 0)
	case ir.OpULe:
		return boolBits(x.UCmp(y) <= 0)
	case ir.OpSGt:
		return boolBits(x.SCmp(y) > 0)
	case ir.OpSGe:
		return boolBits(x.SCmp(y) >= 0)
	case ir.OpSLt:
		return boolBits(x.SCmp(y) < 0)
	case ir.OpSLe:
		return boolBits(x.SCmp(y) <= 0)
	case ir.OpShll:
		return x.Shll(y)
	case ir.OpShrl:
		return x.Shrl(y)
	case ir.OpShra:
		return x.Shra(y)
	default:
		panic(ix.op)
	}
}

func boolBits(b bool) ir.Bits {
	if b {
		return ir.NewBits(1, 1)
	}
	return ir.ZeroBits(1)
}
