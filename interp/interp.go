// Package interp evaluates IR graphs directly against the value model.  It
// is the reference backend: the compiled backend must match its observable
// behavior exactly.
package interp

import (
	"context"
	"fmt"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// Backend is the direct graph interpreter.
type Backend struct {
	orders map[*ir.Proc][]*ir.Node
}

var _ sim.Backend = (*Backend)(nil)

// New returns an interpreter backend.
func New() *Backend {
	return &Backend{orders: make(map[*ir.Proc][]*ir.Node)}
}

// Name implements sim.Backend.
func (b *Backend) Name() string { return "interpreter" }

// Step evaluates pr's graph once in topological order.  Channel effects are
// performed against qs but not committed; the scheduler commits on
// completion and rolls back on stall.
func (b *Backend) Step(ctx context.Context, pr *ir.Proc, st *sim.ProcState, qs *sim.Queues) (sim.StepResult, error) {
	order, err := b.order(pr)
	if err != nil {
		return sim.StepResult{}, err
	}
	env := make(map[*ir.Node]ir.Value, len(order))
	var effects []sim.Effect
	for _, n := range order {
		switch n.Op {
		case ir.OpParam:
			switch n {
			case pr.Token:
				env[n] = st.Token
			case pr.State:
				env[n] = st.State
			default:
				return sim.StepResult{}, fmt.Errorf("unknown param %s", n)
			}

		case ir.OpNext:
			// next carries no value of its own; its operands are read below.
			env[n] = ir.Token{}

		case ir.OpSend:
			q, err := qs.Get(n.ChannelID)
			if err != nil {
				return sim.StepResult{}, err
			}
			if pred := n.Predicate(); pred == nil || !env[pred].(ir.Bits).IsZero() {
				v := env[n.Data()]
				q.Send(v)
				effects = append(effects, sim.Effect{
					Node: n, Chan: q.Chan(), Kind: sim.EffectSend, Value: v,
				})
			}
			env[n] = ir.Token{}

		case ir.OpReceive:
			q, err := qs.Get(n.ChannelID)
			if err != nil {
				return sim.StepResult{}, err
			}
			elem := q.Chan().Elem
			if pred := n.Predicate(); pred != nil && env[pred].(ir.Bits).IsZero() {
				if q.Chan().Flow == ir.FlowReadyValid {
					// The predicate is the receiver's ready signal.
					return stalled(n, q), nil
				}
				env[n] = ir.Tuple{ir.Token{}, ir.ZeroValue(elem)}
				continue
			}
			v, ok := q.Recv()
			if !ok {
				return stalled(n, q), nil
			}
			env[n] = ir.Tuple{ir.Token{}, v}
			effects = append(effects, sim.Effect{
				Node: n, Chan: q.Chan(), Kind: sim.EffectRecv, Value: v,
			})

		default:
			args := make([]ir.Value, len(n.Operands))
			for i, operand := range n.Operands {
				args[i] = env[operand]
			}
			v, err := EvalNode(n, args)
			if err != nil {
				return sim.StepResult{}, err
			}
			env[n] = v
		}
	}
	return sim.StepResult{
		Status:  sim.Completed,
		Token:   env[pr.Next.Operands[0]],
		State:   env[pr.Next.Operands[1]],
		Effects: effects,
	}, nil
}

func stalled(n *ir.Node, q *sim.Queue) sim.StepResult {
	return sim.StepResult{Status: sim.Stalled, StallNode: n, StallChan: q.Chan()}
}

func (b *Backend) order(pr *ir.Proc) ([]*ir.Node, error) {
	if order, ok := b.orders[pr]; ok {
		return order, nil
	}
	order, err := ir.TopoSort(pr.AllNodes())
	if err != nil {
		return nil, err
	}
	b.orders[pr] = order
	return order, nil
}

// EvalFunction evaluates a pure function on args.
func EvalFunction(f *ir.Fn, args []ir.Value) (ir.Value, error) {
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("fn %s takes %d arguments, got %d", f.Name, len(f.Params), len(args))
	}
	env := make(map[*ir.Node]ir.Value, len(f.Body)+len(f.Params))
	for i, param := range f.Params {
		if !ir.TypeEq(args[i].Type(), param.Type) {
			return nil, fmt.Errorf("fn %s argument %d has type %s, want %s",
				f.Name, i, args[i].Type(), param.Type)
		}
		env[param] = args[i]
	}
	order, err := ir.TopoSort(f.AllNodes())
	if err != nil {
		return nil, err
	}
	for _, n := range order {
		if n.Op == ir.OpParam {
			continue
		}
		operands := make([]ir.Value, len(n.Operands))
		for i, operand := range n.Operands {
			operands[i] = env[operand]
		}
		v, err := EvalNode(n, operands)
		if err != nil {
			return nil, err
		}
		env[n] = v
	}
	return env[f.Ret], nil
}
