package ir

import "container/heap"

// TopoSort orders nodes so that every operand precedes its users.  Among
// nodes whose operands are all satisfied, the smallest id comes first, so
// the order is a deterministic function of the graph alone.  Both backends
// rely on this determinism.
func TopoSort(nodes []*Node) ([]*Node, error) {
	indeg := make(map[*Node]int, len(nodes))
	users := make(map[*Node][]*Node, len(nodes))
	for _, n := range nodes {
		indeg[n] = 0
	}
	for _, n := range nodes {
		for _, operand := range n.Operands {
			indeg[n]++
			users[operand] = append(users[operand], n)
		}
	}
	h := &nodeHeap{}
	for _, n := range nodes {
		if indeg[n] == 0 {
			heap.Push(h, n)
		}
	}
	out := make([]*Node, 0, len(nodes))
	for h.Len() > 0 {
		n := heap.Pop(h).(*Node)
		out = append(out, n)
		for _, u := range users[n] {
			indeg[u]--
			if indeg[u] == 0 {
				heap.Push(h, u)
			}
		}
	}
	if len(out) != len(nodes) {
		var stuck *Node
		for _, n := range nodes {
			if indeg[n] > 0 && (stuck == nil || n.ID < stuck.ID) {
				stuck = n
			}
		}
		return nil, &MalformedIRError{Node: stuck.Name, Msg: "cycle in node graph"}
	}
	return out, nil
}

type nodeHeap []*Node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].ID < h[j].ID }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
