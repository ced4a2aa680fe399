package ir

import (
	"fmt"
	"strings"
)

// Format renders p in the textual IR format: the file table, then channels,
// then functions and procs.  Reparsing the output yields a structurally
// equal package.
func Format(p *Package) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "package %s\n", p.Name)
	if len(p.Files) > 0 {
		sb.WriteString("\n")
		for i, f := range p.Files {
			fmt.Fprintf(sb, "file_number %d %q\n", i, f)
		}
	}
	if len(p.Chans) > 0 {
		sb.WriteString("\n")
		for _, c := range p.Chans {
			writeChan(sb, c)
		}
	}
	for _, f := range p.Fns {
		sb.WriteString("\n")
		writeFn(sb, f)
	}
	for _, pr := range p.Procs {
		sb.WriteString("\n")
		writeProc(sb, pr)
	}
	return sb.String()
}

func (p *Package) String() string { return Format(p) }

// FormatProc renders a single proc in the textual format.  The output is a
// stable function of the proc's structure, suitable for content hashing.
func FormatProc(pr *Proc) string {
	sb := &strings.Builder{}
	writeProc(sb, pr)
	return sb.String()
}

// FormatChan renders a single channel declaration.
func FormatChan(c *Chan) string {
	sb := &strings.Builder{}
	writeChan(sb, c)
	return sb.String()
}

func writeChan(sb *strings.Builder, c *Chan) {
	fmt.Fprintf(sb, "chan %s(%s, id=%d, kind=%s, ops=%s, flow_control=%s, metadata=\"\"\"%s\"\"\")\n",
		c.Name, c.Elem, c.ID, c.Kind, c.Dir, c.Flow, c.Metadata)
}

func writeFn(sb *strings.Builder, f *Fn) {
	fmt.Fprintf(sb, "fn %s(", f.Name)
	for i, param := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s: %s", param.Name, param.Type)
	}
	fmt.Fprintf(sb, ") -> %s {\n", f.RetType)
	for _, n := range f.Body {
		sb.WriteString("  ")
		if n == f.Ret {
			sb.WriteString("ret ")
		}
		writeNode(sb, n)
	}
	sb.WriteString("}\n")
}

func writeProc(sb *strings.Builder, pr *Proc) {
	fmt.Fprintf(sb, "proc %s(%s: token, %s: %s, init=%s) {\n",
		pr.Name, pr.Token.Name, pr.State.Name, pr.State.Type, untypedValue(pr.Init))
	for _, n := range pr.Body {
		sb.WriteString("  ")
		writeNode(sb, n)
	}
	fmt.Fprintf(sb, "  next(%s, %s)\n", pr.Next.Operands[0].Name, pr.Next.Operands[1].Name)
	sb.WriteString("}\n")
}

func writeNode(sb *strings.Builder, n *Node) {
	fmt.Fprintf(sb, "%s: %s = %s(", n.Name, n.Type, n.Op)

	npos := len(n.Operands)
	switch n.Op {
	case OpSel:
		npos = 1
	case OpSend, OpReceive:
		if n.HasPred {
			npos--
		}
	}
	var args []string
	for _, operand := range n.Operands[:npos] {
		args = append(args, operand.Name)
	}
	switch n.Op {
	case OpLiteral:
		args = append(args, "value="+untypedValue(n.Value))
	case OpTupleIndex:
		args = append(args, fmt.Sprintf("index=%d", n.Index))
	case OpBitSlice:
		args = append(args, fmt.Sprintf("start=%d", n.Start), fmt.Sprintf("width=%d", n.Width))
	case OpZeroExt, OpSignExt:
		args = append(args, fmt.Sprintf("new_bit_count=%d", n.NewWidth))
	case OpSel:
		caseNames := make([]string, 0, n.NumCases)
		for _, c := range n.SelCases() {
			caseNames = append(caseNames, c.Name)
		}
		args = append(args, "cases=["+strings.Join(caseNames, ", ")+"]")
		if d := n.SelDefault(); d != nil {
			args = append(args, "default="+d.Name)
		}
	case OpSend, OpReceive:
		if pred := n.Predicate(); pred != nil {
			args = append(args, "predicate="+pred.Name)
		}
		args = append(args, fmt.Sprintf("channel_id=%d", n.ChannelID))
	}
	args = append(args, fmt.Sprintf("id=%d", n.ID))
	if len(n.Pos) > 0 {
		ps := make([]string, len(n.Pos))
		for i, pos := range n.Pos {
			ps[i] = fmt.Sprintf("(%d,%d,%d)", pos.File, pos.Line, pos.Col)
		}
		args = append(args, "pos=["+strings.Join(ps, ",")+"]")
	}
	sb.WriteString(strings.Join(args, ", "))
	sb.WriteString(")\n")
}

// untypedValue renders v in the attribute form, where the node or state
// type supplies the type: a bare decimal for bits, parenthesized elements
// for tuples.
func untypedValue(v Value) string {
	switch v := v.(type) {
	case Bits:
		return v.String()
	case Tuple:
		elems := make([]string, len(v))
		for i, e := range v {
			elems[i] = untypedValue(e)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		panic(v)
	}
}
