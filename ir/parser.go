package ir

import (
	"fmt"
	"strconv"
)

// ParsePackage parses the textual IR format into a Package.  Structural and
// type checking beyond what parsing itself requires is left to
// VerifyPackage.
func ParsePackage(src string) (*Package, error) {
	p := &parser{lx: lexer{src: src}}
	p.advance()
	if err := p.parsePackage(); err != nil {
		return nil, err
	}
	return p.pkg, nil
}

// LoadPackage parses and verifies src.
func LoadPackage(src string) (*Package, error) {
	pkg, err := ParsePackage(src)
	if err != nil {
		return nil, err
	}
	if err := VerifyPackage(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

type parser struct {
	lx  lexer
	tok lexeme

	pkg     *Package
	scope   map[string]*Node
	pending []*Node // nodes awaiting id assignment, in declaration order
}

func (p *parser) advance() {
	p.tok = p.lx.next()
}

// peekIs looks one token past the current one without consuming anything.
func (p *parser) peekIs(ty tokType) bool {
	save := p.lx
	nx := p.lx.next()
	p.lx = save
	return nx.ty == ty
}

func (p *parser) errf(off int, format string, args ...any) error {
	line, col := lineCol(p.lx.src, off)
	return &ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(ty tokType, what string) (lexeme, error) {
	if p.tok.ty != ty {
		return lexeme{}, p.errf(p.tok.off, "expected %s, got %q", what, p.tok.text)
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

func (p *parser) accept(ty tokType) bool {
	if p.tok.ty != ty {
		return false
	}
	p.advance()
	return true
}

func (p *parser) keyword(kw string) bool {
	return p.tok.ty == tokIdent && p.tok.text == kw
}

func (p *parser) expectKeyword(kw string) error {
	if !p.keyword(kw) {
		return p.errf(p.tok.off, "expected %q, got %q", kw, p.tok.text)
	}
	p.advance()
	return nil
}

func (p *parser) parsePackage() error {
	if err := p.expectKeyword("package"); err != nil {
		return err
	}
	nameTok, err := p.expect(tokIdent, "package name")
	if err != nil {
		return err
	}
	if p.pkg, err = NewPackage(nameTok.text); err != nil {
		return err
	}
	for p.tok.ty != tokEOF {
		switch {
		case p.keyword("file_number"):
			err = p.parseFileNumber()
		case p.keyword("chan"):
			err = p.parseChan()
		case p.keyword("fn"):
			err = p.parseFn()
		case p.keyword("proc"):
			err = p.parseProc()
		default:
			return p.errf(p.tok.off, "expected declaration, got %q", p.tok.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseFileNumber() error {
	p.advance()
	n, err := p.parseIntLit(32)
	if err != nil {
		return err
	}
	pathTok, err := p.expect(tokString, "file path")
	if err != nil {
		return err
	}
	p.pkg.SetFile(int(n), pathTok.text)
	return nil
}

func (p *parser) parseChan() error {
	p.advance()
	nameTok, err := p.expect(tokIdent, "channel name")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	elem, err := p.parseType()
	if err != nil {
		return err
	}
	c := &Chan{Name: nameTok.text, Elem: elem}
	var sawID bool
	for p.accept(tokComma) {
		keyTok, err := p.expect(tokIdent, "channel attribute")
		if err != nil {
			return err
		}
		if _, err := p.expect(tokEq, "'='"); err != nil {
			return err
		}
		switch keyTok.text {
		case "id":
			if c.ID, err = p.parseIntLit(64); err != nil {
				return err
			}
			sawID = true
		case "kind":
			tok, err := p.expect(tokIdent, "channel kind")
			if err != nil {
				return err
			}
			k, ok := byName(chanKindNames, tok.text)
			if !ok {
				return p.errf(tok.off, "unknown channel kind %q", tok.text)
			}
			c.Kind = k
		case "ops":
			tok, err := p.expect(tokIdent, "channel direction")
			if err != nil {
				return err
			}
			d, ok := byName(chanDirNames, tok.text)
			if !ok {
				return p.errf(tok.off, "unknown channel direction %q", tok.text)
			}
			c.Dir = d
		case "flow_control":
			tok, err := p.expect(tokIdent, "flow control")
			if err != nil {
				return err
			}
			f, ok := byName(flowControlNames, tok.text)
			if !ok {
				return p.errf(tok.off, "unknown flow control %q", tok.text)
			}
			c.Flow = f
		case "metadata":
			tok, err := p.expect(tokString, "metadata string")
			if err != nil {
				return err
			}
			c.Metadata = tok.text
		default:
			return p.errf(keyTok.off, "unknown channel attribute %q", keyTok.text)
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if !sawID {
		return p.errf(nameTok.off, "channel %s has no id", c.Name)
	}
	return p.pkg.AddChan(c)
}

func (p *parser) parseFn() error {
	p.advance()
	nameTok, err := p.expect(tokIdent, "function name")
	if err != nil {
		return err
	}
	f := &Fn{Name: nameTok.text}
	p.scope = make(map[string]*Node)
	p.pending = nil
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	for !p.accept(tokRParen) {
		if len(f.Params) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return err
			}
		}
		param, err := p.parseParam()
		if err != nil {
			return err
		}
		f.Params = append(f.Params, param)
	}
	if _, err := p.expect(tokArrow, "'->'"); err != nil {
		return err
	}
	if f.RetType, err = p.parseType(); err != nil {
		return err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return err
	}
	for !p.accept(tokRBrace) {
		isRet := p.keyword("ret")
		if isRet {
			p.advance()
		}
		name, id, nameOff, err := p.parseRefName()
		if err != nil {
			return err
		}
		if p.tok.ty == tokColon {
			n, err := p.parseNodeDef(name, id, nameOff)
			if err != nil {
				return err
			}
			f.Body = append(f.Body, n)
			if isRet {
				if f.Ret != nil {
					return p.errf(nameOff, "multiple ret nodes in function %s", f.Name)
				}
				f.Ret = n
			}
		} else {
			if !isRet {
				return p.errf(p.tok.off, "expected ':' after node name %q", name)
			}
			if f.Ret != nil {
				return p.errf(nameOff, "multiple ret nodes in function %s", f.Name)
			}
			n := p.scope[name]
			if n == nil {
				return p.errf(nameOff, "unknown node %q in ret", name)
			}
			f.Ret = n
		}
	}
	if f.Ret == nil {
		return p.errf(nameTok.off, "function %s has no ret node", f.Name)
	}
	p.assignPendingIDs()
	return p.pkg.AddFn(f)
}

func (p *parser) parseProc() error {
	p.advance()
	nameTok, err := p.expect(tokIdent, "proc name")
	if err != nil {
		return err
	}
	pr := &Proc{Name: nameTok.text}
	p.scope = make(map[string]*Node)
	p.pending = nil
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	if pr.Token, err = p.parseParam(); err != nil {
		return err
	}
	if !TypeEq(pr.Token.Type, TokenType{}) {
		return p.errf(nameTok.off, "proc %s: first parameter must have type token", pr.Name)
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}
	if pr.State, err = p.parseParam(); err != nil {
		return err
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}
	if err := p.expectKeyword("init"); err != nil {
		return err
	}
	if _, err := p.expect(tokEq, "'='"); err != nil {
		return err
	}
	if pr.Init, err = p.parseUntypedValue(pr.State.Type); err != nil {
		return err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if _, err := p.expect(tokLBrace, "'{'"); err != nil {
		return err
	}
	for {
		if p.keyword("next") {
			if err := p.parseNext(pr); err != nil {
				return err
			}
			break
		}
		if p.tok.ty == tokEOF {
			return p.errf(p.tok.off, "proc %s has no next", pr.Name)
		}
		name, id, nameOff, err := p.parseRefName()
		if err != nil {
			return err
		}
		n, err := p.parseNodeDef(name, id, nameOff)
		if err != nil {
			return err
		}
		pr.Body = append(pr.Body, n)
	}
	if _, err := p.expect(tokRBrace, "'}'"); err != nil {
		return err
	}
	p.assignPendingIDs()
	return p.pkg.AddProc(pr)
}

func (p *parser) parseParam() (*Node, error) {
	nameTok, err := p.expect(tokIdent, "parameter name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	n := &Node{Name: nameTok.text, Op: OpParam, Type: ty}
	if err := p.define(n, nameTok.off); err != nil {
		return nil, err
	}
	p.pending = append(p.pending, n)
	return n, nil
}

func (p *parser) parseNext(pr *Proc) error {
	p.advance()
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	tokOp, err := p.parseOperand()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}
	stOp, err := p.parseOperand()
	if err != nil {
		return err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	pr.Next = &Node{
		Name:     "next",
		Op:       OpNext,
		Type:     TupleType{Elems: []Type{TokenType{}, pr.State.Type}},
		Operands: []*Node{tokOp, stOp},
	}
	p.pending = append(p.pending, pr.Next)
	return nil
}

// parseRefName parses a node name with an optional ".id" suffix, returning
// the display name, the id (-1 if absent), and the name's offset.
func (p *parser) parseRefName() (string, int32, int, error) {
	tok, err := p.expect(tokIdent, "node name")
	if err != nil {
		return "", 0, 0, err
	}
	name, id := tok.text, int32(-1)
	if p.accept(tokDot) {
		numTok, err := p.expect(tokNumber, "node id")
		if err != nil {
			return "", 0, 0, err
		}
		n, err := strconv.ParseInt(numTok.text, 10, 32)
		if err != nil || n < 1 {
			return "", 0, 0, p.errf(numTok.off, "invalid node id %q", numTok.text)
		}
		id = int32(n)
		name = name + "." + numTok.text
	}
	return name, id, tok.off, nil
}

func (p *parser) parseOperand() (*Node, error) {
	name, _, off, err := p.parseRefName()
	if err != nil {
		return nil, err
	}
	n := p.scope[name]
	if n == nil {
		return nil, p.errf(off, "unknown operand %q", name)
	}
	return n, nil
}

func (p *parser) parseNodeDef(name string, id int32, nameOff int) (*Node, error) {
	p.advance() // ':'
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEq, "'='"); err != nil {
		return nil, err
	}
	opTok, err := p.expect(tokIdent, "op name")
	if err != nil {
		return nil, err
	}
	op, ok := OpByName(opTok.text)
	if !ok || op == OpParam || op == OpNext {
		return nil, p.errf(opTok.off, "unknown op %q", opTok.text)
	}
	n := &Node{Name: name, Op: op, Type: ty}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}

	st := nodeAttrState{id: -1}
	first := true
	for !p.accept(tokRParen) {
		if !first {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		first = false
		if p.tok.ty == tokIdent && p.peekIs(tokEq) {
			keyTok := p.tok
			p.advance()
			p.advance()
			if err := p.parseNodeAttr(n, keyTok, &st); err != nil {
				return nil, err
			}
			continue
		}
		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		n.Operands = append(n.Operands, operand)
	}

	switch n.Op {
	case OpSel:
		n.Operands = append(n.Operands, st.cases...)
		n.NumCases = len(st.cases)
		if st.deflt != nil {
			n.Operands = append(n.Operands, st.deflt)
			n.HasDefault = true
		}
	case OpSend, OpReceive:
		if !st.sawChan {
			return nil, p.errf(nameOff, "%s has no channel_id", name)
		}
		if st.pred != nil {
			n.Operands = append(n.Operands, st.pred)
			n.HasPred = true
		}
	case OpLiteral:
		if !st.sawValue {
			return nil, p.errf(nameOff, "literal %s has no value", name)
		}
	case OpTupleIndex:
		if !st.sawIndex {
			return nil, p.errf(nameOff, "tuple_index %s has no index", name)
		}
	case OpBitSlice:
		if !st.sawStart || !st.sawWidth {
			return nil, p.errf(nameOff, "bit_slice %s needs start and width", name)
		}
	case OpZeroExt, OpSignExt:
		if !st.sawNewWidth {
			return nil, p.errf(nameOff, "%s has no new_bit_count", name)
		}
	}

	switch {
	case st.id >= 0 && id >= 0 && st.id != id:
		return nil, p.errf(nameOff, "node %s: id attribute %d does not match name", name, st.id)
	case st.id >= 0:
		n.ID = st.id
	case id >= 0:
		n.ID = id
	}
	if n.ID > 0 {
		p.pkg.NoteID(n.ID)
	} else {
		p.pending = append(p.pending, n)
	}
	if err := p.define(n, nameOff); err != nil {
		return nil, err
	}
	return n, nil
}

// nodeAttrState accumulates node attributes that cannot be applied until
// the whole argument list has parsed.
type nodeAttrState struct {
	pred, deflt *Node
	cases       []*Node
	id          int32

	sawValue, sawIndex, sawStart, sawWidth, sawNewWidth, sawChan bool
}

func (p *parser) parseNodeAttr(n *Node, keyTok lexeme, st *nodeAttrState) error {
	badOp := func() error {
		return p.errf(keyTok.off, "attribute %q not allowed on %s", keyTok.text, n.Op)
	}
	switch keyTok.text {
	case "id":
		v, err := p.parseIntLit(32)
		if err != nil {
			return err
		}
		if v < 1 {
			return p.errf(keyTok.off, "invalid id %d", v)
		}
		st.id = int32(v)
	case "pos":
		ps, err := p.parsePosList()
		if err != nil {
			return err
		}
		n.Pos = ps
	case "value":
		if n.Op != OpLiteral {
			return badOp()
		}
		v, err := p.parseUntypedValue(n.Type)
		if err != nil {
			return err
		}
		n.Value = v
		st.sawValue = true
	case "index":
		if n.Op != OpTupleIndex {
			return badOp()
		}
		v, err := p.parseIntLit(32)
		if err != nil {
			return err
		}
		n.Index = int(v)
		st.sawIndex = true
	case "start":
		if n.Op != OpBitSlice {
			return badOp()
		}
		v, err := p.parseIntLit(32)
		if err != nil {
			return err
		}
		n.Start = int(v)
		st.sawStart = true
	case "width":
		if n.Op != OpBitSlice {
			return badOp()
		}
		v, err := p.parseIntLit(32)
		if err != nil {
			return err
		}
		n.Width = int(v)
		st.sawWidth = true
	case "new_bit_count":
		if n.Op != OpZeroExt && n.Op != OpSignExt {
			return badOp()
		}
		v, err := p.parseIntLit(32)
		if err != nil {
			return err
		}
		n.NewWidth = int(v)
		st.sawNewWidth = true
	case "channel_id":
		if n.Op != OpSend && n.Op != OpReceive {
			return badOp()
		}
		v, err := p.parseIntLit(64)
		if err != nil {
			return err
		}
		n.ChannelID = v
		st.sawChan = true
	case "predicate":
		if n.Op != OpSend && n.Op != OpReceive {
			return badOp()
		}
		operand, err := p.parseOperand()
		if err != nil {
			return err
		}
		st.pred = operand
	case "default":
		if n.Op != OpSel {
			return badOp()
		}
		operand, err := p.parseOperand()
		if err != nil {
			return err
		}
		st.deflt = operand
	case "cases":
		if n.Op != OpSel {
			return badOp()
		}
		if _, err := p.expect(tokLBracket, "'['"); err != nil {
			return err
		}
		for !p.accept(tokRBracket) {
			if len(st.cases) > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return err
				}
			}
			operand, err := p.parseOperand()
			if err != nil {
				return err
			}
			st.cases = append(st.cases, operand)
		}
	default:
		return p.errf(keyTok.off, "unknown attribute %q", keyTok.text)
	}
	return nil
}

func (p *parser) parsePosList() ([]Pos, error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var ps []Pos
	for !p.accept(tokRBracket) {
		if len(ps) > 0 {
			if _, err := p.expect(tokComma, "','"); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		file, err := p.parseIntLit(32)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		line, err := p.parseIntLit(32)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, "','"); err != nil {
			return nil, err
		}
		col, err := p.parseIntLit(32)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		ps = append(ps, Pos{File: int(file), Line: int(line), Col: int(col)})
	}
	return ps, nil
}

func (p *parser) parseType() (Type, error) {
	switch {
	case p.keyword("token"):
		p.advance()
		return TokenType{}, nil
	case p.keyword("bits"):
		p.advance()
		if _, err := p.expect(tokLBracket, "'['"); err != nil {
			return nil, err
		}
		w, err := p.parseIntLit(32)
		if err != nil {
			return nil, err
		}
		if w < 0 {
			return nil, p.errf(p.tok.off, "negative bit width %d", w)
		}
		if _, err := p.expect(tokRBracket, "']'"); err != nil {
			return nil, err
		}
		return BitsType{Width: int(w)}, nil
	case p.tok.ty == tokLParen:
		p.advance()
		t := TupleType{}
		for !p.accept(tokRParen) {
			if len(t.Elems) > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return nil, err
				}
			}
			e, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t.Elems = append(t.Elems, e)
		}
		return t, nil
	default:
		return nil, p.errf(p.tok.off, "expected type, got %q", p.tok.text)
	}
}

func (p *parser) parseUntypedValue(t Type) (Value, error) {
	switch t := t.(type) {
	case BitsType:
		numTok, err := p.expect(tokNumber, "literal value")
		if err != nil {
			return nil, err
		}
		b, err := parseBitsLit(t.Width, numTok.text)
		if err != nil {
			return nil, p.errf(numTok.off, "%v", err)
		}
		return b, nil
	case TupleType:
		if _, err := p.expect(tokLParen, "'('"); err != nil {
			return nil, err
		}
		vs := make(Tuple, 0, len(t.Elems))
		for i, et := range t.Elems {
			if i > 0 {
				if _, err := p.expect(tokComma, "','"); err != nil {
					return nil, err
				}
			}
			v, err := p.parseUntypedValue(et)
			if err != nil {
				return nil, err
			}
			vs = append(vs, v)
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return vs, nil
	default:
		return nil, p.errf(p.tok.off, "type %s has no literal form", t)
	}
}

func (p *parser) parseIntLit(bits int) (int64, error) {
	numTok, err := p.expect(tokNumber, "number")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(numTok.text, 0, bits)
	if err != nil {
		return 0, p.errf(numTok.off, "invalid number %q", numTok.text)
	}
	return v, nil
}

func (p *parser) define(n *Node, off int) error {
	if _, exists := p.scope[n.Name]; exists {
		return p.errf(off, "duplicate node name %q", n.Name)
	}
	p.scope[n.Name] = n
	return nil
}

// assignPendingIDs numbers the nodes the text left unnumbered (parameters
// and next), in declaration order, after every explicit id.  Reprinting
// omits these ids, so reloading derives the same assignment.
func (p *parser) assignPendingIDs() {
	for _, n := range p.pending {
		n.ID = p.pkg.NextID()
	}
	p.pending = nil
}

func byName[K comparable](m map[K]string, s string) (K, bool) {
	for k, v := range m {
		if v == s {
			return k, true
		}
	}
	var zero K
	return zero, false
}
