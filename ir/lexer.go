package ir

import "strings"

type tokType int

const (
	tokIllegal tokType = iota
	tokEOF

	tokIdent  // package, add, in_ch
	tokNumber // 42, -3, 0x1f
	tokString // "a.x", """metadata""" (text holds the unquoted content)

	tokLParen   // (
	tokRParen   // )
	tokLBracket // [
	tokRBracket // ]
	tokLBrace   // {
	tokRBrace   // }
	tokColon    // :
	tokComma    // ,
	tokEq       // =
	tokDot      // .
	tokArrow    // ->
)

type lexeme struct {
	ty   tokType
	text string
	off  int // byte offset into the source
}

// lexer scans IR text.  It is a value type so the parser can cheaply save
// and restore its position for one-token lookahead.
type lexer struct {
	src string
	pos int
}

func (l *lexer) next() lexeme {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return lexeme{ty: tokEOF, off: start}
	}
	c := l.src[l.pos]
	switch {
	case c == '(':
		return l.punct(tokLParen)
	case c == ')':
		return l.punct(tokRParen)
	case c == '[':
		return l.punct(tokLBracket)
	case c == ']':
		return l.punct(tokRBracket)
	case c == '{':
		return l.punct(tokLBrace)
	case c == '}':
		return l.punct(tokRBrace)
	case c == ':':
		return l.punct(tokColon)
	case c == ',':
		return l.punct(tokComma)
	case c == '=':
		return l.punct(tokEq)
	case c == '.':
		return l.punct(tokDot)
	case c == '-':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '>' {
			l.pos += 2
			return lexeme{ty: tokArrow, text: "->", off: start}
		}
		if l.pos+1 < len(l.src) && isDecimal(l.src[l.pos+1]) {
			return l.lexNumber(start)
		}
		return l.punct(tokIllegal)
	case isDecimal(c):
		return l.lexNumber(start)
	case isLetter(c):
		l.acceptRun(isIdentRune)
		return lexeme{ty: tokIdent, text: l.src[start:l.pos], off: start}
	case c == '"':
		return l.lexString(start)
	default:
		return l.punct(tokIllegal)
	}
}

func (l *lexer) punct(ty tokType) lexeme {
	start := l.pos
	l.pos++
	return lexeme{ty: ty, text: l.src[start:l.pos], off: start}
}

func (l *lexer) lexNumber(start int) lexeme {
	if l.src[l.pos] == '-' {
		l.pos++
	}
	l.acceptRun(isIdentRune)
	return lexeme{ty: tokNumber, text: l.src[start:l.pos], off: start}
}

func (l *lexer) lexString(start int) lexeme {
	if strings.HasPrefix(l.src[l.pos:], `"""`) {
		l.pos += 3
		end := strings.Index(l.src[l.pos:], `"""`)
		if end < 0 {
			l.pos = len(l.src)
			return lexeme{ty: tokIllegal, text: l.src[start:], off: start}
		}
		text := l.src[l.pos : l.pos+end]
		l.pos += end + 3
		return lexeme{ty: tokString, text: text, off: start}
	}
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return lexeme{ty: tokString, text: sb.String(), off: start}
		case '\\':
			if l.pos+1 < len(l.src) {
				switch l.src[l.pos+1] {
				case 'n':
					sb.WriteByte('\n')
				case 't':
					sb.WriteByte('\t')
				default:
					sb.WriteByte(l.src[l.pos+1])
				}
				l.pos += 2
				continue
			}
			l.pos++
		case '\n':
			return lexeme{ty: tokIllegal, text: l.src[start:l.pos], off: start}
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}
	return lexeme{ty: tokIllegal, text: l.src[start:], off: start}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && strings.HasPrefix(l.src[l.pos:], "//"):
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) acceptRun(valid func(byte) bool) {
	for l.pos < len(l.src) && valid(l.src[l.pos]) {
		l.pos++
	}
}

func isLetter(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDecimal(c byte) bool { return '0' <= c && c <= '9' }

func isIdentRune(c byte) bool { return isLetter(c) || isDecimal(c) }

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(src string, off int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < off && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
