package ir

import (
	"fmt"
	"strings"
)

// Value is a runtime value: a Bits vector, a Tuple, or a Token.
// Values are immutable once produced.
type Value interface {
	// Type returns the type of the value.
	Type() Type

	// String formats the value with its type, e.g. "bits[64]:42".
	fmt.Stringer

	isValue()
}

func (Bits) isValue()  {}
func (Tuple) isValue() {}
func (Token) isValue() {}

// Type implements Value.
func (x Bits) Type() Type { return BitsType{Width: x.width} }

// Tuple is an ordered sequence of values.
type Tuple []Value

func (t Tuple) Type() Type {
	elems := make([]Type, len(t))
	for i, v := range t {
		elems[i] = v.Type()
	}
	return TupleType{Elems: elems}
}

func (t Tuple) String() string {
	sb := strings.Builder{}
	sb.WriteString("(")
	for i, v := range t {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatValue(v))
	}
	sb.WriteString(")")
	return sb.String()
}

// Token is the ordering-only value.  All tokens are interchangeable.
type Token struct{}

func (Token) Type() Type     { return TokenType{} }
func (Token) String() string { return "token" }

// FormatValue renders v with its type, the form used by channel streams and
// diagnostics: "bits[64]:42", "(bits[8]:1, token)".  Bits.String alone is
// the bare decimal.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case Bits:
		return fmt.Sprintf("%s:%s", v.Type(), v)
	case Tuple:
		return v.String()
	case Token:
		return "token"
	default:
		panic(v)
	}
}

// ZeroValue returns the all-zero value of type t.
func ZeroValue(t Type) Value {
	switch t := t.(type) {
	case TokenType:
		return Token{}
	case BitsType:
		return ZeroBits(t.Width)
	case TupleType:
		vs := make(Tuple, len(t.Elems))
		for i, e := range t.Elems {
			vs[i] = ZeroValue(e)
		}
		return vs
	default:
		panic(t)
	}
}

// ValueEq reports whether a and b are structurally equal.  Bits compare
// numerically (width included), tuples element-wise.
func ValueEq(a, b Value) bool {
	switch a := a.(type) {
	case Token:
		_, ok := b.(Token)
		return ok
	case Bits:
		b, ok := b.(Bits)
		return ok && a.Equal(b)
	case Tuple:
		b, ok := b.(Tuple)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !ValueEq(a[i], b[i]) {
				return false
			}
		}
		return true
	default:
		panic(a)
	}
}

// ParseValue parses the typed value format: "bits[64]:42", "token", or a
// parenthesized tuple of the same, e.g. "(bits[8]:1, token)".
func ParseValue(s string) (Value, error) {
	v, rest, err := parseValue(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		return nil, fmt.Errorf("trailing input %q in value", rest)
	}
	return v, nil
}

func parseValue(s string) (Value, string, error) {
	s = strings.TrimLeft(s, " \t")
	switch {
	case strings.HasPrefix(s, "("):
		rest := s[1:]
		var t Tuple
		for {
			rest = strings.TrimLeft(rest, " \t")
			if strings.HasPrefix(rest, ")") {
				return t, rest[1:], nil
			}
			if len(t) > 0 {
				if !strings.HasPrefix(rest, ",") {
					return nil, "", fmt.Errorf("expected ',' or ')' in tuple value at %q", rest)
				}
				rest = rest[1:]
			}
			v, r, err := parseValue(rest)
			if err != nil {
				return nil, "", err
			}
			t, rest = append(t, v), r
		}
	case strings.HasPrefix(s, "token"):
		return Token{}, s[len("token"):], nil
	case strings.HasPrefix(s, "bits["):
		rest := s[len("bits["):]
		i := strings.IndexByte(rest, ']')
		if i < 0 {
			return nil, "", fmt.Errorf("unterminated bits type in %q", s)
		}
		var width int
		if _, err := fmt.Sscanf(rest[:i], "%d", &width); err != nil || width < 0 {
			return nil, "", fmt.Errorf("invalid bits width %q", rest[:i])
		}
		rest = rest[i+1:]
		if !strings.HasPrefix(rest, ":") {
			return nil, "", fmt.Errorf("expected ':' after bits type in %q", s)
		}
		rest = rest[1:]
		j := 0
		for j < len(rest) && (rest[j] == '-' || rest[j] == 'x' || rest[j] == 'b' ||
			rest[j] == '_' || isAlnum(rest[j])) {
			j++
		}
		b, err := parseBitsLit(width, rest[:j])
		if err != nil {
			return nil, "", err
		}
		return b, rest[j:], nil
	default:
		return nil, "", fmt.Errorf("invalid value syntax %q", s)
	}
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
