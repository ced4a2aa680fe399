package ir

import (
	"fmt"
	"strings"
)

// Type is the type of a Value.
// The only implementations are BitsType, TupleType, and TokenType.
type Type interface {
	// BitCount is the total number of data bits in a value of this type.
	BitCount() int

	fmt.Stringer
	isType()
}

type (
	// TokenType is the type of ordering tokens.  Tokens carry no data; they
	// exist to sequence side-effecting operations.
	TokenType struct{}

	// BitsType is a fixed-width vector of bits.
	BitsType struct {
		Width int
	}

	// TupleType is a fixed-length sequence of element types.
	TupleType struct {
		Elems []Type
	}
)

func (TokenType) isType() {}
func (BitsType) isType()  {}
func (TupleType) isType() {}

func (TokenType) BitCount() int { return 0 }

func (t BitsType) BitCount() int { return t.Width }

func (t TupleType) BitCount() (ret int) {
	for _, e := range t.Elems {
		ret += e.BitCount()
	}
	return ret
}

func (TokenType) String() string { return "token" }

func (t BitsType) String() string { return fmt.Sprintf("bits[%d]", t.Width) }

func (t TupleType) String() string {
	sb := strings.Builder{}
	sb.WriteString("(")
	for i, e := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// TypeEq reports whether a and b are structurally identical types.
func TypeEq(a, b Type) bool {
	switch a := a.(type) {
	case TokenType:
		_, ok := b.(TokenType)
		return ok
	case BitsType:
		b, ok := b.(BitsType)
		return ok && a.Width == b.Width
	case TupleType:
		b, ok := b.(TupleType)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !TypeEq(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	default:
		panic(a)
	}
}
