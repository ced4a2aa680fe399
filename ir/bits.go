package ir

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"

	"golang.org/x/exp/constraints"
)

const wordBits = 64

// Bits is a fixed-width vector of bits, stored least significant word first.
// Bits above the width are always zero.
type Bits struct {
	width int
	words []uint64
}

// NewBits returns a width-bit vector holding x truncated to width bits.
// Negative values are represented in two's complement.
func NewBits[T constraints.Integer](width int, x T) Bits {
	z := zeroBits(width)
	if len(z.words) > 0 {
		z.words[0] = uint64(x)
		if x < 0 {
			for i := 1; i < len(z.words); i++ {
				z.words[i] = ^uint64(0)
			}
		}
	}
	return z.norm()
}

// NewBitsBig returns a width-bit vector holding x modulo 2^width.
func NewBitsBig(width int, x *big.Int) Bits {
	z := zeroBits(width)
	if width == 0 {
		return z
	}
	bs := new(big.Int).Mod(x, bigPow2(width)).Bytes()
	for i, b := range bs {
		bit := (len(bs) - 1 - i) * 8
		z.words[bit/wordBits] |= uint64(b) << uint(bit%wordBits)
	}
	return z
}

// ZeroBits returns the width-bit zero value.
func ZeroBits(width int) Bits {
	return zeroBits(width)
}

// AllOnes returns the width-bit value with every bit set.
func AllOnes(width int) Bits {
	z := zeroBits(width)
	for i := range z.words {
		z.words[i] = ^uint64(0)
	}
	return z.norm()
}

// MaxSigned returns the largest non-negative two's complement value (0111...).
func MaxSigned(width int) Bits {
	z := AllOnes(width)
	if width > 0 {
		z.clearBit(width - 1)
	}
	return z
}

// MinSigned returns the most negative two's complement value (1000...).
func MinSigned(width int) Bits {
	z := zeroBits(width)
	if width > 0 {
		z.setBit(width - 1)
	}
	return z
}

func zeroBits(width int) Bits {
	if width < 0 {
		panic("negative bit width")
	}
	return Bits{width: width, words: make([]uint64, (width+wordBits-1)/wordBits)}
}

func (x Bits) norm() Bits {
	if n := len(x.words); n > 0 {
		if r := x.width % wordBits; r != 0 {
			x.words[n-1] &= (1 << uint(r)) - 1
		}
	}
	return x
}

func (x *Bits) setBit(i int) {
	x.words[i/wordBits] |= 1 << uint(i%wordBits)
}

func (x *Bits) clearBit(i int) {
	x.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// Width is the number of bits in x.
func (x Bits) Width() int { return x.width }

// Bit returns bit i, counting from the least significant.
func (x Bits) Bit(i int) uint64 {
	return (x.words[i/wordBits] >> uint(i%wordBits)) & 1
}

// SignBit returns the most significant bit, or 0 for zero-width values.
func (x Bits) SignBit() uint64 {
	if x.width == 0 {
		return 0
	}
	return x.Bit(x.width - 1)
}

// Uint64 returns the low 64 bits of x.
func (x Bits) Uint64() uint64 {
	if len(x.words) == 0 {
		return 0
	}
	return x.words[0]
}

// IsZero reports whether every bit of x is zero.
func (x Bits) IsZero() bool {
	for _, w := range x.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether x and y have the same width and the same bits.
func (x Bits) Equal(y Bits) bool {
	if x.width != y.width {
		return false
	}
	for i := range x.words {
		if x.words[i] != y.words[i] {
			return false
		}
	}
	return true
}

// Big returns x as an unsigned integer.
func (x Bits) Big() *big.Int {
	nb := (x.width + 7) / 8
	bs := make([]byte, nb)
	for i := 0; i < nb; i++ {
		bit := i * 8
		bs[nb-1-i] = byte(x.words[bit/wordBits] >> uint(bit%wordBits))
	}
	return new(big.Int).SetBytes(bs)
}

// BigSigned returns x as a two's complement signed integer.
func (x Bits) BigSigned() *big.Int {
	z := x.Big()
	if x.SignBit() == 1 {
		z.Sub(z, bigPow2(x.width))
	}
	return z
}

// String formats x as an unsigned decimal.
func (x Bits) String() string {
	if x.width <= wordBits {
		return strconv.FormatUint(x.Uint64(), 10)
	}
	return x.Big().String()
}

func (x Bits) check(y Bits) {
	if x.width != y.width {
		panic(fmt.Sprintf("bits width mismatch: %d vs %d", x.width, y.width))
	}
}

// Add returns x+y modulo 2^width.
func (x Bits) Add(y Bits) Bits {
	x.check(y)
	z := zeroBits(x.width)
	var carry uint64
	for i := range z.words {
		z.words[i], carry = bits.Add64(x.words[i], y.words[i], carry)
	}
	return z.norm()
}

// Sub returns x-y modulo 2^width.
func (x Bits) Sub(y Bits) Bits {
	x.check(y)
	z := zeroBits(x.width)
	var borrow uint64
	for i := range z.words {
		z.words[i], borrow = bits.Sub64(x.words[i], y.words[i], borrow)
	}
	return z.norm()
}

// Neg returns the two's complement negation of x.
func (x Bits) Neg() Bits {
	return ZeroBits(x.width).Sub(x)
}

// And returns the bitwise AND of x and y.
func (x Bits) And(y Bits) Bits {
	x.check(y)
	z := zeroBits(x.width)
	for i := range z.words {
		z.words[i] = x.words[i] & y.words[i]
	}
	return z
}

// Or returns the bitwise OR of x and y.
func (x Bits) Or(y Bits) Bits {
	x.check(y)
	z := zeroBits(x.width)
	for i := range z.words {
		z.words[i] = x.words[i] | y.words[i]
	}
	return z
}

// Xor returns the bitwise XOR of x and y.
func (x Bits) Xor(y Bits) Bits {
	x.check(y)
	z := zeroBits(x.width)
	for i := range z.words {
		z.words[i] = x.words[i] ^ y.words[i]
	}
	return z
}

// Nand returns the complement of the bitwise AND of x and y.
func (x Bits) Nand(y Bits) Bits {
	return x.And(y).Not()
}

// Nor returns the complement of the bitwise OR of x and y.
func (x Bits) Nor(y Bits) Bits {
	return x.Or(y).Not()
}

// Not returns the bitwise complement of x.
func (x Bits) Not() Bits {
	z := zeroBits(x.width)
	for i := range z.words {
		z.words[i] = ^x.words[i]
	}
	return z.norm()
}

// UMul multiplies x and y as unsigned integers; the product is truncated or
// zero-extended to width bits.
func UMul(x, y Bits, width int) Bits {
	return NewBitsBig(width, new(big.Int).Mul(x.Big(), y.Big()))
}

// SMul multiplies x and y as signed integers; the product is truncated or
// sign-extended to width bits.
func SMul(x, y Bits, width int) Bits {
	return NewBitsBig(width, new(big.Int).Mul(x.BigSigned(), y.BigSigned()))
}

// UDiv returns x/y as unsigned integers.
// Division by zero yields the all-ones value.
func (x Bits) UDiv(y Bits) Bits {
	x.check(y)
	if y.IsZero() {
		return AllOnes(x.width)
	}
	return NewBitsBig(x.width, new(big.Int).Div(x.Big(), y.Big()))
}

// UMod returns x%y as unsigned integers; x%0 is zero.
func (x Bits) UMod(y Bits) Bits {
	x.check(y)
	if y.IsZero() {
		return ZeroBits(x.width)
	}
	return NewBitsBig(x.width, new(big.Int).Mod(x.Big(), y.Big()))
}

// SDiv returns x/y as signed integers, truncated toward zero.
// Division by zero yields the maximum positive value for non-negative x and
// the minimum negative value otherwise.
func (x Bits) SDiv(y Bits) Bits {
	x.check(y)
	if y.IsZero() {
		if x.SignBit() == 1 {
			return MinSigned(x.width)
		}
		return MaxSigned(x.width)
	}
	return NewBitsBig(x.width, new(big.Int).Quo(x.BigSigned(), y.BigSigned()))
}

// SMod returns the remainder of signed division; the result takes the sign
// of the dividend, and x%0 is zero.
func (x Bits) SMod(y Bits) Bits {
	x.check(y)
	if y.IsZero() {
		return ZeroBits(x.width)
	}
	return NewBitsBig(x.width, new(big.Int).Rem(x.BigSigned(), y.BigSigned()))
}

// UCmp compares x and y as unsigned integers, returning -1, 0, or 1.
func (x Bits) UCmp(y Bits) int {
	x.check(y)
	for i := len(x.words) - 1; i >= 0; i-- {
		switch {
		case x.words[i] < y.words[i]:
			return -1
		case x.words[i] > y.words[i]:
			return 1
		}
	}
	return 0
}

// SCmp compares x and y as signed integers, returning -1, 0, or 1.
func (x Bits) SCmp(y Bits) int {
	x.check(y)
	xs, ys := x.SignBit(), y.SignBit()
	if xs != ys {
		if xs == 1 {
			return -1
		}
		return 1
	}
	return x.UCmp(y)
}

// Shll shifts x left; amounts >= the width yield zero.
// The shift amount is read from amt as an unsigned integer of any width.
func (x Bits) Shll(amt Bits) Bits {
	n, ok := shiftAmount(amt, x.width)
	if !ok {
		return ZeroBits(x.width)
	}
	return x.shllN(n)
}

// Shrl shifts x right, filling with zeros; amounts >= the width yield zero.
func (x Bits) Shrl(amt Bits) Bits {
	n, ok := shiftAmount(amt, x.width)
	if !ok {
		return ZeroBits(x.width)
	}
	return x.shrlN(n)
}

// Shra shifts x right, filling with the sign bit.
func (x Bits) Shra(amt Bits) Bits {
	sign := x.SignBit()
	n, ok := shiftAmount(amt, x.width)
	if !ok {
		if sign == 1 {
			return AllOnes(x.width)
		}
		return ZeroBits(x.width)
	}
	z := x.shrlN(n)
	if sign == 1 {
		z.setRange(x.width-n, x.width)
	}
	return z
}

func shiftAmount(amt Bits, width int) (int, bool) {
	for i := 1; i < len(amt.words); i++ {
		if amt.words[i] != 0 {
			return 0, false
		}
	}
	v := amt.Uint64()
	if v >= uint64(width) {
		return 0, false
	}
	return int(v), true
}

func (x Bits) shllN(n int) Bits {
	z := zeroBits(x.width)
	ws, bs := n/wordBits, uint(n%wordBits)
	for i := len(z.words) - 1; i >= ws; i-- {
		w := x.words[i-ws] << bs
		if bs > 0 && i > ws {
			w |= x.words[i-ws-1] >> (wordBits - bs)
		}
		z.words[i] = w
	}
	return z.norm()
}

func (x Bits) shrlN(n int) Bits {
	z := zeroBits(x.width)
	ws, bs := n/wordBits, uint(n%wordBits)
	for i := 0; i+ws < len(x.words); i++ {
		w := x.words[i+ws] >> bs
		if bs > 0 && i+ws+1 < len(x.words) {
			w |= x.words[i+ws+1] << (wordBits - bs)
		}
		z.words[i] = w
	}
	return z
}

func (x *Bits) setRange(from, to int) {
	for i := from; i < to; i++ {
		x.setBit(i)
	}
}

// Concat concatenates xs, with the first element in the most significant
// position.
func Concat(xs ...Bits) Bits {
	width := 0
	for _, x := range xs {
		width += x.width
	}
	z := zeroBits(width)
	off := 0
	for i := len(xs) - 1; i >= 0; i-- {
		z.orAt(xs[i], off)
		off += xs[i].width
	}
	return z
}

// orAt ORs y into z at bit offset off.  z must be wide enough to hold it.
func (z *Bits) orAt(y Bits, off int) {
	ws, bs := off/wordBits, uint(off%wordBits)
	for i, w := range y.words {
		z.words[ws+i] |= w << bs
		if bs > 0 && ws+i+1 < len(z.words) {
			z.words[ws+i+1] |= w >> (wordBits - bs)
		}
	}
}

// Slice returns bits [start, start+width) of x.
func (x Bits) Slice(start, width int) Bits {
	t := x.shrlN(start)
	z := zeroBits(width)
	copy(z.words, t.words)
	return z.norm()
}

// ZeroExt widens x to width bits, filling with zeros.
func (x Bits) ZeroExt(width int) Bits {
	z := zeroBits(width)
	copy(z.words, x.words)
	return z.norm()
}

// SignExt widens x to width bits, filling with the sign bit.
func (x Bits) SignExt(width int) Bits {
	z := x.ZeroExt(width)
	if x.SignBit() == 1 && width > x.width {
		z.setRange(x.width, width)
	}
	return z
}

// AndReduce returns a single bit: 1 iff every bit of x is set.
func (x Bits) AndReduce() Bits {
	if x.Equal(AllOnes(x.width)) {
		return NewBits(1, 1)
	}
	return NewBits(1, 0)
}

// OrReduce returns a single bit: 1 iff any bit of x is set.
func (x Bits) OrReduce() Bits {
	if x.IsZero() {
		return NewBits(1, 0)
	}
	return NewBits(1, 1)
}

// XorReduce returns a single bit: the parity of x.
func (x Bits) XorReduce() Bits {
	var n int
	for _, w := range x.words {
		n += bits.OnesCount64(w)
	}
	return NewBits(1, n&1)
}

func bigPow2(w int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(w))
}

func parseBitsLit(width int, s string) (Bits, error) {
	z, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return Bits{}, fmt.Errorf("invalid bits literal %q", s)
	}
	if z.Sign() >= 0 {
		if z.BitLen() > width {
			return Bits{}, fmt.Errorf("value %s does not fit in %d bits", s, width)
		}
	} else if width == 0 || new(big.Int).Neg(bigPow2(width-1)).Cmp(z) > 0 {
		return Bits{}, fmt.Errorf("value %s does not fit in %d bits", s, width)
	}
	return NewBitsBig(width, z), nil
}
