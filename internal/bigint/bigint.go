// Package bigint wraps math/big with the arbitrary-precision signed
// integer operations the class-group VDF engine and RSW solver need:
// modular arithmetic with a consistent sign convention, probable-primality
// testing, two's-complement byte encoding, and a block-free 2^T div/mod
// primitive used by the Wesolowski prover.
package bigint

import (
	"math/big"

	"github.com/pkg/errors"
)

// Int is a thin, allocation-conscious wrapper around *big.Int. Every
// operation returns a freshly allocated Int; none mutate their receiver
// or arguments, matching the value-semantics ownership rule callers
// depend on when forms and proofs cross goroutine boundaries.
type Int struct {
	v *big.Int
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigFour = big.NewInt(4)
)

// ErrInvalidEncoding is returned when a byte buffer cannot be decoded as
// the expected integer representation.
var ErrInvalidEncoding = errors.New("bigint: invalid encoding")

// NewInt wraps an int64 literal.
func NewInt(x int64) *Int {
	return &Int{v: big.NewInt(x)}
}

// FromDecimal parses a base-10 string, optionally signed.
func FromDecimal(s string) (*Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidEncoding, "decimal %q", s)
	}
	return &Int{v: v}, nil
}

// FromHex parses a base-16 string, optionally prefixed with a sign; a
// "0x" prefix is not accepted.
func FromHex(s string) (*Int, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidEncoding, "hex %q", s)
	}
	return &Int{v: v}, nil
}

// FromBytesLE interprets buf as an unsigned little-endian magnitude.
func FromBytesLE(buf []byte) *Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return &Int{v: new(big.Int).SetBytes(be)}
}

// FromBytesBE interprets buf as an unsigned big-endian magnitude.
func FromBytesBE(buf []byte) *Int {
	return &Int{v: new(big.Int).SetBytes(buf)}
}

// FromBigInt adopts an existing *big.Int by value (it is copied).
func FromBigInt(v *big.Int) *Int {
	return &Int{v: new(big.Int).Set(v)}
}

// Big returns a defensive copy of the underlying *big.Int, for callers
// that need to interoperate with math/big APIs directly.
func (x *Int) Big() *big.Int {
	return new(big.Int).Set(x.v)
}

func (x *Int) String() string { return x.v.String() }

// Hex renders the magnitude as lowercase hex with no prefix or sign; a
// negative value's sign is dropped, matching wire encodings that carry
// sign out-of-band.
func (x *Int) Hex() string {
	return new(big.Int).Abs(x.v).Text(16)
}

// BytesLE returns the unsigned magnitude in little-endian byte order,
// left-padded with zero bytes to at least minLen.
func (x *Int) BytesLE(minLen int) []byte {
	be := new(big.Int).Abs(x.v).Bytes()
	out := make([]byte, max(minLen, len(be)))
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// BytesBE returns the unsigned magnitude in big-endian byte order, the
// wire convention used for the discriminant and for length-prefixed
// integer fields.
func (x *Int) BytesBE() []byte {
	return new(big.Int).Abs(x.v).Bytes()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (x *Int) Sign() int           { return x.v.Sign() }
func (x *Int) BitLen() int         { return x.v.BitLen() }
func (x *Int) Bit(i int) uint      { return x.v.Bit(i) }
func (x *Int) Cmp(y *Int) int      { return x.v.Cmp(y.v) }
func (x *Int) IsZero() bool        { return x.v.Sign() == 0 }
func (x *Int) Clone() *Int         { return &Int{v: new(big.Int).Set(x.v)} }

func (x *Int) Add(y *Int) *Int { return &Int{v: new(big.Int).Add(x.v, y.v)} }
func (x *Int) Sub(y *Int) *Int { return &Int{v: new(big.Int).Sub(x.v, y.v)} }
func (x *Int) Mul(y *Int) *Int { return &Int{v: new(big.Int).Mul(x.v, y.v)} }
func (x *Int) Neg() *Int       { return &Int{v: new(big.Int).Neg(x.v)} }
func (x *Int) Abs() *Int       { return &Int{v: new(big.Int).Abs(x.v)} }
func (x *Int) Lsh(n uint) *Int { return &Int{v: new(big.Int).Lsh(x.v, n)} }
func (x *Int) Rsh(n uint) *Int { return &Int{v: new(big.Int).Rsh(x.v, n)} }

// SetBit returns a copy of x with bit i forced to 1, leaving every
// other bit unchanged (a bitwise OR with 2^i, not an addition — adding
// 2^i would carry into higher bits whenever bit i was already set).
func (x *Int) SetBit(i int) *Int {
	return &Int{v: new(big.Int).SetBit(x.v, i, 1)}
}

// Bits extracts the inclusive-low, exclusive-high bit range [lo, hi) of
// x as a non-negative integer, the width-hi-minus-lo companion to
// Challenge-to-Discriminant's candidate-packing step.
func (x *Int) Bits(lo, hi int) *Int {
	mask := new(big.Int).Lsh(bigOne, uint(hi-lo))
	mask.Sub(mask, bigOne)
	out := new(big.Int).Rsh(x.v, uint(lo))
	out.And(out, mask)
	return &Int{v: out}
}

// QuoRem returns truncated quotient and remainder, matching big.Int's
// QuoRem (T-division, remainder has the sign of x).
func (x *Int) QuoRem(y *Int) (q, r *Int) {
	qq, rr := new(big.Int), new(big.Int)
	qq.QuoRem(x.v, y.v, rr)
	return &Int{v: qq}, &Int{v: rr}
}

// FloorDiv returns the floor of x/y (rounds toward negative infinity),
// the convention the class-group reduction algorithm depends on
// throughout, as opposed to math/big's truncating division.
func (x *Int) FloorDiv(y *Int) *Int {
	var r big.Int
	q, _ := new(big.Int).QuoRem(x.v, y.v, &r)
	if (r.Sign() > 0 && y.v.Sign() < 0) || (r.Sign() < 0 && y.v.Sign() > 0) {
		q.Sub(q, bigOne)
	}
	return &Int{v: q}
}

// Mod returns the Euclidean remainder of x mod m: always non-negative
// when m is positive, the convention used by the challenge-to-discriminant
// derivation and the RSW key recovery step.
func (x *Int) Mod(m *Int) *Int {
	return &Int{v: new(big.Int).Mod(x.v, m.v)}
}

// GCD returns the non-negative greatest common divisor of x and y,
// accepting zero or negative inputs (math/big's GCD requires both
// operands be positive).
func GCD(x, y *Int) *Int {
	if x.IsZero() {
		return y.Abs()
	}
	if y.IsZero() {
		return x.Abs()
	}
	return &Int{v: new(big.Int).GCD(nil, nil, new(big.Int).Abs(x.v), new(big.Int).Abs(y.v))}
}

// ExtendedGCD returns g, s, t such that g = x*s + y*t.
func ExtendedGCD(x, y *Int) (g, s, t *Int) {
	r0, r1 := new(big.Int).Set(x.v), new(big.Int).Set(y.v)
	s0, s1 := big.NewInt(1), big.NewInt(0)
	t0, t1 := big.NewInt(0), big.NewInt(1)

	if r0.Cmp(r1) > 0 {
		r0, r1 = r1, r0
		s0, s1, t0, t1 = t0, t1, s0, s1
	}

	for r1.Sign() > 0 {
		q := new(big.Int)
		r := new(big.Int)
		q.DivMod(r0, r1, r)

		r0, r1 = r1, r
		s0, s1 = s1, new(big.Int).Sub(s0, new(big.Int).Mul(q, s1))
		t0, t1 = t1, new(big.Int).Sub(t0, new(big.Int).Mul(q, t1))
	}
	return &Int{v: r0}, &Int{v: s0}, &Int{v: t0}
}

// SolveMod solves a*x == b (mod m) for x, returning a particular
// solution s and step t such that every solution is s + k*t for integer
// k. ok is false when no solution exists.
func SolveMod(a, b, m *Int) (s, t *Int, ok bool) {
	g, d, _ := ExtendedGCD(a, m)
	if g.IsZero() {
		return nil, nil, false
	}

	q, r := b.QuoRem(g)
	if !r.IsZero() {
		return nil, nil, false
	}

	s = q.Mul(d).Mod(m)
	t = m.FloorDiv(g)
	return s, t, true
}

// ProbablyPrime reports whether x is probably prime, running n
// Miller-Rabin rounds; n is floored at 25 regardless of the caller's
// request, matching the security margin the discriminant and RSW
// modulus generation routines require throughout this module.
func (x *Int) ProbablyPrime(n int) bool {
	if n < 25 {
		n = 25
	}
	return x.v.ProbablyPrime(n)
}

// NextPrime returns the smallest probable prime greater than or equal
// to x, adjusting an even start up to the next odd value first.
func NextPrime(x *Int) *Int {
	c := new(big.Int).Set(x.v)
	if c.Bit(0) == 0 {
		c.Add(c, bigOne)
	}
	for !c.ProbablyPrime(25) {
		c.Add(c, bigTwo)
	}
	return &Int{v: c}
}

// Decode returns the minimal big-endian magnitude encoding of x (no
// leading zero byte, empty slice for zero), the wire format used by
// length-prefixed integer fields that are known never to be negative
// (the Fiat-Shamir prime ell, the discriminant magnitude). Fields that
// may be negative (form coefficients) must use EncodeSigned instead.
func Decode(x *Int) []byte {
	return new(big.Int).Abs(x.v).Bytes()
}

// EncodeSigned returns the minimal big-endian two's-complement encoding
// of x: empty for zero, otherwise the fewest bytes whose sign bit
// matches x's sign (a leading 0x00 or 0xff pad byte is prepended when
// the natural magnitude encoding's top bit would otherwise misread the
// sign). This is the wire format length-prefixed integer fields that
// may be negative must use, e.g. a reduced form's b coefficient.
func EncodeSigned(x *Int) []byte {
	switch x.Sign() {
	case 0:
		return []byte{}
	case 1:
		raw := x.v.Bytes()
		if raw[0]&0x80 == 0 {
			return raw
		}
		buf := make([]byte, len(raw)+1)
		copy(buf[1:], raw)
		return buf
	default:
		nMinus1 := new(big.Int).Neg(x.v)
		nMinus1.Sub(nMinus1, bigOne)
		raw := nMinus1.Bytes()
		if len(raw) == 0 {
			return []byte{0xff}
		}
		for i := range raw {
			raw[i] ^= 0xff
		}
		if raw[0]&0x80 != 0 {
			return raw
		}
		buf := make([]byte, len(raw)+1)
		buf[0] = 0xff
		copy(buf[1:], raw)
		return buf
	}
}

// DecodeSigned interprets buf as a minimal big-endian two's-complement
// encoding (as produced by EncodeSigned), returning zero for an empty
// buffer.
func DecodeSigned(buf []byte) *Int {
	if len(buf) == 0 {
		return NewInt(0)
	}
	if buf[0]&0x80 == 0 {
		return FromBytesBE(buf)
	}
	inv := make([]byte, len(buf))
	for i, b := range buf {
		inv[i] = b ^ 0xff
	}
	n := new(big.Int).SetBytes(inv)
	n.Add(n, bigOne)
	n.Neg(n)
	return &Int{v: n}
}

// Sqrt returns the integer square root (floor) of a non-negative x.
func Sqrt(x *Int) *Int {
	return &Int{v: new(big.Int).Sqrt(x.v)}
}

// FourthRoot returns floor(x^(1/4)) of a non-negative x, the reduction
// bound L the class-group fast squaring path consumes.
func FourthRoot(x *Int) *Int {
	return Sqrt(Sqrt(x))
}

// Exp computes base^exp mod m using math/big's modexp.
func Exp(base, exp, m *Int) *Int {
	return &Int{v: new(big.Int).Exp(base.v, exp.v, m.v)}
}

// Pow2DivMod computes q, r such that 2^T = q*mod + r, 0 <= r < mod,
// without ever materialising 2^T itself: at the VDF's billions-of-
// iterations scale, a literal 2^T is a multi-gigabit value and a single
// Lsh+QuoRem against it is exactly the allocation the VDF iteration
// target rules out.
//
// r is computed by binary exponentiation over the bits of T itself (T
// is a 64-bit count, so this is at most 64 modular squarings regardless
// of how large T is — the teacher's getBlock/evalOptimized block
// decomposition generalises to this direct modexp since a single-shot
// prover has no table to amortise). q is then recovered one bit at a
// time via the shift-and-subtract long-division identity: doubling a
// remainder that starts at 1 and is kept reduced mod mod at every step
// reproduces 2^T mod mod after T steps, and the sequence of "did this
// doubling overflow mod" bits is exactly q's binary expansion,
// most-significant bit first. Every intermediate value this loop holds
// is bounded by 2*mod, never by 2^T.
func Pow2DivMod(T uint64, mod *Int) (q, r *Int) {
	rBig := new(big.Int).Exp(bigTwo, new(big.Int).SetUint64(T), mod.v)
	r = &Int{v: rBig}

	qBig := new(big.Int)
	rem := new(big.Int).Set(bigOne)
	for i := uint64(0); i < T; i++ {
		rem.Lsh(rem, 1)
		if rem.Cmp(mod.v) >= 0 {
			rem.Sub(rem, mod.v)
			qBig.SetBit(qBig, int(T-1-i), 1)
		}
	}
	q = &Int{v: qBig}
	return q, r
}
