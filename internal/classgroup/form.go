// Package classgroup implements binary quadratic forms of a negative
// fundamental discriminant and the repeated-squaring primitive the VDF
// session drives, adapted from the NUCOMP/NUDUPL composition and
// reduction routines of nekryptology's iqc.ClassGroup.
package classgroup

import (
	"github.com/pkg/errors"

	"github.com/enigmarikki/kala/internal/bigint"
)

// ErrInvalidForm is returned when a form's components do not satisfy
// b^2 - 4ac == D, or when a buffer cannot be decoded into a form.
var ErrInvalidForm = errors.New("classgroup: invalid form")

// ErrNotComposable is returned by Compose/Square when the internal
// SolveMod step has no solution, which can only happen for a
// non-prime-power discriminant; a correctly generated discriminant
// never triggers this.
var ErrNotComposable = errors.New("classgroup: composition has no solution")

// Form is a binary quadratic form (a, b, c) of discriminant D = b^2 -
// 4ac. Values are immutable from the caller's perspective: every method
// returns a new Form rather than mutating the receiver.
type Form struct {
	A, B, C *bigint.Int
	d       *bigint.Int // memoised discriminant
}

// FromComponents builds a Form and validates it against the expected
// discriminant.
func FromComponents(a, b, c, d *bigint.Int) (*Form, error) {
	f := &Form{A: a, B: b, C: c}
	if f.Discriminant().Cmp(d) != 0 {
		return nil, ErrInvalidForm
	}
	return f, nil
}

// FromAB builds the unique reduced-compatible Form with the given a, b
// over discriminant d, computing c = (b^2 - d) / 4a per the standard
// construction (nekryptology's NewClassGroupFromAbDiscriminant).
func FromAB(a, b, d *bigint.Int) *Form {
	z := b.Mul(b).Sub(d)
	c := z.FloorDiv(a.Mul(bigint.NewInt(4)))
	return &Form{A: a, B: b, C: c}
}

// Generator returns the principal form (1, 1, (1-D)/4) for discriminant
// d, the identity element of the class group.
func Generator(d *bigint.Int) *Form {
	return FromAB(bigint.NewInt(1), bigint.NewInt(1), d)
}

// Discriminant returns b^2 - 4ac, memoised after first computation.
func (f *Form) Discriminant() *bigint.Int {
	if f.d == nil {
		f.d = f.B.Mul(f.B).Sub(f.A.Mul(f.C).Mul(bigint.NewInt(4)))
	}
	return f.d
}

// Clone returns a deep, independent copy.
func (f *Form) Clone() *Form {
	return &Form{A: f.A.Clone(), B: f.B.Clone(), C: f.C.Clone(), d: f.d}
}

// Equal compares two forms after reducing both, so equivalent but
// differently normalised representatives compare equal.
func (f *Form) Equal(g *Form) bool {
	rf, rg := f.Reduce(), g.Reduce()
	return rf.A.Cmp(rg.A) == 0 && rf.B.Cmp(rg.B) == 0 && rf.C.Cmp(rg.C) == 0
}

// IsReduced reports whether the form already satisfies the canonical
// reduction invariant: |b| <= a <= c, and b >= 0 whenever |b| == a or
// a == c.
func (f *Form) IsReduced() bool {
	absB := f.B.Abs()
	if absB.Cmp(f.A) > 0 || f.A.Cmp(f.C) > 0 {
		return false
	}
	if (absB.Cmp(f.A) == 0 || f.A.Cmp(f.C) == 0) && f.B.Sign() < 0 {
		return false
	}
	return true
}

// normalize brings b into (-a, a] without changing the equivalence
// class, the first half of full reduction.
func (f *Form) normalize() *Form {
	a, b, c := f.A, f.B, f.C

	if b.Cmp(a.Neg()) > 0 && b.Cmp(a) <= 0 {
		return &Form{A: a, B: b, C: c, d: f.d}
	}

	r := a.Sub(b).FloorDiv(a.Mul(bigint.NewInt(2)))
	newB := b.Add(bigint.NewInt(2).Mul(r).Mul(a))
	newC := c.Add(a.Mul(r).Mul(r)).Add(b.Mul(r))
	return &Form{A: a, B: newB, C: newC, d: f.d}
}

// Reduce returns the canonical reduced representative of f's
// equivalence class, grounded on nekryptology's ClassGroup.Reduced and
// cross-checked against kala-tick's form.rs reduce() iteration-cap
// guard (ported here as an explicit bound rather than an unbounded
// loop, since a correctly formed discriminant converges in O(log|D|)
// steps and a non-terminating loop indicates a corrupt input).
func (f *Form) Reduce() *Form {
	const maxIterations = 4096

	g := f.normalize()
	a, b, c := g.A, g.B, g.C

	for i := 0; i < maxIterations; i++ {
		if a.Cmp(c) <= 0 && !(a.Cmp(c) == 0 && b.Sign() < 0) {
			break
		}
		s := c.Add(b).FloorDiv(c.Add(c))
		oldA, oldB := a, b
		a = c
		b = b.Neg().Add(bigint.NewInt(2).Mul(s).Mul(c))
		c = c.Mul(s).Mul(s).Sub(oldB.Mul(s)).Add(oldA)
	}

	return (&Form{A: a, B: b, C: c}).normalize()
}

// Compose returns f * g in the class group, via the NUCOMP algorithm
// (grounded on nekryptology's ClassGroup.Multiply).
func (f *Form) Compose(g *Form) (*Form, error) {
	x := f.Reduce()
	y := g.Reduce()

	gg := x.B.Add(y.B).FloorDiv(bigint.NewInt(2))
	h := y.B.Sub(x.B).FloorDiv(bigint.NewInt(2))

	w := bigint.GCD(bigint.GCD(x.A, y.A), gg)

	j := w.Clone()
	r := bigint.NewInt(0)
	s := x.A.FloorDiv(w)
	t := y.A.FloorDiv(w)
	u := gg.FloorDiv(w)

	b := h.Mul(u).Add(s.Mul(x.C))
	kTemp, constFactor, ok := bigint.SolveMod(t.Mul(u), b, s.Mul(t))
	if !ok {
		return nil, ErrNotComposable
	}

	n, _, ok := bigint.SolveMod(t.Mul(constFactor), h.Sub(t.Mul(kTemp)), s)
	if !ok {
		return nil, ErrNotComposable
	}

	k := kTemp.Add(constFactor.Mul(n))
	l := t.Mul(k).Sub(h).FloorDiv(s)
	m := t.Mul(u).Mul(k).Sub(h.Mul(u)).Sub(s.Mul(x.C)).FloorDiv(s.Mul(t))

	a3 := s.Mul(t).Sub(r.Mul(u))
	b3 := j.Mul(u).Add(m.Mul(r)).Sub(k.Mul(t).Add(l.Mul(s)))
	c3 := k.Mul(l).Sub(j.Mul(m))

	return (&Form{A: a3, B: b3, C: c3}).Reduce(), nil
}

// Square returns f * f via the NUDUPL algorithm, the specialised,
// cheaper half of Compose when both operands are identical (grounded
// on nekryptology's ClassGroup.Square).
func (f *Form) Square() (*Form, error) {
	u, _, ok := bigint.SolveMod(f.B, f.C, f.A)
	if !ok {
		return nil, ErrNotComposable
	}

	A := f.A.Mul(f.A)
	B := f.B.Sub(bigint.NewInt(2).Mul(f.A).Mul(u))
	m := f.B.Mul(u).Sub(f.C).FloorDiv(f.A)
	C := u.Mul(u).Sub(m)

	return (&Form{A: A, B: B, C: C}).Reduce(), nil
}

// Pow returns f^n via binary exponentiation (right-to-left square and
// multiply, lowest bit of n first), grounded on nekryptology's
// ClassGroup.BigPow.
func (f *Form) Pow(n *bigint.Int) (*Form, error) {
	d := f.Discriminant()
	result := Generator(d)
	base := f.Clone()

	p := n.Clone()
	for p.Sign() > 0 {
		if p.Bit(0) == 1 {
			var err error
			result, err = result.Compose(base)
			if err != nil {
				return nil, err
			}
		}
		sq, err := base.Square()
		if err != nil {
			return nil, err
		}
		base = sq
		p = p.Rsh(1)
	}
	return result, nil
}

// Serialize encodes a, b as fixed-width two's-complement big-endian
// integers sized from the discriminant's bit length, matching
// nekryptology's ClassGroup.Serialize wire format. The form is reduced
// first; a reduced form's b ranges over (-a, a] and is negative for a
// generic class-group element (IsReduced's invariant forces b >= 0 only
// at the |b| == a and a == c edge cases), so both coefficients go through
// bigint.EncodeSigned's two's-complement encoding rather than a bare
// magnitude, with a leading sign-extension byte when required.
func (f *Form) Serialize() []byte {
	r := f.Reduce()
	bits := r.Discriminant().Abs().BitLen()
	size := (bits + 16) >> 4

	buf := make([]byte, size*2)
	copy(buf[:size], signExtend(bigint.EncodeSigned(r.A), size))
	copy(buf[size:], signExtend(bigint.EncodeSigned(r.B), size))
	return buf
}

// Deserialize decodes a buffer produced by Serialize back into a
// reduced Form over the given discriminant.
func Deserialize(buf []byte, d *bigint.Int) (*Form, error) {
	bits := d.Abs().BitLen()
	size := (bits + 16) >> 4
	if len(buf) != size*2 {
		return nil, errors.Wrapf(ErrInvalidForm, "want %d bytes, got %d", size*2, len(buf))
	}

	a := bigint.DecodeSigned(buf[:size])
	b := bigint.DecodeSigned(buf[size:])
	if a.IsZero() {
		return nil, ErrInvalidForm
	}

	return FromAB(a, b, d), nil
}
