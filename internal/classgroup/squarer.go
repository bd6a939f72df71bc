package classgroup

import (
	"github.com/pkg/errors"

	"github.com/enigmarikki/kala/internal/bigint"
)

// ErrArithmeticFailure is returned by the squaring loop when a fast or
// slow squaring step fails unrecoverably (FAIL in the fast-path
// contract of spec section 4.C).
var ErrArithmeticFailure = errors.New("classgroup: unrecoverable arithmetic failure")

// FastSquare attempts up to budget squarings of x using a batched fast
// path, returning the resulting form and the number of squarings
// applied. This module's CPU implementation always bails (nil, 0, nil)
// to fall through to the NUDUPL slow path below: per the design notes,
// a correct always-bail fast path is a valid (if unoptimised)
// implementation of the fast/slow contract, and keeps the squaring
// loop's correctness independent of any hand-tuned batch algorithm. A
// future hardware-specific fast path is a drop-in replacement behind
// this same signature.
func FastSquare(x *Form, d, l *bigint.Int, budget int) (next *Form, done int, err error) {
	return nil, 0, nil
}

// SquareLoop advances x by n squarings (producing x^(2^n)), polling
// cancelled() at batch boundaries of size batch. It returns the
// resulting form, the number of squarings actually applied (n on
// success, less if cancelled early), and the number that went through
// the slow NUDUPL+reduce path.
func SquareLoop(x *Form, d, l *bigint.Int, n int, batch int, cancelled func() bool) (result *Form, applied int, slowCount int, err error) {
	cur := x
	for applied < n {
		if cancelled != nil && cancelled() {
			return cur, applied, slowCount, nil
		}

		budget := batch
		if n-applied < budget {
			budget = n - applied
		}

		next, done, ferr := FastSquare(cur, d, l, budget)
		if ferr != nil {
			return cur, applied, slowCount, errors.Wrapf(ErrArithmeticFailure, "fast squaring: %v", ferr)
		}
		if done == 0 {
			sq, serr := cur.Square()
			if serr != nil {
				return cur, applied, slowCount, errors.Wrapf(ErrArithmeticFailure, "slow squaring: %v", serr)
			}
			cur = sq
			slowCount++
			applied++
			continue
		}
		cur = next
		applied += done
	}
	return cur, applied, slowCount, nil
}
