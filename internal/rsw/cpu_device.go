package rsw

import (
	"context"
	"fmt"
	"runtime"

	"github.com/enigmarikki/kala/internal/bigint"
)

// CPUDevice implements Device directly with math/big modular
// exponentiation, standing in for the CGBN cooperative-group kernel of
// original_source/kala-timelocks/rsw_solver.h. The kernel body there is
//
//	r = to_montgomery(a, n); repeat T times: r = mont_sqr(r, n)
//	r = from_montgomery(r, n)
//	k = (C + (if C >= r then 0 else n)) - r
//
// which is algebraically a^(2^T) mod n followed by a single modular
// subtraction; math/big's Exp already performs the modexp with its own
// internal Montgomery reduction, so this device computes the same
// result without hand-rolling the Montgomery ladder bit by bit.
type CPUDevice struct{}

// NewCPUDevice returns a CPUDevice ready for use.
func NewCPUDevice() *CPUDevice { return &CPUDevice{} }

func (d *CPUDevice) Name() string {
	return fmt.Sprintf("cpu:%d", runtime.NumCPU())
}

func (d *CPUDevice) Solve(ctx context.Context, p Puzzle) Result {
	select {
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	default:
	}

	if p.N.Sign() <= 0 {
		return Result{Err: ErrInvalidHexInput}
	}

	exp := bigint.NewInt(1).Lsh(uint(p.T))
	r := bigint.Exp(p.A, exp, p.N)

	k := p.C.Sub(r).Mod(p.N)

	var key [32]byte
	copy(key[:], k.BytesLE(32)[:32])

	return Result{Key: key, OK: true}
}
