// Package rsw implements the RSW (Rivest-Shamir-Wagner) timelock batch
// solver: given puzzles (n, a, C, T) it computes r = a^(2^T) mod n and
// recovers the 256-bit key k = (C - r) mod n. Grounded on the device
// abstraction of original_source/kala-timelocks/rsw_solver.h and the
// Rust FFI wrapper's Solver/SolveResult shape in
// kala-timelocks/timelocks/src/lib.rs, reimplemented as a math/big
// modular exponentiation plus errgroup-parallel batch dispatch on a CPU
// device standing in for the CUDA/CGBN device model.
package rsw

import (
	"context"
	"encoding/hex"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/enigmarikki/kala/internal/bigint"
)

// ErrInvalidHexInput is returned per-instance (not batch-wide) when a
// puzzle's n, a, or C field cannot be parsed as hex.
var ErrInvalidHexInput = errors.New("rsw: invalid hex input")

// Puzzle is one RSW timelock instance: modulus n, base a, challenge
// constant C, and squaring count T. All fields are immutable once
// constructed.
type Puzzle struct {
	N *bigint.Int
	A *bigint.Int
	C *bigint.Int
	T uint32
}

// PuzzleFromHex parses a puzzle from hex-encoded n, a, C strings and a
// T value, returning ErrInvalidHexInput on a parse failure.
func PuzzleFromHex(nHex, aHex, cHex string, T uint32) (Puzzle, error) {
	n, err := parseHexInt(nHex)
	if err != nil {
		return Puzzle{}, errors.Wrap(err, "rsw: field n")
	}
	a, err := parseHexInt(aHex)
	if err != nil {
		return Puzzle{}, errors.Wrap(err, "rsw: field a")
	}
	c, err := parseHexInt(cHex)
	if err != nil {
		return Puzzle{}, errors.Wrap(err, "rsw: field C")
	}
	return Puzzle{N: n, A: a, C: c, T: T}, nil
}

func parseHexInt(s string) (*bigint.Int, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidHexInput
	}
	return bigint.FromBytesBE(buf), nil
}

// Result is the outcome of solving one puzzle: a 32-byte key on
// success, or a per-instance error.
type Result struct {
	Key [32]byte
	OK  bool
	Err error
}

// Device is the abstract compute backend a Solver dispatches puzzles
// to, one instance per Solve call: run the sequential repeated-squaring
// kernel on the instance and export the low 256 bits of the recovered
// key. The shipped CPUDevice implements this directly in
// Go; a GPU-backed device is out of this module's scope (see
// DESIGN.md) but would satisfy the same interface.
type Device interface {
	// Solve computes one puzzle's key.
	Solve(ctx context.Context, p Puzzle) Result
	// Name identifies the device for logging/diagnostics.
	Name() string
}

// Solver owns exactly one Device for its entire lifetime. It is not
// clonable (no Clone method is exposed). It holds no mutable state of
// its own and takes no lock: SolveBatch calls the Device's Solve from
// several goroutines at once, so a Device must tolerate concurrent
// Solve calls. CPUDevice is stateless and does.
type Solver struct {
	device Device
}

// New binds a Solver to the given device for its whole lifetime.
func New(device Device) *Solver {
	return &Solver{device: device}
}

// Solve computes a single puzzle's key.
func (s *Solver) Solve(ctx context.Context, p Puzzle) Result {
	return s.device.Solve(ctx, p)
}

// SolveBatch computes keys for a batch of puzzles. On this module's CPU
// device, puzzles are independent and are dispatched across a bounded
// worker pool, the Go analogue of the CUDA grid/block launch the
// original device model describes.
func (s *Solver) SolveBatch(ctx context.Context, puzzles []Puzzle) []Result {
	results := make([]Result, len(puzzles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range puzzles {
		i, p := i, p
		g.Go(func() error {
			results[i] = s.device.Solve(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// OptimalBatchSize reports a heuristic recommended batch size: this CPU
// device scales with the number of available cores rather than a
// compute-capability tier, since there is no GPU to query (see
// DESIGN.md on GPU discovery being out of scope).
func (s *Solver) OptimalBatchSize() int {
	return runtime.NumCPU() * 256
}

// DeviceName returns the bound device's name.
func (s *Solver) DeviceName() string {
	return s.device.Name()
}
