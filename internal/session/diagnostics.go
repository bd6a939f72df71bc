package session

import (
	"time"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/classgroup"
	"github.com/enigmarikki/kala/internal/wesolowski"
)

// selfTestDiscriminant is a small, fixed discriminant used only for
// Benchmark and SelfTest: fast enough to run on every startup, large
// enough to exercise reduction, NUDUPL squaring, and the Wesolowski
// prove/verify round trip.
var selfTestDiscriminant = bigint.NewInt(-23)

// Benchmark runs testIterations squarings of the generator form on the
// caller's goroutine (no session, no worker, no checkpoints) and reports
// the observed iterations-per-second, the way a caller would size
// SegmentSize or sanity-check a build before starting real sessions.
// Grounded on the cpu_vdf_benchmark entry point of the C streamer ABI
// this package's Session descends from.
func Benchmark(testIterations uint64) float64 {
	if testIterations == 0 {
		return 0
	}

	d := selfTestDiscriminant
	l := bigint.FourthRoot(d.Abs())
	x := classgroup.Generator(d)

	start := time.Now()
	_, applied, _, err := classgroup.SquareLoop(x, d, l, int(testIterations), DefaultBatchSize, nil)
	elapsed := time.Since(start)
	if err != nil || elapsed <= 0 {
		return 0
	}
	return float64(applied) / elapsed.Seconds()
}

// SelfTest exercises a small fixed-discriminant round trip — generator,
// a handful of squarings, Wesolowski prove, Wesolowski verify — and
// reports whether the engine's arithmetic is behaving correctly.
// Intended for a startup health check, grounded on the C streamer ABI's
// cpu_vdf_self_test entry point.
func SelfTest() error {
	const T = 16

	d := selfTestDiscriminant
	l := bigint.FourthRoot(d.Abs())
	x := classgroup.Generator(d)

	y, applied, _, err := classgroup.SquareLoop(x, d, l, T, DefaultBatchSize, nil)
	if err != nil {
		return ErrComputationFailed
	}
	if applied != T {
		return ErrComputationFailed
	}

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	if err != nil {
		return ErrProofGenerationFailed
	}

	ok, err := wesolowski.Verify(d, x, y, T, proof)
	if err != nil || !ok {
		return ErrComputationFailed
	}
	return nil
}
