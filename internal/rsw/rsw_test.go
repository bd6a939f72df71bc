package rsw_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/rsw"
)

// smallPuzzle builds a puzzle over a tiny RSA-style modulus (two small
// primes) so tests run instantly while still exercising the full puzzle/solve
// path; production use targets 2048-bit moduli.
func smallPuzzle(t *testing.T, T uint32) (rsw.Puzzle, *bigint.Int) {
	t.Helper()
	n := bigint.NewInt(3233) // 61 * 53
	a := bigint.NewInt(5)

	r := bigint.Exp(a, bigint.NewInt(1).Lsh(uint(T)), n)
	c := bigint.NewInt(1234)

	return rsw.Puzzle{N: n, A: a, C: c, T: T}, r
}

func TestSolveRecoversExpectedKey(t *testing.T) {
	puzzle, r := smallPuzzle(t, 4)

	solver := rsw.New(rsw.NewCPUDevice())
	result := solver.Solve(context.Background(), puzzle)
	require.True(t, result.OK)
	require.NoError(t, result.Err)

	wantKey := puzzle.C.Sub(r).Mod(puzzle.N)
	var want [32]byte
	copy(want[:], wantKey.BytesLE(32)[:32])
	require.Equal(t, want, result.Key)
}

func TestSolveBatchMatchesIndividualSolves(t *testing.T) {
	p1, _ := smallPuzzle(t, 3)
	p2, _ := smallPuzzle(t, 5)

	solver := rsw.New(rsw.NewCPUDevice())
	batch := solver.SolveBatch(context.Background(), []rsw.Puzzle{p1, p2})
	require.Len(t, batch, 2)

	single1 := solver.Solve(context.Background(), p1)
	single2 := solver.Solve(context.Background(), p2)

	require.Equal(t, single1.Key, batch[0].Key)
	require.Equal(t, single2.Key, batch[1].Key)
}

func TestPuzzleFromHexRejectsInvalidHex(t *testing.T) {
	_, err := rsw.PuzzleFromHex("zz", "05", "04d2", 4)
	require.ErrorIs(t, err, rsw.ErrInvalidHexInput)
}

func TestPuzzleFromHexParsesValidInput(t *testing.T) {
	p, err := rsw.PuzzleFromHex("0ca1", "05", "04d2", 4)
	require.NoError(t, err)
	require.Equal(t, uint32(4), p.T)
}

func TestOptimalBatchSizePositive(t *testing.T) {
	solver := rsw.New(rsw.NewCPUDevice())
	require.Greater(t, solver.OptimalBatchSize(), 0)
}
