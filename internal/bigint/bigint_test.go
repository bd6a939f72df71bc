package bigint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
)

func TestFromDecimalHexRoundTrip(t *testing.T) {
	x, err := bigint.FromDecimal("-123456789012345678901234567890")
	require.NoError(t, err)
	require.Equal(t, "-123456789012345678901234567890", x.String())

	h, err := bigint.FromHex("ff")
	require.NoError(t, err)
	require.Equal(t, int64(255), h.Big().Int64())
}

func TestFloorDivMatchesMathFloor(t *testing.T) {
	cases := []struct{ x, y, want int64 }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
	}
	for _, c := range cases {
		got := bigint.NewInt(c.x).FloorDiv(bigint.NewInt(c.y))
		require.Equal(t, c.want, got.Big().Int64(), "floordiv(%d,%d)", c.x, c.y)
	}
}

func TestModIsEuclidean(t *testing.T) {
	r := bigint.NewInt(-7).Mod(bigint.NewInt(4))
	require.True(t, r.Sign() >= 0)
	require.Equal(t, int64(1), r.Big().Int64())
}

func TestGCDAcceptsZeroAndNegative(t *testing.T) {
	require.Equal(t, int64(5), bigint.GCD(bigint.NewInt(0), bigint.NewInt(-5)).Big().Int64())
	require.Equal(t, int64(5), bigint.GCD(bigint.NewInt(-5), bigint.NewInt(0)).Big().Int64())
	require.Equal(t, int64(6), bigint.GCD(bigint.NewInt(-18), bigint.NewInt(24)).Big().Int64())
}

func TestSolveModFindsParticularSolution(t *testing.T) {
	a := bigint.NewInt(3)
	b := bigint.NewInt(2)
	m := bigint.NewInt(7)
	s, step, ok := bigint.SolveMod(a, b, m)
	require.True(t, ok)
	lhs := a.Mul(s).Mod(m)
	require.Equal(t, int64(2), lhs.Big().Int64())
	require.NotNil(t, step)
}

func TestNextPrimeInclusiveAndAdvances(t *testing.T) {
	require.Equal(t, int64(7), bigint.NextPrime(bigint.NewInt(7)).Big().Int64())
	require.Equal(t, int64(11), bigint.NextPrime(bigint.NewInt(8)).Big().Int64())
	require.Equal(t, int64(3), bigint.NextPrime(bigint.NewInt(0)).Big().Int64())
}

func TestPow2DivModIdentity(t *testing.T) {
	mod := bigint.NewInt(97)
	q, r := bigint.Pow2DivMod(20, mod)
	reconstructed := q.Mul(mod).Add(r)
	two20 := bigint.NewInt(1).Lsh(20)
	require.Equal(t, 0, reconstructed.Cmp(two20))
	require.True(t, r.Cmp(mod) < 0)
	require.True(t, r.Sign() >= 0)
}

func TestFourthRoot(t *testing.T) {
	x := bigint.NewInt(10000) // 10^4
	require.Equal(t, int64(10), bigint.FourthRoot(x).Big().Int64())
}

func TestBytesLERoundTrip(t *testing.T) {
	x := bigint.NewInt(0x0102)
	le := x.BytesLE(4)
	require.Equal(t, []byte{0x02, 0x01, 0x00, 0x00}, le)
	require.Equal(t, int64(0x0102), bigint.FromBytesLE(le).Big().Int64())
}

func TestExtendedGCDBezout(t *testing.T) {
	x := bigint.NewInt(240)
	y := bigint.NewInt(46)
	g, s, bt := bigint.ExtendedGCD(x, y)
	require.Equal(t, int64(2), g.Big().Int64())
	lhs := x.Mul(s).Add(y.Mul(bt))
	require.Equal(t, 0, lhs.Cmp(g))
}
