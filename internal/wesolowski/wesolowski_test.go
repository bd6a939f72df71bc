package wesolowski_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/classgroup"
	"github.com/enigmarikki/kala/internal/wesolowski"
)

func smallDiscriminant() *bigint.Int { return bigint.NewInt(-23) }

func repeatedSquare(x *classgroup.Form, n int) *classgroup.Form {
	cur := x
	for i := 0; i < n; i++ {
		sq, err := cur.Square()
		if err != nil {
			panic(err)
		}
		cur = sq
	}
	return cur
}

func TestProveVerifyRoundTrip(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	const T = 16
	y := repeatedSquare(x, T)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, y, T, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsWrongOutput(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	const T = 16
	y := repeatedSquare(x, T)
	wrongY := nonIdentityGenerator(d)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, wrongY, T, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	const T = 16
	y := repeatedSquare(x, T)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	tampered := append([]byte(nil), proof...)
	tampered[len(tampered)-1] ^= 0xff

	ok, err := wesolowski.Verify(d, x, y, T, tampered)
	require.False(t, ok)
	_ = err
}

func TestVerifyRejectsTruncatedProof(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	const T = 16
	y := repeatedSquare(x, T)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	_, err = wesolowski.Verify(d, x, y, T, proof[:5])
	require.Error(t, err)
}

func TestZeroIterationsProofVerifies(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)

	proof, err := wesolowski.Prove(d, x, x, 0, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, x, 0, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSingleSquaringProofVerifies(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	y := repeatedSquare(x, 1)

	proof, err := wesolowski.Prove(d, x, y, 1, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, y, 1, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

// nonIdentityGenerator returns (2, 1, 3), a valid non-identity form of
// discriminant -23 (b^2-4ac = 1-24 = -23). Every other test in this
// file runs its VDF from classgroup.Generator, the identity, whose orbit
// under squaring never leaves b>=0; squaring (2, 1, 3) gives (2, -1, 3),
// so driving the VDF from here takes the squaring chain and the
// verifier's x^r step through a negative-b form. At T = 40 the quotient
// floor(2^T/ell) is 0, so the proof's pi is the identity.
func nonIdentityGenerator(d *bigint.Int) *classgroup.Form {
	f, err := classgroup.FromComponents(bigint.NewInt(2), bigint.NewInt(1), bigint.NewInt(3), d)
	if err != nil {
		panic(err)
	}
	return f
}

func TestProveVerifyRoundTripFromNonIdentityGenerator(t *testing.T) {
	d := smallDiscriminant()
	x := nonIdentityGenerator(d)
	const T = 40
	y := repeatedSquare(x, T)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, y, T, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsMismatchedT(t *testing.T) {
	d := smallDiscriminant()
	x := classgroup.Generator(d)
	const T = 16
	y := repeatedSquare(x, T)

	proof, err := wesolowski.Prove(d, x, y, T, 0)
	require.NoError(t, err)

	ok, err := wesolowski.Verify(d, x, y, T+1, proof)
	require.NoError(t, err)
	require.False(t, ok)
}
