package discriminant_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/discriminant"
)

func TestFromChallengeIsDeterministic(t *testing.T) {
	var challenge [32]byte
	copy(challenge[:], []byte("deterministic-test-challenge!!!"))

	d1, err := discriminant.FromChallenge(challenge, 128)
	require.NoError(t, err)
	d2, err := discriminant.FromChallenge(challenge, 128)
	require.NoError(t, err)

	require.Equal(t, 0, d1.Cmp(d2))
}

func TestFromChallengeProducesValidDiscriminant(t *testing.T) {
	var challenge [32]byte
	copy(challenge[:], []byte("another-challenge-for-testing!!"))

	d, err := discriminant.FromChallenge(challenge, 192)
	require.NoError(t, err)

	require.NoError(t, discriminant.FromValue(d))
	require.True(t, d.Sign() < 0)
	require.True(t, d.Abs().ProbablyPrime(25))
}

func TestFromChallengeDiffersAcrossChallenges(t *testing.T) {
	var a, b [32]byte
	copy(a[:], []byte("challenge-a"))
	copy(b[:], []byte("challenge-b"))

	da, err := discriminant.FromChallenge(a, 128)
	require.NoError(t, err)
	db, err := discriminant.FromChallenge(b, 128)
	require.NoError(t, err)

	require.NotEqual(t, 0, da.Cmp(db))
}

func TestFromValueRejectsPositive(t *testing.T) {
	require.Error(t, discriminant.FromValue(bigint.NewInt(23)))
}

func TestFromValueRejectsWrongCongruence(t *testing.T) {
	require.Error(t, discriminant.FromValue(bigint.NewInt(-8)))
}

func TestFromValueAcceptsKnownGood(t *testing.T) {
	require.NoError(t, discriminant.FromValue(bigint.NewInt(-23)))
}

func TestCoerceFixesCongruence(t *testing.T) {
	coerced := discriminant.Coerce(bigint.NewInt(-8))
	require.NoError(t, discriminant.FromValue(coerced))
}

func TestCoerceNegatesPositiveResult(t *testing.T) {
	coerced := discriminant.Coerce(bigint.NewInt(2))
	require.True(t, coerced.Sign() < 0)
	require.NoError(t, discriminant.FromValue(coerced))
}

func TestFromChallengeRejectsTooSmallBitLength(t *testing.T) {
	var challenge [32]byte
	_, err := discriminant.FromChallenge(challenge, 4)
	require.Error(t, err)
}
