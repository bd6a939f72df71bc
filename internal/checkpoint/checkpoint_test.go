package checkpoint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/checkpoint"
	"github.com/enigmarikki/kala/internal/classgroup"
)

func TestNewSeedsInitialCheckpoint(t *testing.T) {
	d := bigint.NewInt(-23)
	x0 := classgroup.Generator(d)

	s := checkpoint.New(x0)
	require.Equal(t, 1, s.Count())
	require.Equal(t, uint64(0), s.Last().Iteration)
	require.Nil(t, s.Last().Proof)
}

func TestAppendRejectsOutOfOrder(t *testing.T) {
	d := bigint.NewInt(-23)
	x0 := classgroup.Generator(d)
	s := checkpoint.New(x0)

	require.NoError(t, s.Append(checkpoint.Checkpoint{Iteration: 10, Form: x0}))
	require.Error(t, s.Append(checkpoint.Checkpoint{Iteration: 10, Form: x0}))
	require.Error(t, s.Append(checkpoint.Checkpoint{Iteration: 5, Form: x0}))
}

func TestBetweenFiltersAndCaps(t *testing.T) {
	d := bigint.NewInt(-23)
	x0 := classgroup.Generator(d)
	s := checkpoint.New(x0)

	for _, i := range []uint64{10, 20, 30, 40} {
		require.NoError(t, s.Append(checkpoint.Checkpoint{Iteration: i, Form: x0}))
	}

	got := s.Between(15, 35, 0)
	require.Len(t, got, 2)
	require.Equal(t, uint64(20), got[0].Iteration)
	require.Equal(t, uint64(30), got[1].Iteration)

	capped := s.Between(0, 100, 2)
	require.Len(t, capped, 2)
}

func TestAppendSegmentAttachesProof(t *testing.T) {
	d := bigint.NewInt(-23)
	x0 := classgroup.Generator(d)
	s := checkpoint.New(x0)

	sq, err := x0.Square()
	require.NoError(t, err)

	require.NoError(t, s.AppendSegment(d, 1, sq, 0))
	last := s.Last()
	require.Equal(t, uint64(1), last.Iteration)
	require.NotEmpty(t, last.Proof)
}

func TestEncodeInitialHasNoProofBytes(t *testing.T) {
	d := bigint.NewInt(-23)
	x0 := classgroup.Generator(d)
	s := checkpoint.New(x0)

	buf := checkpoint.Encode(s.Last())
	require.Equal(t, byte(0x04), buf[0])
}
