package classgroup_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/bigint"
	"github.com/enigmarikki/kala/internal/classgroup"
)

func TestSquareLoopAppliesAllAndCountsSlowPath(t *testing.T) {
	d := d23()
	g := classgroup.Generator(d)
	l := bigint.FourthRoot(d.Abs())

	result, applied, slowCount, err := classgroup.SquareLoop(g, d, l, 10, 4, nil)
	require.NoError(t, err)
	require.Equal(t, 10, applied)
	// This module's fast path always bails, so every squaring takes
	// the slow NUDUPL+reduce path.
	require.Equal(t, 10, slowCount)

	want := g
	for i := 0; i < 10; i++ {
		var werr error
		want, werr = want.Square()
		require.NoError(t, werr)
	}
	require.True(t, result.Equal(want))
}

func TestSquareLoopHonoursCancellation(t *testing.T) {
	d := d23()
	g := classgroup.Generator(d)
	l := bigint.FourthRoot(d.Abs())

	calls := 0
	cancelled := func() bool {
		calls++
		return calls > 2
	}

	_, applied, _, err := classgroup.SquareLoop(g, d, l, 100, 1, cancelled)
	require.NoError(t, err)
	require.Less(t, applied, 100)
}
