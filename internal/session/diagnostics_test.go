package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enigmarikki/kala/internal/session"
)

func TestSelfTestPasses(t *testing.T) {
	require.NoError(t, session.SelfTest())
}

func TestBenchmarkReportsPositiveRate(t *testing.T) {
	require.Greater(t, session.Benchmark(50), 0.0)
}

func TestBenchmarkZeroIterations(t *testing.T) {
	require.Equal(t, 0.0, session.Benchmark(0))
}
