package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsmith/internal/analysis"
	"docsmith/internal/generation"
)

// countingPipeGenerator delegates to the oracle and counts calls.
type countingPipeGenerator struct {
	calls atomic.Int32
}

func (c *countingPipeGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	c.calls.Add(1)
	return oracleGenerator{}.Generate(ctx, req)
}

func (c *countingPipeGenerator) Name() string { return "counting" }

// meteredGenerator tracks peak concurrent Generate calls while
// delegating to the oracle.
type meteredGenerator struct {
	active atomic.Int32
	peak   atomic.Int32
}

func (m *meteredGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	n := m.active.Add(1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	m.active.Add(-1)
	return oracleGenerator{}.Generate(ctx, req)
}

func (m *meteredGenerator) Name() string { return "metered" }

// slowGenerator delays each call and aborts with a transport error
// once the context is cancelled.
type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, req generation.Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", &generation.TransportError{Provider: "slow", Err: ctx.Err()}
	case <-time.After(25 * time.Millisecond):
		return oracleGenerator{}.Generate(ctx, req)
	}
}

func (slowGenerator) Name() string { return "slow" }

func writeBatch(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		src := fmt.Sprintf("def first_%d(x):\n    return x\n\ndef second_%d(y):\n    return y\n", i, i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.py", i)), []byte(src), 0o644))
	}
}

func TestRunnerSharedGateBoundsGenerationAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, 8)

	metered := &meteredGenerator{}
	gen := generation.Gated(metered, generation.NewGate(2))
	runner := NewRunner(newTestPipeline(gen), nil, RunnerOptions{Jobs: 8, Write: true}, nil)

	report, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)

	accepted, exhausted, failed, _ := report.Counts()
	assert.Equal(t, 16, accepted)
	assert.Zero(t, exhausted)
	assert.Zero(t, failed)

	// Eight file workers, but the gate caps in-flight generations.
	assert.LessOrEqual(t, metered.peak.Load(), int32(2))
}

func TestRunnerCancellationLeavesNoPartialWrites(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, 8)

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(newTestPipeline(slowGenerator{}), nil, RunnerOptions{Jobs: 2, Write: true}, nil)

	go func() {
		time.Sleep(40 * time.Millisecond)
		cancel()
	}()
	_, err := runner.Run(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)

	// Every file on disk is either untouched or fully documented and
	// still parses; a cancelled batch never leaves a half-written unit.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)

		unit, err := analysis.ParseUnit(context.Background(), content)
		require.NoError(t, err, e.Name())
		decls := unit.Declarations()
		documented := 0
		for _, d := range decls {
			if d.HasDocstring {
				documented++
			}
		}
		unit.Close()
		if documented != 0 {
			assert.Equal(t, len(decls), documented,
				"%s: written files must be fully documented", e.Name())
		}
	}
}
