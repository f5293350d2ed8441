package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRoundTrip(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, "/src/project", "ollama", "llama3.2")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	recs := []OutcomeRecord{
		{File: "a.py", Declaration: "load", Status: "accepted", Attempts: 1},
		{File: "a.py", Declaration: "save", Status: "exhausted_with_warnings", Attempts: 3, Corrections: 2, Violations: 1},
		{File: "b.py", Declaration: "Config", Status: "accepted", Attempts: 2, Corrections: 1},
	}
	for _, rec := range recs {
		require.NoError(t, s.RecordOutcome(ctx, runID, rec))
	}
	require.NoError(t, s.EndRun(ctx, runID))

	got, err := s.Outcomes(ctx, runID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a.py", got[0].File)
	assert.Equal(t, "exhausted_with_warnings", got[1].Status)
	assert.Equal(t, 2, got[1].Corrections)

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "ollama", runs[0].Provider)
	assert.Equal(t, 3, runs[0].Outcomes)
	assert.False(t, runs[0].StartedAt.IsZero())
	assert.False(t, runs[0].EndedAt.IsZero())
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".docsmith", "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.BeginRun(context.Background(), ".", "gemini", "gemini-2.5-flash")
	assert.NoError(t, err)
}

func TestRunsHonorsLimit(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.BeginRun(ctx, "/a", "ollama", "m")
	require.NoError(t, err)
	_, err = s.BeginRun(ctx, "/b", "ollama", "m")
	require.NoError(t, err)

	runs, err := s.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
