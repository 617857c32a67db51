package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/messiay/protein-refinary/pkg/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(id string, startedAt time.Time) RunSummary {
	return RunSummary{
		ID:                    id,
		StartedAt:             startedAt,
		FinishedAt:            startedAt.Add(10 * time.Minute),
		VariantsPerGeneration: 5,
		Generations:           3,
		BestCandidateID:       "G3_V2",
		BestAffinity:          -8.4,
		Records: []GenerationSummary{
			{Index: 1, CandidateCount: 5, BestID: "G1_V1", BestAffinity: -6.0, Origin: "remote"},
			{Index: 2, CandidateCount: 5, BestID: "G2_V4", BestAffinity: -7.1, Origin: "fallback"},
			{Index: 3, CandidateCount: 5, BestID: "G3_V2", BestAffinity: -8.4, Origin: "remote"},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	store := openTestStore(t)
	want := sampleRun("run-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, store.SaveRun(context.Background(), want))

	got, err := store.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.BestCandidateID, got.BestCandidateID)
	assert.InDelta(t, want.BestAffinity, got.BestAffinity, 1e-9)
	require.Len(t, got.Records, 3)
	assert.Equal(t, "G2_V4", got.Records[1].BestID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
}

func TestSaveRunIsIdempotentPerID(t *testing.T) {
	store := openTestStore(t)
	run := sampleRun("run-1", time.Now().UTC())
	require.NoError(t, store.SaveRun(context.Background(), run))

	run.BestAffinity = -9.9
	require.NoError(t, store.SaveRun(context.Background(), run))

	got, err := store.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.InDelta(t, -9.9, got.BestAffinity, 1e-9)

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryNotFound, apperrors.GetCode(err))
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRun(context.Background(), sampleRun("old", base)))
	require.NoError(t, store.SaveRun(context.Background(), sampleRun("mid", base.Add(time.Hour))))
	require.NoError(t, store.SaveRun(context.Background(), sampleRun("new", base.Add(2*time.Hour))))

	runs, err := store.ListRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "mid", runs[1].ID)
}

func TestListRunsEmptyStore(t *testing.T) {
	store := openTestStore(t)

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
