package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "promptsmith.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestTemplateRoundTripAndUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	spec := prompt.Spec{
		Role:        "beekeeper",
		Instruction: "Summarize {{topic}}",
		Constraints: "short",
	}
	require.NoError(t, s.SaveTemplate(ctx, "summary", spec))

	got, err := s.GetTemplate(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, spec, got.Spec)

	spec.Evaluation = "must mention honey"
	require.NoError(t, s.SaveTemplate(ctx, "summary", spec))

	got, err = s.GetTemplate(ctx, "summary")
	require.NoError(t, err)
	assert.Equal(t, "must mention honey", got.Spec.Evaluation)

	all, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, s.DeleteTemplate(ctx, "summary"))
	_, err = s.GetTemplate(ctx, "summary")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.DeleteTemplate(ctx, "summary"), ErrNotFound)
}

func TestScenarioRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	vars := prompt.Scope{"topic": "bees", "tone": "cheerful"}
	require.NoError(t, s.SaveScenario(ctx, "spring", vars))

	got, err := s.GetScenario(ctx, "spring")
	require.NoError(t, err)
	assert.Equal(t, vars, got.Vars)

	list, err := s.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "spring", list[0].Name)

	require.NoError(t, s.DeleteScenario(ctx, "spring"))
	_, err = s.GetScenario(ctx, "spring")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordRunAndHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := chain.RunResult{
		Chain:    "article",
		Duration: 1500 * time.Millisecond,
		Stages: []chain.StageResult{
			{ID: "a", Name: "outline", Status: chain.StatusCompleted, Output: "I. Bees"},
			{ID: "b", Name: "draft", Status: chain.StatusError},
			{ID: "c", Name: "polish", Status: chain.StatusIdle},
		},
		FailedStage: "draft",
	}
	runID, err := s.RecordRun(ctx, res)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Equal(t, "draft", runs[0].FailedStage)

	rec, stages, err := s.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "article", rec.ChainName)
	require.Len(t, stages, 3)
	assert.Equal(t, "outline", stages[0].Name)
	assert.Equal(t, string(chain.StatusCompleted), stages[0].Status)
	assert.Equal(t, "I. Bees", stages[0].Output)
	assert.Equal(t, string(chain.StatusIdle), stages[2].Status)

	_, _, err = s.GetRun(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
