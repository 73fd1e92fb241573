package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith/internal/chain"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

type staticGen struct{}

func (staticGen) Stream(_ context.Context, _ string, onChunk func(string)) error {
	onChunk("done")
	return nil
}

func testChain(t *testing.T) *chain.Chain {
	t.Helper()
	c := chain.New("demo")
	_, err := c.AddStage("outline", prompt.Spec{Instruction: "outline {{topic}}"})
	require.NoError(t, err)
	_, err = c.AddStage("draft", prompt.Spec{Instruction: "draft from {{output_1}}"})
	require.NoError(t, err)
	return c
}

func TestViewBeforeFirstResize(t *testing.T) {
	t.Parallel()

	m := New(testChain(t), staticGen{}, nil)
	assert.Equal(t, "starting...", m.View())
}

func TestResizeThenViewShowsStages(t *testing.T) {
	t.Parallel()

	m := New(testChain(t), staticGen{}, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	view := m.View()
	assert.Contains(t, view, "1. outline")
	assert.Contains(t, view, "2. draft")
	assert.Contains(t, view, "demo")
}

func TestStageStartedEventSelectsStage(t *testing.T) {
	t.Parallel()

	c := testChain(t)
	m := New(c, staticGen{}, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	updated, _ = m.Update(eventMsg(chain.Event{Kind: chain.EventStageStarted, StageIndex: 1, Stage: c.Stages()[1]}))
	m = updated.(Model)
	assert.Equal(t, 1, m.selected)
}

func TestRunDoneMsgMarksCompletion(t *testing.T) {
	t.Parallel()

	m := New(testChain(t), staticGen{}, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)

	updated, _ = m.Update(runDoneMsg{result: chain.RunResult{Chain: "demo"}})
	m = updated.(Model)
	require.NotNil(t, m.result)
	assert.Contains(t, m.View(), "completed")
}
