package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

func TestAddRemoveUpdateStage(t *testing.T) {
	t.Parallel()

	c := New("edit")
	st, err := c.AddStage("draft", prompt.Spec{Instruction: "write"})
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	require.NotEmpty(t, st.ID())
	assert.Equal(t, StatusIdle, st.Status())

	require.NoError(t, c.UpdateStageField(st.ID(), prompt.FieldRole, "author"))
	assert.Equal(t, "author", st.Prompt().Role)

	err = c.UpdateStageField(st.ID(), prompt.Field("bogus"), "x")
	require.Error(t, err)

	require.NoError(t, c.RenameStage(st.ID(), "outline"))
	assert.Equal(t, "outline", st.Name())

	require.ErrorIs(t, c.RemoveStage("nope"), ErrStageNotFound)
	require.NoError(t, c.RemoveStage(st.ID()))
	assert.Equal(t, 0, c.Len())
}

func TestChainVariablesExcludesBoundOutputs(t *testing.T) {
	t.Parallel()

	c := New("vars")
	_, err := c.AddStage("one", prompt.Spec{Instruction: "about {{topic}} seeded by {{output_1}}"})
	require.NoError(t, err)
	_, err = c.AddStage("two", prompt.Spec{Instruction: "{{output_1}} in {{tone}} referencing {{output_5}}"})
	require.NoError(t, err)

	// output_1 in stage 1 is unbound (no prior stage); in stage 2 it is
	// bound. output_5 has no producing stage either way.
	assert.Equal(t, []string{"output_1", "output_5", "tone", "topic"}, c.Variables())
}

func TestLoadFileBuildsChain(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chain.yaml")
	data := `name: article
vars:
  topic: bees
stages:
  - name: outline
    prompt:
      instruction: "Outline an article about {{topic}}"
  - prompt:
      role: "editor"
      instruction: "Expand: {{output_1}}"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, vars, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "article", c.Name())
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "outline", c.Stages()[0].Name())
	assert.Equal(t, "stage-2", c.Stages()[1].Name())
	assert.Equal(t, prompt.Scope{"topic": "bees"}, vars)
}

func TestLoadFileRejectsEmptyStagePrompt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chain.yaml")
	data := `stages:
  - name: blank
    prompt: {}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, _, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty prompt")
}

func TestLoadFileRejectsNoStages(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: hollow\n"), 0o644))

	_, _, err := LoadFile(path)
	require.Error(t, err)
}

func TestOutputRefIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		index int
		ok    bool
	}{
		{"output_1", 1, true},
		{"output_12", 12, true},
		{"output_0", 0, false},
		{"output_", 0, false},
		{"output_x", 0, false},
		{"topic", 0, false},
	}
	for _, tc := range cases {
		k, ok := outputRefIndex(tc.name)
		if ok != tc.ok || k != tc.index {
			t.Fatalf("outputRefIndex(%q) = (%d, %v), want (%d, %v)", tc.name, k, ok, tc.index, tc.ok)
		}
	}
}
