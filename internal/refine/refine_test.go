package refine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

type cannedStructured struct {
	output string
	err    error
	input  string
}

func (c *cannedStructured) GenerateStructured(_ context.Context, _, input string) (string, error) {
	c.input = input
	return c.output, c.err
}

const validCritique = `{
	"scores": {"role": 4, "instruction": 3, "context": 2, "constraints": 5, "evaluation": 1},
	"summary": "Solid role, weak evaluation.",
	"suggestions": ["Add a measurable evaluation criterion."],
	"revised": {
		"role": "beekeeper",
		"instruction": "Summarize {{topic}}",
		"context": "",
		"constraints": "under 100 words",
		"evaluation": "mentions pollination"
	}
}`

func TestRunParsesValidCritique(t *testing.T) {
	t.Parallel()

	gen := &cannedStructured{output: validCritique}
	spec := prompt.Spec{Role: "beekeeper", Instruction: "Summarize {{topic}}"}

	c, err := Run(context.Background(), gen, spec)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Scores["role"])
	assert.Equal(t, "Solid role, weak evaluation.", c.Summary)
	assert.Equal(t, "Summarize {{topic}}", c.Revised.Instruction)
	assert.Contains(t, gen.input, "Summarize {{topic}}", "prompt spec must be sent to the model")
}

func TestRunRepairsSloppyModelJSON(t *testing.T) {
	t.Parallel()

	// Fenced output with a trailing comma, the usual model sins.
	gen := &cannedStructured{output: "```json\n" + strings.Replace(validCritique, `"evaluation": 1`, `"evaluation": 1,`, 1) + "\n```"}

	c, err := Run(context.Background(), gen, prompt.Spec{Instruction: "x"})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Scores["constraints"])
}

func TestRunRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	gen := &cannedStructured{output: `{"scores": {"role": 9}, "summary": "", "revised": {}}`}
	_, err := Run(context.Background(), gen, prompt.Spec{Instruction: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "critique schema validation failed")
}

func TestMarkdownIncludesScoresAndRevision(t *testing.T) {
	t.Parallel()

	c := Critique{
		Scores:      map[string]int{"role": 4, "instruction": 3},
		Summary:     "fine",
		Suggestions: []string{"tighten constraints"},
		Revised:     prompt.Spec{Instruction: "do better"},
	}
	md := c.Markdown()
	assert.Contains(t, md, "**role**: 4/5")
	assert.Contains(t, md, "tighten constraints")
	assert.Contains(t, md, "# Instruction")
}
