// Package refine critiques a RICCE prompt through the structured JSON
// generation capability and validates the result against an embedded schema.
package refine

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/xeipuuv/gojsonschema"

	"github.com/promptsmith/promptsmith/internal/llm"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

//go:embed critique_schema.json
var critiqueSchemaJSON string

// Critique is the structured review of one prompt.
type Critique struct {
	Scores      map[string]int `json:"scores"`
	Summary     string         `json:"summary"`
	Suggestions []string       `json:"suggestions"`
	Revised     prompt.Spec    `json:"revised"`
}

const critiqueInstructions = `You are a prompt engineering reviewer. The user submits a structured prompt
with five sections: role, instruction, context, constraints, evaluation.
Review it and answer with a single JSON object, no prose, matching:
{
  "scores": {"role": 1-5, "instruction": 1-5, "context": 1-5, "constraints": 1-5, "evaluation": 1-5},
  "summary": "one-paragraph overall critique",
  "suggestions": ["specific improvement", ...],
  "revised": {"role": "...", "instruction": "...", "context": "...", "constraints": "...", "evaluation": "..."}
}
Keep every {{variable}} placeholder from the original intact in the revised fields.`

// Structured is the non-streaming JSON generation capability refine depends
// on.
type Structured interface {
	GenerateStructured(ctx context.Context, instructions, input string) (string, error)
}

var _ Structured = (llm.Generator)(nil)

// Run critiques the spec and returns the validated result.
func Run(ctx context.Context, gen Structured, spec prompt.Spec) (Critique, error) {
	input, err := json.Marshal(spec)
	if err != nil {
		return Critique{}, fmt.Errorf("encode prompt: %w", err)
	}

	raw, err := gen.GenerateStructured(ctx, critiqueInstructions, string(input))
	if err != nil {
		return Critique{}, fmt.Errorf("critique generation: %w", err)
	}

	cleaned, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return Critique{}, fmt.Errorf("repair critique JSON: %w", err)
	}

	if err := validateCritique(cleaned); err != nil {
		return Critique{}, err
	}

	var c Critique
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return Critique{}, fmt.Errorf("decode critique: %w", err)
	}
	return c, nil
}

func validateCritique(doc string) error {
	schemaLoader := gojsonschema.NewStringLoader(critiqueSchemaJSON)
	documentLoader := gojsonschema.NewStringLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate critique schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)

	return fmt.Errorf("critique schema validation failed: %s", strings.Join(errs, "; "))
}

// Markdown renders the critique for terminal display.
func (c Critique) Markdown() string {
	var b strings.Builder
	b.WriteString("# Prompt critique\n\n")

	b.WriteString("## Scores\n\n")
	for _, f := range prompt.Fields {
		if score, ok := c.Scores[string(f)]; ok {
			fmt.Fprintf(&b, "- **%s**: %d/5\n", f, score)
		}
	}

	if c.Summary != "" {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(c.Summary)
		b.WriteString("\n")
	}

	if len(c.Suggestions) > 0 {
		b.WriteString("\n## Suggestions\n\n")
		for _, s := range c.Suggestions {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	if !c.Revised.Empty() {
		b.WriteString("\n## Revised prompt\n\n")
		b.WriteString(c.Revised.Assemble())
		b.WriteString("\n")
	}
	return b.String()
}
