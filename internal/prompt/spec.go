// Package prompt defines the RICCE prompt structure and its variable handling.
package prompt

import "strings"

// Field names a RICCE prompt field.
type Field string

// RICCE fields, in assembly order.
const (
	FieldRole        Field = "role"
	FieldInstruction Field = "instruction"
	FieldContext     Field = "context"
	FieldConstraints Field = "constraints"
	FieldEvaluation  Field = "evaluation"
)

// Fields lists the five RICCE fields in their fixed assembly order.
var Fields = []Field{FieldRole, FieldInstruction, FieldContext, FieldConstraints, FieldEvaluation}

var fieldLabels = map[Field]string{
	FieldRole:        "Role",
	FieldInstruction: "Instruction",
	FieldContext:     "Context",
	FieldConstraints: "Constraints",
	FieldEvaluation:  "Evaluation",
}

// Spec is a RICCE prompt. All five fields are always present; empty strings
// are valid values.
type Spec struct {
	Role        string `json:"role"        yaml:"role"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Context     string `json:"context"     yaml:"context"`
	Constraints string `json:"constraints" yaml:"constraints"`
	Evaluation  string `json:"evaluation"  yaml:"evaluation"`
}

// FieldValue returns the value of the named field.
func (s Spec) FieldValue(f Field) string {
	switch f {
	case FieldRole:
		return s.Role
	case FieldInstruction:
		return s.Instruction
	case FieldContext:
		return s.Context
	case FieldConstraints:
		return s.Constraints
	case FieldEvaluation:
		return s.Evaluation
	}
	return ""
}

// SetField sets the value of the named field. Unknown fields are rejected.
func (s *Spec) SetField(f Field, value string) bool {
	switch f {
	case FieldRole:
		s.Role = value
	case FieldInstruction:
		s.Instruction = value
	case FieldContext:
		s.Context = value
	case FieldConstraints:
		s.Constraints = value
	case FieldEvaluation:
		s.Evaluation = value
	default:
		return false
	}
	return true
}

// Empty reports whether every field is blank.
func (s Spec) Empty() bool {
	for _, f := range Fields {
		if strings.TrimSpace(s.FieldValue(f)) != "" {
			return false
		}
	}
	return true
}

// Resolved returns a copy of the spec with every field resolved against scope.
func (s Spec) Resolved(scope Scope) Spec {
	out := s
	for _, f := range Fields {
		out.SetField(f, Resolve(s.FieldValue(f), scope))
	}
	return out
}

// Assemble concatenates the five fields into one generation request. Section
// order is fixed (role, instruction, context, constraints, evaluation) and
// empty fields are omitted, so the assembled text is reproducible for a given
// spec.
func (s Spec) Assemble() string {
	var b strings.Builder
	for _, f := range Fields {
		value := strings.TrimSpace(s.FieldValue(f))
		if value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("# ")
		b.WriteString(fieldLabels[f])
		b.WriteString("\n\n")
		b.WriteString(value)
	}
	return b.String()
}
