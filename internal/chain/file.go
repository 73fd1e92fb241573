package chain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

// File is the YAML representation of a chain definition.
type File struct {
	Name   string            `yaml:"name"`
	Vars   map[string]string `yaml:"vars,omitempty"`
	Stages []FileStage       `yaml:"stages"`
}

// FileStage is one stage entry in a chain file.
type FileStage struct {
	Name   string      `yaml:"name"`
	Prompt prompt.Spec `yaml:"prompt"`
}

// LoadFile parses a chain definition and returns the chain plus the file's
// variable defaults. Scenario or flag variables supplied by the caller are
// expected to be merged over these defaults.
func LoadFile(path string) (*Chain, prompt.Scope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read chain file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse chain file: %w", err)
	}
	return f.Build()
}

// Build converts the file into a Chain.
func (f File) Build() (*Chain, prompt.Scope, error) {
	if len(f.Stages) == 0 {
		return nil, nil, fmt.Errorf("chain file defines no stages")
	}
	name := f.Name
	if name == "" {
		name = "chain"
	}
	c := New(name)
	for i, fs := range f.Stages {
		stageName := fs.Name
		if stageName == "" {
			stageName = fmt.Sprintf("stage-%d", i+1)
		}
		if fs.Prompt.Empty() {
			return nil, nil, fmt.Errorf("stage %q has an empty prompt", stageName)
		}
		if _, err := c.AddStage(stageName, fs.Prompt); err != nil {
			return nil, nil, err
		}
	}
	vars := prompt.Scope{}
	for name, value := range f.Vars {
		vars[name] = value
	}
	return c, vars, nil
}
