// Package chain implements multi-stage prompt chains: an ordered sequence of
// RICCE prompt stages executed sequentially, where later stages can reference
// earlier stages' outputs through reserved output_<k> variables.
package chain

import (
	"sync"

	"github.com/google/uuid"
	"github.com/promptsmith/promptsmith/internal/prompt"
)

// Status is the lifecycle state of a stage.
type Status string

// Stage lifecycle: idle until the executor picks the stage up, then running,
// then completed or error. Terminal states are only left via Chain.Reset.
const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Stage is one link in a chain. Its status and output are mutated only by the
// executor during a run; the accessors are safe to call from other goroutines
// while a run is in flight.
type Stage struct {
	id   string
	name string
	spec prompt.Spec

	mu     sync.RWMutex
	output string
	status Status
}

func newStage(name string, spec prompt.Spec) *Stage {
	return &Stage{
		id:     uuid.New().String(),
		name:   name,
		spec:   spec,
		status: StatusIdle,
	}
}

// ID returns the stage's immutable identifier.
func (s *Stage) ID() string { return s.id }

// Name returns the stage's label.
func (s *Stage) Name() string { return s.name }

// Prompt returns the stage's RICCE prompt.
func (s *Stage) Prompt() prompt.Spec { return s.spec }

// Output returns the text accumulated so far for this stage.
func (s *Stage) Output() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.output
}

// Status returns the stage's lifecycle state.
func (s *Stage) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Variables returns the distinct placeholder names referenced by the stage's
// prompt.
func (s *Stage) Variables() []string { return prompt.DetectVariables(s.spec) }

func (s *Stage) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusRunning
	s.output = ""
}

func (s *Stage) appendOutput(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRunning {
		return
	}
	s.output += chunk
}

func (s *Stage) finish(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		s.status = StatusCompleted
		return
	}
	s.status = StatusError
}

func (s *Stage) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusIdle
	s.output = ""
}
