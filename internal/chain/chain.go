package chain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

// Caller-misuse errors. They are sentinels so callers can test with errors.Is.
var (
	// ErrRunInProgress is returned when the chain is mutated, reset, or
	// re-run while a run is in flight.
	ErrRunInProgress = errors.New("chain run already in progress")
	// ErrStagesNotIdle is returned by Run when any stage is not idle; the
	// caller must Reset the chain before re-running.
	ErrStagesNotIdle = errors.New("chain has non-idle stages; reset before running")
	// ErrStageNotFound is returned for operations addressing an unknown
	// stage id.
	ErrStageNotFound = errors.New("stage not found")
	// ErrNoStages is returned by Run on an empty chain.
	ErrNoStages = errors.New("chain has no stages")
)

// Chain is an ordered sequence of stages owned by a single session. The
// executor borrows it for the duration of a run; the running flag rejects
// mutation while borrowed.
type Chain struct {
	name    string
	stages  []*Stage
	running atomic.Bool
}

// New creates an empty chain.
func New(name string) *Chain {
	return &Chain{name: name}
}

// Name returns the chain's label.
func (c *Chain) Name() string { return c.name }

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Stages returns the stages in execution order. The returned slice is a
// copy; the stages themselves are shared.
func (c *Chain) Stages() []*Stage {
	out := make([]*Stage, len(c.stages))
	copy(out, c.stages)
	return out
}

// Stage returns the stage with the given id.
func (c *Chain) Stage(id string) (*Stage, error) {
	for _, st := range c.stages {
		if st.id == id {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStageNotFound, id)
}

// AddStage appends a stage with the given name and prompt.
func (c *Chain) AddStage(name string, spec prompt.Spec) (*Stage, error) {
	if c.running.Load() {
		return nil, ErrRunInProgress
	}
	st := newStage(name, spec)
	c.stages = append(c.stages, st)
	return st, nil
}

// RemoveStage deletes the stage with the given id.
func (c *Chain) RemoveStage(id string) error {
	if c.running.Load() {
		return ErrRunInProgress
	}
	for i, st := range c.stages {
		if st.id == id {
			c.stages = append(c.stages[:i], c.stages[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrStageNotFound, id)
}

// UpdateStageField sets one RICCE field of the stage's prompt.
func (c *Chain) UpdateStageField(id string, field prompt.Field, value string) error {
	if c.running.Load() {
		return ErrRunInProgress
	}
	st, err := c.Stage(id)
	if err != nil {
		return err
	}
	if !st.spec.SetField(field, value) {
		return fmt.Errorf("unknown prompt field %q", field)
	}
	return nil
}

// RenameStage sets the stage's label.
func (c *Chain) RenameStage(id, name string) error {
	if c.running.Load() {
		return ErrRunInProgress
	}
	st, err := c.Stage(id)
	if err != nil {
		return err
	}
	st.name = name
	return nil
}

// Reset returns every stage to idle with an empty output. Re-running a chain
// always starts from stage 1; completed outputs are not carried over.
func (c *Chain) Reset() error {
	if c.running.Load() {
		return ErrRunInProgress
	}
	for _, st := range c.stages {
		st.reset()
	}
	return nil
}

// Variables returns the distinct placeholder names referenced across all
// stages, excluding output_<k> references that are bound by an earlier stage
// of this chain. These are the names the caller must supply through the
// global scope.
func (c *Chain) Variables() []string {
	seen := make(map[string]struct{})
	for i, st := range c.stages {
		for _, name := range st.Variables() {
			if k, ok := outputRefIndex(name); ok && k >= 1 && k <= i {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// outputVar returns the reserved variable name bound to the 1-based stage
// index k.
func outputVar(k int) string {
	return "output_" + strconv.Itoa(k)
}

var outputRefRe = regexp.MustCompile(`^output_([1-9][0-9]*)$`)

func outputRefIndex(name string) (int, bool) {
	m := outputRefRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	k, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return k, true
}
