package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/promptsmith/promptsmith/internal/prompt"
)

// Generator is the streaming text-generation capability the executor depends
// on. Stream must deliver chunks to onChunk in source order, return only
// after the underlying stream is exhausted, and stop invoking onChunk once it
// has failed.
type Generator interface {
	Stream(ctx context.Context, promptText string, onChunk func(string)) error
}

// EventKind tags executor progress events.
type EventKind int

// Executor progress events, delivered in order on the run goroutine.
const (
	EventStageStarted EventKind = iota
	EventStageChunk
	EventStageFinished
)

// Event describes one executor progress notification.
type Event struct {
	Kind       EventKind
	StageIndex int // 0-based position in the chain
	Stage      *Stage
	Chunk      string // set for EventStageChunk
	Err        error  // set for EventStageFinished on failure
}

// Observer receives executor progress events.
type Observer func(Event)

// StageResult is the final state of one stage after a run.
type StageResult struct {
	ID     string
	Name   string
	Status Status
	Output string
}

// RunResult reports per-stage outcomes for one chain run.
type RunResult struct {
	Chain    string
	Stages   []StageResult
	Duration time.Duration
	// FailedStage is the name of the stage that ended the run, empty on
	// success.
	FailedStage string
}

// Success reports whether every stage completed.
func (r RunResult) Success() bool {
	for _, st := range r.Stages {
		if st.Status != StatusCompleted {
			return false
		}
	}
	return len(r.Stages) > 0
}

// Executor drives a chain run: one stage at a time, in order, resolving each
// stage's prompt against the global scope plus completed prior outputs and
// streaming the generation into the stage's buffer.
type Executor struct {
	gen      Generator
	observer Observer
}

// Option configures an Executor.
type Option func(*Executor)

// WithObserver registers a progress observer. Events are delivered
// synchronously on the run goroutine.
func WithObserver(obs Observer) Option {
	return func(e *Executor) { e.observer = obs }
}

// NewExecutor creates an executor backed by the given generator.
func NewExecutor(gen Generator, opts ...Option) *Executor {
	e := &Executor{gen: gen}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) notify(ev Event) {
	if e.observer != nil {
		e.observer(ev)
	}
}

// Run executes the chain sequentially against an immutable snapshot of
// globals. Every stage must be idle on entry; use Chain.Reset before
// re-running. The first stage failure halts the run: the failing stage ends
// in StatusError, downstream stages stay idle, and the stage error is
// returned alongside the partial result.
func (e *Executor) Run(ctx context.Context, c *Chain, globals prompt.Scope) (RunResult, error) {
	if c.Len() == 0 {
		return RunResult{Chain: c.name}, ErrNoStages
	}
	if !c.running.CompareAndSwap(false, true) {
		return RunResult{Chain: c.name}, ErrRunInProgress
	}
	defer c.running.Store(false)

	for _, st := range c.stages {
		if st.status != StatusIdle {
			return RunResult{Chain: c.name}, fmt.Errorf("%w: stage %q is %s", ErrStagesNotIdle, st.name, st.status)
		}
	}

	// Snapshot the globals so a caller edit mid-run cannot corrupt an
	// in-flight stage's substitution.
	snapshot := prompt.Scope{}.Merged(globals)

	startedAt := time.Now()
	var runErr error
	defer func() {
		event := log.Info().
			Str("chain", c.name).
			Int("stages", c.Len()).
			Dur("duration", time.Since(startedAt))
		if runErr != nil {
			event = event.Err(runErr)
		}
		event.Msg("chain run finished")
	}()

	for i, st := range c.stages {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("chain cancelled before stage %q: %w", st.name, err)
			return e.result(c, startedAt, st.name), runErr
		}

		st.begin()
		e.notify(Event{Kind: EventStageStarted, StageIndex: i, Stage: st})
		log.Debug().Str("chain", c.name).Str("stage", st.name).Int("index", i+1).Msg("stage started")

		scope := e.effectiveScope(c, i, snapshot)
		request := st.spec.Resolved(scope).Assemble()

		err := e.gen.Stream(ctx, request, func(chunk string) {
			st.appendOutput(chunk)
			e.notify(Event{Kind: EventStageChunk, StageIndex: i, Stage: st, Chunk: chunk})
		})
		if err != nil {
			st.finish(false)
			e.notify(Event{Kind: EventStageFinished, StageIndex: i, Stage: st, Err: err})
			runErr = fmt.Errorf("stage %q: %w", st.name, err)
			return e.result(c, startedAt, st.name), runErr
		}

		st.finish(true)
		e.notify(Event{Kind: EventStageFinished, StageIndex: i, Stage: st})
	}

	return e.result(c, startedAt, ""), nil
}

// effectiveScope overlays completed prior-stage outputs onto the global
// snapshot. On a name collision the prior-stage binding wins.
func (e *Executor) effectiveScope(c *Chain, index int, globals prompt.Scope) prompt.Scope {
	outputs := prompt.Scope{}
	for k := 0; k < index; k++ {
		if c.stages[k].status == StatusCompleted {
			outputs[outputVar(k+1)] = c.stages[k].output
		}
	}
	return globals.Merged(outputs)
}

func (e *Executor) result(c *Chain, startedAt time.Time, failedStage string) RunResult {
	res := RunResult{
		Chain:       c.name,
		Stages:      make([]StageResult, 0, c.Len()),
		Duration:    time.Since(startedAt),
		FailedStage: failedStage,
	}
	for _, st := range c.stages {
		res.Stages = append(res.Stages, StageResult{
			ID:     st.id,
			Name:   st.name,
			Status: st.status,
			Output: st.output,
		})
	}
	return res
}
