// Package compare runs one prompt against two generators concurrently.
// Unlike chain stages, the two calls are independent, so they may overlap.
package compare

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptsmith/promptsmith/internal/llm"
)

// Arm is one side of a comparison.
type Arm struct {
	Name string
	Gen  llm.Generator
}

// Result is the outcome of one arm.
type Result struct {
	Name     string
	Output   string
	Duration time.Duration
	Err      error
}

// Run streams the prompt through both arms concurrently and returns both
// outcomes. One arm failing does not cancel the other; each result carries
// its own error.
func Run(ctx context.Context, promptText string, a, b Arm) (Result, Result) {
	results := make([]Result, 2)
	var g errgroup.Group
	for i, arm := range []Arm{a, b} {
		g.Go(func() error {
			started := time.Now()
			var buf []byte
			err := arm.Gen.Stream(ctx, promptText, func(chunk string) {
				buf = append(buf, chunk...)
			})
			results[i] = Result{
				Name:     arm.Name,
				Output:   string(buf),
				Duration: time.Since(started),
				Err:      err,
			}
			return nil
		})
	}
	_ = g.Wait()
	return results[0], results[1]
}
