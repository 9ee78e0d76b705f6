// Package pipeline holds the carousel data model and the Stage abstraction
// shared by every processing step.
package pipeline

import (
	"context"
)

// Stage represents one processing step: it takes an input value and
// returns a new output value without mutating shared state.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
