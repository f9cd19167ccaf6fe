package migrate

import (
	"context"

	"github.com/hupe1980/pupilrec/recording"
)

// Observer receives the result of every attempted step.
//
// Observers run synchronously on the engine's goroutine. An observer error
// is logged and does not affect the run.
type Observer interface {
	StepFinished(ctx context.Context, res StepResult) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, res StepResult) error

// StepFinished calls f.
func (f ObserverFunc) StepFinished(ctx context.Context, res StepResult) error {
	return f(ctx, res)
}

// Archiver snapshots a recording before it is modified.
type Archiver interface {
	Archive(ctx context.Context, rec *recording.Recording) error
}
