package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
)

// RunRecorder receives the report of every finished recording.
type RunRecorder interface {
	RecordRun(ctx context.Context, rep *migrate.Report, err error) error
}

// Result is the outcome for one discovered recording.
type Result struct {
	Found  recording.Found
	Report *migrate.Report // nil when the recording could not be opened
	Err    error
}

// Summary aggregates the results of a batch.
type Summary struct {
	Results  []Result
	Duration time.Duration
}

// Failed returns the results that ended with an error.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Migrated reports how many recordings finished without error.
func (s *Summary) Migrated() int {
	return len(s.Results) - len(s.Failed())
}

// Runner migrates many recordings with bounded concurrency. Each recording
// is migrated by exactly one worker.
type Runner struct {
	engine *migrate.Engine
	opts   options
}

// New creates a Runner that migrates with engine.
func New(engine *migrate.Engine, optFns ...Option) *Runner {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{engine: engine, opts: opts}
}

// Run discovers every recording below root and migrates them.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	found, err := recording.Discover(root)
	if err != nil {
		return nil, fmt.Errorf("batch: discover %s: %w", root, err)
	}
	r.opts.logger.InfoContext(ctx, "recordings discovered", "root", root, "count", len(found))
	return r.RunAll(ctx, found)
}

// RunAll migrates the given recordings. Results keep the input order.
//
// Unless WithFailFast is set, a failing recording does not stop the
// others; the returned error then joins all per-recording errors.
func (r *Runner) RunAll(ctx context.Context, found []recording.Found) (*Summary, error) {
	start := time.Now()
	sum := &Summary{Results: make([]Result, len(found))}
	for i, f := range found {
		sum.Results[i].Found = f
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.controller.Workers())

	for i, f := range found {
		g.Go(func() error {
			if err := r.opts.controller.AcquireWorker(gctx); err != nil {
				sum.Results[i].Err = err
				return nil
			}
			defer r.opts.controller.ReleaseWorker()

			res := r.migrateOne(gctx, f)
			sum.Results[i] = res
			if res.Err != nil && r.opts.failFast {
				return res.Err
			}
			return nil
		})
	}
	firstErr := g.Wait()
	sum.Duration = time.Since(start)

	var errs []error
	for _, res := range sum.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Found.Label, res.Err))
		}
	}
	r.opts.logger.InfoContext(ctx, "batch finished",
		"recordings", len(found),
		"failed", len(errs),
		"duration", sum.Duration,
	)
	if firstErr != nil {
		return sum, firstErr
	}
	return sum, errors.Join(errs...)
}

func (r *Runner) migrateOne(ctx context.Context, f recording.Found) Result {
	res := Result{Found: f}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	rec, err := recording.OpenDir(f.Dir, r.opts.storeOpts...)
	if err != nil {
		res.Err = err
		r.opts.logger.ErrorContext(ctx, "open recording failed", "recording", f.Dir, "error", err)
		return res
	}

	rep, err := r.engine.Run(ctx, rec)
	res.Report, res.Err = rep, err
	if r.opts.recorder != nil {
		if rerr := r.opts.recorder.RecordRun(ctx, rep, err); rerr != nil {
			r.opts.logger.WarnContext(ctx, "record run failed", "recording", f.Dir, "error", rerr)
		}
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	r.opts.logger.Log(ctx, level, "recording processed",
		"recording", f.Dir,
		"label", f.Label,
		"from", rep.From,
		"to", rep.To,
		"steps", len(rep.Steps),
		"error", err,
	)
	return res
}

// Controller returns the resource controller shared by the workers.
func (r *Runner) Controller() *resource.Controller {
	return r.opts.controller
}
