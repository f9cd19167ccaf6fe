package pupilrec

import (
	"context"

	"github.com/hupe1980/pupilrec/batch"
	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
)

// Recording is an opened recording directory bound to a migration engine.
type Recording struct {
	*recording.Recording

	opts   options
	engine *migrate.Engine
}

// Open opens the recording in dir.
func Open(dir string, optFns ...Option) (*Recording, error) {
	o := applyOptions(optFns)
	rec, err := recording.OpenDir(dir, o.storeOptions...)
	if err != nil {
		return nil, err
	}
	return &Recording{Recording: rec, opts: o, engine: o.engine()}, nil
}

// EnsureCurrentVersion migrates the recording to the newest data format.
// Recordings already current only run the worldless check.
//
// The report is never nil; on error it lists the steps that ran.
func (r *Recording) EnsureCurrentVersion(ctx context.Context) (*migrate.Report, error) {
	log := r.opts.logger.WithRecording(r.Dir())
	rep, err := r.engine.Run(ctx, r.Recording)

	r.opts.metricsCollector.RecordRun(len(rep.Steps), rep.Duration, err)
	if r.opts.journal != nil {
		if jerr := r.opts.journal.RecordRun(ctx, rep, err); jerr != nil {
			log.WarnContext(ctx, "journal run failed", "error", jerr)
		}
	}
	log.LogRun(ctx, rep, err)
	return rep, err
}

// MigrateAll migrates every recording below root, WithConcurrency at a
// time. A failing recording does not stop the others.
func MigrateAll(ctx context.Context, root string, optFns ...Option) (*batch.Summary, error) {
	o := applyOptions(optFns)
	rc := resource.NewController(resource.Config{MaxWorkers: int64(o.concurrency)})

	runOpts := []batch.Option{
		batch.WithController(rc),
		batch.WithLogger(o.logger.Logger),
		batch.WithStoreOptions(o.storeOptions...),
		batch.WithRecorder(runRecorder{opts: o}),
	}
	return batch.New(o.engine(), runOpts...).Run(ctx, root)
}

// runRecorder reports batch runs to the metrics collector and journal.
type runRecorder struct {
	opts options
}

func (r runRecorder) RecordRun(ctx context.Context, rep *migrate.Report, err error) error {
	r.opts.metricsCollector.RecordRun(len(rep.Steps), rep.Duration, err)
	if r.opts.journal != nil {
		return r.opts.journal.RecordRun(ctx, rep, err)
	}
	return nil
}
