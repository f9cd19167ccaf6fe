package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/version"
)

const tracerName = "github.com/hupe1980/pupilrec/migrate"

// StepPupilMobile converts a Pupil Mobile recording before the plan is
// computed. It is not part of the threshold table.
const StepPupilMobile StepID = "pupil-mobile"

// pupilMobileVersion is the format a converted Pupil Mobile recording has.
var pupilMobileVersion = version.New(0, 9, 4)

// maxAttempts bounds how often a step failing with a TranscodeError runs.
const maxAttempts = 2

// Engine migrates recordings to the newest data format.
//
// An Engine is safe for concurrent use on distinct recordings. Two runs on
// the same recording directory must not overlap.
type Engine struct {
	opts   options
	tracer trace.Tracer
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{opts: o, tracer: o.tracer.Tracer(tracerName)}
}

// Run executes the migration plan of rec. After every completed step the
// step's threshold is persisted as the data format version.
//
// A step failing with a MissingResourceError is skipped and the run goes on.
// Any other step error stops the run and is returned as a *StepError; the
// recording keeps the version of its last completed step. The returned
// report is never nil.
func (e *Engine) Run(ctx context.Context, rec *recording.Recording) (*Report, error) {
	rep := &Report{Dir: rec.Dir(), Started: time.Now()}
	defer func() { rep.Duration = time.Since(rep.Started) }()
	log := e.opts.logger.With("recording", rec.Dir())

	if needsPupilMobileConversion(rec) {
		if err := e.archive(ctx, rec, rep); err != nil {
			return rep, err
		}
		if err := e.step(ctx, rec, rep, StepPupilMobile, version.Version{}, log); err != nil {
			return rep, err
		}
	}

	from, err := rec.Version()
	if err != nil {
		return rep, err
	}
	rep.From, rep.To = from, from
	if from.Less(Oldest) {
		log.Error("recording too old to migrate", "version", from, "oldest", Oldest)
		return rep, &FatalVersionError{Version: from, Oldest: Oldest}
	}

	plan := Compute(from)
	log.Debug("migration plan", "version", from, "steps", len(plan))
	if len(plan) > 1 {
		if err := e.archive(ctx, rec, rep); err != nil {
			return rep, err
		}
	}

	cur := from
	for _, id := range plan {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		err := e.step(ctx, rec, rep, id, cur, log)
		if last := rep.Steps[len(rep.Steps)-1]; last.Status == StatusDone && !last.Threshold.IsZero() {
			cur = last.Threshold
			rep.To = cur
		}
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func needsPupilMobileConversion(rec *recording.Recording) bool {
	if rec.CaptureSoftware() != "Pupil Mobile" {
		return false
	}
	_, ok := rec.Meta().Get(recording.KeyDataFormatVersion)
	return !ok
}

func (e *Engine) archive(ctx context.Context, rec *recording.Recording, rep *Report) error {
	if e.opts.archiver == nil || rep.Archived {
		return nil
	}
	if err := e.opts.archiver.Archive(ctx, rec); err != nil {
		return fmt.Errorf("archive recording: %w", err)
	}
	rep.Archived = true
	return nil
}

// step runs one step, records its result and notifies observers. It returns
// a non-nil error only when the run must stop.
func (e *Engine) step(ctx context.Context, rec *recording.Recording, rep *Report, id StepID, cur version.Version, log *slog.Logger) error {
	res := e.attempt(ctx, rec, id, cur, log)
	rep.Steps = append(rep.Steps, res)
	for _, obs := range e.opts.observers {
		if err := obs.StepFinished(ctx, res); err != nil {
			log.Warn("observer failed", "step", id, "error", err)
		}
	}
	if res.Status == StatusFailed {
		return &StepError{Step: id, cause: res.Err}
	}
	return nil
}

func target(id StepID) (version.Version, bool) {
	if id == StepPupilMobile {
		return pupilMobileVersion, true
	}
	return Threshold(id)
}

func (e *Engine) attempt(ctx context.Context, rec *recording.Recording, id StepID, cur version.Version, log *slog.Logger) StepResult {
	th, gated := target(id)
	res := StepResult{Dir: rec.Dir(), Step: id, Threshold: th}

	ctx, span := e.tracer.Start(ctx, "migrate."+string(id), trace.WithAttributes(
		attribute.String("recording.dir", rec.Dir()),
		attribute.String("migrate.step", string(id)),
		attribute.String("migrate.from", cur.String()),
	))
	defer span.End()

	env := &env{
		rec:        rec,
		store:      rec.Store(),
		step:       id,
		from:       cur,
		log:        log.With("step", id),
		transcoder: e.opts.transcoder,
		prober:     e.opts.prober,
	}
	fn := convertPupilMobile
	if id != StepPupilMobile {
		fn = stepFuncs[id]
	}

	start := time.Now()
	var err error
	for {
		res.Attempts++
		err = fn(ctx, env)
		var te *TranscodeError
		if !errors.As(err, &te) || res.Attempts >= maxAttempts {
			break
		}
		env.log.Warn("transcode failed, retrying", "attempt", res.Attempts, "error", err)
	}
	if err == nil && gated {
		err = rec.SetVersion(th)
	}
	res.Duration = time.Since(start)
	res.Err = err
	span.SetAttributes(attribute.Int("migrate.attempts", res.Attempts))

	var missing *MissingResourceError
	switch {
	case err == nil:
		res.Status = StatusDone
		env.log.Info("migration step done", "version", th, "duration", res.Duration)
	case errors.As(err, &missing):
		res.Status = StatusSkipped
		env.log.Warn("migration step skipped", "resource", missing.Resource, "error", err)
		span.SetAttributes(attribute.Bool("migrate.skipped", true))
	default:
		res.Status = StatusFailed
		env.log.Error("migration step failed", "attempts", res.Attempts, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res
}
