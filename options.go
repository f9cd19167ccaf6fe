package pupilrec

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/pupilrec/journal"
	"github.com/hupe1980/pupilrec/media"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	transcoder       media.Transcoder
	prober           media.Prober
	archiver         migrate.Archiver
	journal          *journal.Journal
	observers        []migrate.Observer
	tracerProvider   trace.TracerProvider
	storeOptions     []recording.LocalOption
	concurrency      int
}

// Option configures Open and MigrateAll.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pupilrec.NewJSONLogger(slog.LevelInfo)
//	rec, _ := pupilrec.Open(dir, pupilrec.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for migration runs.
// Pass nil to disable metrics collection.
//
//	metrics := &pupilrec.BasicMetricsCollector{}
//	rec, _ := pupilrec.Open(dir, pupilrec.WithMetricsCollector(metrics))
//	_, _ = rec.EnsureCurrentVersion(ctx)
//	fmt.Println(metrics.GetStats().StepsDone)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithTranscoder sets the audio transcoder, e.g. media.NewFFmpeg.
func WithTranscoder(t media.Transcoder) Option {
	return func(o *options) {
		o.transcoder = t
	}
}

// WithProber sets the video prober used for Pupil Mobile intrinsics.
func WithProber(p media.Prober) Option {
	return func(o *options) {
		o.prober = p
	}
}

// WithArchiver snapshots recordings before they are modified, e.g. an
// *archive.Archiver.
func WithArchiver(a migrate.Archiver) Option {
	return func(o *options) {
		o.archiver = a
	}
}

// WithJournal records every step attempt and run in j.
func WithJournal(j *journal.Journal) Option {
	return func(o *options) {
		o.journal = j
	}
}

// WithObserver adds a step observer.
func WithObserver(obs migrate.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithTracerProvider sets the OpenTelemetry provider step spans are
// created with. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithStoreOptions configures the local store recordings are opened with.
func WithStoreOptions(opts ...recording.LocalOption) Option {
	return func(o *options) {
		o.storeOptions = append(o.storeOptions, opts...)
	}
}

// WithConcurrency sets how many recordings MigrateAll migrates at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		concurrency:      1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}

// engine builds the migration engine the options describe.
func (o options) engine() *migrate.Engine {
	opts := []migrate.Option{
		migrate.WithLogger(o.logger.Logger),
		migrate.WithTranscoder(o.transcoder),
		migrate.WithProber(o.prober),
		migrate.WithArchiver(o.archiver),
		migrate.WithTracerProvider(o.tracerProvider),
		migrate.WithObserver(stepObserver{logger: o.logger, metrics: o.metricsCollector}),
	}
	if o.journal != nil {
		opts = append(opts, migrate.WithObserver(o.journal))
	}
	for _, obs := range o.observers {
		opts = append(opts, migrate.WithObserver(obs))
	}
	return migrate.New(opts...)
}
