package migrate

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/pupilrec/media"
)

type options struct {
	logger     *slog.Logger
	transcoder media.Transcoder
	prober     media.Prober
	observers  []Observer
	archiver   Archiver
	tracer     trace.TracerProvider
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.GetTracerProvider(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. Nil discards log output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTranscoder sets the audio transcoder used by the v0.9.13 step.
// Without one, recordings with wav audio fail that step.
func WithTranscoder(t media.Transcoder) Option {
	return func(o *options) { o.transcoder = t }
}

// WithProber sets the video prober used to generate world intrinsics for
// Pupil Mobile recordings.
func WithProber(p media.Prober) Option {
	return func(o *options) { o.prober = p }
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithArchiver snapshots recordings before their first step runs.
func WithArchiver(a Archiver) Option {
	return func(o *options) { o.archiver = a }
}

// WithTracerProvider sets the provider step spans are created with.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracer = tp
		}
	}
}
