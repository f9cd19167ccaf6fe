package batch

import (
	"log/slog"

	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/recording"
)

type options struct {
	controller *resource.Controller
	logger     *slog.Logger
	recorder   RunRecorder
	storeOpts  []recording.LocalOption
	failFast   bool
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option configures a Runner.
type Option func(*options)

// WithController bounds concurrency by the controller's worker slots.
// Without one recordings are migrated one at a time.
func WithController(rc *resource.Controller) Option {
	return func(o *options) { o.controller = rc }
}

// WithLogger sets the logger. Nil discards log output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder reports every finished recording to rec, e.g. a journal.
func WithRecorder(rec RunRecorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithStoreOptions configures the stores recordings are opened with.
func WithStoreOptions(opts ...recording.LocalOption) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithFailFast cancels outstanding recordings after the first failure.
func WithFailFast(v bool) Option {
	return func(o *options) { o.failFast = v }
}
