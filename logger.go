package pupilrec

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/pupilrec/migrate"
)

// Logger wraps slog.Logger with pupilrec-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRecording adds the recording directory to the logger.
func (l *Logger) WithRecording(dir string) *Logger {
	return &Logger{
		Logger: l.Logger.With("recording", dir),
	}
}

// WithStep adds a migration step field to the logger.
func (l *Logger) WithStep(step migrate.StepID) *Logger {
	return &Logger{
		Logger: l.Logger.With("step", string(step)),
	}
}

// LogStep logs the outcome of one attempted migration step.
func (l *Logger) LogStep(ctx context.Context, res migrate.StepResult) {
	attrs := []any{
		"recording", res.Dir,
		"step", string(res.Step),
		"attempts", res.Attempts,
		"duration", res.Duration,
	}
	if !res.Threshold.IsZero() {
		attrs = append(attrs, "threshold", res.Threshold.String())
	}
	switch res.Status {
	case migrate.StatusFailed:
		l.ErrorContext(ctx, "migration step failed", append(attrs, "error", res.Err)...)
	case migrate.StatusSkipped:
		l.WarnContext(ctx, "migration step skipped", append(attrs, "error", res.Err)...)
	default:
		l.DebugContext(ctx, "migration step completed", attrs...)
	}
}

// LogRun logs the outcome of a migration run.
func (l *Logger) LogRun(ctx context.Context, rep *migrate.Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "migration failed",
			"recording", rep.Dir,
			"from", rep.From.String(),
			"reached", rep.To.String(),
			"steps", len(rep.Steps),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "migration completed",
		"recording", rep.Dir,
		"from", rep.From.String(),
		"to", rep.To.String(),
		"done", rep.Done(),
		"skipped", rep.Skipped(),
		"archived", rep.Archived,
		"duration", rep.Duration,
	)
}
