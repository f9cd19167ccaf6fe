package archive

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/hupe1980/pupilrec/internal/fs"
	"github.com/hupe1980/pupilrec/internal/resource"
)

const defaultBufferSize = 256 * 1024

type options struct {
	compression Compression
	level       int
	prefix      string
	bufferSize  int
	controller  *resource.Controller
	logger      *slog.Logger
	fsys        fs.FileSystem
	name        func(dir string) string
	now         func() time.Time
}

func defaultOptions() options {
	return options{
		compression: CompressionZstd,
		level:       3,
		bufferSize:  defaultBufferSize,
		logger:      slog.New(slog.DiscardHandler),
		fsys:        fs.Default,
		name:        filepath.Base,
		now:         time.Now,
	}
}

// Option configures an Archiver.
type Option func(*options)

// WithCompression selects the archive codec. Defaults to zstd.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithLevel sets the zstd level (1-22). Ignored by other codecs.
func WithLevel(level int) Option {
	return func(o *options) {
		if level > 0 {
			o.level = level
		}
	}
}

// WithPrefix is prepended to every blob name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithBufferSize sets the copy buffer size reserved per archive operation.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithController throttles archive IO and accounts copy buffers against
// the controller's memory budget.
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

// WithFileSystem sets the filesystem restores are written through.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

// WithNamer maps a recording directory to the name its snapshots are
// stored under. Defaults to the directory's base name.
func WithNamer(fn func(dir string) string) Option {
	return func(o *options) {
		if fn != nil {
			o.name = fn
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
