package cli

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Commands understood by Run.
const (
	CommandMigrate = "migrate"
	CommandInspect = "inspect"
	CommandVerify  = "verify"
	CommandRestore = "restore"
)

// ArchiveConfig selects where pre-migration snapshots are written.
type ArchiveConfig struct {
	// Backend is one of "", "local", "s3" or "minio". Empty disables archiving.
	Backend     string `env:"BACKEND"`
	Target      string `env:"TARGET"` // directory or bucket
	Prefix      string `env:"PREFIX"`
	Compression string `env:"COMPRESSION" envDefault:"zstd"`
	Region      string `env:"REGION"`
	Endpoint    string `env:"ENDPOINT"`
	AccessKey   string `env:"ACCESS_KEY"`
	SecretKey   string `env:"SECRET_KEY"`
	Secure      bool   `env:"SECURE" envDefault:"true"`
}

// Config holds pupilrec command configuration.
type Config struct {
	Command string
	Args    []string

	LogLevel    string        `env:"PUPILREC_LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"PUPILREC_LOG_FORMAT" envDefault:"text"`
	Concurrency int           `env:"PUPILREC_CONCURRENCY" envDefault:"1"`
	Timeout     time.Duration `env:"PUPILREC_TIMEOUT" envDefault:"0s"`
	JournalPath string        `env:"PUPILREC_JOURNAL_PATH"`
	FFmpeg      bool          `env:"PUPILREC_FFMPEG" envDefault:"true"`

	IOLimitBytesPerSec int64 `env:"PUPILREC_IO_LIMIT_BYTES_PER_SEC"`
	MemoryLimitBytes   int64 `env:"PUPILREC_MEMORY_LIMIT_BYTES"`

	OTelEndpoint string `env:"PUPILREC_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"PUPILREC_OTEL_ENABLED" envDefault:"true"`

	Archive ArchiveConfig `envPrefix:"PUPILREC_ARCHIVE_"`

	// Snapshot selects the snapshot for verify and restore; empty is latest.
	Snapshot   string
	JSONOutput bool
}

// Usage is printed for a missing or unknown command.
const Usage = `usage: pupilrec <command> [flags] <args>

commands:
  migrate <path>              migrate a recording or every recording below path
  inspect <recording>         show version, pending steps and journal history
  verify  <name>              check an archived snapshot against its manifest
  restore <name> <target>     unpack an archived snapshot into target`

// ParseConfig loads PUPILREC_* variables and parses the command line.
// Flags override the environment.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return Config{}, errors.New(Usage)
	}
	cfg.Command = args[0]

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "minimum log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "recordings migrated at once")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout (0 = none)")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "path to the sqlite migration journal")
	fs.BoolVar(&cfg.FFmpeg, "ffmpeg", cfg.FFmpeg, "transcode audio with ffmpeg")
	fs.StringVar(&cfg.Archive.Backend, "archive", cfg.Archive.Backend, "archive backend (local|s3|minio)")
	fs.StringVar(&cfg.Archive.Target, "archive-target", cfg.Archive.Target, "archive directory or bucket")
	fs.StringVar(&cfg.Archive.Compression, "compression", cfg.Archive.Compression, "archive compression (zstd|lz4|none)")
	fs.StringVar(&cfg.Snapshot, "snapshot", "", "snapshot id for verify and restore (default: latest)")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	if err := fs.Parse(args[1:]); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	want := map[string]int{
		CommandMigrate: 1,
		CommandInspect: 1,
		CommandVerify:  1,
		CommandRestore: 2,
	}
	n, ok := want[c.Command]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", c.Command, Usage)
	}
	if len(c.Args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d\n%s", c.Command, n, len(c.Args), Usage)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if (c.Command == CommandVerify || c.Command == CommandRestore) && c.Archive.Backend == "" {
		return fmt.Errorf("%s: an archive backend is required", c.Command)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return l, nil
}
