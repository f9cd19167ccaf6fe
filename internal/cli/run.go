package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/pupilrec"
	"github.com/hupe1980/pupilrec/archive"
	"github.com/hupe1980/pupilrec/blobstore"
	"github.com/hupe1980/pupilrec/blobstore/minio"
	"github.com/hupe1980/pupilrec/blobstore/s3"
	"github.com/hupe1980/pupilrec/codec"
	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/internal/telemetry"
	"github.com/hupe1980/pupilrec/journal"
	"github.com/hupe1980/pupilrec/media"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
)

// Run executes the configured command. Results go to out, logs to errOut.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger, err := newLogger(cfg, errOut)
	if err != nil {
		return err
	}
	s := &session{cfg: cfg, out: out, logger: logger}
	defer s.close(ctx)

	switch cfg.Command {
	case CommandMigrate:
		return s.migrate(ctx, cfg.Args[0])
	case CommandInspect:
		return s.inspect(ctx, cfg.Args[0])
	case CommandVerify:
		return s.verify(ctx, cfg.Args[0])
	case CommandRestore:
		return s.restore(ctx, cfg.Args[0], cfg.Args[1])
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func newLogger(cfg Config, w io.Writer) (*pupilrec.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		return pupilrec.NewLogger(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return pupilrec.NewLogger(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
}

// session holds the collaborators a command opens lazily.
type session struct {
	cfg    Config
	out    io.Writer
	logger *pupilrec.Logger

	rc      *resource.Controller
	journal *journal.Journal
	closers []func(context.Context) error
}

func (s *session) close(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.WarnContext(ctx, "shutdown failed", "error", err)
		}
	}
}

func (s *session) controller() *resource.Controller {
	if s.rc == nil {
		s.rc = resource.NewController(resource.Config{
			MaxWorkers:         int64(s.cfg.Concurrency),
			MemoryLimitBytes:   s.cfg.MemoryLimitBytes,
			IOLimitBytesPerSec: s.cfg.IOLimitBytesPerSec,
		})
	}
	return s.rc
}

func (s *session) openJournal(ctx context.Context) (*journal.Journal, error) {
	if s.cfg.JournalPath == "" || s.journal != nil {
		return s.journal, nil
	}
	j, err := journal.Open(ctx, s.cfg.JournalPath)
	if err != nil {
		return nil, err
	}
	s.journal = j
	s.closers = append(s.closers, func(context.Context) error { return j.Close() })
	return j, nil
}

// archiver returns nil when no archive backend is configured.
func (s *session) archiver(ctx context.Context) (*archive.Archiver, error) {
	ac := s.cfg.Archive
	if ac.Backend == "" {
		return nil, nil
	}
	comp, err := archive.ParseCompression(ac.Compression)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, ac)
	if err != nil {
		return nil, err
	}
	return archive.New(store,
		archive.WithCompression(comp),
		archive.WithPrefix(ac.Prefix),
		archive.WithController(s.controller()),
		archive.WithLogger(s.logger.Logger),
	), nil
}

func openStore(ctx context.Context, ac ArchiveConfig) (blobstore.BlobStore, error) {
	if ac.Target == "" {
		return nil, fmt.Errorf("archive backend %q needs a target", ac.Backend)
	}
	switch strings.ToLower(ac.Backend) {
	case "local":
		return blobstore.NewLocalStore(ac.Target), nil
	case "s3":
		return s3.New(ctx, ac.Target, func(o *s3.Options) {
			o.Region = ac.Region
			o.Endpoint = ac.Endpoint
		})
	case "minio":
		if ac.Endpoint == "" {
			return nil, errors.New("minio backend needs an endpoint")
		}
		client, err := miniogo.New(ac.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(ac.AccessKey, ac.SecretKey, ""),
			Secure: ac.Secure,
			Region: ac.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minio.NewStore(client, ac.Target, ""), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", ac.Backend)
	}
}

func (s *session) options(ctx context.Context) ([]pupilrec.Option, error) {
	opts := []pupilrec.Option{
		pupilrec.WithLogger(s.logger),
		pupilrec.WithConcurrency(s.cfg.Concurrency),
	}

	tp, shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    s.cfg.OTelEndpoint,
		Disabled:    !s.cfg.OTelEnabled,
		ServiceName: "pupilrec",
	})
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, shutdown)
	opts = append(opts, pupilrec.WithTracerProvider(tp))

	j, err := s.openJournal(ctx)
	if err != nil {
		return nil, err
	}
	if j != nil {
		opts = append(opts, pupilrec.WithJournal(j))
	}

	a, err := s.archiver(ctx)
	if err != nil {
		return nil, err
	}
	if a != nil {
		opts = append(opts, pupilrec.WithArchiver(a))
	}

	if s.cfg.FFmpeg {
		ff, err := media.NewFFmpeg(s.logger.Logger)
		if err != nil {
			s.logger.WarnContext(ctx, "ffmpeg unavailable, audio will not be transcoded", "error", err)
		} else {
			opts = append(opts, pupilrec.WithTranscoder(ff), pupilrec.WithProber(ff))
		}
	}
	return opts, nil
}

func (s *session) migrate(ctx context.Context, path string) error {
	opts, err := s.options(ctx)
	if err != nil {
		return err
	}

	if recording.IsRecordingDir(path) {
		rec, err := pupilrec.Open(path, opts...)
		if err != nil {
			return err
		}
		rep, err := rec.EnsureCurrentVersion(ctx)
		if s.cfg.JSONOutput {
			if werr := s.writeJSON(reportView(rep, err)); werr != nil {
				return werr
			}
		} else {
			printReport(s.out, rep, err)
		}
		return err
	}

	sum, err := pupilrec.MigrateAll(ctx, path, opts...)
	if sum == nil {
		return err
	}
	if s.cfg.JSONOutput {
		views := make([]runView, 0, len(sum.Results))
		for _, r := range sum.Results {
			views = append(views, reportView(r.Report, r.Err).withDir(r.Found.Dir))
		}
		if werr := s.writeJSON(views); werr != nil {
			return werr
		}
	} else {
		for _, r := range sum.Results {
			if r.Report == nil {
				fmt.Fprintf(s.out, "%s: %v\n", r.Found.Dir, r.Err)
				continue
			}
			printReport(s.out, r.Report, r.Err)
		}
		fmt.Fprintf(s.out, "%d of %d recordings migrated in %s\n",
			sum.Migrated(), len(sum.Results), sum.Duration.Round(time.Millisecond))
	}
	return err
}

func (s *session) inspect(ctx context.Context, dir string) error {
	rec, err := recording.OpenDir(dir)
	if err != nil {
		return err
	}
	v, err := rec.Version()
	if err != nil {
		return err
	}
	view := inspectView{
		Dir:      rec.Dir(),
		Version:  v.String(),
		Software: rec.CaptureSoftware(),
	}
	for _, step := range migrate.Compute(v) {
		view.Pending = append(view.Pending, string(step))
	}

	j, err := s.openJournal(ctx)
	if err != nil {
		return err
	}
	if j != nil {
		runs, err := j.Runs(ctx, rec.Dir(), 10)
		if err != nil {
			return err
		}
		view.Runs = runs
	}

	if s.cfg.JSONOutput {
		return s.writeJSON(view)
	}
	fmt.Fprintf(s.out, "recording: %s\n", view.Dir)
	if view.Software != "" {
		fmt.Fprintf(s.out, "software:  %s\n", view.Software)
	}
	fmt.Fprintf(s.out, "version:   %s\n", view.Version)
	fmt.Fprintf(s.out, "pending:   %s\n", strings.Join(view.Pending, ", "))
	for _, r := range view.Runs {
		fmt.Fprintf(s.out, "run %s: %s %s -> %s (%d done, %d skipped)",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Outcome, r.From, r.To, r.StepsDone, r.StepsSkipped)
		if r.Error != "" {
			fmt.Fprintf(s.out, ": %s", r.Error)
		}
		fmt.Fprintln(s.out)
	}
	return nil
}

func (s *session) verify(ctx context.Context, name string) error {
	a, err := s.archiver(ctx)
	if err != nil {
		return err
	}
	name = filepath.Base(name)
	m, err := a.Manifest(ctx, name, s.cfg.Snapshot)
	if err != nil {
		return err
	}
	if err := a.Verify(ctx, name, m.ID); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s/%s: %d files ok\n", name, m.ID, len(m.Files))
	return nil
}

func (s *session) restore(ctx context.Context, name, dst string) error {
	a, err := s.archiver(ctx)
	if err != nil {
		return err
	}
	name = filepath.Base(name)
	m, err := a.Restore(ctx, name, s.cfg.Snapshot, dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "restored %s/%s (%s) to %s\n", name, m.ID, m.Version, dst)
	return nil
}

func (s *session) writeJSON(v any) error {
	data, err := codec.JSON{}.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "%s\n", data)
	return err
}
