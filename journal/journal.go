package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hupe1980/pupilrec/internal/sqlitemigrate"
	"github.com/hupe1980/pupilrec/journal/migrations"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/version"
)

var _ migrate.Observer = (*Journal)(nil)

// Outcome of a recorded run.
const (
	OutcomeMigrated = "migrated"
	OutcomeFailed   = "failed"
)

// StepRecord is one persisted step attempt.
type StepRecord struct {
	ID        int64
	Dir       string
	Step      string
	Threshold string
	Status    string
	Attempts  int
	Duration  time.Duration
	Error     string
	CreatedAt time.Time
}

// RunRecord is one persisted migration run.
type RunRecord struct {
	ID           int64
	Dir          string
	From         string
	To           string
	Outcome      string
	StepsDone    int
	StepsSkipped int
	Archived     bool
	Error        string
	StartedAt    time.Time
	Duration     time.Duration
}

// Journal persists migration step attempts and runs in SQLite.
//
// A Journal is safe for concurrent use; the batch runner shares one across
// its workers.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the journal database at path, creating it and applying
// migrations as needed.
func Open(ctx context.Context, path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal: path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, db, migrations.FS, ""); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: run migrations: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// StepFinished records one step attempt.
func (j *Journal) StepFinished(ctx context.Context, res migrate.StepResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO step_attempts (
	dir,
	step,
	threshold,
	status,
	attempts,
	duration_ms,
	error,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		res.Dir,
		string(res.Step),
		versionLabel(res.Threshold),
		string(res.Status),
		res.Attempts,
		res.Duration.Milliseconds(),
		errString(res.Err),
		j.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("journal: record step: %w", err)
	}
	return nil
}

// RecordRun records the outcome of one engine run.
func (j *Journal) RecordRun(ctx context.Context, rep *migrate.Report, runErr error) error {
	if rep == nil {
		return errors.New("journal: report is required")
	}
	outcome := OutcomeMigrated
	if runErr != nil {
		outcome = OutcomeFailed
	}
	started := rep.Started
	if started.IsZero() {
		started = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO runs (
	dir,
	from_version,
	to_version,
	outcome,
	steps_done,
	steps_skipped,
	archived,
	error,
	started_at,
	duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		rep.Dir,
		versionLabel(rep.From),
		versionLabel(rep.To),
		outcome,
		rep.Done(),
		rep.Skipped(),
		rep.Archived,
		errString(runErr),
		started.UTC().UnixMilli(),
		rep.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("journal: record run: %w", err)
	}
	return nil
}

// Steps lists step attempts of dir, newest first. An empty dir lists all.
func (j *Journal) Steps(ctx context.Context, dir string, limit int) ([]StepRecord, error) {
	if limit <= 0 {
		return nil, errors.New("journal: limit must be greater than zero")
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT
	id,
	dir,
	step,
	threshold,
	status,
	attempts,
	duration_ms,
	error,
	created_at
FROM step_attempts
WHERE ? = '' OR dir = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, dir, dir, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var (
			r          StepRecord
			durationMS int64
			createdAt  int64
		)
		if err := rows.Scan(&r.ID, &r.Dir, &r.Step, &r.Threshold, &r.Status, &r.Attempts, &durationMS, &r.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan step: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate steps: %w", err)
	}
	return records, nil
}

// Runs lists runs of dir, newest first. An empty dir lists all.
func (j *Journal) Runs(ctx context.Context, dir string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, errors.New("journal: limit must be greater than zero")
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT
	id,
	dir,
	from_version,
	to_version,
	outcome,
	steps_done,
	steps_skipped,
	archived,
	error,
	started_at,
	duration_ms
FROM runs
WHERE ? = '' OR dir = ?
ORDER BY started_at DESC, id DESC
LIMIT ?
`, dir, dir, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			r          RunRecord
			startedAt  int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Dir, &r.From, &r.To, &r.Outcome, &r.StepsDone, &r.StepsSkipped, &r.Archived, &r.Error, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(startedAt).UTC()
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate runs: %w", err)
	}
	return records, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func versionLabel(v version.Version) string {
	if v.IsZero() {
		return ""
	}
	return v.String()
}
