package pupilrec

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pupilrec/archive"
	"github.com/hupe1980/pupilrec/blobstore"
	"github.com/hupe1980/pupilrec/journal"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/testutil"
	"github.com/hupe1980/pupilrec/version"
)

func TestEnsureCurrentVersion(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewRecording(t, "1.4").
		Object("pupil_data", testutil.PupilData(3, "1.4")).
		File("world.mp4", nil)

	metrics := &BasicMetricsCollector{}
	store := blobstore.NewMemoryStore()
	j, err := journal.Open(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	rec, err := Open(fx.Dir,
		WithMetricsCollector(metrics),
		WithArchiver(archive.New(store)),
		WithJournal(j),
	)
	require.NoError(t, err)

	rep, err := rec.EnsureCurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, version.New(1, 4, 0), rep.From)
	assert.Equal(t, version.New(1, 9, 0), rep.To)
	assert.True(t, rep.Archived)

	v, err := rec.Version()
	require.NoError(t, err)
	assert.Equal(t, version.New(1, 9, 0), v)

	stats := metrics.GetStats()
	assert.EqualValues(t, 3, stats.StepsDone)
	assert.EqualValues(t, 1, stats.RunCount)
	assert.Zero(t, stats.RunErrors)

	names, err := store.List(ctx, "000/")
	require.NoError(t, err)
	assert.Contains(t, names, "000/LATEST")

	steps, err := j.Steps(ctx, fx.Dir, 10)
	require.NoError(t, err)
	assert.Len(t, steps, 3)
	runs, err := j.Runs(ctx, fx.Dir, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	rep, err = rec.EnsureCurrentVersion(ctx)
	require.NoError(t, err)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, migrate.StepWorldless, rep.Steps[0].Step)
}

func TestEnsureCurrentVersionErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("too old", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		rec, err := Open(testutil.NewRecording(t, "0.2").Dir, WithMetricsCollector(metrics))
		require.NoError(t, err)

		_, err = rec.EnsureCurrentVersion(ctx)
		var fatal *FatalVersionError
		require.ErrorAs(t, err, &fatal)
		assert.EqualValues(t, 1, metrics.GetStats().RunErrors)
	})

	t.Run("worldless without eyes", func(t *testing.T) {
		rec, err := Open(testutil.NewRecording(t, "1.9").Dir)
		require.NoError(t, err)

		_, err = rec.EnsureCurrentVersion(ctx)
		assert.ErrorIs(t, err, ErrInvalidRecording)
		var stepErr *StepError
		assert.ErrorAs(t, err, &stepErr)
	})

	t.Run("not a recording", func(t *testing.T) {
		_, err := Open(t.TempDir())
		assert.Error(t, err)
	})
}

func TestMigrateAll(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"000", "001", "002"} {
		testutil.NewRecordingAt(t, filepath.Join(root, "subject", name), "1.8").File("world.mp4", nil)
	}
	metrics := &BasicMetricsCollector{}

	sum, err := MigrateAll(context.Background(), root, WithConcurrency(2), WithMetricsCollector(metrics))
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Migrated())
	assert.EqualValues(t, 3, metrics.GetStats().RunCount)
	assert.EqualValues(t, 6, metrics.GetStats().StepsDone)
}

func TestLoggerLogsSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rec, err := Open(testutil.NewRecording(t, "1.8").File("world.mp4", nil).Dir, WithLogger(logger))
	require.NoError(t, err)
	_, err = rec.EnsureCurrentVersion(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "migration step completed")
	assert.Contains(t, out, "step=v1.9")
	assert.Contains(t, out, "migration completed")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.WithRecording("x").WithStep(migrate.StepV19).Info("discarded")
}
