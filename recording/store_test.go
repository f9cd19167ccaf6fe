package recording_test

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pupilrec/internal/fs"
	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/testutil"
	"github.com/hupe1980/pupilrec/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreMetaFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_info.csv"), []byte("Capture Software Version,0.7.6\n"), 0o644))

	s := recording.NewLocalStore(dir)
	m, err := s.ReadMeta()
	require.NoError(t, err)
	v, _ := m.Get(recording.KeyCaptureSoftwareVersion)
	assert.Equal(t, "0.7.6", v)

	m.Set(recording.KeyDataFormatVersion, "v0.7.6")
	require.NoError(t, s.WriteMeta(m))

	ok, err := s.Exists("info.csv")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalStoreMetaMissing(t *testing.T) {
	_, err := recording.NewLocalStore(t.TempDir()).ReadMeta()
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestLocalStoreObjects(t *testing.T) {
	f := testutil.NewRecording(t, "v0.9.3")
	s := f.Store()

	require.NoError(t, s.SaveObject("world.fake", map[string]any{"frame_rate": int64(30)}))
	v, err := s.LoadObject("world.fake")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"frame_rate": int64(30)}, v)

	_, err = s.LoadLegacyObject("world.fake")
	assert.ErrorIs(t, err, recording.ErrNoLegacyDecoder)

	f.File("pickled", []byte{0x80, 0x02, 0x7d, 0x71})
	_, err = s.LoadObject("pickled")
	var fe *recording.FormatError
	assert.True(t, errors.As(err, &fe))

	legacy := f.Store(recording.WithLegacyDecoder(func(data []byte) (any, error) {
		return map[string]any{"size": int64(len(data))}, nil
	}))
	v, err = legacy.LoadLegacyObject("pickled")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"size": int64(4)}, v)
}

func TestLocalStoreTopics(t *testing.T) {
	f := testutil.NewRecording(t, "v1.9").
		Topic("pupil", testutil.PupilEvents(4, 1))
	s := f.Store()

	topic, err := s.ReadTopicPreferOffline("pupil")
	require.NoError(t, err)
	assert.Equal(t, 4, topic.Len())

	f.Topic("offline_data/offline_pupil", testutil.PupilEvents(2, 50))
	topic, err = s.ReadTopicPreferOffline("pupil")
	require.NoError(t, err)
	assert.Equal(t, 2, topic.Len())
	assert.Equal(t, 50.0, topic.Timestamps[0])

	_, err = s.ReadTopic("gaze")
	assert.True(t, errors.Is(err, iofs.ErrNotExist))
}

func TestLocalStoreTopicLengthMismatch(t *testing.T) {
	f := testutil.NewRecording(t, "v1.9").
		Topic("gaze", testutil.Annotations(0, "a", "b")).
		Timestamps("gaze_timestamps.npy", []float64{0})

	_, err := f.Store().ReadTopic("gaze")
	var fe *recording.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "gaze.pldata", fe.Path)
}

func TestLocalStoreFileOps(t *testing.T) {
	f := testutil.NewRecording(t, "v1.3").
		RawTimes("Pupil Cam2 ID0.time", []float64{1, 2, 3}).
		File("Pupil Cam2 ID0.mjpeg", []byte("video")).
		File("offline_data/cache", []byte("x"))
	s := f.Store()

	ts, err := s.ReadRawTimes("Pupil Cam2 ID0.time")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, ts)

	names, err := s.Glob("*.time")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pupil Cam2 ID0.time"}, names)

	isDir, err := s.IsDir("offline_data")
	require.NoError(t, err)
	assert.True(t, isDir)

	require.NoError(t, s.Copy("Pupil Cam2 ID0.mjpeg", "backup.mjpeg"))
	require.NoError(t, s.Rename("Pupil Cam2 ID0.mjpeg", "eye0.mjpeg"))
	require.NoError(t, s.Remove("backup.mjpeg"))

	all, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pupil Cam2 ID0.time", "eye0.mjpeg", "info.csv", "offline_data"}, all)
}

func TestLocalStoreAtomicMetaWrite(t *testing.T) {
	f := testutil.NewRecording(t, "v0.9.0")
	faulty := fs.NewFaultyFS(fs.Default)
	faulty.AddRule("info.csv", fs.Fault{FailAfterBytes: -1, FailOnRename: true})

	rec := f.Open(recording.WithFileSystem(faulty))
	err := rec.SetVersion(version.MustParse("0.9.1"))
	require.ErrorIs(t, err, fs.ErrInjected)

	v, err := rec.Version()
	require.NoError(t, err)
	assert.Equal(t, "v0.9", v.String())

	reopened := f.Open()
	v, err = reopened.Version()
	require.NoError(t, err)
	assert.Equal(t, "v0.9", v.String())
}

func TestRecordingVersion(t *testing.T) {
	t.Run("data format version", func(t *testing.T) {
		rec := testutil.NewRecording(t, "v1.4").Meta(recording.KeyCaptureSoftwareVersion, "1.5.12").Open()
		v, err := rec.Version()
		require.NoError(t, err)
		assert.Equal(t, version.New(1, 4, 0), v)
	})

	t.Run("capture software version", func(t *testing.T) {
		rec := testutil.NewRecording(t, "").Meta(recording.KeyCaptureSoftwareVersion, "0.8.5").Open()
		v, err := rec.Version()
		require.NoError(t, err)
		assert.Equal(t, version.New(0, 8, 5), v)
	})

	t.Run("none", func(t *testing.T) {
		rec := testutil.NewRecording(t, "").Open()
		_, err := rec.Version()
		assert.ErrorIs(t, err, recording.ErrNoVersion)
	})

	t.Run("malformed", func(t *testing.T) {
		rec := testutil.NewRecording(t, "v1.x").Open()
		_, err := rec.Version()
		var fe *version.FormatError
		assert.True(t, errors.As(err, &fe))
	})
}

func TestSetVersionPreservesKeys(t *testing.T) {
	f := testutil.NewRecording(t, "v0.9.0").Meta("Subject", "p01")
	rec := f.Open()
	before := rec.Meta().Keys()

	require.NoError(t, rec.SetVersion(version.New(0, 9, 1)))

	reopened := f.Open()
	assert.Equal(t, before, reopened.Meta().Keys())
	s, _ := reopened.Meta().Get("Subject")
	assert.Equal(t, "p01", s)
	v, _ := reopened.Meta().Get(recording.KeyDataFormatVersion)
	assert.Equal(t, "v0.9.1", v)
}
