package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pupilrec/blobstore"
	"github.com/hupe1980/pupilrec/codec"
	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/testutil"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "rec")
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

var sampleFiles = map[string]string{
	"info.csv":                          "key,value\nData Format Version,1.9\n",
	"pupil_timestamps.npy":              string(bytes.Repeat([]byte{0x93, 'N', 'U', 'M'}, 512)),
	"offline_data/offline_pupil.pldata": "payload",
	"empty.txt":                         "",
}

func TestSnapshotRestore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			src := writeTree(t, sampleFiles)
			store := blobstore.NewMemoryStore()
			a := New(store, WithCompression(c), WithPrefix("archives"))

			m, err := a.Snapshot(ctx, src, "v1.9")
			require.NoError(t, err)
			assert.Equal(t, "rec", m.Recording)
			assert.Equal(t, "v1.9", m.Version)
			assert.Equal(t, c.String(), m.Compression)
			require.Len(t, m.Files, len(sampleFiles))
			assert.Equal(t, "empty.txt", m.Files[0].Name)

			var total int64
			for _, f := range m.Files {
				total += f.Size
			}
			assert.Equal(t, total, m.Size)

			require.NoError(t, a.Verify(ctx, "rec", ""))

			dst := t.TempDir()
			restored, err := a.Restore(ctx, "rec", m.ID, dst)
			require.NoError(t, err)
			assert.Equal(t, m.ID, restored.ID)
			for name, content := range sampleFiles {
				got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
				require.NoError(t, err, name)
				assert.Equal(t, content, string(got), name)
			}
		})
	}
}

func TestArchiveRecording(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecording(t, "1.4").Open()
	store := blobstore.NewMemoryStore()

	times := []time.Time{
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	i := 0
	a := New(store, WithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	}))

	require.NoError(t, a.Archive(ctx, rec))
	require.NoError(t, a.Archive(ctx, rec))

	ids, err := a.Snapshots(ctx, "000")
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "20240301T100000.000000000Z", ids[0])

	latest, err := a.Latest(ctx, "000")
	require.NoError(t, err)
	assert.Equal(t, ids[1], latest)

	m, err := a.Manifest(ctx, "000", "")
	require.NoError(t, err)
	assert.Equal(t, "v1.4", m.Version)
	assert.Equal(t, "000/"+latest+"/recording.tar.zst", m.Archive)
}

func TestNoSnapshot(t *testing.T) {
	a := New(blobstore.NewMemoryStore())
	_, err := a.Manifest(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = a.Manifest(context.Background(), "missing", "20240101T000000.000000000Z")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotFailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store)

	_, err := a.Snapshot(ctx, filepath.Join(t.TempDir(), "missing"), "v1.0")
	require.Error(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestVerifyDetectsChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store, WithCompression(CompressionLZ4))

	m, err := a.Snapshot(ctx, writeTree(t, sampleFiles), "v1.9")
	require.NoError(t, err)

	for i := range m.Files {
		if m.Files[i].Name == "info.csv" {
			m.Files[i].CRC32C ^= 0xFFFF
		}
	}
	data, err := codec.JSON{}.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "rec/"+m.ID+"/manifest.json", data))

	err = a.Verify(ctx, "rec", m.ID)
	var cerr *ChecksumError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "info.csv", cerr.Name)

	dst := t.TempDir()
	_, err = a.Restore(ctx, "rec", m.ID, dst)
	require.ErrorAs(t, err, &cerr)
	_, statErr := os.Stat(filepath.Join(dst, "info.csv"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestVerifyDetectsMissingFile(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store)

	m, err := a.Snapshot(ctx, writeTree(t, sampleFiles), "v1.9")
	require.NoError(t, err)

	m.Files = append(m.Files, FileEntry{Name: "world.mp4", Size: 1})
	data, err := codec.JSON{}.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "rec/"+m.ID+"/manifest.json", data))

	var ierr *IntegrityError
	require.ErrorAs(t, a.Verify(ctx, "rec", m.ID), &ierr)
	assert.Contains(t, ierr.Reason, "world.mp4")
}

func TestRestoreRejectsUnsafePath(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../evil", Mode: 0o644, Size: 1, Typeflag: tar.TypeReg}))
	_, err := tw.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, store.Put(ctx, "rec/x/recording.tar", buf.Bytes()))

	m := &Manifest{
		Format:      ManifestFormat,
		ID:          "x",
		Compression: "none",
		Archive:     "rec/x/recording.tar",
		Files:       []FileEntry{{Name: "../evil", Size: 1}},
	}
	data, err := codec.JSON{}.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "rec/x/manifest.json", data))

	_, err = New(store).Restore(ctx, "rec", "x", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestBufferExceedsMemoryBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1024})
	a := New(blobstore.NewMemoryStore(), WithController(rc))

	_, err := a.Snapshot(context.Background(), writeTree(t, sampleFiles), "v1.9")
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Zero(t, rc.MemoryUsage())
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{
		"":     CompressionZstd,
		"ZSTD": CompressionZstd,
		"lz4":  CompressionLZ4,
		"none": CompressionNone,
	} {
		got, err := ParseCompression(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
}
