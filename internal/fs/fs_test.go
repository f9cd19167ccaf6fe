package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	entries, err := lfs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	newPath := filepath.Join(dir, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	ok, err := Exists(lfs, newPath)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, lfs.Remove(newPath))
	ok, err = Exists(lfs, newPath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "info.csv")

	require.NoError(t, WriteFileAtomic(Default, target, []byte("key,value\n")))
	data, err := ReadFile(Default, target)
	require.NoError(t, err)
	assert.Equal(t, "key,value\n", string(data))

	require.NoError(t, WriteFileAtomic(Default, target, []byte("replaced")))
	data, err = ReadFile(Default, target)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestWriteFileAtomic_Faults(t *testing.T) {
	t.Run("WriteFailureKeepsOriginal", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "info.csv")
		require.NoError(t, os.WriteFile(target, []byte("original"), 0644))

		ffs := NewFaultyFS(LocalFS{})
		ffs.AddRule("info.csv", Fault{FailAfterBytes: 2})

		err := WriteFileAtomic(ffs, target, []byte("much longer content"))
		assert.ErrorIs(t, err, ErrInjected)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("SyncFailure", func(t *testing.T) {
		dir := t.TempDir()
		ffs := NewFaultyFS(nil)
		ffs.AddRule("pupil_data", Fault{FailAfterBytes: -1, FailOnSync: true})
		err := WriteFileAtomic(ffs, filepath.Join(dir, "pupil_data"), []byte("x"))
		assert.Error(t, err)
	})

	t.Run("RenameFailure", func(t *testing.T) {
		dir := t.TempDir()
		ffs := NewFaultyFS(nil)
		ffs.AddRule("world.fake", Fault{FailAfterBytes: -1, FailOnRename: true})
		err := WriteFileAtomic(ffs, filepath.Join(dir, "world.fake"), []byte("x"))
		assert.ErrorIs(t, err, ErrInjected)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestCopyAndMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.npy")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	dst := filepath.Join(dir, "cache", "b.npy")
	require.NoError(t, Copy(Default, src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	moved := filepath.Join(dir, "c.npy")
	require.NoError(t, Move(Default, src, moved))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
	data, err = os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = Copy(Default, filepath.Join(dir, "missing"), dst)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
