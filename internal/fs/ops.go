package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Exists reports whether name exists. Errors other than "not exist" are
// returned to the caller.
func Exists(fsys FileSystem, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadFile reads the whole file.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFileAtomic writes data to name through a temporary file in the same
// directory followed by a rename, replacing any existing file.
func WriteFileAtomic(fsys FileSystem, name string, data []byte) error {
	return WriteAtomic(fsys, name, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic streams the output of write into name atomically.
// On failure the temporary file is removed and name is left untouched.
func WriteAtomic(fsys FileSystem, name string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := fsys.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		return err
	}
	committed = true

	_ = syncDir(dir)
	return nil
}

// Copy copies src to dst atomically, replacing dst.
func Copy(fsys FileSystem, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return WriteAtomic(fsys, dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

// Move renames src to dst. When the rename fails because the paths live on
// different devices it falls back to copy and remove.
func Move(fsys FileSystem, src, dst string) error {
	err := fsys.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err := Copy(fsys, src, dst); err != nil {
		return err
	}
	return fsys.Remove(src)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
