package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	stdhash "hash"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/pupilrec/blobstore"
	"github.com/hupe1980/pupilrec/codec"
	"github.com/hupe1980/pupilrec/internal/fs"
	"github.com/hupe1980/pupilrec/internal/hash"
	"github.com/hupe1980/pupilrec/internal/resource"
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
)

var _ migrate.Archiver = (*Archiver)(nil)

// Archiver writes compressed tar snapshots of recording directories to a
// blob store.
//
// Layout per recording name:
//
//	<prefix>/<name>/<id>/recording.tar.zst
//	<prefix>/<name>/<id>/manifest.json
//	<prefix>/<name>/LATEST
type Archiver struct {
	store blobstore.BlobStore
	opts  options
}

// New creates an Archiver writing to store.
func New(store blobstore.BlobStore, optFns ...Option) *Archiver {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Archiver{store: store, opts: opts}
}

// Archive snapshots rec before migration.
func (a *Archiver) Archive(ctx context.Context, rec *recording.Recording) error {
	label := "unknown"
	if v, err := rec.Version(); err == nil {
		label = v.String()
	}
	_, err := a.Snapshot(ctx, rec.Dir(), label)
	return err
}

// Snapshot archives every regular file below dir and returns the stored
// manifest. The archive blob is aborted on failure, so a failed snapshot
// leaves no manifest behind.
func (a *Archiver) Snapshot(ctx context.Context, dir, versionLabel string) (*Manifest, error) {
	name := a.opts.name(dir)
	created := a.opts.now().UTC()
	id := created.Format(idLayout)
	base := a.key(name, id)

	m := &Manifest{
		Format:      ManifestFormat,
		ID:          id,
		Recording:   name,
		Source:      dir,
		Version:     versionLabel,
		CreatedAt:   created,
		Compression: a.opts.compression.String(),
		Archive:     path.Join(base, "recording"+a.opts.compression.ext()),
	}

	buf, release, err := a.buffer(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	blob, err := a.store.Create(ctx, m.Archive)
	if err != nil {
		return nil, fmt.Errorf("archive: create %s: %w", m.Archive, err)
	}
	if err := a.writeArchive(ctx, dir, blob, m, buf); err != nil {
		_ = blob.Abort()
		return nil, fmt.Errorf("archive: snapshot %s: %w", dir, err)
	}
	if err := blob.Close(); err != nil {
		return nil, fmt.Errorf("archive: finish %s: %w", m.Archive, err)
	}

	data, err := codec.JSON{}.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := a.store.Put(ctx, path.Join(base, manifestFileName), data); err != nil {
		return nil, fmt.Errorf("archive: write manifest: %w", err)
	}
	if err := a.store.Put(ctx, a.key(name, latestFileName), []byte(id)); err != nil {
		return nil, fmt.Errorf("archive: update %s: %w", latestFileName, err)
	}

	a.opts.logger.InfoContext(ctx, "recording archived",
		slog.String("recording", dir),
		slog.String("archive", m.Archive),
		slog.Int("files", len(m.Files)),
		slog.Int64("bytes", m.Size),
		slog.Duration("duration", time.Since(start)),
	)
	return m, nil
}

func (a *Archiver) key(elem ...string) string {
	return path.Join(append([]string{a.opts.prefix}, elem...)...)
}

// buffer reserves one copy buffer against the controller's memory budget.
func (a *Archiver) buffer(ctx context.Context) ([]byte, func(), error) {
	size := int64(a.opts.bufferSize)
	if err := a.opts.controller.AcquireMemory(ctx, size); err != nil {
		return nil, nil, fmt.Errorf("archive: reserve buffer: %w", err)
	}
	return make([]byte, size), func() { a.opts.controller.ReleaseMemory(size) }, nil
}

func (a *Archiver) writeArchive(ctx context.Context, dir string, dst io.Writer, m *Manifest, buf []byte) error {
	zw, err := a.opts.compression.newWriter(dst, a.opts.level)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entry, err := a.addFile(ctx, tw, p, filepath.ToSlash(rel), info, buf)
		if err != nil {
			return err
		}
		m.Files = append(m.Files, entry)
		m.Size += entry.Size
		return nil
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

func (a *Archiver) addFile(ctx context.Context, tw *tar.Writer, src, name string, info os.FileInfo, buf []byte) (FileEntry, error) {
	f, err := os.Open(src)
	if err != nil {
		return FileEntry{}, err
	}
	defer f.Close()

	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     info.Size(),
		Mode:     int64(info.Mode().Perm()),
		ModTime:  info.ModTime(),
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return FileEntry{}, err
	}

	h := hash.NewCRC32C()
	r := resource.NewRateLimitedReader(ctx, f, a.opts.controller)
	n, err := io.CopyBuffer(io.MultiWriter(tw, h), r, buf)
	if err != nil {
		return FileEntry{}, fmt.Errorf("%s: %w", name, err)
	}
	if n != info.Size() {
		return FileEntry{}, fmt.Errorf("%s: size changed while archiving", name)
	}
	return FileEntry{
		Name:   name,
		Size:   n,
		Mode:   uint32(info.Mode().Perm()),
		CRC32C: h.Sum32(),
	}, nil
}

// Latest returns the id of the newest snapshot of name.
func (a *Archiver) Latest(ctx context.Context, name string) (string, error) {
	data, err := blobstore.ReadAll(ctx, a.store, a.key(name, latestFileName))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNoSnapshot, name)
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Snapshots returns the ids of all snapshots of name, oldest first.
func (a *Archiver) Snapshots(ctx context.Context, name string) ([]string, error) {
	prefix := a.key(name) + "/"
	names, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, n := range names {
		if path.Base(n) != manifestFileName {
			continue
		}
		ids = append(ids, path.Base(path.Dir(n)))
	}
	sort.Strings(ids)
	return ids, nil
}

// Manifest loads the manifest of a snapshot. An empty id selects the
// latest snapshot.
func (a *Archiver) Manifest(ctx context.Context, name, id string) (*Manifest, error) {
	if id == "" {
		var err error
		if id, err = a.Latest(ctx, name); err != nil {
			return nil, err
		}
	}
	data, err := blobstore.ReadAll(ctx, a.store, a.key(name, id, manifestFileName))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNoSnapshot, name, id)
		}
		return nil, err
	}
	m := &Manifest{}
	if err := (codec.JSON{}).Unmarshal(data, m); err != nil {
		return nil, &IntegrityError{Name: name + "/" + id, Reason: "malformed manifest: " + err.Error()}
	}
	return m, nil
}

// Verify reads a snapshot back and checks every file against its manifest.
func (a *Archiver) Verify(ctx context.Context, name, id string) error {
	m, err := a.Manifest(ctx, name, id)
	if err != nil {
		return err
	}
	buf, release, err := a.buffer(ctx)
	if err != nil {
		return err
	}
	defer release()

	return a.extract(ctx, m, func(_ FileEntry, r io.Reader, _ func() error) error {
		_, err := io.CopyBuffer(io.Discard, r, buf)
		return err
	})
}

// Restore unpacks a snapshot into dst, verifying checksums as it goes.
// Each file is written atomically and only replaces an existing file once
// its checksum matched.
func (a *Archiver) Restore(ctx context.Context, name, id, dst string) (*Manifest, error) {
	m, err := a.Manifest(ctx, name, id)
	if err != nil {
		return nil, err
	}
	buf, release, err := a.buffer(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	err = a.extract(ctx, m, func(e FileEntry, r io.Reader, check func() error) error {
		target := filepath.Join(dst, filepath.FromSlash(e.Name))
		return fs.WriteAtomic(a.opts.fsys, target, func(w io.Writer) error {
			if _, err := io.CopyBuffer(w, r, buf); err != nil {
				return err
			}
			return check()
		})
	})
	if err != nil {
		return nil, err
	}
	a.opts.logger.InfoContext(ctx, "recording restored",
		slog.String("archive", m.Archive),
		slog.String("target", dst),
		slog.Int("files", len(m.Files)),
	)
	return m, nil
}

// sink consumes one archived file. check reports whether the bytes read
// so far match the manifest entry.
type sink func(e FileEntry, r io.Reader, check func() error) error

// verifyingReader hashes and counts everything read through it.
type verifyingReader struct {
	r io.Reader
	h stdhash.Hash32
	n int64
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	n, err := v.r.Read(p)
	v.n += int64(n)
	_, _ = v.h.Write(p[:n])
	return n, err
}

func (a *Archiver) extract(ctx context.Context, m *Manifest, consume sink) error {
	c, err := m.compression()
	if err != nil {
		return &IntegrityError{Name: m.Archive, Reason: err.Error()}
	}

	blob, err := a.store.Open(ctx, m.Archive)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", m.Archive, err)
	}
	defer blob.Close()
	if blob.Size() == 0 {
		return &IntegrityError{Name: m.Archive, Reason: "empty archive"}
	}
	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return err
	}
	defer rc.Close()

	zr, err := c.newReader(resource.NewRateLimitedReader(ctx, rc, a.opts.controller))
	if err != nil {
		return err
	}
	defer zr.Close()

	expected := make(map[string]FileEntry, len(m.Files))
	for _, f := range m.Files {
		expected[f.Name] = f
	}

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &IntegrityError{Name: m.Archive, Reason: err.Error()}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !filepath.IsLocal(filepath.FromSlash(hdr.Name)) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, hdr.Name)
		}
		want, ok := expected[hdr.Name]
		if !ok {
			return &IntegrityError{Name: hdr.Name, Reason: "not listed in manifest"}
		}
		delete(expected, hdr.Name)

		vr := &verifyingReader{r: tr, h: hash.NewCRC32C()}
		check := func() error {
			if vr.n != want.Size {
				return &IntegrityError{Name: hdr.Name, Reason: fmt.Sprintf("size %d, want %d", vr.n, want.Size)}
			}
			if got := vr.h.Sum32(); got != want.CRC32C {
				return &ChecksumError{Name: hdr.Name, Want: want.CRC32C, Got: got}
			}
			return nil
		}
		if err := consume(want, vr, check); err != nil {
			return err
		}
		if err := check(); err != nil {
			return err
		}
	}

	if len(expected) > 0 {
		missing := make([]string, 0, len(expected))
		for name := range expected {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return &IntegrityError{Name: m.Archive, Reason: "missing " + strings.Join(missing, ", ")}
	}
	return nil
}
