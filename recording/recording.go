package recording

import (
	"fmt"

	"github.com/hupe1980/pupilrec/version"
)

// Recording is one capture session directory: its storage and the metadata
// last read from or written to it.
type Recording struct {
	store Store
	meta  *Meta
}

// Open reads the metadata of the recording behind store.
func Open(store Store) (*Recording, error) {
	m, err := store.ReadMeta()
	if err != nil {
		return nil, err
	}
	return &Recording{store: store, meta: m}, nil
}

// OpenDir opens a recording directory with a LocalStore.
func OpenDir(dir string, opts ...LocalOption) (*Recording, error) {
	return Open(NewLocalStore(dir, opts...))
}

// Dir returns the recording directory.
func (r *Recording) Dir() string { return r.store.Root() }

// Store returns the storage capability of the recording.
func (r *Recording) Store() Store { return r.store }

// Meta returns the in-memory metadata. Mutations are not persisted until
// SaveMeta is called.
func (r *Recording) Meta() *Meta { return r.meta }

// Reload re-reads the metadata from storage.
func (r *Recording) Reload() error {
	m, err := r.store.ReadMeta()
	if err != nil {
		return err
	}
	r.meta = m
	return nil
}

// SaveMeta persists the in-memory metadata to info.csv.
func (r *Recording) SaveMeta() error {
	return r.store.WriteMeta(r.meta)
}

// Version returns the declared data format version. Recordings predating
// the "Data Format Version" key declare their version through the capture
// software version.
func (r *Recording) Version() (version.Version, error) {
	for _, key := range []string{KeyDataFormatVersion, KeyCaptureSoftwareVersion} {
		text, ok := r.meta.Get(key)
		if !ok {
			continue
		}
		v, err := version.Parse(text)
		if err != nil {
			return version.Version{}, fmt.Errorf("%s: %w", key, err)
		}
		return v, nil
	}
	return version.Version{}, ErrNoVersion
}

// SetVersion records v as the data format version and persists the
// metadata. Every other key is preserved in place.
func (r *Recording) SetVersion(v version.Version) error {
	next := r.meta.Clone()
	next.Set(KeyDataFormatVersion, v.String())
	if err := r.store.WriteMeta(next); err != nil {
		return err
	}
	r.meta = next
	return nil
}

// CaptureSoftware returns the name of the application that wrote the
// recording, defaulting to Pupil Capture.
func (r *Recording) CaptureSoftware() string {
	if s, ok := r.meta.Get(KeyCaptureSoftware); ok && s != "" {
		return s
	}
	return "Pupil Capture"
}
