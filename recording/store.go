package recording

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"slices"

	"github.com/hupe1980/pupilrec/codec"
	"github.com/hupe1980/pupilrec/internal/fs"
)

// Store is the storage capability of a single recording directory.
// Names are relative to the recording root and use forward slashes.
type Store interface {
	// Root returns the recording directory.
	Root() string

	// ReadMeta reads info.csv, falling back to user_info.csv.
	ReadMeta() (*Meta, error)
	// WriteMeta replaces info.csv.
	WriteMeta(m *Meta) error

	// LoadObject decodes a single-value object file.
	LoadObject(name string) (any, error)
	// LoadLegacyObject decodes an object file written in a pre-msgpack encoding.
	LoadLegacyObject(name string) (any, error)
	// SaveObject replaces an object file.
	SaveObject(name string, v any) error

	// ReadArray reads a .npy file.
	ReadArray(name string) (*Array, error)
	// WriteArray writes a 1-D or 2-D float64 .npy file.
	WriteArray(name string, a *Array) error
	// WriteTimestamps writes a 1-D float64 .npy file.
	WriteTimestamps(name string, ts []float64) error
	// ReadRawTimes reads a headerless big-endian float64 file.
	ReadRawTimes(name string) ([]float64, error)

	// ReadTopic reads <topic>_timestamps.npy and <topic>.pldata.
	ReadTopic(topic string) (*Topic, error)
	// ReadTopicPreferOffline reads the offline_data variant when present.
	ReadTopicPreferOffline(topic string) (*Topic, error)
	// WriteTopic replaces both files of a topic.
	WriteTopic(t *Topic) error

	// List returns the names of the entries directly under dir ("" for root).
	List(dir string) ([]string, error)
	// Glob returns root-level names matching pattern (filepath.Match syntax).
	Glob(pattern string) ([]string, error)
	Exists(name string) (bool, error)
	IsDir(name string) (bool, error)
	Rename(oldname, newname string) error
	Copy(src, dst string) error
	Remove(name string) error
}

// LegacyDecoder decodes object files written before msgpack (e.g. pickle).
type LegacyDecoder func(data []byte) (any, error)

// LocalStore implements Store over a local directory.
type LocalStore struct {
	root   string
	fsys   fs.FileSystem
	codec  codec.Codec
	legacy LegacyDecoder
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem replaces the filesystem (tests inject fs.FaultyFS).
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fsys = fsys
		}
	}
}

// WithLegacyDecoder enables LoadLegacyObject.
func WithLegacyDecoder(dec LegacyDecoder) LocalOption {
	return func(s *LocalStore) { s.legacy = dec }
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{
		root:  filepath.Clean(dir),
		fsys:  fs.Default,
		codec: codec.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Root returns the recording directory.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) ReadMeta() (*Meta, error) {
	var lastErr error
	for _, name := range []string{MetaFileName, LegacyMetaFileName} {
		data, err := fs.ReadFile(s.fsys, s.path(name))
		if err != nil {
			lastErr = err
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		return ParseMeta(bytes.NewReader(data), name)
	}
	return nil, fmt.Errorf("read metadata of %s: %w", s.root, lastErr)
}

func (s *LocalStore) WriteMeta(m *Meta) error {
	return fs.WriteAtomic(s.fsys, s.path(MetaFileName), func(w io.Writer) error {
		return EncodeMeta(w, m)
	})
}

func (s *LocalStore) LoadObject(name string) (any, error) {
	data, err := fs.ReadFile(s.fsys, s.path(name))
	if err != nil {
		return nil, err
	}
	var v any
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return nil, &FormatError{Path: name, Reason: s.codec.Name() + " object", cause: err}
	}
	return v, nil
}

func (s *LocalStore) LoadLegacyObject(name string) (any, error) {
	if s.legacy == nil {
		return nil, ErrNoLegacyDecoder
	}
	data, err := fs.ReadFile(s.fsys, s.path(name))
	if err != nil {
		return nil, err
	}
	v, err := s.legacy(data)
	if err != nil {
		return nil, &FormatError{Path: name, Reason: "legacy object", cause: err}
	}
	return v, nil
}

func (s *LocalStore) SaveObject(name string, v any) error {
	data, err := s.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return fs.WriteFileAtomic(s.fsys, s.path(name), data)
}

func (s *LocalStore) ReadArray(name string) (*Array, error) {
	data, err := fs.ReadFile(s.fsys, s.path(name))
	if err != nil {
		return nil, err
	}
	return decodeNPY(data, name)
}

func (s *LocalStore) WriteArray(name string, a *Array) error {
	return fs.WriteAtomic(s.fsys, s.path(name), func(w io.Writer) error {
		return encodeArray(w, a)
	})
}

func (s *LocalStore) WriteTimestamps(name string, ts []float64) error {
	return fs.WriteAtomic(s.fsys, s.path(name), func(w io.Writer) error {
		return encodeNPY(w, ts)
	})
}

func (s *LocalStore) ReadRawTimes(name string) ([]float64, error) {
	data, err := fs.ReadFile(s.fsys, s.path(name))
	if err != nil {
		return nil, err
	}
	return decodeRawTimes(data, name)
}

func (s *LocalStore) ReadTopic(topic string) (*Topic, error) {
	return s.readTopic(topic, TimestampsFile(topic), DataFile(topic))
}

func (s *LocalStore) ReadTopicPreferOffline(topic string) (*Topic, error) {
	ok, err := s.Exists(OfflineTimestampsFile(topic))
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.ReadTopic(topic)
	}
	return s.readTopic(topic, OfflineTimestampsFile(topic), OfflineDataFile(topic))
}

func (s *LocalStore) readTopic(topic, tsName, dataName string) (*Topic, error) {
	ts, err := s.ReadArray(tsName)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, s.path(dataName))
	if err != nil {
		return nil, err
	}
	labels, payloads, err := readFrames(data, dataName)
	if err != nil {
		return nil, err
	}
	if len(ts.Data) != len(payloads) {
		return nil, &FormatError{
			Path:   dataName,
			Reason: fmt.Sprintf("%d frames but %d timestamps in %s", len(payloads), len(ts.Data), tsName),
		}
	}
	return &Topic{Name: topic, Timestamps: ts.Data, Labels: labels, Payloads: payloads}, nil
}

// WriteTopic writes the event log first and the timestamps second, so a
// reader never sees timestamps describing frames that are not yet on disk.
func (s *LocalStore) WriteTopic(t *Topic) error {
	if len(t.Timestamps) != len(t.Payloads) || len(t.Labels) != len(t.Payloads) {
		return &FormatError{Path: DataFile(t.Name), Reason: "timestamps, labels and payloads differ in length"}
	}
	if err := fs.WriteAtomic(s.fsys, s.path(DataFile(t.Name)), func(w io.Writer) error {
		return writeFrames(w, t)
	}); err != nil {
		return err
	}
	return s.WriteTimestamps(TimestampsFile(t.Name), t.Timestamps)
}

func (s *LocalStore) List(dir string) ([]string, error) {
	entries, err := s.fsys.ReadDir(s.path(dir))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *LocalStore) Glob(pattern string) ([]string, error) {
	names, err := s.List("")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		ok, err := filepath.Match(pattern, n)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *LocalStore) Exists(name string) (bool, error) {
	return fs.Exists(s.fsys, s.path(name))
}

func (s *LocalStore) IsDir(name string) (bool, error) {
	info, err := s.fsys.Stat(s.path(name))
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (s *LocalStore) Rename(oldname, newname string) error {
	return fs.Move(s.fsys, s.path(oldname), s.path(newname))
}

func (s *LocalStore) Copy(src, dst string) error {
	return fs.Copy(s.fsys, s.path(src), s.path(dst))
}

func (s *LocalStore) Remove(name string) error {
	return s.fsys.Remove(s.path(name))
}
