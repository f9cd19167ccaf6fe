package recording

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Well-known metadata keys.
const (
	KeyDataFormatVersion      = "Data Format Version"
	KeyCaptureSoftware        = "Capture Software"
	KeyCaptureSoftwareVersion = "Capture Software Version"
	KeyRecordingName          = "Recording Name"
)

// Metadata file names, in lookup order. Writes always go to the first.
const (
	MetaFileName       = "info.csv"
	LegacyMetaFileName = "user_info.csv"
)

// Meta is an ordered key/value mapping. Keys keep their first insertion
// position; Set on an existing key replaces the value in place.
type Meta struct {
	keys   []string
	values map[string]string
}

// NewMeta returns an empty Meta.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores value under key.
func (m *Meta) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string { return slices.Clone(m.keys) }

// Len returns the number of keys.
func (m *Meta) Len() int { return len(m.keys) }

// Clone returns a deep copy.
func (m *Meta) Clone() *Meta {
	c := &Meta{keys: slices.Clone(m.keys), values: make(map[string]string, len(m.values))}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// ParseMeta reads a key,value CSV file. A leading "key,value" header row is
// optional. A UTF-8 or UTF-16 byte order mark is honored.
func ParseMeta(r io.Reader, path string) (*Meta, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1

	m := NewMeta()
	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return m, nil
		}
		if err != nil {
			return nil, &FormatError{Path: path, Reason: "unreadable csv", cause: err}
		}
		if line == 0 && len(rec) == 2 && rec[0] == "key" && rec[1] == "value" {
			continue
		}
		if len(rec) != 2 {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("row %d has %d fields, want 2", line+1, len(rec))}
		}
		m.Set(rec[0], rec[1])
	}
}

// EncodeMeta writes m as a key,value CSV file with a header row and CRLF
// line endings.
func EncodeMeta(w io.Writer, m *Meta) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write([]string{"key", "value"}); err != nil {
		return err
	}
	for _, k := range m.keys {
		if err := cw.Write([]string{k, m.values[k]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
