package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/version"
	"github.com/stretchr/testify/require"
)

// Fixture builds a recording directory for a test. Every builder method
// fails the test on error.
type Fixture struct {
	t     testing.TB
	Dir   string
	meta  *recording.Meta
	store *recording.LocalStore
}

// NewRecording creates a recording in a fresh temporary directory. A
// non-empty ver is written as the data format version.
func NewRecording(t testing.TB, ver string) *Fixture {
	t.Helper()
	return NewRecordingAt(t, filepath.Join(t.TempDir(), "000"), ver)
}

// NewRecordingAt creates a recording in dir.
func NewRecordingAt(t testing.TB, dir, ver string) *Fixture {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))

	m := recording.NewMeta()
	m.Set(recording.KeyRecordingName, filepath.Base(dir))
	m.Set(recording.KeyCaptureSoftware, "Pupil Capture")
	if ver != "" {
		m.Set(recording.KeyDataFormatVersion, ver)
	}
	f := &Fixture{t: t, Dir: dir, meta: m, store: recording.NewLocalStore(dir)}
	f.flush()
	return f
}

func (f *Fixture) flush() {
	f.t.Helper()
	require.NoError(f.t, f.store.WriteMeta(f.meta))
}

// Meta sets a metadata key.
func (f *Fixture) Meta(key, value string) *Fixture {
	f.t.Helper()
	f.meta.Set(key, value)
	f.flush()
	return f
}

// Unset removes a metadata key by rewriting the file without it.
func (f *Fixture) Unset(key string) *Fixture {
	f.t.Helper()
	m := recording.NewMeta()
	for _, k := range f.meta.Keys() {
		if k != key {
			v, _ := f.meta.Get(k)
			m.Set(k, v)
		}
	}
	f.meta = m
	f.flush()
	return f
}

// Object writes a msgpack object file.
func (f *Fixture) Object(name string, v any) *Fixture {
	f.t.Helper()
	require.NoError(f.t, f.store.SaveObject(name, v))
	return f
}

// Timestamps writes a 1-D .npy file.
func (f *Fixture) Timestamps(name string, ts []float64) *Fixture {
	f.t.Helper()
	require.NoError(f.t, f.store.WriteTimestamps(name, ts))
	return f
}

// Matrix writes a 2-D .npy file from rows of equal length.
func (f *Fixture) Matrix(name string, rows [][]float64) *Fixture {
	f.t.Helper()
	require.NotEmpty(f.t, rows)
	a := &recording.Array{Shape: []int{len(rows), len(rows[0])}}
	for _, r := range rows {
		a.Data = append(a.Data, r...)
	}
	require.NoError(f.t, f.store.WriteArray(name, a))
	return f
}

// RawTimes writes a headerless big-endian float64 file.
func (f *Fixture) RawTimes(name string, ts []float64) *Fixture {
	f.t.Helper()
	buf := make([]byte, 8*len(ts))
	for i, v := range ts {
		binary.BigEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return f.File(name, buf)
}

// Topic writes a per-topic event log. The label of each frame is the
// event's topic field, or the topic name.
func (f *Fixture) Topic(name string, events []recording.Event) *Fixture {
	f.t.Helper()
	topic := recording.NewTopic(name)
	for _, e := range events {
		ts, ok := e.Timestamp()
		require.True(f.t, ok, "event without timestamp")
		require.NoError(f.t, topic.AppendEvent(ts, e))
	}
	require.NoError(f.t, f.store.WriteTopic(topic))
	return f
}

// File writes raw bytes.
func (f *Fixture) File(name string, data []byte) *Fixture {
	f.t.Helper()
	path := filepath.Join(f.Dir, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, data, 0o644))
	return f
}

// Store returns a LocalStore on the fixture directory.
func (f *Fixture) Store(opts ...recording.LocalOption) *recording.LocalStore {
	return recording.NewLocalStore(f.Dir, opts...)
}

// Open opens the fixture as a recording.
func (f *Fixture) Open(opts ...recording.LocalOption) *recording.Recording {
	f.t.Helper()
	rec, err := recording.OpenDir(f.Dir, opts...)
	require.NoError(f.t, err)
	return rec
}

// PupilData returns a legacy single-object pupil_data value with n pupil
// and n gaze samples plus two annotation notifications, shaped like the
// schema of version ver: "topic" exists from 0.8.6 and gaze "base" is
// named "base_data" from 0.8.3.
func PupilData(n int, ver string) map[string]any {
	v := version.MustParse(ver)
	withTopic := !v.Less(version.New(0, 8, 6))
	baseKey := "base"
	if !v.Less(version.New(0, 8, 3)) {
		baseKey = "base_data"
	}

	pupil := make([]any, 0, n)
	gaze := make([]any, 0, n)
	for i := range n {
		ts := 10 + float64(i)/120
		p := map[string]any{
			"timestamp":  ts,
			"confidence": 0.9,
			"id":         int64(i % 2),
			"norm_pos":   []any{0.5, 0.5},
			"diameter":   30.0 + float64(i),
			"method":     "2d c++",
		}
		g := map[string]any{
			"timestamp":  ts,
			"confidence": 0.9,
			"norm_pos":   []any{0.25 * float64(i%4), 250.0},
			baseKey:      []any{p},
		}
		if withTopic {
			p["topic"] = "pupil"
			g["topic"] = "gaze"
		}
		pupil = append(pupil, p)
		gaze = append(gaze, g)
	}

	notifications := []any{
		map[string]any{"subject": "annotation", "label": "start", "timestamp": 10.0, "duration": 0.0},
		map[string]any{"subject": "recording.started", "timestamp": 9.5},
		map[string]any{"subject": "annotation", "label": "stop", "timestamp": 11.0, "duration": 0.0},
	}
	if withTopic {
		for _, e := range notifications {
			e.(map[string]any)["topic"] = "notifications"
		}
	}

	return map[string]any{
		"pupil_positions": pupil,
		"gaze_positions":  gaze,
		"notifications":   notifications,
	}
}

// PupilEvents returns n pupil events alternating between both eyes.
func PupilEvents(n int, start float64) []recording.Event {
	out := make([]recording.Event, n)
	for i := range out {
		id := int64(i % 2)
		out[i] = recording.Event{
			"topic":       "pupil." + string(rune('0'+id)),
			"timestamp":   start + float64(i)/120,
			"confidence":  0.95,
			"id":          id,
			"diameter":    31.5,
			"diameter_3d": 3.2,
			"norm_pos":    []any{0.4, 0.6},
		}
	}
	return out
}

// Annotations returns one annotation event per label, 1s apart.
func Annotations(start float64, labels ...string) []recording.Event {
	out := make([]recording.Event, len(labels))
	for i, l := range labels {
		out[i] = recording.Event{
			"topic":     "annotation",
			"timestamp": start + float64(i),
			"label":     l,
			"duration":  0.0,
		}
	}
	return out
}
