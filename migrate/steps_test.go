package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pupilrec/media"
)

func TestInterpolate(t *testing.T) {
	xs := []float64{0, 10, 20}
	ys := []float64{100, 200, 400}

	got := interpolate(xs, ys, []float64{-10, 0, 5, 10, 15, 20, 30})
	assert.InDeltaSlice(t, []float64{0, 100, 150, 200, 300, 400, 600}, got, 1e-9)

	assert.Equal(t, []float64{0, 0}, interpolate(nil, nil, []float64{1, 2}))
	assert.Equal(t, []float64{7, 7}, interpolate([]float64{3}, []float64{7}, []float64{1, 9}))
}

func TestReinterpolateAudio(t *testing.T) {
	t.Run("same rate", func(t *testing.T) {
		old := []float64{0, 1, 2, 3}
		stats := media.AudioStats{
			InFrames: 4, InFrameSize: 2048, InRate: 44100,
			OutFrames: 8, OutFrameSize: 1024, OutRate: 44100,
		}
		got := reinterpolateAudio(old, stats)
		require.Len(t, got, 8)
		assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}, got, 1e-9)
	})

	t.Run("resampled", func(t *testing.T) {
		old := []float64{0, 1}
		stats := media.AudioStats{
			InFrames: 2, InFrameSize: 1000, InRate: 1000,
			OutFrames: 3, OutFrameSize: 1000, OutRate: 2000,
		}
		assert.InDeltaSlice(t, []float64{0, 0.5, 1}, reinterpolateAudio(old, stats), 1e-9)
	})

	t.Run("more timestamps than frames", func(t *testing.T) {
		old := []float64{0, 1, 2, 3}
		stats := media.AudioStats{
			InFrames: 2, InFrameSize: 1000, InRate: 1000,
			OutFrames: 2, OutFrameSize: 1000, OutRate: 1000,
		}
		assert.InDeltaSlice(t, []float64{0, 2}, reinterpolateAudio(old, stats), 1e-9)
	})
}

func TestFixTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		datum map[string]any
		want  string
	}{
		{"notification", "notify", map[string]any{"subject": "annotation", "topic": "notifications"}, "notify.annotation"},
		{"pupil", "pupil", map[string]any{"id": int64(1), "topic": "pupil"}, "pupil.1"},
		{"pupil without topic", "pupil", map[string]any{"id": int64(0)}, "pupil.0"},
		{"surface", "surfaces", map[string]any{"name": "screen"}, "surfaces.screen"},
		{"blink", "blinks", map[string]any{"topic": "blink"}, "blinks"},
		{"fixation without topic", "fixations", map[string]any{}, "fixations"},
		{"gaze", "gaze", map[string]any{"topic": "gaze"}, "gaze"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, fixTopic(tt.topic, tt.datum))
			assert.Equal(t, tt.want, tt.datum["topic"])
		})
	}

	assert.Error(t, fixTopic("notify", map[string]any{}))
	assert.Error(t, fixTopic("pupil", map[string]any{"topic": "pupil"}))
}

func TestDecodeText(t *testing.T) {
	assert.Equal(t, "Grüße", decodeText([]byte("Grüße")))
	assert.Equal(t, "café", decodeText([]byte{'c', 'a', 'f', 0xe9}))

	v, changed := toText(map[string]any{
		"a": []byte("x"),
		"b": []any{[]byte("y"), int64(1)},
		"c": "z",
	})
	require.True(t, changed)
	assert.Equal(t, map[string]any{"a": "x", "b": []any{"y", int64(1)}, "c": "z"}, v)

	_, changed = toText(map[string]any{"c": "z"})
	assert.False(t, changed)
}

func TestArange(t *testing.T) {
	assert.InDeltaSlice(t, []float64{1, 1.5, 2, 2.5}, arange(1, 3, 0.5), 1e-12)
	assert.Empty(t, arange(3, 1, 0.5))
}

func TestEyeName(t *testing.T) {
	name, ok := eyeName("Pupil Cam2 ID1", "Pupil Cam2")
	require.True(t, ok)
	assert.Equal(t, "eye1", name)

	_, ok = eyeName("Pupil Cam1 ID2", "Pupil Cam1", "Pupil Cam2")
	assert.False(t, ok)
}
