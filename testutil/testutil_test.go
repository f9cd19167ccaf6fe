package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline(t *testing.T) {
	rng := NewRNG(4711)

	ts := rng.Timeline(500, 100, 120, 0.5)

	require.Len(t, ts, 500)
	assert.Equal(t, 100.0, ts[0])
	assert.True(t, sort.Float64sAreSorted(ts))
	assert.InDelta(t, 100+499.0/120, ts[499], 1.0)
}

func TestUniformRounding(t *testing.T) {
	rng := NewRNG(1)

	ts := rng.Uniform(200, 0, 10, 0.5)
	for _, v := range ts {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 10.0)
		assert.Zero(t, v*2-float64(int(v*2)))
	}
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2}, Ticks(1, 2, 3))
}

func TestFixture(t *testing.T) {
	f := NewRecording(t, "v0.9.0").
		Object("pupil_data", PupilData(4, "0.9.0")).
		Timestamps("world_timestamps.npy", Ticks(0, 30, 10)).
		Topic("pupil", PupilEvents(6, 5))

	rec := f.Open()
	v, err := rec.Version()
	require.NoError(t, err)
	assert.Equal(t, "v0.9", v.String())

	obj, err := rec.Store().LoadObject("pupil_data")
	require.NoError(t, err)
	data := obj.(map[string]any)
	assert.Len(t, data["pupil_positions"], 4)

	topic, err := rec.Store().ReadTopic("pupil")
	require.NoError(t, err)
	assert.Equal(t, 6, topic.Len())
	assert.Equal(t, "pupil.1", topic.Labels[1])
}

func TestPupilDataSchema(t *testing.T) {
	old := PupilData(1, "0.8.2")
	g := old["gaze_positions"].([]any)[0].(map[string]any)
	assert.Contains(t, g, "base")
	assert.NotContains(t, g, "topic")

	recent := PupilData(1, "0.8.6")
	g = recent["gaze_positions"].([]any)[0].(map[string]any)
	assert.Contains(t, g, "base_data")
	assert.Equal(t, "gaze", g["topic"])
}
