package timeindex

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ident(v float64) float64 { return v }

func TestCorrelate(t *testing.T) {
	t.Run("TrailingDrop", func(t *testing.T) {
		frames := []float64{0, 10, 20, 30}
		events := []float64{29, 1, 14, 6, 35, 9}

		c := Correlate(events, ident, frames)
		require.Len(t, c.Buckets, 4)
		assert.Equal(t, []float64{1}, c.Buckets[0])
		assert.Equal(t, []float64{6, 9, 14}, c.Buckets[1])
		assert.Empty(t, c.Buckets[2])
		assert.Empty(t, c.Buckets[3])
		assert.Equal(t, 2, c.Dropped)

		occ := c.Occupied()
		assert.Equal(t, uint64(2), occ.GetCardinality())
		assert.True(t, occ.Contains(0))
		assert.True(t, occ.Contains(1))

		// input untouched
		assert.Equal(t, []float64{29, 1, 14, 6, 35, 9}, events)
	})

	t.Run("MidpointBelongsToEarlierFrame", func(t *testing.T) {
		c := Correlate([]float64{5, 5.0001}, ident, []float64{0, 10, 20})
		assert.Equal(t, []float64{5}, c.Buckets[0])
		assert.Equal(t, []float64{5.0001}, c.Buckets[1])
	})

	t.Run("SingleFrame", func(t *testing.T) {
		c := Correlate([]float64{1, 2}, ident, []float64{0})
		require.Len(t, c.Buckets, 1)
		assert.Empty(t, c.Buckets[0])
		assert.Equal(t, 2, c.Dropped)
	})

	t.Run("NoFrames", func(t *testing.T) {
		c := Correlate([]float64{1}, ident, nil)
		assert.Empty(t, c.Buckets)
		assert.Equal(t, 1, c.Dropped)
	})

	t.Run("StableForEqualTimestamps", func(t *testing.T) {
		type ev struct {
			ts   float64
			name string
		}
		events := []ev{{1, "a"}, {0, "z"}, {1, "b"}, {1, "c"}}
		c := Correlate(events, func(e ev) float64 { return e.ts }, []float64{0, 10})
		assert.Equal(t, []ev{{0, "z"}, {1, "a"}, {1, "b"}, {1, "c"}}, c.Buckets[0])
	})
}

func TestCorrelate_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	frames := make([]float64, 30)
	for i := range frames {
		frames[i] = float64(i) * 33.3
	}

	for round := 0; round < 20; round++ {
		events := make([]float64, rng.Intn(200))
		for i := range events {
			events[i] = rng.Float64() * 1100
		}
		c := Correlate(events, ident, frames)
		require.Len(t, c.Buckets, len(frames))

		placed := 0
		for _, b := range c.Buckets {
			for i := 1; i < len(b); i++ {
				assert.LessOrEqual(t, b[i-1], b[i])
			}
			placed += len(b)
		}
		assert.Equal(t, len(events), placed+c.Dropped)
	}
}

func TestFindClosest(t *testing.T) {
	target := []float64{0, 10, 20, 30}
	got := FindClosest(target, []float64{-5, 4, 6, 15, 26, 100})
	assert.Equal(t, []int{0, 0, 1, 2, 3, 3}, got)

	assert.Nil(t, FindClosest(nil, []float64{1}))
	assert.Equal(t, []int{0, 0}, FindClosest([]float64{3}, []float64{1, 9}))
}

func TestWindows(t *testing.T) {
	ts := []float64{0, 10, 20}

	lo, hi := EnclosingWindow(ts, 0)
	assert.True(t, math.IsInf(lo, -1))
	assert.Equal(t, 5.0, hi)

	lo, hi = EnclosingWindow(ts, 1)
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 15.0, hi)

	lo, hi = EnclosingWindow(ts, 2)
	assert.Equal(t, 15.0, lo)
	assert.True(t, math.IsInf(hi, 1))

	lo, hi = ExactWindow(ts, 1, 10)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 20.0, hi)
}
