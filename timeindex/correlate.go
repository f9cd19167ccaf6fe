package timeindex

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Correlation is the result of binding an event stream to frame timestamps.
type Correlation[T any] struct {
	// Buckets holds one entry per frame timestamp, each ascending by time.
	Buckets [][]T
	// Dropped counts events placed in no bucket because they fall after
	// the last computable midpoint.
	Dropped int
}

// Occupied returns the set of frame indices whose bucket is non-empty.
func (c *Correlation[T]) Occupied() *roaring.Bitmap {
	bm := roaring.New()
	for i, b := range c.Buckets {
		if len(b) > 0 {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Correlate assigns each event to the frame whose midpoint window contains
// its timestamp.
//
// Events are stably sorted by ts (the input slice is left untouched). An
// event belongs to frame i while its timestamp is <= (frames[i]+frames[i+1])/2.
// The pass stops as soon as a next frame is needed past the end of frames,
// so events later than the last midpoint are not placed in any bucket.
func Correlate[T any](events []T, ts func(T) float64, frames []float64) *Correlation[T] {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return cmp.Compare(ts(a), ts(b))
	})

	c := &Correlation[T]{Buckets: make([][]T, len(frames))}

	frame, ev := 0, 0
	for ev < len(sorted) && frame+1 < len(frames) {
		mid := (frames[frame] + frames[frame+1]) / 2.0
		if ts(sorted[ev]) <= mid {
			c.Buckets[frame] = append(c.Buckets[frame], sorted[ev])
			ev++
		} else {
			frame++
		}
	}
	c.Dropped = len(sorted) - ev
	return c
}

// FindClosest returns, for each value in source, the index of the closest
// value in the sorted target. Ties resolve to the right neighbour.
// A target with fewer than two entries maps everything to index 0.
func FindClosest(target, source []float64) []int {
	if len(target) == 0 {
		return nil
	}
	out := make([]int, len(source))
	if len(target) == 1 {
		return out
	}
	for i, s := range source {
		idx := sort.SearchFloat64s(target, s)
		idx = max(1, min(idx, len(target)-1))
		left, right := target[idx-1], target[idx]
		if s-left < right-s {
			idx--
		}
		out[i] = idx
	}
	return out
}

// EnclosingWindow returns the midpoints between timestamps[idx] and its
// neighbours. The first and last entries extend to -Inf and +Inf.
func EnclosingWindow(timestamps []float64, idx int) (lo, hi float64) {
	before := math.Inf(-1)
	if idx > 0 {
		before = timestamps[idx-1]
	}
	after := math.Inf(1)
	if idx < len(timestamps)-1 {
		after = timestamps[idx+1]
	}
	now := timestamps[idx]
	return (now + before) / 2.0, (after + now) / 2.0
}

// ExactWindow returns the timestamps at start and end, clamping end to the
// last entry.
func ExactWindow(timestamps []float64, start, end int) (lo, hi float64) {
	end = min(end, len(timestamps)-1)
	return timestamps[start], timestamps[end]
}
