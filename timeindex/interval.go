package timeindex

import (
	"slices"
	"sort"
)

// IntervalIndex indexes data by [start, stop] intervals, ordered by start.
//
// Stops are kept co-indexed with starts; nothing is enforced between a start
// and its stop.
type IntervalIndex[T any] struct {
	Index[T]
	stops []float64
}

// NewInterval builds an IntervalIndex from parallel values, starts and stops.
func NewInterval[T any](values []T, starts, stops []float64) (*IntervalIndex[T], error) {
	if len(values) != len(starts) {
		return nil, &LengthMismatchError{Field: "start timestamps", Expected: len(values), Actual: len(starts)}
	}
	if len(values) != len(stops) {
		return nil, &LengthMismatchError{Field: "stop timestamps", Expected: len(values), Actual: len(stops)}
	}
	perm := sortedPermutation(starts)
	return &IntervalIndex[T]{
		Index: Index[T]{
			data: permute(values, perm),
			ts:   permute(starts, perm),
		},
		stops: permute(stops, perm),
	}, nil
}

// Window returns every interval overlapping [start, stop).
//
// The first result is located on the stop array (first stop >= start), the
// end on the start array (first start >= stop). An interval that begins
// before start but ends inside the window is therefore included.
func (x *IntervalIndex[T]) Window(start, stop float64) []T {
	lo, hi := x.bounds(start, stop)
	return slices.Clone(x.data[lo:hi])
}

// WindowWithBounds is like Window but also returns the starts and stops of
// the matching intervals.
func (x *IntervalIndex[T]) WindowWithBounds(start, stop float64) (data []T, starts, stops []float64) {
	lo, hi := x.bounds(start, stop)
	return slices.Clone(x.data[lo:hi]), slices.Clone(x.ts[lo:hi]), slices.Clone(x.stops[lo:hi])
}

func (x *IntervalIndex[T]) bounds(start, stop float64) (int, int) {
	lo := sort.SearchFloat64s(x.stops, start)
	hi := sort.SearchFloat64s(x.ts, stop)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Stop returns the stop timestamp of the i-th interval.
func (x *IntervalIndex[T]) Stop(i int) float64 { return x.stops[i] }

// Stops returns a copy of the stop timestamps, co-indexed with Timestamps.
func (x *IntervalIndex[T]) Stops() []float64 { return slices.Clone(x.stops) }
