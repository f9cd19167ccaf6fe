package timeindex

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Index stores data with associated timestamps, both sorted by timestamp.
type Index[T any] struct {
	data []T
	ts   []float64
}

// New builds an Index from parallel values and timestamps.
// The inputs are not modified. Entries with equal timestamps keep their
// input order.
func New[T any](values []T, timestamps []float64) (*Index[T], error) {
	if len(values) != len(timestamps) {
		return nil, &LengthMismatchError{Field: "timestamps", Expected: len(values), Actual: len(timestamps)}
	}
	perm := sortedPermutation(timestamps)
	return &Index[T]{
		data: permute(values, perm),
		ts:   permute(timestamps, perm),
	}, nil
}

// sortedPermutation returns the indices of ts in stable ascending order.
func sortedPermutation(ts []float64) []int {
	perm := make([]int, len(ts))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return cmp.Compare(ts[a], ts[b])
	})
	return perm
}

func permute[S any](in []S, perm []int) []S {
	out := make([]S, len(perm))
	for i, p := range perm {
		out[i] = in[p]
	}
	return out
}

// ByTimestamp returns the datum stored at exactly ts.
// If several entries share ts, the first in index order is returned.
func (x *Index[T]) ByTimestamp(ts float64) (T, error) {
	i := sort.SearchFloat64s(x.ts, ts)
	if i < len(x.ts) && x.ts[i] == ts {
		return x.data[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %v", ErrNotFound, ts)
}

// Window returns the data with timestamps in [start, stop), in ascending
// timestamp order. The result is a copy.
func (x *Index[T]) Window(start, stop float64) []T {
	lo, hi := x.bounds(start, stop)
	return slices.Clone(x.data[lo:hi])
}

// WindowWithTimestamps is like Window but also returns the matching timestamps.
func (x *Index[T]) WindowWithTimestamps(start, stop float64) ([]T, []float64) {
	lo, hi := x.bounds(start, stop)
	return slices.Clone(x.data[lo:hi]), slices.Clone(x.ts[lo:hi])
}

func (x *Index[T]) bounds(start, stop float64) (int, int) {
	lo := sort.SearchFloat64s(x.ts, start)
	hi := sort.SearchFloat64s(x.ts, stop)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Len returns the number of entries.
func (x *Index[T]) Len() int { return len(x.data) }

// Empty reports whether the index holds no entries.
func (x *Index[T]) Empty() bool { return len(x.data) == 0 }

// At returns the i-th datum in timestamp order.
func (x *Index[T]) At(i int) T { return x.data[i] }

// Timestamp returns the i-th timestamp.
func (x *Index[T]) Timestamp(i int) float64 { return x.ts[i] }

// Timestamps returns a copy of the sorted timestamps.
func (x *Index[T]) Timestamps() []float64 { return slices.Clone(x.ts) }

// Data returns a copy of the data in timestamp order.
func (x *Index[T]) Data() []T { return slices.Clone(x.data) }

// All iterates over (timestamp, datum) pairs in ascending order.
func (x *Index[T]) All() iter.Seq2[float64, T] {
	return func(yield func(float64, T) bool) {
		for i := range x.data {
			if !yield(x.ts[i], x.data[i]) {
				return
			}
		}
	}
}

// MutableIndex is an Index that supports single-element insertion.
// Insert is O(n); it is meant for interactive edits, not bulk loading.
type MutableIndex[T any] struct {
	Index[T]
}

// NewMutable builds a MutableIndex from parallel values and timestamps.
func NewMutable[T any](values []T, timestamps []float64) (*MutableIndex[T], error) {
	x, err := New(values, timestamps)
	if err != nil {
		return nil, err
	}
	return &MutableIndex[T]{Index: *x}, nil
}

// Insert adds v at ts. It is placed after any entries already carrying ts.
func (m *MutableIndex[T]) Insert(ts float64, v T) {
	i := sort.Search(len(m.ts), func(j int) bool { return m.ts[j] > ts })
	m.ts = slices.Insert(m.ts, i, ts)
	m.data = slices.Insert(m.data, i, v)
}
