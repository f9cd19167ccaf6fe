// Package timeindex provides sorted-by-timestamp containers for the
// independently sampled event streams of a recording.
//
// # Containers
//
//   - [Index]: immutable, exact and windowed lookup over instants
//   - [MutableIndex]: Index plus single-element insertion for sparse edits
//   - [IntervalIndex]: lookup over start/stop pairs returning every interval
//     that overlaps a window
//
// All containers keep two (or three) parallel slices in the same permutation.
// The permutation is computed once at construction with a stable sort, so
// entries sharing a timestamp keep their input order.
//
// # Frame correlation
//
// [Correlate] buckets an arbitrary-rate stream against a reference frame
// timeline using midpoints between consecutive frames as boundaries:
//
//	frames := []float64{0, 10, 20, 30}
//	c := timeindex.Correlate(events, func(e Event) float64 { return e.TS }, frames)
//	for i, bucket := range c.Buckets { ... }
//
// Events after the last computable midpoint are not assigned to any bucket;
// [Correlation.Dropped] reports how many.
//
// # Thread Safety
//
// Containers have no internal locking. Concurrent readers are safe as long as
// no goroutine calls [MutableIndex.Insert] at the same time.
package timeindex
