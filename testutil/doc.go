// Package testutil provides fixtures for tests of pupilrec packages.
//
// This package is intended for use in tests only.
//
// # Random Timelines
//
//	rng := testutil.NewRNG(seed)
//	ts := rng.Timeline(100, 0, 120, 0.2)   // 120 Hz with 20% jitter
//	rng.Shuffle(len(ts), swap)
//
// # Recording Fixtures
//
//	rec := testutil.NewRecording(t, "v0.9.0").
//		Object("pupil_data", testutil.LegacyPupilData(10)).
//		Timestamps("world_timestamps.npy", testutil.Ticks(0, 30, 300))
//	dir := rec.Dir
package testutil
