// Package pupilrec migrates eye-tracking recordings to the newest data
// format and indexes their time series.
//
// A recording is a directory with an info.csv metadata file, per-topic
// msgpack frame files with NumPy timestamp arrays, and world and eye
// videos. Its "Data Format Version" selects which migration steps still
// have to run.
//
// # Quick Start
//
//	rec, err := pupilrec.Open("/data/study/000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rep, err := rec.EnsureCurrentVersion(ctx)
//	fmt.Println(rep.From, "->", rep.To)
//
// Whole studies:
//
//	sum, err := pupilrec.MigrateAll(ctx, "/data/study", pupilrec.WithConcurrency(4))
//
// # Archiving and Journaling
//
// Recordings can be snapshotted before their first step and every step
// attempt can be journaled:
//
//	store, _ := s3.New(ctx, "lab-archive")
//	j, _ := journal.Open(ctx, "migrations.db")
//	rec, _ := pupilrec.Open(dir,
//	    pupilrec.WithArchiver(archive.New(store)),
//	    pupilrec.WithJournal(j),
//	)
//
// # Time Series
//
// Package timeindex provides sorted timestamp indexes, interval indexes and
// the frame correlator that assigns events to the nearest video frame.
//
// # Key Features
//
//   - Idempotent, version-gated migration steps from format v0.3 on
//   - Atomic writes for every rewritten file
//   - Audio re-encoding through ffmpeg with a single retry
//   - Compressed snapshots to local disk, S3 or MinIO
//   - SQLite migration journal and OpenTelemetry step spans
package pupilrec
