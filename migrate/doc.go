// Package migrate brings recordings of any supported data format version to
// the newest one.
//
// A recording's plan is computed from its declared version: every step whose
// threshold lies above that version runs, in increasing threshold order,
// followed by a check that synthesizes a world timeline for recordings
// without a world video. After each completed step the recording's
// metadata is updated to the step's threshold, so an interrupted run
// resumes where it stopped.
//
//	eng := migrate.New(
//		migrate.WithLogger(logger),
//		migrate.WithTranscoder(media.NewFFmpeg(logger)),
//	)
//	report, err := eng.Run(ctx, rec)
//
// Steps never roll back. A step that fails leaves whatever it already wrote
// and the version of the previous step.
package migrate
