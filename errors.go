package pupilrec

import (
	"github.com/hupe1980/pupilrec/migrate"
	"github.com/hupe1980/pupilrec/recording"
	"github.com/hupe1980/pupilrec/timeindex"
	"github.com/hupe1980/pupilrec/version"
)

var (
	// ErrNotFound is returned by exact timestamp lookups without a match.
	ErrNotFound = timeindex.ErrNotFound

	// ErrInvalidRecording is returned when a recording without a world
	// video has no eye timestamps to derive a world timeline from.
	ErrInvalidRecording = migrate.ErrInvalidRecording

	// ErrNoVersion is returned when a recording's metadata lacks a version.
	ErrNoVersion = recording.ErrNoVersion
)

type (
	// VersionFormatError reports a malformed version string.
	VersionFormatError = version.FormatError

	// RecordingFormatError reports malformed metadata, frames or arrays.
	RecordingFormatError = recording.FormatError

	// LengthMismatchError reports parallel index inputs of unequal length.
	LengthMismatchError = timeindex.LengthMismatchError

	// MissingResourceError reports a step skipped for a missing file.
	MissingResourceError = migrate.MissingResourceError

	// FatalVersionError reports a recording older than the oldest
	// migratable format.
	FatalVersionError = migrate.FatalVersionError

	// TranscodeError wraps a failed audio transcode.
	TranscodeError = migrate.TranscodeError

	// StepError reports the step that aborted a run.
	StepError = migrate.StepError
)
