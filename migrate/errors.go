package migrate

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pupilrec/version"
)

// ErrInvalidRecording is returned when a recording has no world video and
// no usable eye timestamps to synthesize a world timeline from.
var ErrInvalidRecording = errors.New("invalid recording: cannot derive world timestamps from eye timestamps")

// MissingResourceError reports a file a step expected but did not find. The
// engine logs it, skips the step without advancing the version and moves on.
type MissingResourceError struct {
	Step     StepID
	Resource string
	cause    error
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("step %s: missing %s", e.Step, e.Resource)
}

func (e *MissingResourceError) Unwrap() error { return e.cause }

// FatalVersionError is returned when a recording predates the oldest
// supported data format. No step runs and the version is left untouched.
type FatalVersionError struct {
	Version version.Version
	Oldest  version.Version
}

func (e *FatalVersionError) Error() string {
	return fmt.Sprintf("recording version %s predates oldest supported version %s", e.Version, e.Oldest)
}

// TranscodeError wraps a failure of the media layer. A step failing with it
// is retried once.
type TranscodeError struct {
	Src   string
	cause error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Src, e.cause)
}

func (e *TranscodeError) Unwrap() error { return e.cause }

// StepError is returned when a step fails and aborts the run.
type StepError struct {
	Step  StepID
	cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration step %s: %v", e.Step, e.cause)
}

func (e *StepError) Unwrap() error { return e.cause }
