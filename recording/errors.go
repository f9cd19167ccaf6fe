package recording

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLegacyDecoder is returned by LoadLegacyObject when the store was
	// not configured with a decoder for pre-msgpack object files.
	ErrNoLegacyDecoder = errors.New("no legacy object decoder configured")

	// ErrNoVersion is returned when the metadata carries no version key.
	ErrNoVersion = errors.New("recording metadata has no version")
)

// FormatError reports malformed recording content (metadata rows, frames,
// arrays).
type FormatError struct {
	Path   string
	Reason string
	cause  error
}

func (e *FormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed %s: %s: %v", e.Path, e.Reason, e.cause)
	}
	return fmt.Sprintf("malformed %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.cause }
