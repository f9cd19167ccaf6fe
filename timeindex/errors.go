package timeindex

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by exact lookups when no entry carries the
// requested timestamp.
var ErrNotFound = errors.New("timestamp not found")

// LengthMismatchError is returned when parallel input slices differ in length.
type LengthMismatchError struct {
	Field    string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: %d values but %d %s", e.Expected, e.Actual, e.Field)
}
