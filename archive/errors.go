package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSnapshot is returned when a recording has no archived snapshot.
	ErrNoSnapshot = errors.New("archive: no snapshot")

	// ErrUnsafePath is returned when an archive entry would escape the
	// restore directory.
	ErrUnsafePath = errors.New("archive: unsafe entry path")
)

// IntegrityError reports an archive whose content disagrees with its manifest.
type IntegrityError struct {
	Name   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("archive: %s: %s", e.Name, e.Reason)
}

// ChecksumError reports a CRC32C mismatch for one archived file.
type ChecksumError struct {
	Name      string
	Want, Got uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("archive: %s: crc32c mismatch: want %08x, got %08x", e.Name, e.Want, e.Got)
}
