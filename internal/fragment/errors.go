package fragment

import (
	"errors"
	"fmt"
)

// FragmentError kinds (§7).
var (
	ErrTooMany   = errors.New("fragment: too many fragments")
	ErrCorrupt   = errors.New("fragment: checksum mismatch")
	ErrTruncated = errors.New("fragment: buffer too short")
)

// MissingError reports a missing fragment index during reassembly.
type MissingError struct{ Index int }

func (e *MissingError) Error() string { return fmt.Sprintf("fragment: missing index %d", e.Index) }

// DuplicateError reports a duplicate fragment index during reassembly.
type DuplicateError struct{ Index int }

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("fragment: duplicate index %d", e.Index)
}
