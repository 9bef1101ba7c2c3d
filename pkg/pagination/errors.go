package pagination

import (
	"errors"
	"fmt"
)

// ErrInvalidPlanInput is returned for plan inputs that cannot come from
// valid service metadata.
var ErrInvalidPlanInput = errors.New("invalid page plan input")

// PageError reports the failure of a single page request.
type PageError struct {
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return fmt.Sprintf("page request at offset %d failed: %v", e.Offset, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PageError) Unwrap() error {
	return e.Err
}

// FetchAbortedError reports that the whole fetch was aborted because one
// page failed. It carries the offset of the failing page.
type FetchAbortedError struct {
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *FetchAbortedError) Error() string {
	return fmt.Sprintf("fetch aborted: page at offset %d failed: %v", e.Offset, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchAbortedError) Unwrap() error {
	return e.Err
}
