package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed input, caught before any
	// storage or database call.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthorized marks a caller whose role or ownership does not
	// satisfy the operation's precondition.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidTransition marks a lifecycle transition that is not legal
	// from the record's current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// PartialUploadError reports a failed binary upload inside the upload or
// update pipeline. Some objects may already have been written; those are
// tolerated garbage and the operation as a whole has failed.
type PartialUploadError struct {
	Stage string // "apk", "icon", "screenshot"
	Err   error
}

func (e *PartialUploadError) Error() string {
	return fmt.Sprintf("upload failed at %s: %v", e.Stage, e.Err)
}

func (e *PartialUploadError) Unwrap() error {
	return e.Err
}
