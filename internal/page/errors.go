package page

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound is returned when a required input, anchor or style
	// target is absent from the document.
	ErrElementNotFound = errors.New("element not found")

	// ErrStyleMutationFailed is returned when the host rejects a style write.
	ErrStyleMutationFailed = errors.New("style mutation failed")

	// ErrNavigationFailed is returned when the host rejects a reload.
	ErrNavigationFailed = errors.New("navigation failed")

	// ErrUnloaded is returned by a task that tore the page down. It ends the
	// current page lifetime without being treated as a failure.
	ErrUnloaded = errors.New("page unloaded")
)

// NotFound returns an error wrapping ErrElementNotFound for selector.
func NotFound(selector string) error {
	return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
}

// FatalError is raised from inside a running timer task. It terminates the
// page lifetime and, in the monitor, the whole process. There is no retry:
// a host that rejected a style write or a reload is not expected to recover.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal wraps err as a FatalError for op.
func Fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}
