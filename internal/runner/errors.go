package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrLaunchFailure means the operating system refused to spawn the
	// executable: missing file, missing execute permission, or similar.
	ErrLaunchFailure = errors.New("launch failure")

	// ErrLaunchTimeout means the child outlived Launcher.Timeout and was killed.
	ErrLaunchTimeout = errors.New("launch timeout")
)

// Error describes a launch that produced no Result.
// Kind is ErrLaunchFailure, ErrLaunchTimeout, or the caller's context error
// when the caller gave up first.
type Error struct {
	RunID      string
	Executable string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Err == e.Kind {
		return fmt.Sprintf("launching %s: %v", e.Executable, e.Kind)
	}
	return fmt.Sprintf("launching %s: %v: %v", e.Executable, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
