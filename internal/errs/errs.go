package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error checking via errors.Is().
// The installer distinguishes four failure classes plus the non-error
// "user said no" outcome.
var (
	// ErrPrecondition indicates a check that failed before any mutation:
	// wrong platform, missing tool, conflicting flags, denied privileges.
	ErrPrecondition = errors.New("precondition failure")

	// ErrOperation indicates a filesystem or version-control command that
	// returned non-zero. The remaining plan is aborted.
	ErrOperation = errors.New("operation failure")

	// ErrPostcondition indicates an operation that reported success but left
	// the filesystem in the wrong state, e.g. a removed path still present.
	// This is a consistency error, distinct from an ordinary failure.
	ErrPostcondition = errors.New("postcondition violation")

	// ErrMalformedVersion indicates a version string whose major or minor
	// segment is not numeric. Callers must treat this as fatal, not guess.
	ErrMalformedVersion = errors.New("malformed version")

	// ErrUserDeclined is the normal early exit when the user answers no at a
	// confirmation prompt. Not a failure.
	ErrUserDeclined = errors.New("user declined")
)

// PreconditionError represents a fatal check failure reported before any
// mutation occurs. Remedy, when set, is the exact command or action the user
// should take. Wraps ErrPrecondition for errors.Is() compatibility.
type PreconditionError struct {
	Msg    string
	Remedy string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPrecondition.Error(), e.Msg)
}

func (e *PreconditionError) Unwrap() error { return ErrPrecondition }

// OperationError represents a single external command that failed mid-plan.
// It carries the path being operated on and the exact command line so the
// user can retry manually. Wraps ErrOperation.
type OperationError struct {
	Path string // Filesystem path the operation targeted, if any
	Cmd  string // The full command line that failed
	Msg  string // Captured output or failure detail
}

func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s on %s: %s", ErrOperation.Error(), e.Cmd, e.Path, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrOperation.Error(), e.Cmd, e.Msg)
}

func (e *OperationError) Unwrap() error { return ErrOperation }

// Remediation returns the manual recovery command for this failure.
func (e *OperationError) Remediation() string {
	return fmt.Sprintf("run manually: %s", e.Cmd)
}

// PostconditionError represents an operation whose expected end state was not
// observed despite a successful exit code. Wraps ErrPostcondition.
type PostconditionError struct {
	Path string
	Msg  string
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPostcondition.Error(), e.Path, e.Msg)
}

func (e *PostconditionError) Unwrap() error { return ErrPostcondition }

// VersionError represents an unparseable version string.
// Wraps ErrMalformedVersion.
type VersionError struct {
	Input string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMalformedVersion.Error(), e.Input)
}

func (e *VersionError) Unwrap() error { return ErrMalformedVersion }
