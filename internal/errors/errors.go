// Package errors provides centralized error handling for ratchet.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for the release failure taxonomy.
// A release run produces at most one of these as its terminal cause.
var (
	// ErrPrecondition indicates the repository was not in a releasable state
	// (dirty working tree or wrong branch). No mutation was attempted.
	ErrPrecondition = errors.New("release precondition failed")

	// ErrManifest indicates a component manifest is missing its package
	// section, its version field, or holds an unparseable version.
	ErrManifest = errors.New("manifest error")

	// ErrVerification indicates a verification step (UI check, container
	// build, release build) exited non-zero.
	ErrVerification = errors.New("verification failed")

	// ErrTransaction indicates a git operation failed while the release
	// transaction was executing.
	ErrTransaction = errors.New("release transaction failed")

	// ErrPush indicates the final atomic push failed. Remote state is unknown
	// and local history is left as-is.
	ErrPush = errors.New("atomic push failed")

	// ErrRollbackIncomplete indicates at least one rollback action failed.
	ErrRollbackIncomplete = errors.New("rollback incomplete")

	// ErrInvalidTransition indicates the coordinator attempted a state change
	// its transition table does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Sentinel errors for the git, config, and CLI layers.
var (
	// ErrGitOperation indicates that a git command failed.
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New("detached HEAD")

	// ErrCommandFailed indicates that an external command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandNotConfigured indicates that a mock command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrUnknownComponent indicates a requested component is not configured.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrInvalidVersion indicates a version string is not in X.Y.Z form.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflictingFlags indicates that mutually exclusive flags were specified.
	ErrConflictingFlags = errors.New("conflicting flags specified")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrOperationCanceled indicates the operator declined or canceled a prompt.
	ErrOperationCanceled = errors.New("operation canceled")

	// ErrInteractiveRequired indicates that a prompt is required but no terminal is attached.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrMissingTools indicates required external tools are missing or outdated.
	ErrMissingTools = errors.New("required tools missing")

	// ErrJSONErrorOutput indicates the error has already been written as JSON.
	ErrJSONErrorOutput = errors.New("error already output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
