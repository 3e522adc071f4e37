// Package testutil provides shared helpers for ratchet tests.
//
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for simulating tool and terminal failures in tests.
var (
	// ErrMockExitStatus stands in for a failed child process.
	ErrMockExitStatus = errors.New("exit status 1")

	// ErrMockToolNotFound stands in for a binary missing from PATH.
	ErrMockToolNotFound = errors.New(`exec: executable file not found in $PATH`)

	// ErrMockTTY stands in for a terminal that went away mid-prompt.
	ErrMockTTY = errors.New("tty gone")

	// ErrMockLocked stands in for a git index lock left by another process.
	ErrMockLocked = errors.New("index.lock exists")
)
