// Package git provides the version-control operations a release needs.
// This file provides error sentinel re-exports from internal/errors.
package git

import (
	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// ErrGitOperation is re-exported from internal/errors for convenience.
// Use errors.Is(err, ErrGitOperation) to check for git operation failures.
var ErrGitOperation = rerrors.ErrGitOperation

// ErrNotGitRepo is re-exported from internal/errors for convenience.
// Returned when the path is not a git repository.
var ErrNotGitRepo = rerrors.ErrNotGitRepo

// ErrDetachedHead is re-exported from internal/errors for convenience.
// Returned by CurrentBranch when HEAD does not name a branch.
var ErrDetachedHead = rerrors.ErrDetachedHead
