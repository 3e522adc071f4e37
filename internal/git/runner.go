// Package git provides the version-control operations a release needs.
// This file defines the Runner interface for git CLI operations.
package git

import "context"

// Runner defines the repository operations used by a release transaction.
// All operations run in the runner's working directory and use context for cancellation.
type Runner interface {
	// Status returns the current working tree status.
	Status(ctx context.Context) (*Status, error)

	// CurrentBranch returns the name of the currently checked out branch.
	// Returns ErrDetachedHead if HEAD does not name a branch.
	CurrentBranch(ctx context.Context) (string, error)

	// HeadRevision returns the full object name of HEAD.
	HeadRevision(ctx context.Context) (string, error)

	// Add stages the given paths.
	Add(ctx context.Context, paths []string) error

	// Commit creates a commit with the given message.
	Commit(ctx context.Context, message string) error

	// Tag creates a lightweight tag at HEAD.
	Tag(ctx context.Context, name string) error

	// DeleteTag removes a local tag.
	DeleteTag(ctx context.Context, name string) error

	// ResetHard resets the index and working tree to revision.
	ResetHard(ctx context.Context, revision string) error

	// PushAtomic pushes branch and tags to remote in a single atomic update.
	PushAtomic(ctx context.Context, remote, branch string, tags []string) error
}
