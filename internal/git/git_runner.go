// Package git provides the version-control operations a release needs.
// This file implements the CLIRunner which wraps git CLI commands.
package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/ratchet/internal/constants"
	"github.com/mrz1836/ratchet/internal/ctxutil"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// CLIRunner implements Runner using the git CLI.
type CLIRunner struct {
	workDir string // Working directory for git commands
	binary  string // git executable
}

// Option configures a CLIRunner.
type Option func(*CLIRunner)

// WithBinary sets the git executable. Empty keeps the default.
func WithBinary(binary string) Option {
	return func(r *CLIRunner) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// NewRunner creates a new CLIRunner for the given working directory.
// Returns an error if the directory is not a git repository.
func NewRunner(ctx context.Context, workDir string, opts ...Option) (*CLIRunner, error) {
	if workDir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", rerrors.ErrEmptyValue)
	}

	r := &CLIRunner{workDir: workDir, binary: constants.DefaultGit}
	for _, opt := range opts {
		opt(r)
	}

	// Verify this is a git repository
	_, err := r.runGitCommand(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rerrors.ErrNotGitRepo, err)
	}

	return r, nil
}

// WorkDir returns the directory the runner operates in.
func (r *CLIRunner) WorkDir() string {
	return r.workDir
}

// Status returns the current working tree status.
func (r *CLIRunner) Status(ctx context.Context) (*Status, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	output, err := r.runGitCommand(ctx, "status", "--porcelain", "--branch")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return parseGitStatus(output), nil
}

// CurrentBranch returns the name of the currently checked out branch.
func (r *CLIRunner) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := r.runGitCommand(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	// Handle detached HEAD state
	if output == "HEAD" {
		return "", fmt.Errorf("repository is in detached HEAD state: %w", rerrors.ErrDetachedHead)
	}

	return output, nil
}

// HeadRevision returns the full object name of HEAD.
func (r *CLIRunner) HeadRevision(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := r.runGitCommand(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	return output, nil
}

// Add stages the given paths.
func (r *CLIRunner) Add(ctx context.Context, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if len(paths) == 0 {
		return fmt.Errorf("no paths to stage: %w", rerrors.ErrEmptyValue)
	}

	args := append([]string{"add", "--"}, paths...)
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}

	return nil
}

// Commit creates a commit with the given message.
func (r *CLIRunner) Commit(ctx context.Context, message string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if message == "" {
		return fmt.Errorf("commit message cannot be empty: %w", rerrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "commit", "-m", message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// Tag creates a lightweight tag at HEAD.
func (r *CLIRunner) Tag(ctx context.Context, name string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if name == "" {
		return fmt.Errorf("tag name cannot be empty: %w", rerrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "tag", name); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}

	return nil
}

// DeleteTag removes a local tag.
func (r *CLIRunner) DeleteTag(ctx context.Context, name string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "tag", "-d", name); err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", name, err)
	}

	return nil
}

// ResetHard resets the index and working tree to revision.
func (r *CLIRunner) ResetHard(ctx context.Context, revision string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if revision == "" {
		return fmt.Errorf("reset revision cannot be empty: %w", rerrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "reset", "--hard", revision); err != nil {
		return fmt.Errorf("failed to reset to %s: %w", revision, err)
	}

	return nil
}

// PushAtomic pushes branch and tags to remote in a single atomic update.
// Either every ref is updated on the remote or none is.
func (r *CLIRunner) PushAtomic(ctx context.Context, remote, branch string, tags []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	args := PushArgs(remote, branch, tags)
	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}

	return nil
}

// PushArgs returns the git arguments of an atomic release push.
func PushArgs(remote, branch string, tags []string) []string {
	args := make([]string, 0, 4+len(tags))
	args = append(args, "push", "--atomic", remote, branch)
	return append(args, tags...)
}

// runGitCommand executes a git command and returns its output.
func (r *CLIRunner) runGitCommand(ctx context.Context, args ...string) (string, error) {
	return runCommand(ctx, r.binary, r.workDir, args...)
}

// Ensure CLIRunner implements Runner.
var _ Runner = (*CLIRunner)(nil)

// parseGitStatus parses git status --porcelain --branch output.
func parseGitStatus(output string) *Status {
	status := &Status{
		Staged:    []FileChange{},
		Unstaged:  []FileChange{},
		Untracked: []string{},
	}

	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}

		// Parse branch line: ## branch...origin/branch [ahead N, behind M]
		if strings.HasPrefix(line, "## ") {
			parseBranchLine(line, status)
			continue
		}

		// Parse file status lines
		// XY PATH or XY ORIG -> PATH (for renames)
		indexStatus := line[0]
		workTreeStatus := line[1]
		path := strings.TrimSpace(line[3:])

		// Handle renames: XY ORIG -> DEST
		var oldPath string
		if strings.Contains(path, " -> ") {
			parts := strings.SplitN(path, " -> ", 2)
			oldPath = parts[0]
			path = parts[1]
		}

		// Untracked files
		if indexStatus == '?' && workTreeStatus == '?' {
			status.Untracked = append(status.Untracked, path)
			continue
		}

		// Staged changes (index status)
		if indexStatus != ' ' && indexStatus != '?' {
			status.Staged = append(status.Staged, FileChange{
				Path:    path,
				Status:  ChangeType(string(indexStatus)),
				OldPath: oldPath,
			})
		}

		// Unstaged changes (work tree status)
		if workTreeStatus != ' ' && workTreeStatus != '?' {
			status.Unstaged = append(status.Unstaged, FileChange{
				Path:    path,
				Status:  ChangeType(string(workTreeStatus)),
				OldPath: oldPath,
			})
		}
	}

	return status
}

// parseBranchLine reads the "## " header of git status --porcelain --branch:
//
//	## master...origin/master [ahead 1, behind 2]
//
// The bracket is absent without an upstream or when the branch is in sync.
func parseBranchLine(line string, status *Status) {
	local, tracking, _ := strings.Cut(strings.TrimPrefix(line, "## "), "...")
	status.Branch = local

	_, counts, ok := strings.Cut(tracking, " [")
	if !ok {
		return
	}
	for _, field := range strings.Split(strings.TrimSuffix(counts, "]"), ",") {
		word, num, _ := strings.Cut(strings.TrimSpace(field), " ")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		switch word {
		case "ahead":
			status.Ahead = n
		case "behind":
			status.Behind = n
		}
	}
}
