package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/git"
)

// ExecutionContext holds the resolved repository and configuration for a command.
type ExecutionContext struct {
	// RepoRoot is the working tree the release operates on. Manifests and
	// verification commands are resolved against it.
	RepoRoot string

	// InRepo is false when the directory is not inside a git repository.
	// Only read-only commands run in that case.
	InRepo bool

	// IsWorktree indicates RepoRoot is a linked worktree.
	IsWorktree bool

	// Config is the merged configuration.
	Config *config.Config
}

// ResolveExecutionContext locates the repository from repoFlag (or the current
// directory) and loads the layered configuration for it.
//
// When requireRepo is set, a directory outside git fails with ErrNotGitRepo.
// Otherwise the directory itself is used as the project root.
func ResolveExecutionContext(ctx context.Context, repoFlag string, requireRepo bool) (*ExecutionContext, error) {
	dir := repoFlag
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	ec := &ExecutionContext{RepoRoot: abs}

	info, err := git.DetectRepo(ctx, abs)
	switch {
	case err == nil:
		ec.RepoRoot = info.WorktreePath
		ec.IsWorktree = info.IsWorktree
		ec.InRepo = true
	case requireRepo:
		return nil, fmt.Errorf("%s: %w", abs, err)
	default:
		zerolog.Ctx(ctx).Debug().Str("dir", abs).Msg("not inside a git repository; using directory as project root")
	}

	ec.Config, err = config.Load(ctx, ec.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return ec, nil
}
