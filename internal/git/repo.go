// Package git provides the version-control operations a release needs.
package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// RepoInfo describes where a release runs.
type RepoInfo struct {
	// Root is the main repository root. For a linked worktree this is the
	// repository the worktree was created from.
	Root string

	// WorktreePath is the checked-out tree manifests and builds resolve
	// against. It equals Root outside a linked worktree.
	WorktreePath string

	// IsWorktree is true inside a linked worktree.
	IsWorktree bool

	// CommonDir is the shared .git directory holding refs and tags.
	CommonDir string
}

// DetectRepo locates the repository containing path. A path outside any
// repository returns ErrNotGitRepo.
func DetectRepo(ctx context.Context, path string) (*RepoInfo, error) {
	out, err := RunCommand(ctx, path, "rev-parse", "--show-toplevel", "--git-dir", "--git-common-dir")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", rerrors.ErrNotGitRepo, err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		return nil, fmt.Errorf("%w: unexpected rev-parse output %q", rerrors.ErrNotGitRepo, out)
	}

	// git-dir and common-dir may be relative to the directory git ran in.
	resolve := func(p string) string {
		p = strings.TrimSpace(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(path, p)
		}
		return filepath.Clean(p)
	}
	toplevel := filepath.Clean(strings.TrimSpace(lines[0]))
	gitDir := resolve(lines[1])
	commonDir := resolve(lines[2])

	info := &RepoInfo{
		Root:         toplevel,
		WorktreePath: toplevel,
		CommonDir:    commonDir,
		IsWorktree:   gitDir != commonDir,
	}
	if info.IsWorktree {
		info.Root = filepath.Dir(commonDir)
	}
	return info, nil
}
