package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Git runs git in dir and returns its trimmed combined output.
// The test fails if git exits non-zero.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...) //#nosec G204 -- test code with safe inputs
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// InitRepo creates an empty repository on branch with a commit identity
// and signing disabled.
func InitRepo(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	Git(t, dir, "init", "-b", branch)
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test User")
	Git(t, dir, "config", "commit.gpgSign", "false")
	Git(t, dir, "config", "tag.gpgSign", "false")
	return dir
}

// CommitAll stages everything in repo and commits it.
func CommitAll(t *testing.T, repo, message string) {
	t.Helper()
	Git(t, repo, "add", "-A")
	Git(t, repo, "commit", "-m", message)
}

// AddOrigin creates a bare repository, registers it as origin of repo and
// pushes branch to it. It returns the bare repository path.
func AddOrigin(t *testing.T, repo, branch string) string {
	t.Helper()
	remote := filepath.Join(t.TempDir(), "origin.git")
	Git(t, repo, "init", "--bare", "-b", branch, remote)
	Git(t, repo, "remote", "add", "origin", remote)
	Git(t, repo, "push", "origin", branch)
	return remote
}
