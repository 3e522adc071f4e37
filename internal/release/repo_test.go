package release

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/domain"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/git"
	"github.com/mrz1836/ratchet/internal/manifest"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/testutil"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return testutil.Git(t, dir, args...)
}

// realRepo creates a repository with two service manifests, a lockfile, and
// a bare origin remote.
func realRepo(t *testing.T) (repo, remote string) {
	t.Helper()
	repo = testutil.InitRepo(t, "master")
	for _, name := range []string{"forwarder", "receiver"} {
		content := "[package]\r\nname = \"" + name + "\"\r\nversion = \"1.3.9\" # release\r\n\r\n[dependencies]\r\nserde = { version = \"1\" }\r\n"
		testutil.WriteFile(t, repo, filepath.Join("services", name, "Cargo.toml"), content)
	}
	testutil.WriteFile(t, repo, "Cargo.lock", "version = 3\n")
	testutil.CommitAll(t, repo, "initial")
	return repo, testutil.AddOrigin(t, repo, "master")
}

func realCoordinator(t *testing.T, repo string, verifier Verifier) *Coordinator {
	t.Helper()
	runner, err := git.NewRunner(context.Background(), repo)
	require.NoError(t, err)
	return New(Deps{
		Git:      runner,
		Store:    manifest.NewStore(repo),
		Verifier: verifier,
		WorkDir:  repo,
	}, Options{AssumeYes: true, Lockfile: "Cargo.lock"})
}

func comps(names ...string) []domain.Component {
	out := make([]domain.Component, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Component{Name: n, Manifest: filepath.Join("services", n, "Cargo.toml")})
	}
	return out
}

func TestRun_RealRepositoryReleasesAndPushes(t *testing.T) {
	repo, remote := realRepo(t)
	c := realCoordinator(t, repo, &fakeVerifier{})

	result, err := c.Run(testContext(), Request{Components: comps("forwarder", "receiver"), Policy: explicit("1.4.0")})

	require.NoError(t, err)
	assert.Equal(t, StateDone, result.FinalState)
	assert.Equal(t, "forwarder-v1.4.0\nreceiver-v1.4.0", runGit(t, remote, "tag", "--list"))
	assert.Equal(t, runGit(t, repo, "rev-parse", "HEAD"), runGit(t, remote, "rev-parse", "master"))
	assert.Equal(t, "chore(receiver): bump version to 1.4.0\nchore(forwarder): bump version to 1.4.0\ninitial",
		runGit(t, repo, "log", "--format=%s"))

	data, err := os.ReadFile(filepath.Join(repo, "services", "forwarder", "Cargo.toml"))
	require.NoError(t, err)
	assert.Equal(t, "[package]\r\nname = \"forwarder\"\r\nversion = \"1.4.0\" # release\r\n\r\n[dependencies]\r\nserde = { version = \"1\" }\r\n", string(data))
}

func TestRun_RealRepositoryRollbackRestoresStart(t *testing.T) {
	repo, remote := realRepo(t)
	start := runGit(t, repo, "rev-parse", "HEAD")
	original, err := os.ReadFile(filepath.Join(repo, "services", "receiver", "Cargo.toml"))
	require.NoError(t, err)

	c := realCoordinator(t, repo, &fakeVerifier{failOn: map[string]bool{"receiver": true}})
	result, err := c.Run(testContext(), Request{Components: comps("forwarder", "receiver"), Policy: explicit("1.4.0")})

	require.ErrorIs(t, err, rerrors.ErrVerification)
	assert.Equal(t, StateAborted, result.FinalState)
	assert.Equal(t, start, runGit(t, repo, "rev-parse", "HEAD"))
	assert.Empty(t, runGit(t, repo, "tag", "--list"))
	assert.Empty(t, runGit(t, repo, "status", "--porcelain"))
	assert.Empty(t, runGit(t, remote, "tag", "--list"), "nothing pushed")

	restored, err := os.ReadFile(filepath.Join(repo, "services", "receiver", "Cargo.toml"))
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

// cancelingVerifier cancels the run's context while verifying one component.
type cancelingVerifier struct {
	cancelOn string
	cancel   context.CancelFunc
}

func (v *cancelingVerifier) Execute(ctx context.Context, _ string, p pipeline.Pipeline) (*pipeline.Outcome, error) {
	if p.Component == v.cancelOn {
		v.cancel()
		return &pipeline.Outcome{Component: p.Component}, ctx.Err()
	}
	return &pipeline.Outcome{Component: p.Component, Success: true}, nil
}

func TestRun_RealRepositoryRollbackAfterCancel(t *testing.T) {
	repo, remote := realRepo(t)
	start := runGit(t, repo, "rev-parse", "HEAD")

	ctx, cancel := context.WithCancel(testContext())
	defer cancel()
	c := realCoordinator(t, repo, &cancelingVerifier{cancelOn: "receiver", cancel: cancel})

	result, err := c.Run(ctx, Request{Components: comps("forwarder", "receiver"), Policy: explicit("1.4.0")})

	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, rerrors.ErrRollbackIncomplete)
	assert.Equal(t, StateAborted, result.FinalState)
	require.Len(t, result.Rollback, 2)
	for _, action := range result.Rollback {
		assert.True(t, action.OK(), action.Command)
	}
	assert.Equal(t, start, runGit(t, repo, "rev-parse", "HEAD"))
	assert.Empty(t, runGit(t, repo, "tag", "--list"))
	assert.Empty(t, runGit(t, repo, "status", "--porcelain"))
	assert.Empty(t, runGit(t, remote, "tag", "--list"))
}

func TestRun_RealRepositoryBehindUpstreamStopsBeforeMutation(t *testing.T) {
	repo, remote := realRepo(t)

	other := filepath.Join(t.TempDir(), "other")
	runGit(t, repo, "clone", remote, other)
	runGit(t, other, "config", "user.email", "other@example.com")
	runGit(t, other, "config", "user.name", "Other User")
	runGit(t, other, "config", "commit.gpgSign", "false")
	testutil.WriteFile(t, other, "README.md", "hello\n")
	testutil.CommitAll(t, other, "docs: readme")
	runGit(t, other, "push", "origin", "master")

	runGit(t, repo, "branch", "--set-upstream-to=origin/master", "master")
	runGit(t, repo, "fetch", "origin")
	start := runGit(t, repo, "rev-parse", "HEAD")

	c := realCoordinator(t, repo, &fakeVerifier{})
	result, err := c.Run(testContext(), Request{Components: comps("forwarder"), Policy: explicit("1.4.0")})

	require.ErrorIs(t, err, rerrors.ErrPrecondition)
	assert.Contains(t, err.Error(), "master is 1 commit(s) behind its upstream")
	assert.Equal(t, StateAborted, result.FinalState)
	assert.Equal(t, start, runGit(t, repo, "rev-parse", "HEAD"))
	assert.Empty(t, runGit(t, repo, "tag", "--list"))
}
