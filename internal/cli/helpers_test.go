package cli

// This file contains test utilities and fakes for testing CLI commands.

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/constants"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
	"github.com/mrz1836/ratchet/internal/release"
	"github.com/mrz1836/ratchet/internal/testutil"
)

// fakeVerifier records pipelines and fails for selected components.
type fakeVerifier struct {
	ran    []pipeline.Pipeline
	failOn map[string]bool
}

func (v *fakeVerifier) Execute(_ context.Context, _ string, p pipeline.Pipeline) (*pipeline.Outcome, error) {
	v.ran = append(v.ran, p)
	if v.failOn[p.Component] {
		return &pipeline.Outcome{
				Component:   p.Component,
				FailedStep:  p.Steps[len(p.Steps)-1].String(),
				Diagnostics: "error: could not compile",
			},
			fmt.Errorf("%w: cargo build (exit code 101)", rerrors.ErrVerification)
	}
	return &pipeline.Outcome{Component: p.Component, Success: true}, nil
}

// fakeSignals is an interruptSource that never sees a signal unless told to.
type fakeSignals struct {
	ctx         context.Context //nolint:containedctx // test fake
	interrupted bool
	stopped     bool
}

func (s *fakeSignals) Context() context.Context { return s.ctx }
func (s *fakeSignals) IsInterrupted() bool      { return s.interrupted }
func (s *fakeSignals) OnInterrupt(func())       {}
func (s *fakeSignals) Stop()                    { s.stopped = true }

// fakeDetector returns a fixed detection result.
type fakeDetector struct {
	result *config.ToolDetectionResult
}

func (d fakeDetector) Detect(context.Context) (*config.ToolDetectionResult, error) {
	return d.result, nil
}

// testHarness wires commandDeps to fakes and captures command output.
type testHarness struct {
	deps      *commandDeps
	verifier  *fakeVerifier
	signals   *fakeSignals
	confirmed []*planner.Plan
	approve   bool
	tools     *config.ToolDetectionResult
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	// Keep global config and logs out of the developer's home directory.
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(constants.HomeEnvVar, filepath.Join(home, ".ratchet"))

	h := &testHarness{
		verifier: &fakeVerifier{failOn: map[string]bool{}},
		signals:  &fakeSignals{ctx: context.Background()},
		approve:  true,
		tools:    &config.ToolDetectionResult{},
	}
	base := productionDeps()
	h.deps = &commandDeps{
		initLogger: func(verbose, quiet bool) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
		newGit: base.newGit,
		newVerifier: func(config.VerificationConfig, io.Writer) release.Verifier {
			return h.verifier
		},
		newConfirmer: func() release.Confirmer {
			return release.ConfirmFunc(func(_ context.Context, plan *planner.Plan) (bool, error) {
				h.confirmed = append(h.confirmed, plan)
				return h.approve, nil
			})
		},
		newDetector: func(config.ToolsConfig) config.ToolDetector {
			return fakeDetector{result: h.tools}
		},
		newSignals: func(ctx context.Context) interruptSource {
			h.signals.ctx = ctx
			return h.signals
		},
	}
	return h
}

// run executes the root command with args and returns stdout and stderr.
func (h *testHarness) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	flags := &GlobalFlags{}
	cmd := newRootCmdWithDeps(flags, BuildInfo{Version: "test"}, h.deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// gitIn runs git in dir and returns trimmed output.
func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	return testutil.Git(t, dir, args...)
}

// writeFile writes content to root/rel, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	testutil.WriteFile(t, root, rel, content)
}

// manifestContent renders a minimal Cargo manifest.
func manifestContent(name, version string) string {
	return fmt.Sprintf("[package]\nname = %q\nversion = %q\nedition = \"2021\"\n\n[dependencies]\nserde = \"1\"\n", name, version)
}

// releaseRepo creates a repository on master with server and streamer
// manifests, a lockfile, and a bare origin it has been pushed to.
func releaseRepo(t *testing.T) (repo, remote string) {
	t.Helper()
	repo = testutil.InitRepo(t, "master")
	testutil.WriteFile(t, repo, "services/server/Cargo.toml", manifestContent("server", "1.0.0"))
	testutil.WriteFile(t, repo, "services/streamer/Cargo.toml", manifestContent("streamer", "0.3.2"))
	testutil.WriteFile(t, repo, "Cargo.lock", "# This file is automatically @generated by Cargo.\nversion = 3\n")
	testutil.CommitAll(t, repo, "initial commit")
	return repo, testutil.AddOrigin(t, repo, "master")
}

// readManifest returns the manifest text of a component in repo.
func readManifest(t *testing.T, repo, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repo, "services", name, "Cargo.toml")) //#nosec G304 -- test path
	require.NoError(t, err)
	return string(data)
}
