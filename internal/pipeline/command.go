// Package pipeline selects and runs the verification builds that gate a
// component's release.
//
// SECURITY NOTE: tool binaries and arguments come from project configuration
// (.ratchet/config.yaml) or the user's global config (~/.ratchet/config.yaml)
// and are treated as trusted input, the same trust model as a Makefile.
// Commands are executed directly from an argument vector, never through a
// shell, so component names and paths are passed verbatim.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// CommandRunner defines the interface for executing external commands.
// This allows for testing by injecting mock implementations.
type CommandRunner interface {
	// Run executes argv in workDir and returns its captured output.
	Run(ctx context.Context, workDir string, argv []string) (stdout, stderr string, exitCode int, err error)
}

// LiveOutputRunner defines a command runner that supports live output streaming.
type LiveOutputRunner interface {
	CommandRunner
	// RunWithLiveOutput executes argv and streams output to liveOut while also capturing it.
	RunWithLiveOutput(ctx context.Context, workDir string, argv []string, liveOut io.Writer) (stdout, stderr string, exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner and LiveOutputRunner using os/exec.
type DefaultCommandRunner struct{}

// Run executes argv without streaming.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir string, argv []string) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, argv, nil)
}

// RunWithLiveOutput executes argv and streams output to liveOut while also capturing it.
func (r *DefaultCommandRunner) RunWithLiveOutput(ctx context.Context, workDir string, argv []string, liveOut io.Writer) (stdout, stderr string, exitCode int, err error) {
	return r.runCommand(ctx, workDir, argv, liveOut)
}

// runCommand executes argv with optional live output streaming.
// If liveOut is non-nil, output is streamed to it while also being captured.
func (r *DefaultCommandRunner) runCommand(ctx context.Context, workDir string, argv []string, liveOut io.Writer) (stdout, stderr string, exitCode int, err error) {
	if len(argv) == 0 {
		return "", "", 1, errEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //#nosec G204 -- argv is built from trusted configuration
	cmd.Dir = workDir

	var outBuf, errBuf bytes.Buffer
	if liveOut != nil {
		cmd.Stdout = io.MultiWriter(&outBuf, liveOut)
		cmd.Stderr = io.MultiWriter(&errBuf, liveOut)
	} else {
		cmd.Stdout = &outBuf
		cmd.Stderr = &errBuf
	}

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	return stdout, stderr, exitCode, err
}

var errEmptyCommand = errors.New("empty command")

// Ensure DefaultCommandRunner implements CommandRunner and LiveOutputRunner.
var (
	_ CommandRunner    = (*DefaultCommandRunner)(nil)
	_ LiveOutputRunner = (*DefaultCommandRunner)(nil)
)
