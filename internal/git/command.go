package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mrz1836/ratchet/internal/constants"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// RunCommand runs the default git binary in workDir and returns trimmed
// stdout. It serves repository detection, which happens before the
// configured git binary is known, and test fixtures.
//
// A non-zero exit wraps ErrGitOperation and carries git's stderr verbatim,
// so precondition, tag and push failures show the operator what git said.
// A canceled ctx returns ctx.Err() instead.
func RunCommand(ctx context.Context, workDir string, args ...string) (string, error) {
	return runCommand(ctx, constants.DefaultGit, workDir, args...)
}

// runCommand is RunCommand with an explicit binary; CLIRunner passes the
// tools.git override through here.
func runCommand(ctx context.Context, binary, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //#nosec G204 -- args are constructed internally, not user input
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if stderr.Len() > 0 {
			return "", fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(stderr.String()), rerrors.ErrGitOperation)
		}
		return "", fmt.Errorf("git %s failed: %w: %w", args[0], rerrors.ErrGitOperation, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
