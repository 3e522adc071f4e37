package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/ratchet/internal/ctxutil"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// Executor runs pipeline steps strictly in order.
type Executor struct {
	runner     CommandRunner
	timeout    time.Duration
	liveOutput io.Writer // Optional: if set, streams command output in real-time
}

// NewExecutor creates an executor with the default command runner.
// A timeout of zero or less disables the per-step deadline.
func NewExecutor(timeout time.Duration) *Executor {
	return NewExecutorWithRunner(timeout, &DefaultCommandRunner{})
}

// NewExecutorWithRunner creates an executor with custom runner (for testing).
func NewExecutorWithRunner(timeout time.Duration, runner CommandRunner) *Executor {
	if timeout < 0 {
		timeout = 0
	}
	return &Executor{
		runner:  runner,
		timeout: timeout,
	}
}

// SetLiveOutput configures the executor to stream command output in real-time.
// When set, stdout and stderr are written to w as they are produced.
func (e *Executor) SetLiveOutput(w io.Writer) {
	e.liveOutput = w
}

// Execute runs every step of p in workDir, stopping at the first failure.
// The returned Outcome is never nil. A failing step yields an error wrapping
// ErrVerification that names the command.
func (e *Executor) Execute(ctx context.Context, workDir string, p Pipeline) (*Outcome, error) {
	log := zerolog.Ctx(ctx).With().Str("component", p.Component).Logger()
	outcome := &Outcome{
		Component: p.Component,
		Results:   make([]Result, 0, len(p.Steps)),
	}
	start := time.Now()
	defer func() { outcome.DurationMs = time.Since(start).Milliseconds() }()

	total := len(p.Steps)
	for i, step := range p.Steps {
		if err := ctxutil.Canceled(ctx); err != nil {
			return outcome, err
		}

		log.Info().
			Str("kind", step.Kind).
			Str("command", step.String()).
			Int("command_num", i+1).
			Int("total_commands", total).
			Msg("executing verification command")

		result, err := e.runStep(ctx, workDir, step, &log)
		outcome.Results = append(outcome.Results, result)
		if err != nil {
			outcome.FailedStep = result.Command
			outcome.Diagnostics = diagnostics(result)
			return outcome, err
		}
	}

	outcome.Success = true
	return outcome, nil
}

// runStep executes one step, applying the optional timeout.
func (e *Executor) runStep(ctx context.Context, workDir string, step Step, log *zerolog.Logger) (Result, error) {
	cmdCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	startedAt := time.Now()
	stdout, stderr, exitCode, runErr := e.executeCommand(cmdCtx, workDir, step.Argv)
	completedAt := time.Now()
	duration := completedAt.Sub(startedAt)

	result := Result{
		Kind:        step.Kind,
		Command:     step.String(),
		Argv:        step.Argv,
		ExitCode:    exitCode,
		Stdout:      stdout,
		Stderr:      stderr,
		DurationMs:  duration.Milliseconds(),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		result.Error = fmt.Sprintf("timed out after %s", e.timeout)
		log.Error().
			Str("command", result.Command).
			Dur("duration_ms", duration).
			Str("stderr", stderr).
			Msg("verification command timed out")
		return result, fmt.Errorf("%w: %s: %s", rerrors.ErrVerification, result.Command, result.Error)
	}

	if ctx.Err() != nil {
		result.Error = "context canceled"
		return result, ctx.Err()
	}

	if runErr != nil || exitCode != 0 {
		if exitCode == 0 {
			exitCode = 1
			result.ExitCode = exitCode
		}
		if runErr != nil {
			result.Error = runErr.Error()
		} else {
			result.Error = fmt.Sprintf("exit code %d", exitCode)
		}

		log.Error().
			Str("command", result.Command).
			Int("exit_code", exitCode).
			Dur("duration_ms", duration).
			Str("stderr", stderr).
			Msg("verification command failed")

		return result, fmt.Errorf("%w: %s (exit code %d)", rerrors.ErrVerification, result.Command, exitCode)
	}

	result.Success = true
	log.Info().
		Str("command", result.Command).
		Dur("duration_ms", duration).
		Msg("verification command completed")

	return result, nil
}

// executeCommand runs argv and returns raw output.
func (e *Executor) executeCommand(ctx context.Context, workDir string, argv []string) (stdout, stderr string, exitCode int, runErr error) {
	if e.liveOutput != nil {
		if liveRunner, ok := e.runner.(LiveOutputRunner); ok {
			return liveRunner.RunWithLiveOutput(ctx, workDir, argv, e.liveOutput)
		}
	}

	return e.runner.Run(ctx, workDir, argv)
}

// diagnostics assembles the operator-facing text for a failed step.
// Stderr comes first; stdout is appended when it carries compiler output.
func diagnostics(r Result) string {
	var parts []string
	if s := strings.TrimSpace(r.Stderr); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 && r.Error != "" {
		parts = append(parts, r.Error)
	}
	return strings.Join(parts, "\n")
}
