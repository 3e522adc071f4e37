package cli

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/git"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/release"
	"github.com/mrz1836/ratchet/internal/signal"
	"github.com/mrz1836/ratchet/internal/tui"
)

// commandDeps builds the collaborators that touch the outside world.
// Tests replace individual factories with fakes.
type commandDeps struct {
	initLogger   func(verbose, quiet bool) zerolog.Logger
	newGit       func(ctx context.Context, workDir, binary string) (git.Runner, error)
	newVerifier  func(cfg config.VerificationConfig, live io.Writer) release.Verifier
	newConfirmer func() release.Confirmer
	newDetector  func(tools config.ToolsConfig) config.ToolDetector
	newSignals   func(ctx context.Context) interruptSource
}

// interruptSource is the part of signal.Handler a release run uses.
type interruptSource interface {
	Context() context.Context
	IsInterrupted() bool
	OnInterrupt(fn func())
	Stop()
}

func productionDeps() *commandDeps {
	return &commandDeps{
		initLogger: InitLogger,
		newGit: func(ctx context.Context, workDir, binary string) (git.Runner, error) {
			return git.NewRunner(ctx, workDir, git.WithBinary(binary))
		},
		newVerifier: func(cfg config.VerificationConfig, live io.Writer) release.Verifier {
			executor := pipeline.NewExecutor(cfg.Timeout)
			if live != nil {
				executor.SetLiveOutput(live)
			}
			return executor
		},
		newConfirmer: func() release.Confirmer {
			return tui.NewConfirmer()
		},
		newDetector: func(tools config.ToolsConfig) config.ToolDetector {
			return config.NewToolDetector(tools)
		},
		newSignals: func(ctx context.Context) interruptSource {
			return signal.NewHandler(ctx)
		},
	}
}
