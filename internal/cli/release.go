package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/manifest"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/release"
	"github.com/mrz1836/ratchet/internal/tui"
)

// ReleaseFlags holds flags specific to the release command.
type ReleaseFlags struct {
	Bump BumpFlags
	// DryRun runs verification but never writes, commits, tags or pushes.
	DryRun bool
	// Yes skips the confirmation prompt.
	Yes bool
	// ContainerBuild builds the container image of the container-capable component.
	ContainerBuild bool
	// ContainerImage overrides the image repository of that build.
	ContainerImage string
}

// AddReleaseCommand adds the release command to the root command.
func AddReleaseCommand(root *cobra.Command, global *GlobalFlags, deps *commandDeps) {
	flags := &ReleaseFlags{}
	root.AddCommand(newReleaseCmd(global, flags, deps))
}

func newReleaseCmd(global *GlobalFlags, flags *ReleaseFlags, deps *commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release <component>... (--major|--minor|--patch|--version X.Y.Z)",
		Short: "Bump, verify, commit, tag and atomically push components",
		Long: `Release one or more components together.

For each component in order: write the new manifest version, run its
verification builds, commit the manifest and lockfile, then tag. When every
component succeeded, the release branch and all new tags are pushed with a
single atomic push. A failure before the push deletes the tags created by
this run and resets the branch to where it started.

Press Ctrl+C once to stop after the current step and roll back. Press it
again to abort immediately.

Examples:
  ratchet release server --patch
  ratchet release forwarder receiver --minor --dry-run
  ratchet release server --version 2.0.0 --container-build -y`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context(), cmd, args, global, flags, deps)
		},
	}

	addBumpFlags(cmd, &flags.Bump)
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "verify builds without changing the repository")
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().BoolVar(&flags.ContainerBuild, "container-build", false, "also build the container image")
	cmd.Flags().StringVar(&flags.ContainerImage, "container-image", "", "override the container image repository")

	return cmd
}

// releaseRequest resolves the component names and bump flags into a request.
// Every error is invalid input.
func releaseRequest(cfg *config.Config, names []string, bump BumpFlags) (release.Request, error) {
	policy, err := bump.Policy()
	if err != nil {
		return release.Request{}, err
	}
	components, err := cfg.Lookup(names)
	if err != nil {
		return release.Request{}, errors.NewExitCode2Error(err)
	}
	return release.Request{Components: components, Policy: policy}, nil
}

// coordinatorOptions maps the configuration onto coordinator options.
func coordinatorOptions(cfg *config.Config) release.Options {
	return release.Options{
		Branch:         cfg.Release.Branch,
		Remote:         cfg.Release.Remote,
		Lockfile:       cfg.Release.Lockfile,
		CommitTemplate: cfg.Release.CommitTemplate,
		TagTemplate:    cfg.Release.TagTemplate,
		Pipeline: pipeline.Options{
			Tools: pipeline.Tools{
				Cargo:  cfg.Tools.Cargo,
				NPM:    cfg.Tools.NPM,
				Docker: cfg.Tools.Docker,
			},
		},
	}
}

func runRelease(ctx context.Context, cmd *cobra.Command, args []string, global *GlobalFlags, flags *ReleaseFlags, deps *commandDeps) error {
	logger := zerolog.Ctx(ctx)
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	ec, err := ResolveExecutionContext(ctx, global.Repo, true)
	if err != nil {
		return err
	}
	cfg := ec.Config

	req, err := releaseRequest(cfg, args, flags.Bump)
	if err != nil {
		return err
	}

	opts := coordinatorOptions(cfg)
	opts.Pipeline.ContainerBuild = flags.ContainerBuild
	opts.Pipeline.ContainerImage = flags.ContainerImage
	opts.DryRun = flags.DryRun
	opts.AssumeYes = flags.Yes

	gitRunner, err := deps.newGit(ctx, ec.RepoRoot, cfg.Tools.Git)
	if err != nil {
		return err
	}

	jsonMode := global.Output == OutputJSON
	var live io.Writer
	if cfg.Verification.LiveOutput && !jsonMode && !global.Quiet {
		live = errOut
	}

	var reporter release.Reporter
	if jsonMode {
		reporter = tui.NewJSONReporter(errOut)
	} else {
		reporter = tui.NewTextReporter(out, tui.ReporterOptions{
			TagTemplate: opts.TagTemplate,
			Pipeline:    opts.Pipeline,
			Quiet:       global.Quiet,
		})
	}

	signals := deps.newSignals(ctx)
	defer signals.Stop()
	signals.OnInterrupt(func() {
		logger.Warn().Msg("interrupt received")
		tui.NewOutput(errOut, global.Output).Warning(
			"Interrupt received: stopping after the current step and rolling back. Press Ctrl+C again to abort immediately.")
	})

	coordinator := release.New(release.Deps{
		Git:         gitRunner,
		Store:       manifest.NewStore(ec.RepoRoot),
		Verifier:    deps.newVerifier(cfg.Verification, live),
		Confirmer:   deps.newConfirmer(),
		Reporter:    reporter,
		WorkDir:     ec.RepoRoot,
		Interrupted: signals.IsInterrupted,
	}, opts)

	logger.Debug().
		Strs("components", componentNames(req.Components)).
		Str("policy", req.Policy.String()).
		Bool("dry_run", opts.DryRun).
		Msg("starting release")

	result, runErr := coordinator.Run(signals.Context(), req)

	if jsonMode {
		if err := tui.NewOutput(out, OutputJSON).JSON(tui.NewResultView(result)); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, runErr)
		}
		return nil
	}

	tui.PrintSummary(tui.NewOutput(out, OutputText), result)
	return runErr
}

func componentNames(components []domain.Component) []string {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name)
	}
	return names
}
