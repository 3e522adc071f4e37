package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ratchet/internal/manifest"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
	"github.com/mrz1836/ratchet/internal/release"
	"github.com/mrz1836/ratchet/internal/tui"
)

// PlanFlags holds flags specific to the plan command.
type PlanFlags struct {
	Bump BumpFlags
	// SkipChecks skips the clean-tree and branch preconditions.
	SkipChecks bool
	// ContainerBuild shows the container image build in the verification column.
	ContainerBuild bool
}

// AddPlanCommand adds the plan command to the root command.
func AddPlanCommand(root *cobra.Command, global *GlobalFlags, deps *commandDeps) {
	flags := &PlanFlags{}
	root.AddCommand(newPlanCmd(global, flags, deps))
}

func newPlanCmd(global *GlobalFlags, flags *PlanFlags, deps *commandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <component>... (--major|--minor|--patch|--version X.Y.Z)",
		Short: "Show the release plan without changing anything",
		Long: `Compute the versions, tags and verification builds a release would use.

plan only reads manifests. Unless --skip-checks is given it also checks that
the working tree is clean and the release branch is checked out, the same
preconditions a release starts with.

Examples:
  ratchet plan server --patch
  ratchet plan forwarder receiver --version 1.4.0 --skip-checks -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd, args, global, flags, deps)
		},
	}

	addBumpFlags(cmd, &flags.Bump)
	cmd.Flags().BoolVar(&flags.SkipChecks, "skip-checks", false, "skip the clean-tree and branch checks")
	cmd.Flags().BoolVar(&flags.ContainerBuild, "container-build", false, "include the container image build")

	return cmd
}

// planView is the JSON document printed by the plan command.
type planView struct {
	*planner.Plan

	Releases []plannedRelease `json:"releases"`
}

// plannedRelease adds the rendered tag and verification kinds to a plan item.
type plannedRelease struct {
	Component    string   `json:"component"`
	Current      string   `json:"current"`
	Target       string   `json:"target"`
	Tag          string   `json:"tag"`
	Verification []string `json:"verification"`
	Downgrade    bool     `json:"downgrade,omitempty"`
}

func newPlanView(plan *planner.Plan, opts release.Options) planView {
	view := planView{Plan: plan, Releases: make([]plannedRelease, 0, len(plan.Items))}
	for _, item := range plan.Items {
		view.Releases = append(view.Releases, plannedRelease{
			Component:    item.Component.Name,
			Current:      item.Current.String(),
			Target:       item.Target.String(),
			Tag:          release.Render(opts.TagTemplate, item.Component.Name, item.Target),
			Verification: pipeline.Resolve(item.Component, item.Target, opts.Pipeline).KindNames(),
			Downgrade:    item.IsDowngrade(),
		})
	}
	return view
}

func runPlan(ctx context.Context, cmd *cobra.Command, args []string, global *GlobalFlags, flags *PlanFlags, deps *commandDeps) error {
	ec, err := ResolveExecutionContext(ctx, global.Repo, !flags.SkipChecks)
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

	relDeps := release.Deps{Store: manifest.NewStore(ec.RepoRoot), WorkDir: ec.RepoRoot}
	if !flags.SkipChecks {
		relDeps.Git, err = deps.newGit(ctx, ec.RepoRoot, cfg.Tools.Git)
		if err != nil {
			return err
		}
	}
	coordinator := release.New(relDeps, opts)

	if !flags.SkipChecks {
		if err := coordinator.CheckPreconditions(ctx); err != nil {
			return err
		}
	}

	plan, err := coordinator.Plan(req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if global.Output == OutputJSON {
		return tui.NewOutput(out, OutputJSON).JSON(newPlanView(plan, opts))
	}

	reporter := tui.NewTextReporter(out, tui.ReporterOptions{TagTemplate: opts.TagTemplate, Pipeline: opts.Pipeline})
	reporter.Report(release.Event{Kind: release.EventPlanned, Plan: plan})
	if plan.Empty() {
		tui.NewOutput(out, OutputText).Info("Nothing to release.")
	}
	return nil
}
