package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/ratchet/internal/clock"
	"github.com/mrz1836/ratchet/internal/constants"
	"github.com/mrz1836/ratchet/internal/domain"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/git"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
)

// VersionStore reads and writes component versions.
// *manifest.Store satisfies this interface.
type VersionStore interface {
	Read(c domain.Component) (domain.Version, error)
	Write(c domain.Component, v domain.Version) error
}

// Verifier runs a resolved verification pipeline.
// *pipeline.Executor satisfies this interface.
type Verifier interface {
	Execute(ctx context.Context, workDir string, p pipeline.Pipeline) (*pipeline.Outcome, error)
}

// Confirmer asks the operator to approve a plan before any mutation.
type Confirmer interface {
	Confirm(ctx context.Context, plan *planner.Plan) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, plan *planner.Plan) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, plan *planner.Plan) (bool, error) {
	return f(ctx, plan)
}

// Options configures the repository conventions and run mode.
type Options struct {
	// Branch is the only branch a release may start from.
	Branch string
	// Remote receives the atomic push.
	Remote string
	// Lockfile is staged along with each manifest. Empty skips it.
	Lockfile string
	// CommitTemplate and TagTemplate accept {component} and {version}.
	CommitTemplate string
	TagTemplate    string

	// Pipeline controls verification selection.
	Pipeline pipeline.Options

	// DryRun runs verification but performs no mutation.
	DryRun bool
	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
}

func (o Options) withDefaults() Options {
	if o.Branch == "" {
		o.Branch = constants.DefaultReleaseBranch
	}
	if o.Remote == "" {
		o.Remote = constants.DefaultRemote
	}
	if o.CommitTemplate == "" {
		o.CommitTemplate = constants.DefaultCommitTemplate
	}
	if o.TagTemplate == "" {
		o.TagTemplate = constants.DefaultTagTemplate
	}
	return o
}

// Deps are the collaborators a Coordinator drives.
type Deps struct {
	Git       git.Runner
	Store     VersionStore
	Verifier  Verifier
	Confirmer Confirmer
	Reporter  Reporter

	// WorkDir is where verification commands run.
	WorkDir string

	// Interrupted reports whether the operator asked to stop. It is checked
	// before each component and before the push; a positive answer rolls
	// back the local history created so far. Nil means never.
	Interrupted func() bool

	// NewRunID and Clock are replaceable for tests.
	NewRunID func() string
	Clock    clock.Clock
}

// Request names the components to release and how to bump them.
type Request struct {
	Components []domain.Component
	Policy     domain.BumpPolicy
}

// Result is the outcome of a run.
type Result struct {
	RunID       string              `json:"run_id"`
	DryRun      bool                `json:"dry_run"`
	Plan        *planner.Plan       `json:"plan,omitempty"`
	FinalState  State               `json:"final_state"`
	Canceled    bool                `json:"canceled,omitempty"`
	CreatedTags []string            `json:"created_tags,omitempty"`
	PushedTags  []string            `json:"pushed_tags,omitempty"`
	Outcomes    []*pipeline.Outcome `json:"verification,omitempty"`
	Rollback    []RollbackAction    `json:"rollback,omitempty"`
	Transitions []Transition        `json:"transitions"`
	Err         error               `json:"-"`
}

// Coordinator runs release transactions.
type Coordinator struct {
	deps Deps
	opts Options
}

// New creates a Coordinator.
func New(deps Deps, opts Options) *Coordinator {
	if deps.Reporter == nil {
		deps.Reporter = NopReporter{}
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	return &Coordinator{deps: deps, opts: opts.withDefaults()}
}

// CheckPreconditions verifies the working tree is clean, the release
// branch is checked out, and the branch is not behind its upstream as of the
// last fetch. A branch that is behind would only fail at the atomic push,
// after every component was committed and tagged. Failures wrap
// ErrPrecondition.
func (c *Coordinator) CheckPreconditions(ctx context.Context) error {
	status, err := c.deps.Git.Status(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", rerrors.ErrPrecondition, err)
	}
	if !status.IsClean() {
		paths := status.Paths()
		return fmt.Errorf("working tree is dirty (%d changed: %s), commit or stash changes first: %w",
			len(paths), strings.Join(paths, ", "), rerrors.ErrPrecondition)
	}
	if status.Behind > 0 {
		return fmt.Errorf("%s is %d commit(s) behind its upstream, pull before releasing: %w",
			status.Branch, status.Behind, rerrors.ErrPrecondition)
	}
	if status.Ahead > 0 {
		zerolog.Ctx(ctx).Warn().Str("branch", status.Branch).Int("ahead", status.Ahead).
			Msg("unpushed commits will be published by the release push")
	}

	branch, err := c.deps.Git.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("must be on the %s branch: %w: %w", c.opts.Branch, rerrors.ErrPrecondition, err)
	}
	if branch != c.opts.Branch {
		return fmt.Errorf("must be on the %s branch (currently on: %s): %w", c.opts.Branch, branch, rerrors.ErrPrecondition)
	}
	return nil
}

// Plan computes the release plan without changing anything.
func (c *Coordinator) Plan(req Request) (*planner.Plan, error) {
	return planner.Build(c.deps.Store, req.Components, req.Policy)
}

// run carries the mutable state of one Run call.
type run struct {
	*Coordinator
	m      *machine
	tx     Transaction
	result *Result
	log    zerolog.Logger
}

// Run executes the full release transaction for req. The returned Result is
// never nil and its Err equals the returned error. A declined confirmation
// ends in Aborted with Canceled set and a nil error.
func (c *Coordinator) Run(ctx context.Context, req Request) (*Result, error) {
	runID := c.deps.NewRunID()
	r := &run{
		Coordinator: c,
		m:           newMachine(c.deps.Clock.Now),
		tx:          Transaction{RunID: runID},
		result:      &Result{RunID: runID, DryRun: c.opts.DryRun},
		log:         zerolog.Ctx(ctx).With().Str("run_id", runID).Logger(),
	}
	ctx = r.log.WithContext(ctx)

	err := r.execute(ctx, req)

	r.result.FinalState = r.m.state
	r.result.Transitions = r.m.history
	r.result.CreatedTags = r.tx.CreatedTags
	r.result.Err = err

	event := r.log.Info()
	if err != nil {
		event = r.log.Error().Err(err)
	}
	event.Str("final_state", string(r.m.state)).
		Bool("dry_run", c.opts.DryRun).
		Strs("created_tags", r.tx.CreatedTags).
		Msg("release run finished")

	return r.result, err
}

func (r *run) execute(ctx context.Context, req Request) error {
	r.log.Info().Bool("dry_run", r.opts.DryRun).Msg("release run started")

	if err := r.CheckPreconditions(ctx); err != nil {
		return r.abort(stageErr("", StagePrecondition, err))
	}
	if err := r.m.to(StatePlanning); err != nil {
		return err
	}

	plan, err := r.Plan(req)
	if err != nil {
		return r.abort(stageErr("", StagePlan, err))
	}
	r.result.Plan = plan
	r.tx.Items = plan.Items
	r.deps.Reporter.Report(Event{Kind: EventPlanned, Plan: plan, DryRun: r.opts.DryRun})

	if plan.Empty() {
		r.log.Info().Int("skipped", len(plan.Skipped)).Msg("nothing to release")
		return r.m.to(StateDone)
	}

	if err := r.m.to(StateAwaitingConfirmation); err != nil {
		return err
	}
	if proceed, err := r.confirm(ctx, plan); err != nil || !proceed {
		if err == nil {
			r.result.Canceled = true
			r.log.Info().Msg("release declined by operator")
		}
		return r.abort(err)
	}

	if err := r.m.to(StateExecuting); err != nil {
		return err
	}

	if !r.opts.DryRun {
		start, err := r.deps.Git.HeadRevision(ctx)
		if err != nil {
			return r.abort(stageErr("", StageSnapshot, fmt.Errorf("%w: %w", rerrors.ErrTransaction, err)))
		}
		r.tx.StartRevision = start
		r.log.Debug().Str("start_revision", start).Msg("captured start revision")
	}

	for i := range r.tx.Items {
		r.m.index = i
		err := r.checkInterrupt(r.tx.Items[i].Component.Name)
		if err == nil {
			err = r.executeItem(ctx, i)
		}
		if err != nil {
			if r.opts.DryRun {
				return r.abort(err)
			}
			return r.rollback(ctx, err)
		}
	}

	if err := r.checkInterrupt(""); err != nil {
		if r.opts.DryRun {
			return r.abort(err)
		}
		return r.rollback(ctx, err)
	}
	if err := r.m.to(StatePushing); err != nil {
		return err
	}
	return r.push(ctx)
}

// checkInterrupt fails with ErrOperationCanceled once the operator has
// interrupted the run.
func (r *run) checkInterrupt(component string) error {
	if r.deps.Interrupted == nil || !r.deps.Interrupted() {
		return nil
	}
	r.log.Warn().Str("component", component).Msg("interrupt received, stopping before next step")
	return stageErr(component, StageInterrupt, rerrors.ErrOperationCanceled)
}

// confirm asks for approval unless AssumeYes is set.
func (r *run) confirm(ctx context.Context, plan *planner.Plan) (bool, error) {
	if r.opts.AssumeYes || r.deps.Confirmer == nil {
		return true, nil
	}
	ok, err := r.deps.Confirmer.Confirm(ctx, plan)
	if err != nil {
		return false, stageErr("", StageConfirm, err)
	}
	return ok, nil
}

// executeItem runs the manifest write, verification, stage, commit, and tag
// steps for item i.
func (r *run) executeItem(ctx context.Context, i int) error {
	item := r.tx.Items[i]
	name := item.Component.Name
	log := r.log.With().Str("component", name).Int("item", i+1).Logger()
	total := len(r.tx.Items)
	dry := r.opts.DryRun

	r.deps.Reporter.Report(Event{
		Kind: EventComponentStarted, Component: name, Item: &item,
		Index: i + 1, Total: total, DryRun: dry,
		Message: fmt.Sprintf("%s: %s -> %s", name, item.Current, item.Target),
	})

	// Manifest
	if dry {
		r.step(name, StageManifest, fmt.Sprintf("would update %s version to %s", item.Component.Manifest, item.Target))
	} else {
		if err := r.deps.Store.Write(item.Component, item.Target); err != nil {
			return stageErr(name, StageManifest, err)
		}
		r.step(name, StageManifest, fmt.Sprintf("updated %s version to %s", item.Component.Manifest, item.Target))
	}

	// Verification always executes
	p := pipeline.Resolve(item.Component, item.Target, r.opts.Pipeline)
	for _, note := range p.Notes {
		r.deps.Reporter.Report(Event{Kind: EventNote, Component: name, Stage: StageVerification, Message: note, DryRun: dry})
	}
	log.Info().Strs("kinds", p.KindNames()).Int("steps", len(p.Steps)).Msg("running verification pipeline")
	outcome, err := r.deps.Verifier.Execute(log.WithContext(ctx), r.deps.WorkDir, p)
	r.result.Outcomes = append(r.result.Outcomes, outcome)
	r.deps.Reporter.Report(Event{Kind: EventVerified, Component: name, Stage: StageVerification, Outcome: outcome, DryRun: dry})
	if err != nil {
		return stageErr(name, StageVerification, err)
	}

	// Stage
	paths := []string{item.Component.Manifest}
	if r.opts.Lockfile != "" {
		paths = append(paths, r.opts.Lockfile)
	}
	if dry {
		r.step(name, StageStage, "would stage "+strings.Join(paths, " "))
	} else {
		if err := r.deps.Git.Add(ctx, paths); err != nil {
			return stageErr(name, StageStage, fmt.Errorf("%w: %w", rerrors.ErrTransaction, err))
		}
		r.step(name, StageStage, "staged "+strings.Join(paths, " "))
	}

	// Commit
	message := Render(r.opts.CommitTemplate, name, item.Target)
	if dry {
		r.step(name, StageCommit, "would commit: "+message)
	} else {
		if err := r.deps.Git.Commit(ctx, message); err != nil {
			return stageErr(name, StageCommit, fmt.Errorf("%w: %w", rerrors.ErrTransaction, err))
		}
		r.step(name, StageCommit, "committed: "+message)
	}

	// Tag
	tag := Render(r.opts.TagTemplate, name, item.Target)
	if dry {
		r.step(name, StageTag, "would tag: "+tag)
		return nil
	}
	if err := r.deps.Git.Tag(ctx, tag); err != nil {
		return stageErr(name, StageTag, fmt.Errorf("%w: %w", rerrors.ErrTransaction, err))
	}
	r.tx = r.tx.WithTag(tag)
	r.step(name, StageTag, "tagged: "+tag)
	log.Info().Str("tag", tag).Msg("component released locally")

	return nil
}

// push performs the final atomic push. A failure never triggers rollback.
func (r *run) push(ctx context.Context) error {
	tags := r.tx.CreatedTags
	if r.opts.DryRun {
		tags = r.tx.PlannedTags(r.opts.TagTemplate)
	}
	command := "git " + strings.Join(git.PushArgs(r.opts.Remote, r.opts.Branch, tags), " ")

	if r.opts.DryRun {
		r.step("", StagePush, "would push: "+command)
		return r.m.to(StateDone)
	}

	if err := r.deps.Git.PushAtomic(ctx, r.opts.Remote, r.opts.Branch, tags); err != nil {
		r.log.Error().Err(err).Strs("tags", tags).Msg("atomic push failed, remote state unknown")
		return r.abort(stageErr("", StagePush, fmt.Errorf("%w: %w", rerrors.ErrPush, err)))
	}

	r.result.PushedTags = tags
	r.deps.Reporter.Report(Event{Kind: EventPushed, Stage: StagePush, Message: "pushed: " + command})
	return r.m.to(StateDone)
}

// rollback undoes the run's local mutations and ends in Aborted. It runs
// even after ctx is canceled.
func (r *run) rollback(ctx context.Context, cause error) error {
	if err := r.m.to(StateRollingBack); err != nil {
		return errors.Join(cause, err)
	}
	r.log.Warn().Err(cause).Strs("created_tags", r.tx.CreatedTags).Msg("release failed, rolling back")

	// A canceled run must still restore the repository.
	actions := Rollback(context.WithoutCancel(ctx), r.deps.Git, r.tx)
	r.result.Rollback = actions
	r.deps.Reporter.Report(Event{Kind: EventRollback, Stage: StageRollback, Actions: actions})

	failed := FailedActions(actions)
	r.log.Info().Str("summary", rollbackSummary(actions)).Msg("rollback finished")

	if err := r.m.to(StateAborted); err != nil {
		return errors.Join(cause, err)
	}
	if failed > 0 {
		return fmt.Errorf("%w; %d of %d rollback actions failed: %w", cause, failed, len(actions), rerrors.ErrRollbackIncomplete)
	}
	return cause
}

// abort ends the run in Aborted without rollback.
func (r *run) abort(cause error) error {
	if err := r.m.to(StateAborted); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// step reports a completed or simulated mutating step.
func (r *run) step(component string, stage Stage, message string) {
	r.deps.Reporter.Report(Event{
		Kind:      EventStep,
		Component: component,
		Stage:     stage,
		Message:   message,
		DryRun:    r.opts.DryRun,
	})
}
