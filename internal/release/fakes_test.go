package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/clock"
	"github.com/mrz1836/ratchet/internal/domain"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/git"
	"github.com/mrz1836/ratchet/internal/manifest"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
)

// fakeGit is an in-memory git.Runner that records every call.
type fakeGit struct {
	dirty   []string
	branch  string
	ahead   int
	behind  int
	head    string
	tags    []string
	commits []string
	calls   []string

	// failOn maps "op arg" (e.g. "tag server-v1.0.0" or "push") to an error.
	failOn map[string]error
}

func newFakeGit() *fakeGit {
	return &fakeGit{branch: "master", head: "start-sha", failOn: map[string]error{}}
}

func (f *fakeGit) fail(key string) error {
	if err, ok := f.failOn[key]; ok {
		return err
	}
	return nil
}

func (f *fakeGit) Status(context.Context) (*git.Status, error) {
	f.calls = append(f.calls, "status")
	return &git.Status{
		Branch:    f.branch,
		Ahead:     f.ahead,
		Behind:    f.behind,
		Untracked: slices.Clone(f.dirty),
	}, f.fail("status")
}

func (f *fakeGit) CurrentBranch(context.Context) (string, error) {
	f.calls = append(f.calls, "branch")
	return f.branch, f.fail("branch")
}

func (f *fakeGit) HeadRevision(context.Context) (string, error) {
	f.calls = append(f.calls, "rev-parse")
	return f.head, f.fail("rev-parse")
}

func (f *fakeGit) Add(_ context.Context, paths []string) error {
	f.calls = append(f.calls, fmt.Sprintf("add %v", paths))
	return f.fail("add")
}

func (f *fakeGit) Commit(_ context.Context, message string) error {
	f.calls = append(f.calls, "commit "+message)
	if err := f.fail("commit " + message); err != nil {
		return err
	}
	f.commits = append(f.commits, message)
	f.head = fmt.Sprintf("sha-%d", len(f.commits))
	return nil
}

func (f *fakeGit) Tag(_ context.Context, name string) error {
	f.calls = append(f.calls, "tag "+name)
	if err := f.fail("tag " + name); err != nil {
		return err
	}
	f.tags = append(f.tags, name)
	return nil
}

func (f *fakeGit) DeleteTag(_ context.Context, name string) error {
	f.calls = append(f.calls, "tag -d "+name)
	if err := f.fail("tag -d " + name); err != nil {
		return err
	}
	f.tags = slices.DeleteFunc(f.tags, func(t string) bool { return t == name })
	return nil
}

func (f *fakeGit) ResetHard(_ context.Context, revision string) error {
	f.calls = append(f.calls, "reset --hard "+revision)
	if err := f.fail("reset"); err != nil {
		return err
	}
	f.head = revision
	f.commits = nil
	return nil
}

func (f *fakeGit) PushAtomic(_ context.Context, remote, branch string, tags []string) error {
	f.calls = append(f.calls, fmt.Sprintf("push %s %s %v", remote, branch, tags))
	return f.fail("push")
}

// mutations lists the recorded calls that change repository state.
func (f *fakeGit) mutations() []string {
	var out []string
	for _, c := range f.calls {
		switch c {
		case "status", "branch", "rev-parse":
			continue
		}
		out = append(out, c)
	}
	return out
}

var _ git.Runner = (*fakeGit)(nil)

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
			Diagnostics: "error[E0425]: cannot find value",
		}, fmt.Errorf("%w: cargo build (exit code 101)", rerrors.ErrVerification)
	}
	return &pipeline.Outcome{Component: p.Component, Success: true}, nil
}

// recorder collects events.
type recorder struct {
	events []Event
}

func (r *recorder) Report(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) messages(kind EventKind) []string {
	var out []string
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev.Message)
		}
	}
	return out
}

// fixture is a repository layout of manifests with a coordinator over fakes.
type fixture struct {
	root     string
	store    *manifest.Store
	git      *fakeGit
	verifier *fakeVerifier
	events   *recorder
	comps    map[string]domain.Component

	// interrupted, when set, is handed to the coordinator as Deps.Interrupted.
	interrupted func() bool
}

func newFixture(t *testing.T, versions map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		store:    manifest.NewStore(root),
		git:      newFakeGit(),
		verifier: &fakeVerifier{failOn: map[string]bool{}},
		events:   &recorder{},
		comps:    map[string]domain.Component{},
	}
	for name, v := range versions {
		rel := filepath.Join("services", name, "Cargo.toml")
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		content := fmt.Sprintf("[package]\nname = %q\nversion = %q\nedition = \"2021\"\n", name, v)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		f.comps[name] = domain.Component{Name: name, Manifest: rel}
	}
	return f
}

func (f *fixture) coordinator(opts Options, confirmer Confirmer) *Coordinator {
	if opts.Lockfile == "" {
		opts.Lockfile = "Cargo.lock"
	}
	return New(Deps{
		Git:       f.git,
		Store:     f.store,
		Verifier:  f.verifier,
		Confirmer: confirmer,
		Reporter:  f.events,
		WorkDir:   f.root,

		Interrupted: f.interrupted,
		NewRunID:    func() string { return "run-1" },
		Clock:       clock.Fixed(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
	}, opts)
}

func (f *fixture) request(policy domain.BumpPolicy, names ...string) Request {
	req := Request{Policy: policy}
	for _, n := range names {
		req.Components = append(req.Components, f.comps[n])
	}
	return req
}

func (f *fixture) version(t *testing.T, name string) string {
	t.Helper()
	v, err := f.store.Read(f.comps[name])
	require.NoError(t, err)
	return v.String()
}

func (f *fixture) manifestBytes(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(f.store.Path(f.comps[name]))
	require.NoError(t, err)
	return data
}

func approve(context.Context, *planner.Plan) (bool, error) { return true, nil }
func decline(context.Context, *planner.Plan) (bool, error) { return false, nil }

func patch() domain.BumpPolicy { return domain.BumpPolicy{Kind: domain.BumpPatch} }

func explicit(v string) domain.BumpPolicy {
	return domain.BumpPolicy{Kind: domain.BumpExplicit, Explicit: domain.MustParseVersion(v)}
}
