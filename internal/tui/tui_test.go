package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/domain"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
	"github.com/mrz1836/ratchet/internal/release"
	"github.com/mrz1836/ratchet/internal/testutil"
)

func serverComponent() domain.Component {
	return domain.Component{
		Name:        "server",
		Manifest:    "services/server/Cargo.toml",
		UIWorkspace: "apps/server-ui",
		Container:   &domain.ContainerSpec{Dockerfile: "services/server/Dockerfile", Image: "iwismer/rt-server"},
	}
}

func streamerComponent() domain.Component {
	return domain.Component{Name: "streamer", Manifest: "services/streamer/Cargo.toml"}
}

func samplePlan() *planner.Plan {
	return &planner.Plan{
		Policy: domain.BumpPolicy{Kind: domain.BumpMinor},
		Items: []domain.PlanItem{
			{Component: serverComponent(), Current: domain.MustParseVersion("1.3.0"), Target: domain.MustParseVersion("1.4.0")},
			{Component: streamerComponent(), Current: domain.MustParseVersion("0.2.9"), Target: domain.MustParseVersion("0.3.0")},
		},
		Skipped: []domain.SkippedItem{
			{Component: domain.Component{Name: "emulator"}, Version: domain.MustParseVersion("0.3.0")},
		},
	}
}

func TestStateTitle(t *testing.T) {
	assert.Equal(t, "Awaiting Confirmation", StateTitle(release.StateAwaitingConfirmation))
	assert.Equal(t, "Rolling Back", StateTitle(release.StateRollingBack))
	assert.Equal(t, "Done", StateTitle(release.StateDone))
}

func TestStateIconAndColor(t *testing.T) {
	assert.Equal(t, "✓", StateIcon(release.StateDone))
	assert.Equal(t, "✗", StateIcon(release.StateAborted))
	assert.Equal(t, ColorError, StateColor(release.StateRollingBack))
	assert.Equal(t, ColorSuccess, StateColor(release.StateDone))
}

func TestHasColorSupport(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport(), "empty NO_COLOR still disables color")
}

func TestTTYOutput_Table_AlignsWideCells(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Table([]string{"A", "B"}, [][]string{{"1.4.0 ⚠", "x"}, {"1", "y"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	xCol := runewidth.StringWidth(lines[1][:strings.Index(lines[1], "x")])
	yCol := runewidth.StringWidth(lines[2][:strings.Index(lines[2], "y")])
	assert.Equal(t, xCol, yCol, "second column starts at the same display column")
}

func TestTTYOutput_ErrorShowsGuidance(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	out := NewTTYOutput(&buf)

	out.Error(fmt.Errorf("push: %w", rerrors.ErrPush))

	assert.Contains(t, buf.String(), "✗ push: atomic push failed")
	assert.Contains(t, buf.String(), "Local commits and tags were kept")
	assert.Contains(t, buf.String(), "▸ Try: Verify the remote state manually")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, FormatJSON)

	out.Info("hello")
	out.Error(rerrors.ErrPrecondition)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &info))
	assert.Equal(t, "info", info["type"])

	var errLine map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &errLine))
	assert.Equal(t, "error", errLine["type"])
	assert.Equal(t, "release precondition failed", errLine["message"])
	assert.NotEmpty(t, errLine["suggestion"])
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("text"))
	assert.True(t, ValidFormat("json"))
	assert.False(t, ValidFormat("yaml"))
}

func TestPlanRows(t *testing.T) {
	tagFor := func(item domain.PlanItem) string {
		return release.Render("{component}-v{version}", item.Component.Name, item.Target)
	}

	rows := PlanRows(samplePlan(), tagFor, pipeline.Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"server", "1.3.0", "1.4.0", "server-v1.4.0", "ui-checks + release-binary"}, rows[0])
	assert.Equal(t, []string{"streamer", "0.2.9", "0.3.0", "streamer-v0.3.0", "release-binary"}, rows[1])

	rows = PlanRows(samplePlan(), tagFor, pipeline.Options{ContainerBuild: true})
	assert.Equal(t, "ui-checks + container-image", rows[0][4])
}

func TestPlanRows_MarksDowngrade(t *testing.T) {
	plan := &planner.Plan{Items: []domain.PlanItem{{
		Component: streamerComponent(),
		Current:   domain.MustParseVersion("2.0.0"),
		Target:    domain.MustParseVersion("1.0.0"),
	}}}
	rows := PlanRows(plan, func(domain.PlanItem) string { return "t" }, pipeline.Options{})
	assert.Equal(t, "1.0.0 ⚠", rows[0][2])
}

func TestComponentRows(t *testing.T) {
	rows := ComponentRows([]domain.Component{
		serverComponent(),
		{Name: "forwarder", Manifest: "m", UIWorkspace: "apps/forwarder-ui", EmbedUIFeature: "embed-ui"},
		{Name: "emulator", Manifest: "m", Package: "emulator-bin"},
	})
	assert.Equal(t, "cargo --bin server | docker iwismer/rt-server", rows[0][4])
	assert.Equal(t, "cargo --bin forwarder --features embed-ui", rows[1][4])
	assert.Equal(t, "emulator-bin", rows[2][2])
	assert.Equal(t, "-", rows[2][3])
}

func TestTextReporter_DryRunFlow(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	r := NewTextReporter(&buf, ReporterOptions{TagTemplate: "{component}-v{version}"})

	plan := samplePlan()
	r.Report(release.Event{Kind: release.EventPlanned, Plan: plan, DryRun: true})
	r.Report(release.Event{Kind: release.EventComponentStarted, Index: 1, Total: 2, Message: "server: 1.3.0 -> 1.4.0", DryRun: true})
	r.Report(release.Event{Kind: release.EventNote, Message: "skipping server container image build (enable with --container-build)"})
	r.Report(release.Event{Kind: release.EventStep, Message: "would tag: server-v1.4.0", DryRun: true})
	r.Report(release.Event{Kind: release.EventVerified, Outcome: &pipeline.Outcome{Component: "server", Success: true}})

	out := buf.String()
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "emulator already at 0.3.0, skipping")
	assert.Contains(t, out, "Release plan (minor):")
	assert.Contains(t, out, "server-v1.4.0")
	assert.Contains(t, out, "[1/2] server: 1.3.0 -> 1.4.0")
	assert.Contains(t, out, "⚠ skipping server container image build")
	assert.Contains(t, out, "○ would tag: server-v1.4.0")
	assert.Contains(t, out, "verification passed")
}

func TestTextReporter_QuietHidesSteps(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	r := NewTextReporter(&buf, ReporterOptions{Quiet: true})

	r.Report(release.Event{Kind: release.EventStep, Message: "committed: x"})
	assert.Empty(t, buf.String())

	r.Report(release.Event{Kind: release.EventVerified, Outcome: &pipeline.Outcome{
		Component: "server", FailedStep: "cargo build",
		Results: []pipeline.Result{{Command: "cargo build", ExitCode: 101, Stderr: "error[E0308]"}},
	}})
	assert.Contains(t, buf.String(), "verification failed")
	assert.Contains(t, buf.String(), "error[E0308]")
}

func TestTextReporter_Rollback(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	r := NewTextReporter(&buf, ReporterOptions{})

	r.Report(release.Event{Kind: release.EventRollback, Actions: []release.RollbackAction{
		{Command: "git tag -d server-v1.4.0"},
		{Command: "git reset --hard abc123", Err: testutil.ErrMockLocked},
	}})

	out := buf.String()
	assert.Contains(t, out, "✓ git tag -d server-v1.4.0")
	assert.Contains(t, out, "✗ git reset --hard abc123: index.lock exists")
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	r.Report(release.Event{Kind: release.EventStep, Component: "server", Stage: release.StageTag, Message: "tagged: server-v1.4.0"})
	r.Report(release.Event{Kind: release.EventRollback, Actions: []release.RollbackAction{{Command: "git tag -d x", Err: testutil.ErrMockLocked}}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var step map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &step))
	assert.Equal(t, "step", step["type"])
	assert.Equal(t, "tag", step["stage"])

	assert.Contains(t, lines[1], `"ok":false`)
	assert.Contains(t, lines[1], `"error":"index.lock exists"`)
}

func TestSummaryLine(t *testing.T) {
	plan := samplePlan()
	tests := []struct {
		name string
		res  *release.Result
		want string
	}{
		{"canceled", &release.Result{Canceled: true, FinalState: release.StateAborted}, "Release canceled; nothing was changed."},
		{"nothing", &release.Result{Plan: &planner.Plan{}, FinalState: release.StateDone}, "Nothing to release."},
		{"dry run", &release.Result{Plan: plan, DryRun: true, FinalState: release.StateDone}, "Dry run complete: 2 component(s) verified, nothing was changed."},
		{"released", &release.Result{Plan: plan, PushedTags: []string{"server-v1.4.0", "streamer-v0.3.0"}, FinalState: release.StateDone}, "Released server-v1.4.0, streamer-v0.3.0."},
		{"failed", &release.Result{Plan: plan, Err: rerrors.ErrVerification, FinalState: release.StateAborted}, "Release failed (Aborted)."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SummaryLine(tc.res))
		})
	}
}

func TestNewResultView(t *testing.T) {
	res := &release.Result{RunID: "r1", FinalState: release.StateAborted, Err: fmt.Errorf("x: %w", rerrors.ErrPush)}
	data, err := json.Marshal(NewResultView(res))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "r1", doc["run_id"])
	assert.Equal(t, "aborted", doc["final_state"])
	assert.Equal(t, "x: atomic push failed", doc["error"])
	assert.Contains(t, doc["suggestion"], "remote state")
}

func TestConfirmer(t *testing.T) {
	ctx := context.Background()
	plan := samplePlan()

	t.Run("approves", func(t *testing.T) {
		var asked string
		c := NewConfirmerWithPrompt(func(_ context.Context, title string) (bool, error) {
			asked = title
			return true, nil
		})
		ok, err := c.Confirm(ctx, plan)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "Release 2 components?", asked)
	})

	t.Run("abort is a decline", func(t *testing.T) {
		c := NewConfirmerWithPrompt(func(context.Context, string) (bool, error) {
			return false, huh.ErrUserAborted
		})
		ok, err := c.Confirm(ctx, plan)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("prompt failure", func(t *testing.T) {
		c := NewConfirmerWithPrompt(func(context.Context, string) (bool, error) {
			return false, testutil.ErrMockTTY
		})
		_, err := c.Confirm(ctx, plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tty gone")
	})

	t.Run("no terminal and no input", func(t *testing.T) {
		c := NewLineConfirmer(strings.NewReader(""), io.Discard)
		_, err := c.Confirm(ctx, plan)
		require.ErrorIs(t, err, rerrors.ErrInteractiveRequired)
	})
}

func TestLineConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Yes\n", true},
		{"  y  \r\n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"yep\n", false},
	}

	for _, tc := range tests {
		t.Run(strings.TrimSpace(tc.input), func(t *testing.T) {
			var out bytes.Buffer
			c := NewLineConfirmer(strings.NewReader(tc.input), &out)

			ok, err := c.Confirm(context.Background(), samplePlan())

			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
			assert.Equal(t, "Release 2 components? [y/N] ", out.String())
		})
	}
}

func TestLineConfirmer_CanceledWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := NewLineConfirmer(r, io.Discard).Confirm(ctx, samplePlan())

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmTitle_SingleItem(t *testing.T) {
	plan := &planner.Plan{Items: samplePlan().Items[:1]}
	assert.Equal(t, "Release server 1.4.0?", ConfirmTitle(plan))
}
