package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
	"github.com/mrz1836/ratchet/internal/release"
)

// ReporterOptions carries the conventions a reporter needs to describe a plan.
type ReporterOptions struct {
	TagTemplate string
	Pipeline    pipeline.Options
	// Quiet suppresses per-step lines; plans, failures and rollback still print.
	Quiet bool
}

// TextReporter renders coordinator events for a human at a terminal.
type TextReporter struct {
	out    *TTYOutput
	opts   ReporterOptions
	styles *OutputStyles
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer, opts ReporterOptions) *TextReporter {
	out := NewTTYOutput(w)
	return &TextReporter{out: out, opts: opts, styles: out.styles}
}

// Report implements release.Reporter.
func (r *TextReporter) Report(ev release.Event) {
	switch ev.Kind {
	case release.EventPlanned:
		r.plan(ev.Plan, ev.DryRun)
	case release.EventComponentStarted:
		r.println("")
		r.println(r.styles.Heading.Render(fmt.Sprintf("[%d/%d] %s", ev.Index, ev.Total, ev.Message)))
	case release.EventStep:
		if r.opts.Quiet {
			return
		}
		if ev.DryRun {
			r.println(r.styles.Dim.Render("  ○ " + ev.Message))
			return
		}
		r.println(r.styles.Success.Render("  ✓ ") + ev.Message)
	case release.EventNote:
		r.println(r.styles.Warning.Render("  ⚠ " + ev.Message))
	case release.EventVerified:
		r.verified(ev.Outcome)
	case release.EventPushed:
		r.println("")
		r.out.Success(ev.Message)
	case release.EventRollback:
		r.rollback(ev.Actions)
	}
}

func (r *TextReporter) println(s string) {
	_, _ = fmt.Fprintln(r.out.w, s)
}

func (r *TextReporter) plan(plan *planner.Plan, dryRun bool) {
	if plan == nil {
		return
	}
	if dryRun {
		r.out.Warning("DRY RUN: verification runs for real, nothing is written, committed, tagged, or pushed")
	}
	for _, s := range plan.Skipped {
		r.println(r.styles.Dim.Render(fmt.Sprintf("- %s already at %s, skipping", s.Component.Name, s.Version)))
	}
	if plan.Empty() {
		return
	}

	r.println(r.styles.Heading.Render(fmt.Sprintf("Release plan (%s):", plan.Policy)))
	tagFor := func(item domain.PlanItem) string {
		return release.Render(r.opts.TagTemplate, item.Component.Name, item.Target)
	}
	r.out.Table(PlanHeaders, PlanRows(plan, tagFor, r.opts.Pipeline))
	for _, w := range plan.Warnings {
		r.out.Warning(w)
	}
}

func (r *TextReporter) verified(o *pipeline.Outcome) {
	if o == nil {
		return
	}
	if o.Success {
		if !r.opts.Quiet {
			d := time.Duration(o.DurationMs) * time.Millisecond
			r.println(r.styles.Success.Render("  ✓ ") + fmt.Sprintf("verification passed (%d steps, %s)", len(o.Results), d.Round(time.Second)))
		}
		return
	}
	r.println(r.styles.Error.Render("  ✗ verification failed"))
	for _, line := range strings.Split(strings.TrimRight(pipeline.FormatOutcome(o), "\n"), "\n") {
		r.println("    " + line)
	}
}

func (r *TextReporter) rollback(actions []release.RollbackAction) {
	r.println("")
	r.println(r.styles.Warning.Render("Rolling back:"))
	if len(actions) == 0 {
		r.println(r.styles.Dim.Render("  nothing to undo"))
		return
	}
	for _, a := range actions {
		if a.OK() {
			r.println(r.styles.Success.Render("  ✓ ") + a.Command)
			continue
		}
		r.println(r.styles.Error.Render("  ✗ "+a.Command) + r.styles.Dim.Render(": "+a.Err.Error()))
	}
}

// JSONReporter writes each coordinator event as one JSON object per line.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Type      string                   `json:"type"`
	Component string                   `json:"component,omitempty"`
	Stage     release.Stage            `json:"stage,omitempty"`
	Message   string                   `json:"message,omitempty"`
	DryRun    bool                     `json:"dry_run,omitempty"`
	Index     int                      `json:"index,omitempty"`
	Total     int                      `json:"total,omitempty"`
	Plan      *planner.Plan            `json:"plan,omitempty"`
	Outcome   *pipeline.Outcome        `json:"outcome,omitempty"`
	Actions   []release.RollbackAction `json:"actions,omitempty"`
}

// Report implements release.Reporter.
func (r *JSONReporter) Report(ev release.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	//nolint:errchkjson // Reporter has no error return
	_ = r.enc.Encode(jsonEvent{
		Type:      string(ev.Kind),
		Component: ev.Component,
		Stage:     ev.Stage,
		Message:   ev.Message,
		DryRun:    ev.DryRun,
		Index:     ev.Index,
		Total:     ev.Total,
		Plan:      ev.Plan,
		Outcome:   ev.Outcome,
		Actions:   ev.Actions,
	})
}
