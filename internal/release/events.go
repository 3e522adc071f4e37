package release

import (
	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
)

// EventKind classifies a coordinator event.
type EventKind string

// Event kinds, in the order a successful run emits them.
const (
	EventPlanned          EventKind = "planned"
	EventComponentStarted EventKind = "component_started"
	EventStep             EventKind = "step"
	EventNote             EventKind = "note"
	EventVerified         EventKind = "verified"
	EventPushed           EventKind = "pushed"
	EventRollback         EventKind = "rollback"
)

// Event describes progress of a run for presentation.
type Event struct {
	Kind      EventKind
	Component string
	Stage     Stage

	// Message is a one-line description. In dry runs it reads "would ...".
	Message string
	DryRun  bool

	// Index and Total position a component within the plan, 1-based.
	Index int
	Total int

	Plan    *planner.Plan
	Item    *domain.PlanItem
	Outcome *pipeline.Outcome
	Actions []RollbackAction
}

// Reporter receives coordinator events as they happen.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ev Event)

// Report implements Reporter.
func (f ReporterFunc) Report(ev Event) { f(ev) }

// NopReporter discards every event.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(Event) {}
