// Package release coordinates a release run as a transaction: every planned
// component advances with a verified build and the result is pushed
// atomically, or the repository is restored to the revision it started from.
//
// This file implements the coordinator state machine, which enforces valid
// state transitions and keeps an audit trail of every change.
//
// Import rules:
//   - CAN import: internal/domain, internal/errors, internal/git,
//     internal/manifest, internal/pipeline, internal/planner, std lib
//   - MUST NOT import: internal/cli, internal/tui, internal/config
package release

import (
	"fmt"
	"slices"
	"time"

	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

// State is a coordinator state.
type State string

// Coordinator states.
const (
	StateIdle                 State = "idle"
	StatePlanning             State = "planning"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateExecuting            State = "executing"
	StatePushing              State = "pushing"
	StateDone                 State = "done"
	StateRollingBack          State = "rolling_back"
	StateAborted              State = "aborted"
)

// ValidTransitions defines all allowed state transitions of a release run.
// Format: from_state -> []to_states
//
// The state machine follows this flow:
//
//	Idle → Planning, Aborted (precondition)
//	Planning → AwaitingConfirmation, Done (empty plan), Aborted (manifest read)
//	AwaitingConfirmation → Executing, Aborted (declined)
//	Executing → Pushing, RollingBack, Aborted (dry-run verification, start revision)
//	Pushing → Done, Aborted (push failure)
//	RollingBack → Aborted
//
// Advancing from Executing(i) to Executing(i+1) is not a state change.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[State][]State{
	StateIdle:                 {StatePlanning, StateAborted},
	StatePlanning:             {StateAwaitingConfirmation, StateDone, StateAborted},
	StateAwaitingConfirmation: {StateExecuting, StateAborted},
	StateExecuting:            {StatePushing, StateRollingBack, StateAborted},
	StatePushing:              {StateDone, StateAborted},
	StateRollingBack:          {StateAborted},
}

// IsValidTransition checks if a transition from one state to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to State) bool {
	if from == to {
		return false
	}
	return slices.Contains(ValidTransitions[from], to)
}

// IsTerminal returns true for states where no further transitions are allowed.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateAborted
}

// Transition records a single state change.
type Transition struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Index     int       `json:"index,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// machine tracks the current state and the position within Executing.
type machine struct {
	state   State
	index   int
	history []Transition
	now     func() time.Time
}

func newMachine(now func() time.Time) *machine {
	return &machine{state: StateIdle, now: now}
}

// to moves the machine to next, rejecting transitions the table does not allow.
func (m *machine) to(next State) error {
	if !IsValidTransition(m.state, next) {
		return fmt.Errorf("%s -> %s: %w", m.state, next, rerrors.ErrInvalidTransition)
	}
	m.history = append(m.history, Transition{
		From:      m.state,
		To:        next,
		Index:     m.index,
		Timestamp: m.now(),
	})
	m.state = next
	return nil
}
