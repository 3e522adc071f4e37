package release

import (
	"context"
	"encoding/json"
	"fmt"
)

// RollbackGit is the subset of git.Runner rollback needs.
type RollbackGit interface {
	DeleteTag(ctx context.Context, name string) error
	ResetHard(ctx context.Context, revision string) error
}

// RollbackAction is one compensating command and its result.
type RollbackAction struct {
	Command string `json:"command"`
	Err     error  `json:"-"`
}

// OK reports whether the action succeeded.
func (a RollbackAction) OK() bool {
	return a.Err == nil
}

// MarshalJSON renders the error as a string.
func (a RollbackAction) MarshalJSON() ([]byte, error) {
	out := struct {
		Command string `json:"command"`
		OK      bool   `json:"ok"`
		Error   string `json:"error,omitempty"`
	}{Command: a.Command, OK: a.OK()}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

// Rollback restores the repository to tx's starting state. It deletes the
// created tags in reverse creation order, then hard-resets to the start
// revision. Every action is attempted even when an earlier one fails, and
// every attempt is returned in order.
//
// With no created tags only the reset runs; with no start revision captured
// it does nothing.
func Rollback(ctx context.Context, g RollbackGit, tx Transaction) []RollbackAction {
	actions := make([]RollbackAction, 0, len(tx.CreatedTags)+1)

	for _, tag := range reversed(tx.CreatedTags) {
		actions = append(actions, RollbackAction{
			Command: "git tag -d " + tag,
			Err:     g.DeleteTag(ctx, tag),
		})
	}

	if tx.StartRevision != "" {
		actions = append(actions, RollbackAction{
			Command: "git reset --hard " + tx.StartRevision,
			Err:     g.ResetHard(ctx, tx.StartRevision),
		})
	}

	return actions
}

// FailedActions counts the rollback actions that returned an error.
func FailedActions(actions []RollbackAction) int {
	n := 0
	for _, a := range actions {
		if !a.OK() {
			n++
		}
	}
	return n
}

// rollbackSummary describes a rollback for logging.
func rollbackSummary(actions []RollbackAction) string {
	return fmt.Sprintf("%d actions, %d failed", len(actions), FailedActions(actions))
}
