package release

import "fmt"

// Stage names the step of a run at which an error occurred.
type Stage string

// Run stages.
const (
	StagePrecondition Stage = "precondition"
	StagePlan         Stage = "plan"
	StageConfirm      Stage = "confirm"
	StageSnapshot     Stage = "snapshot"
	StageManifest     Stage = "manifest"
	StageVerification Stage = "verification"
	StageStage        Stage = "stage"
	StageCommit       Stage = "commit"
	StageTag          Stage = "tag"
	StagePush         Stage = "push"
	StageRollback     Stage = "rollback"
	StageInterrupt    Stage = "interrupt"
)

// StageError names the component and stage a failure occurred in.
// Err carries the sentinel from internal/errors and the command's stderr.
type StageError struct {
	Component string
	Stage     Stage
	Err       error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Component, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(component string, stage Stage, err error) *StageError {
	return &StageError{Component: component, Stage: stage, Err: err}
}
