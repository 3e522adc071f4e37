package pipeline

import "time"

// Result captures the outcome of a single verification command.
type Result struct {
	Kind        string    `json:"kind"`
	Command     string    `json:"command"`
	Argv        []string  `json:"argv"`
	Success     bool      `json:"success"`
	ExitCode    int       `json:"exit_code"`
	Stdout      string    `json:"stdout"`
	Stderr      string    `json:"stderr"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Outcome is the result of running one component's pipeline.
type Outcome struct {
	Component  string   `json:"component"`
	Success    bool     `json:"success"`
	Results    []Result `json:"results"`
	DurationMs int64    `json:"duration_ms"`

	// FailedStep is the command line of the step that failed, if any.
	FailedStep string `json:"failed_step,omitempty"`

	// Diagnostics is the captured output of the failed step.
	Diagnostics string `json:"diagnostics,omitempty"`
}

// Failed returns the result of the failed step, or nil on success.
func (o *Outcome) Failed() *Result {
	if o == nil || o.Success {
		return nil
	}
	for i := range o.Results {
		if !o.Results[i].Success {
			return &o.Results[i]
		}
	}
	return nil
}
