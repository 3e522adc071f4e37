package tui

import (
	"fmt"
	"strings"

	rerrors "github.com/mrz1836/ratchet/internal/errors"
	"github.com/mrz1836/ratchet/internal/release"
)

// ResultView is the JSON document printed at the end of a run.
type ResultView struct {
	*release.Result

	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewResultView wraps a run result for JSON output.
func NewResultView(res *release.Result) ResultView {
	v := ResultView{Result: res}
	if res != nil && res.Err != nil {
		v.Error = res.Err.Error()
		_, v.Suggestion = rerrors.Actionable(res.Err)
	}
	return v
}

// SummaryLine describes a finished run in one sentence.
func SummaryLine(res *release.Result) string {
	switch {
	case res == nil:
		return ""
	case res.Canceled:
		return "Release canceled; nothing was changed."
	case res.Err != nil:
		return fmt.Sprintf("Release failed (%s).", StateTitle(res.FinalState))
	case res.Plan == nil || res.Plan.Empty():
		return "Nothing to release."
	case res.DryRun:
		return fmt.Sprintf("Dry run complete: %d component(s) verified, nothing was changed.", len(res.Plan.Items))
	default:
		return "Released " + strings.Join(res.PushedTags, ", ") + "."
	}
}

// PrintSummary writes the closing lines of a run. Errors are left to the
// caller so they are printed exactly once.
func PrintSummary(out Output, res *release.Result) {
	if res == nil {
		return
	}
	line := SummaryLine(res)
	switch {
	case res.Err != nil:
		out.Warning(line)
	case res.Canceled:
		out.Info(line)
	default:
		out.Success(line)
	}
}
