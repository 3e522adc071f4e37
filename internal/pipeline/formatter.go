package pipeline

import (
	"fmt"
	"strings"
)

// maxOutputDisplay is the maximum length of captured output shown in a
// formatted failure. Longer output is truncated from the front so the
// final compiler errors stay visible.
const maxOutputDisplay = 4000

// FormatOutcome formats an Outcome for human-readable display.
func FormatOutcome(o *Outcome) string {
	var sb strings.Builder

	if o.Success {
		fmt.Fprintf(&sb, "✓ Verification passed for %s (%d commands)\n", o.Component, len(o.Results))
		fmt.Fprintf(&sb, "  Duration: %dms\n", o.DurationMs)
		return sb.String()
	}

	fmt.Fprintf(&sb, "✗ Verification failed for %s at: %s\n\n", o.Component, o.FailedStep)
	if r := o.Failed(); r != nil {
		sb.WriteString(formatFailedCommand(*r))
	}
	return sb.String()
}

// formatFailedCommand formats a single failed command result.
func formatFailedCommand(r Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Command: %s\n", r.Command)
	fmt.Fprintf(&sb, "Exit code: %d\n", r.ExitCode)
	if r.Error != "" && !strings.HasPrefix(r.Error, "exit code") {
		fmt.Fprintf(&sb, "Error: %s\n", r.Error)
	}

	if r.Stderr != "" {
		sb.WriteString("Error output:\n")
		sb.WriteString(truncateHead(r.Stderr))
		sb.WriteString("\n")
	}
	if r.Stdout != "" {
		sb.WriteString("Standard output:\n")
		sb.WriteString(truncateHead(r.Stdout))
		sb.WriteString("\n")
	}
	return sb.String()
}

// truncateHead keeps the last maxOutputDisplay bytes of s.
func truncateHead(s string) string {
	s = strings.TrimRight(s, "\n")
	if len(s) <= maxOutputDisplay {
		return s
	}
	return "...[truncated]\n" + s[len(s)-maxOutputDisplay:]
}
