// Package tui provides terminal output for ratchet.
//
// This package provides a centralized style system using Lip Gloss for consistent
// styling. All colors use AdaptiveColor for light/dark terminal support.
//
// # Semantic Colors
//
//   - ColorPrimary (Blue): active states, headings
//   - ColorSuccess (Green): released components, completed runs
//   - ColorWarning (Yellow): dry runs, downgrades, skipped components
//   - ColorError (Red): failures, rollback problems
//   - ColorMuted (Gray): secondary text, captured output
//
// Every status is shown as icon + color + text so that output stays readable
// without color.
//
// # NO_COLOR Support
//
// Call CheckNoColor() at the start of commands to respect the NO_COLOR environment
// variable. Colors are also disabled when TERM=dumb.
package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/ratchet/internal/release"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for active states and headings.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for dry runs and attention-required items.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
	Warn   lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		Warn: lipgloss.NewStyle().Foreground(ColorWarning),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Heading lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Heading: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or TERM=dumb.
// This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// StateColor returns the semantic color of a coordinator state.
func StateColor(s release.State) lipgloss.AdaptiveColor {
	switch s {
	case release.StateDone:
		return ColorSuccess
	case release.StateAborted, release.StateRollingBack:
		return ColorError
	case release.StateAwaitingConfirmation:
		return ColorWarning
	case release.StateIdle:
		return ColorMuted
	case release.StatePlanning, release.StateExecuting, release.StatePushing:
		return ColorPrimary
	default:
		return ColorMuted
	}
}

// StateIcon returns the icon for a coordinator state.
func StateIcon(s release.State) string {
	switch s {
	case release.StateDone:
		return "✓"
	case release.StateAborted:
		return "✗"
	case release.StateRollingBack:
		return "↺"
	case release.StateAwaitingConfirmation:
		return "?"
	case release.StateIdle:
		return "○"
	case release.StatePlanning, release.StateExecuting, release.StatePushing:
		return "●"
	default:
		return "?"
	}
}

// StateTitle renders a state as words: "awaiting_confirmation" → "Awaiting Confirmation".
func StateTitle(s release.State) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// StateLabel renders a state with its icon and color.
func StateLabel(s release.State) string {
	return lipgloss.NewStyle().Foreground(StateColor(s)).Render(StateIcon(s) + " " + StateTitle(s))
}
