package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mrz1836/ratchet/internal/config"
	"github.com/mrz1836/ratchet/internal/domain"
	"github.com/mrz1836/ratchet/internal/pipeline"
	"github.com/mrz1836/ratchet/internal/planner"
)

// Table headers.
//
//nolint:gochecknoglobals // Shared column definitions
var (
	PlanHeaders      = []string{"Component", "Current", "Target", "Tag", "Verification"}
	ComponentHeaders = []string{"Component", "Manifest", "Package", "UI", "Build"}
	ToolHeaders      = []string{"Tool", "Command", "Version", "Status", "Required"}
)

// columnWidths returns the display width of each column. Widths use terminal
// cells, so icons and wide characters line up.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := runewidth.StringWidth(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	return widths
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// PlanRows renders one row per planned item. tagFor renders the release tag
// and opts selects the verification kinds shown.
func PlanRows(plan *planner.Plan, tagFor func(domain.PlanItem) string, opts pipeline.Options) [][]string {
	if plan == nil {
		return nil
	}
	rows := make([][]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		target := item.Target.String()
		if item.IsDowngrade() {
			target += " ⚠"
		}
		p := pipeline.Resolve(item.Component, item.Target, opts)
		rows = append(rows, []string{
			item.Component.Name,
			item.Current.String(),
			target,
			tagFor(item),
			strings.Join(p.KindNames(), " + "),
		})
	}
	return rows
}

// ComponentRows renders one row per configured component.
func ComponentRows(components []domain.Component) [][]string {
	rows := make([][]string, 0, len(components))
	for _, c := range components {
		ui := "-"
		if c.HasUIWorkspace() {
			ui = c.UIWorkspace
		}
		build := "cargo --bin " + c.BinaryName()
		if c.EmbedUIFeature != "" {
			build += " --features " + c.EmbedUIFeature
		}
		if c.SupportsContainer() {
			build += " | docker " + c.Container.Image
		}
		rows = append(rows, []string{c.Name, c.Manifest, c.PackageName(), ui, build})
	}
	return rows
}

// ToolRows renders doctor results.
func ToolRows(result *config.ToolDetectionResult) [][]string {
	rows := make([][]string, 0, len(result.Tools))
	for _, t := range result.Tools {
		version := t.CurrentVersion
		if version == "" {
			version = "-"
		}
		required := "no"
		if t.Required {
			required = "yes"
		}
		rows = append(rows, []string{t.Name, t.Command, version, toolStatusLabel(t.Status), required})
	}
	return rows
}

func toolStatusLabel(s config.ToolStatus) string {
	switch s {
	case config.ToolStatusInstalled:
		return "✓ " + s.String()
	case config.ToolStatusOutdated:
		return "⚠ " + s.String()
	case config.ToolStatusMissing:
		return "✗ " + s.String()
	default:
		return s.String()
	}
}
