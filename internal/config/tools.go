// This file implements the tool detection behind `ratchet doctor`.
package config

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/ratchet/internal/constants"
)

// Tool display names.
const (
	ToolGit    = "git"
	ToolCargo  = "cargo"
	ToolNPM    = "npm"
	ToolDocker = "docker"
)

// ToolStatus represents the installation status of an external tool.
//
//nolint:recvcheck // UnmarshalText requires a pointer receiver
type ToolStatus int

const (
	// ToolStatusMissing indicates the tool is not on PATH.
	ToolStatusMissing ToolStatus = iota

	// ToolStatusInstalled indicates the tool is present and new enough.
	ToolStatusInstalled

	// ToolStatusOutdated indicates the tool is present but below the minimum version.
	ToolStatusOutdated
)

// maxVersionSegments is the number of segments compared (major.minor.patch).
const maxVersionSegments = 3

// unknownVersion is reported when a tool is present but its version cannot be read.
const unknownVersion = "unknown"

//nolint:gochecknoglobals // status names are fixed
var toolStatusNames = map[ToolStatus]string{
	ToolStatusMissing:   "missing",
	ToolStatusInstalled: "installed",
	ToolStatusOutdated:  "outdated",
}

func (s ToolStatus) String() string {
	if name, ok := toolStatusNames[s]; ok {
		return name
	}
	return unknownVersion
}

// MarshalText renders the status name, so JSON output reads "installed".
func (s ToolStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name. Unrecognized names read as missing.
func (s *ToolStatus) UnmarshalText(text []byte) error {
	*s = ToolStatusMissing
	for status, name := range toolStatusNames {
		if name == string(text) {
			*s = status
		}
	}
	return nil
}

// Tool represents an external tool that ratchet invokes.
type Tool struct {
	// Name is the tool identifier (e.g., "git", "cargo").
	Name string `json:"name"`

	// Command is the binary that was checked, which may be overridden in config.
	Command string `json:"command"`

	// Required indicates if every release needs the tool.
	Required bool `json:"required"`

	// MinVersion is the minimum required version (semver format).
	MinVersion string `json:"min_version,omitempty"`

	// CurrentVersion is the detected installed version.
	CurrentVersion string `json:"current_version,omitempty"`

	// Status is the current installation status.
	Status ToolStatus `json:"status"`

	// InstallHint provides installation instructions for missing tools.
	InstallHint string `json:"install_hint"`
}

// ToolDetectionResult holds the results of detecting all tools.
type ToolDetectionResult struct {
	// Tools contains the detection result for each tool, in check order.
	Tools []Tool `json:"tools"`

	// HasMissingRequired indicates if any required tools are missing or outdated.
	HasMissingRequired bool `json:"has_missing_required"`
}

// MissingRequiredTools returns a list of required tools that are missing or outdated.
func (r *ToolDetectionResult) MissingRequiredTools() []Tool {
	var missing []Tool
	for _, tool := range r.Tools {
		if tool.Required && tool.Status != ToolStatusInstalled {
			missing = append(missing, tool)
		}
	}
	return missing
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)

	// Run executes a command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// DefaultCommandExecutor implements CommandExecutor using os/exec.
type DefaultCommandExecutor struct{}

// LookPath searches for an executable in the PATH.
func (e *DefaultCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and returns its output.
func (e *DefaultCommandExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// ToolDetector detects the installation status of external tools.
type ToolDetector interface {
	// Detect checks all configured tools and returns their status.
	Detect(ctx context.Context) (*ToolDetectionResult, error)
}

// DefaultToolDetector implements ToolDetector.
type DefaultToolDetector struct {
	executor CommandExecutor
	tools    ToolsConfig
}

// NewToolDetector creates a detector that checks the configured binaries.
func NewToolDetector(tools ToolsConfig) *DefaultToolDetector {
	return NewToolDetectorWithExecutor(tools, &DefaultCommandExecutor{})
}

// NewToolDetectorWithExecutor creates a new DefaultToolDetector with a custom executor.
func NewToolDetectorWithExecutor(tools ToolsConfig, executor CommandExecutor) *DefaultToolDetector {
	return &DefaultToolDetector{
		executor: executor,
		tools:    tools,
	}
}

// toolCheck describes how to find one tool and read its version.
type toolCheck struct {
	name       string
	command    string
	minVersion string
	required   bool
	hint       string
	// version captures the version number from `<command> --version`.
	version *regexp.Regexp
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// checks lists the tools a release invokes. docker is optional because
// only container image builds need it.
func (d *DefaultToolDetector) checks() []toolCheck {
	return []toolCheck{
		{
			name: ToolGit, command: orDefault(d.tools.Git, constants.DefaultGit),
			minVersion: constants.MinVersionGit, required: true,
			hint:    "Install Git from https://git-scm.com/downloads",
			version: regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`),
		},
		{
			name: ToolCargo, command: orDefault(d.tools.Cargo, constants.DefaultCargo),
			minVersion: constants.MinVersionCargo, required: true,
			hint:    "Install Rust with rustup: https://rustup.rs",
			version: regexp.MustCompile(`cargo (\d+\.\d+(?:\.\d+)?)`),
		},
		{
			// npm prints a bare "10.2.4".
			name: ToolNPM, command: orDefault(d.tools.NPM, constants.DefaultNPM),
			minVersion: constants.MinVersionNPM, required: true,
			hint:    "Install Node.js (bundles npm) from https://nodejs.org",
			version: regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`),
		},
		{
			name: ToolDocker, command: orDefault(d.tools.Docker, constants.DefaultDocker),
			hint:    "Install Docker from https://docs.docker.com/get-docker/ (needed for --container-build)",
			version: regexp.MustCompile(`(?i)docker version (\d+\.\d+(?:\.\d+)?)`),
		},
	}
}

// Detect checks every tool concurrently. Results keep check order.
func (d *DefaultToolDetector) Detect(ctx context.Context) (*ToolDetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detectCtx, cancel := context.WithTimeout(ctx, constants.ToolDetectionTimeout)
	defer cancel()

	checks := d.checks()
	result := &ToolDetectionResult{Tools: make([]Tool, len(checks))}

	g, gCtx := errgroup.WithContext(detectCtx)
	for i, p := range checks {
		g.Go(func() error {
			result.Tools[i] = d.run(gCtx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to detect tools: %w", err)
	}

	result.HasMissingRequired = len(result.MissingRequiredTools()) > 0
	return result, nil
}

// run resolves one check. A tool that is on PATH but whose version cannot be
// read counts as installed with an unknown version.
func (d *DefaultToolDetector) run(ctx context.Context, p toolCheck) Tool {
	tool := Tool{
		Name:        p.name,
		Command:     p.command,
		Required:    p.required,
		MinVersion:  p.minVersion,
		InstallHint: p.hint,
		Status:      ToolStatusMissing,
	}
	if _, err := d.executor.LookPath(p.command); err != nil {
		return tool
	}

	tool.Status = ToolStatusInstalled
	tool.CurrentVersion = unknownVersion
	output, err := d.executor.Run(ctx, p.command, constants.VersionFlagStandard)
	if err != nil {
		return tool
	}
	m := p.version.FindStringSubmatch(output)
	if len(m) < 2 {
		return tool
	}

	tool.CurrentVersion = m[1]
	if p.minVersion != "" && CompareVersions(tool.CurrentVersion, p.minVersion) < 0 {
		tool.Status = ToolStatusOutdated
	}
	return tool
}

// CompareVersions compares two semantic versions.
// Returns:
//
//	-1 if current < required
//	 0 if current == required
//	 1 if current > required
func CompareVersions(current, required string) int {
	current = strings.TrimPrefix(current, "v")
	required = strings.TrimPrefix(required, "v")

	currentParts := parseVersionParts(current)
	requiredParts := parseVersionParts(required)

	for i := 0; i < maxVersionSegments; i++ {
		if currentParts[i] < requiredParts[i] {
			return -1
		}
		if currentParts[i] > requiredParts[i] {
			return 1
		}
	}
	return 0
}

// parseVersionParts parses a version string into [major, minor, patch].
func parseVersionParts(version string) [maxVersionSegments]int {
	var parts [maxVersionSegments]int
	segments := strings.Split(version, ".")

	for i := 0; i < len(segments) && i < maxVersionSegments; i++ {
		// Keep only the leading digits ("0-rc1" → "0").
		numStr := segments[i]
		for j, c := range numStr {
			if c < '0' || c > '9' {
				numStr = numStr[:j]
				break
			}
		}
		if numStr != "" {
			parts[i], _ = strconv.Atoi(numStr)
		}
	}
	return parts
}

// FormatMissingToolsError creates a formatted error message for missing tools.
func FormatMissingToolsError(missing []Tool) string {
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Missing required tools:\n\n")

	for _, tool := range missing {
		status := "missing"
		if tool.Status == ToolStatusOutdated {
			status = fmt.Sprintf("outdated (have %s, need %s)", tool.CurrentVersion, tool.MinVersion)
		}
		fmt.Fprintf(&sb, "  • %s: %s\n", tool.Name, status)
		fmt.Fprintf(&sb, "    Install: %s\n\n", tool.InstallHint)
	}

	return sb.String()
}
