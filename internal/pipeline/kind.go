package pipeline

import (
	"fmt"

	"github.com/mrz1836/ratchet/internal/constants"
	"github.com/mrz1836/ratchet/internal/domain"
)

// Step is a single external command in a pipeline.
type Step struct {
	// Kind names the build kind that produced the step.
	Kind string `json:"kind"`

	// Argv is the command and its arguments.
	Argv []string `json:"argv"`
}

// String renders the step as a shell-like command line for display.
func (s Step) String() string {
	return quoteArgv(s.Argv)
}

// Tools holds the executable used for each external build tool.
type Tools struct {
	Cargo  string `json:"cargo" yaml:"cargo"`
	NPM    string `json:"npm" yaml:"npm"`
	Docker string `json:"docker" yaml:"docker"`
}

// withDefaults fills empty tool names with the standard binaries.
func (t Tools) withDefaults() Tools {
	if t.Cargo == "" {
		t.Cargo = constants.DefaultCargo
	}
	if t.NPM == "" {
		t.NPM = constants.DefaultNPM
	}
	if t.Docker == "" {
		t.Docker = constants.DefaultDocker
	}
	return t
}

// Kind is one verification build. The concrete kinds are UIChecks,
// ContainerImage, and ReleaseBinary; each produces its own step list.
type Kind interface {
	// Name identifies the kind in logs and output.
	Name() string
	// Steps returns the commands for this kind using the given tools.
	Steps(tools Tools) []Step

	isKind()
}

// Kind names.
const (
	KindUIChecks       = "ui-checks"
	KindContainerImage = "container-image"
	KindReleaseBinary  = "release-binary"
)

// UIChecks installs the UI dependencies and runs lint, type check, and tests
// for one npm workspace.
type UIChecks struct {
	Workspace string
}

// Name implements Kind.
func (UIChecks) Name() string { return KindUIChecks }

// Steps implements Kind.
func (k UIChecks) Steps(tools Tools) []Step {
	npm := tools.withDefaults().NPM
	return []Step{
		{Kind: KindUIChecks, Argv: []string{npm, "ci"}},
		{Kind: KindUIChecks, Argv: []string{npm, "run", "lint", "--workspace", k.Workspace}},
		{Kind: KindUIChecks, Argv: []string{npm, "run", "check", "--workspace", k.Workspace}},
		{Kind: KindUIChecks, Argv: []string{npm, "test", "--workspace", k.Workspace}},
	}
}

func (UIChecks) isKind() {}

// ContainerImage builds the component's image tagged with the release
// version and latest.
type ContainerImage struct {
	Repository string
	Dockerfile string
	Version    domain.Version
}

// Name implements Kind.
func (ContainerImage) Name() string { return KindContainerImage }

// VersionTag returns the image reference tagged with the release version.
func (k ContainerImage) VersionTag() string {
	return fmt.Sprintf("%s:v%s", k.Repository, k.Version)
}

// LatestTag returns the image reference tagged latest.
func (k ContainerImage) LatestTag() string {
	return k.Repository + ":" + constants.LatestImageTag
}

// Steps implements Kind.
func (k ContainerImage) Steps(tools Tools) []Step {
	return []Step{{
		Kind: KindContainerImage,
		Argv: []string{
			tools.withDefaults().Docker, "build",
			"-t", k.VersionTag(),
			"-t", k.LatestTag(),
			"-f", k.Dockerfile,
			".",
		},
	}}
}

func (ContainerImage) isKind() {}

// ReleaseBinary compiles the component's binary in release mode.
type ReleaseBinary struct {
	Package  string
	Binary   string
	Features []string
}

// Name implements Kind.
func (ReleaseBinary) Name() string { return KindReleaseBinary }

// Steps implements Kind.
func (k ReleaseBinary) Steps(tools Tools) []Step {
	argv := []string{tools.withDefaults().Cargo, "build", "--release", "--package", k.Package, "--bin", k.Binary}
	for _, f := range k.Features {
		argv = append(argv, "--features", f)
	}
	return []Step{{Kind: KindReleaseBinary, Argv: argv}}
}

func (ReleaseBinary) isKind() {}
