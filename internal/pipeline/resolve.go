package pipeline

import (
	"fmt"
	"strings"

	"github.com/mrz1836/ratchet/internal/domain"
)

// Options controls pipeline selection for a release run.
type Options struct {
	// ContainerBuild requests the image build for the container-capable component.
	ContainerBuild bool

	// ContainerImage overrides the component's default image repository.
	ContainerImage string

	// Tools are the executables used for the steps.
	Tools Tools
}

// Pipeline is the resolved verification for one component at one version.
type Pipeline struct {
	Component string   `json:"component"`
	Kinds     []Kind   `json:"-"`
	Steps     []Step   `json:"steps"`
	Notes     []string `json:"notes,omitempty"`
}

// KindNames lists the build kinds in execution order.
func (p Pipeline) KindNames() []string {
	names := make([]string, 0, len(p.Kinds))
	for _, k := range p.Kinds {
		names = append(names, k.Name())
	}
	return names
}

// Resolve selects the build kinds for c at version v.
//
// UI checks run first when the component declares a UI workspace. The
// container image build replaces the release binary build when the component
// supports it and opts request it; otherwise the release binary is built,
// with the embed-UI feature when the component declares one.
func Resolve(c domain.Component, v domain.Version, opts Options) Pipeline {
	p := Pipeline{Component: c.Name}

	if c.HasUIWorkspace() {
		p.Kinds = append(p.Kinds, UIChecks{Workspace: c.UIWorkspace})
	}

	switch {
	case c.SupportsContainer() && opts.ContainerBuild:
		repo := c.Container.Image
		if opts.ContainerImage != "" {
			repo = opts.ContainerImage
		}
		p.Kinds = append(p.Kinds, ContainerImage{
			Repository: repo,
			Dockerfile: c.Container.Dockerfile,
			Version:    v,
		})
	default:
		if c.SupportsContainer() {
			p.Notes = append(p.Notes,
				fmt.Sprintf("skipping %s container image build (enable with --container-build)", c.Name))
		}
		bin := ReleaseBinary{Package: c.PackageName(), Binary: c.BinaryName()}
		if c.EmbedUIFeature != "" {
			bin.Features = []string{c.EmbedUIFeature}
		}
		p.Kinds = append(p.Kinds, bin)
	}

	for _, k := range p.Kinds {
		p.Steps = append(p.Steps, k.Steps(opts.Tools)...)
	}
	return p
}

// quoteArgv joins argv for display, quoting arguments that contain spaces
// or shell metacharacters.
func quoteArgv(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`|&;<>()*?[]{}!#~") {
			parts[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
			continue
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
