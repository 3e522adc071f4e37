// Package domain provides shared domain types for ratchet.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

// Component is an independently versioned part of the repository with its
// own manifest and build target.
type Component struct {
	// Name is the component identifier used on the command line, in commit
	// messages, and in tag names.
	Name string `json:"name"`

	// Manifest is the manifest path relative to the repository root.
	Manifest string `json:"manifest"`

	// Package is the cargo package name. Defaults to Name.
	Package string `json:"package,omitempty"`

	// Binary is the cargo binary target. Defaults to Name.
	Binary string `json:"binary,omitempty"`

	// UIWorkspace is the npm workspace path of the component's UI, if any.
	UIWorkspace string `json:"ui_workspace,omitempty"`

	// EmbedUIFeature is the cargo feature that embeds UI assets into the
	// binary. Empty when the component is not a UI-bearing runtime service.
	EmbedUIFeature string `json:"embed_ui_feature,omitempty"`

	// Container is set when the component can be built as a container image.
	Container *ContainerSpec `json:"container,omitempty"`
}

// ContainerSpec describes how a component's container image is built.
type ContainerSpec struct {
	// Dockerfile is the Dockerfile path relative to the repository root.
	Dockerfile string `json:"dockerfile"`

	// Image is the default image repository, e.g. "iwismer/rt-server".
	Image string `json:"image"`
}

// PackageName returns the cargo package name, falling back to Name.
func (c Component) PackageName() string {
	if c.Package != "" {
		return c.Package
	}
	return c.Name
}

// BinaryName returns the cargo binary target, falling back to Name.
func (c Component) BinaryName() string {
	if c.Binary != "" {
		return c.Binary
	}
	return c.Name
}

// HasUIWorkspace reports whether the component carries a UI workspace.
func (c Component) HasUIWorkspace() bool {
	return c.UIWorkspace != ""
}

// SupportsContainer reports whether the component can be built as an image.
func (c Component) SupportsContainer() bool {
	return c.Container != nil
}
