// Package config provides configuration management for ratchet with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (bound by the cli package)
//  2. Environment variables (RATCHET_* prefix)
//  3. Project config (<repo>/.ratchet/config.yaml)
//  4. Global config (~/.ratchet/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
// Lists such as components are replaced as a whole, never merged.
//
// IMPORTANT: This package may import internal/constants, internal/errors and
// internal/domain, but MUST NOT import any other internal packages.
package config

import "time"

// Config is the root configuration structure for ratchet.
type Config struct {
	// Release contains settings for the release transaction.
	Release ReleaseConfig `yaml:"release" mapstructure:"release"`

	// Verification contains settings for the per-component build pipeline.
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`

	// Tools names the external binaries ratchet invokes.
	Tools ToolsConfig `yaml:"tools" mapstructure:"tools"`

	// Components lists the independently versioned parts of the repository.
	// Default: the five built-in services (see DefaultComponents).
	Components []ComponentConfig `yaml:"components" mapstructure:"components"`
}

// ReleaseConfig contains settings for the release transaction.
type ReleaseConfig struct {
	// Branch is the only branch a release may start from.
	// Default: "master"
	Branch string `yaml:"branch" mapstructure:"branch"`

	// Remote is the remote the final atomic push targets.
	// Default: "origin"
	Remote string `yaml:"remote" mapstructure:"remote"`

	// Lockfile is staged with every manifest bump. Empty disables it.
	// Default: "Cargo.lock"
	Lockfile string `yaml:"lockfile" mapstructure:"lockfile"`

	// CommitTemplate renders the release commit message.
	// Placeholders: {component}, {version}.
	CommitTemplate string `yaml:"commit_template" mapstructure:"commit_template"`

	// TagTemplate renders the release tag name.
	// Placeholders: {component}, {version}.
	TagTemplate string `yaml:"tag_template" mapstructure:"tag_template"`
}

// VerificationConfig contains settings for verification step execution.
type VerificationConfig struct {
	// Timeout bounds each individual step. Zero disables the bound.
	// Default: 0 (release builds can take arbitrarily long)
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// LiveOutput streams step output to the terminal while it is captured.
	// Default: true
	LiveOutput bool `yaml:"live_output" mapstructure:"live_output"`
}

// ToolsConfig names the external binaries ratchet invokes.
type ToolsConfig struct {
	Cargo  string `yaml:"cargo" mapstructure:"cargo"`
	NPM    string `yaml:"npm" mapstructure:"npm"`
	Docker string `yaml:"docker" mapstructure:"docker"`
	Git    string `yaml:"git" mapstructure:"git"`
}

// ComponentConfig describes one releasable component.
type ComponentConfig struct {
	// Name is the identifier used on the command line and in tags.
	Name string `yaml:"name" mapstructure:"name"`

	// Manifest is the Cargo.toml path relative to the repository root.
	// Default: services/<name>/Cargo.toml
	Manifest string `yaml:"manifest,omitempty" mapstructure:"manifest"`

	// Package is the cargo package name. Default: the component name.
	Package string `yaml:"package,omitempty" mapstructure:"package"`

	// Binary is the cargo binary target. Default: the component name.
	Binary string `yaml:"binary,omitempty" mapstructure:"binary"`

	// UIWorkspace is the npm workspace path checked before the build.
	UIWorkspace string `yaml:"ui_workspace,omitempty" mapstructure:"ui_workspace"`

	// EmbedUIFeature is the cargo feature enabled on release builds.
	EmbedUIFeature string `yaml:"embed_ui_feature,omitempty" mapstructure:"embed_ui_feature"`

	// Container is set for the component that can be built as an image.
	Container *ContainerConfig `yaml:"container,omitempty" mapstructure:"container"`
}

// ContainerConfig describes a component's container image build.
type ContainerConfig struct {
	// Dockerfile is the Dockerfile path relative to the repository root.
	Dockerfile string `yaml:"dockerfile" mapstructure:"dockerfile"`

	// Image is the default image repository.
	Image string `yaml:"image" mapstructure:"image"`
}
