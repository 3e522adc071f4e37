package config

import (
	"strings"

	"github.com/mrz1836/ratchet/internal/constants"
)

// Built-in component names.
const (
	ComponentForwarder = "forwarder"
	ComponentReceiver  = "receiver"
	ComponentStreamer  = "streamer"
	ComponentEmulator  = "emulator"
	ComponentServer    = "server"
)

// DefaultConfig returns a new Config with the built-in default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Release: ReleaseConfig{
			Branch:         constants.DefaultReleaseBranch,
			Remote:         constants.DefaultRemote,
			Lockfile:       constants.DefaultLockfile,
			CommitTemplate: constants.DefaultCommitTemplate,
			TagTemplate:    constants.DefaultTagTemplate,
		},
		Verification: VerificationConfig{
			Timeout:    0,
			LiveOutput: true,
		},
		Tools: ToolsConfig{
			Cargo:  constants.DefaultCargo,
			NPM:    constants.DefaultNPM,
			Docker: constants.DefaultDocker,
			Git:    constants.DefaultGit,
		},
		Components: DefaultComponents(),
	}
}

// DefaultComponents returns the built-in component list of the race-timing
// workspace: three UI-bearing services, two headless ones, and the server as
// the only container-capable component.
func DefaultComponents() []ComponentConfig {
	components := []ComponentConfig{
		{
			Name:           ComponentForwarder,
			UIWorkspace:    "apps/forwarder-ui",
			EmbedUIFeature: constants.DefaultEmbedUIFeature,
		},
		{
			Name:           ComponentReceiver,
			UIWorkspace:    "apps/receiver-ui",
			EmbedUIFeature: constants.DefaultEmbedUIFeature,
		},
		{
			Name: ComponentStreamer,
		},
		{
			Name:    ComponentEmulator,
			Package: "emulator-bin",
		},
		{
			Name:        ComponentServer,
			UIWorkspace: "apps/server-ui",
			Container: &ContainerConfig{
				Dockerfile: "services/server/Dockerfile",
				Image:      "iwismer/rt-server",
			},
		},
	}
	for i := range components {
		components[i].Manifest = DefaultManifestPath(components[i].Name)
	}
	return components
}

// DefaultManifestPath returns the conventional manifest location for a component.
func DefaultManifestPath(name string) string {
	return strings.ReplaceAll(constants.DefaultManifestPattern, "{component}", name)
}

// applyComponentDefaults fills derived fields that were left empty.
// An empty component list falls back to the built-in components.
func applyComponentDefaults(cfg *Config) {
	if len(cfg.Components) == 0 {
		cfg.Components = DefaultComponents()
	}
	for i := range cfg.Components {
		c := &cfg.Components[i]
		if c.Manifest == "" {
			c.Manifest = DefaultManifestPath(c.Name)
		}
	}
}
