package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/constants"
	"github.com/mrz1836/ratchet/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, constants.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromPaths_DefaultsWhenNoFiles(t *testing.T) {
	cfg, err := LoadFromPaths(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.Release.Branch)
	assert.Equal(t, "origin", cfg.Release.Remote)
	assert.Equal(t, "Cargo.lock", cfg.Release.Lockfile)
	assert.Equal(t, constants.DefaultCommitTemplate, cfg.Release.CommitTemplate)
	assert.Equal(t, constants.DefaultTagTemplate, cfg.Release.TagTemplate)
	assert.Zero(t, cfg.Verification.Timeout)
	assert.True(t, cfg.Verification.LiveOutput)
	assert.Equal(t, "cargo", cfg.Tools.Cargo)
	assert.Equal(t, []string{"forwarder", "receiver", "streamer", "emulator", "server"}, cfg.ComponentNames())
}

func TestLoadFromPaths_MissingFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPaths(context.Background(),
		filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "master", cfg.Release.Branch)
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	globalConfig := writeConfig(t, t.TempDir(), `
release:
  branch: main
  remote: upstream
verification:
  timeout: 45m
`)
	projectConfig := writeConfig(t, t.TempDir(), `
release:
  branch: release
tools:
  npm: pnpm
`)

	cfg, err := LoadFromPaths(context.Background(), projectConfig, globalConfig)
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Release.Branch, "project wins over global")
	assert.Equal(t, "upstream", cfg.Release.Remote, "global value survives the merge")
	assert.Equal(t, 45*time.Minute, cfg.Verification.Timeout, "durations decode from strings")
	assert.Equal(t, "pnpm", cfg.Tools.NPM)
	assert.Equal(t, "cargo", cfg.Tools.Cargo)
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	projectConfig := writeConfig(t, t.TempDir(), `
release:
  remote: upstream
`)
	t.Setenv("RATCHET_RELEASE_REMOTE", "mirror")
	t.Setenv("RATCHET_VERIFICATION_TIMEOUT", "90s")

	cfg, err := LoadFromPaths(context.Background(), projectConfig, "")
	require.NoError(t, err)
	assert.Equal(t, "mirror", cfg.Release.Remote)
	assert.Equal(t, 90*time.Second, cfg.Verification.Timeout)
}

func TestLoadFromPaths_CustomComponentsReplaceDefaults(t *testing.T) {
	projectConfig := writeConfig(t, t.TempDir(), `
components:
  - name: api
    ui_workspace: apps/api-ui
    embed_ui_feature: bundle
  - name: worker
    manifest: crates/worker/Cargo.toml
    package: worker-bin
    container:
      dockerfile: crates/worker/Dockerfile
      image: example/worker
`)

	cfg, err := LoadFromPaths(context.Background(), projectConfig, "")
	require.NoError(t, err)
	require.Len(t, cfg.Components, 2)

	api := cfg.Components[0]
	assert.Equal(t, "services/api/Cargo.toml", api.Manifest, "manifest defaults from the name")
	assert.Equal(t, "bundle", api.EmbedUIFeature)
	assert.Nil(t, api.Container)

	worker := cfg.Components[1]
	assert.Equal(t, "crates/worker/Cargo.toml", worker.Manifest)
	require.NotNil(t, worker.Container)
	assert.Equal(t, "example/worker", worker.Container.Image)
}

func TestLoadFromPaths_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative timeout", "verification:\n  timeout: -5s\n"},
		{"empty branch", "release:\n  branch: \"\"\n"},
		{"duplicate component", "components:\n  - name: a\n  - name: a\n"},
		{"bad duration", "verification:\n  timeout: soon\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tc.body)
			_, err := LoadFromPaths(context.Background(), path, "")
			require.Error(t, err)
			require.ErrorIs(t, err, errors.ErrConfigInvalid)
		})
	}
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "release: [unclosed\n")
	_, err := LoadFromPaths(context.Background(), path, "")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_ReadsProjectConfigFromRepoRoot(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(constants.HomeEnvVar, "")
	repo := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repo, constants.RatchetHome), 0o750))
	writeConfig(t, filepath.Join(repo, constants.RatchetHome), "release:\n  lockfile: \"\"\n")

	cfg, err := Load(context.Background(), repo)
	require.NoError(t, err)
	assert.Empty(t, cfg.Release.Lockfile, "an explicit empty lockfile disables lockfile staging")
}
