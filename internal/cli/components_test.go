package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ratchet/internal/domain"
	rerrors "github.com/mrz1836/ratchet/internal/errors"
)

func TestComponents_BuiltIns(t *testing.T) {
	h := newHarness(t)

	stdout, _, err := h.run(t, "components", "--repo", t.TempDir())

	require.NoError(t, err)
	for _, name := range []string{"forwarder", "receiver", "streamer", "emulator", "server"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "emulator-bin")
	assert.Contains(t, stdout, "--features embed-ui")
	assert.Contains(t, stdout, "docker iwismer/rt-server")
}

func TestComponents_ProjectConfigReplacesDefaults(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	writeFile(t, dir, ".ratchet/config.yaml", `components:
  - name: gateway
    binary: gw
`)

	stdout, _, err := h.run(t, "components", "-o", "json", "--repo", dir)

	require.NoError(t, err)
	var got []domain.Component
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "gateway", got[0].Name)
	assert.Equal(t, "services/gateway/Cargo.toml", got[0].Manifest)
	assert.Equal(t, "gw", got[0].BinaryName())
}

func TestComponents_InvalidConfig(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	writeFile(t, dir, ".ratchet/config.yaml", `components:
  - name: a
  - name: a
`)

	_, _, err := h.run(t, "components", "--repo", dir)

	require.ErrorIs(t, err, rerrors.ErrConfigInvalid)
}
