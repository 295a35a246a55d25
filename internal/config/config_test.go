// ABOUTME: Tests for server/client config defaults and YAML overrides
// ABOUTME: Covers missing-file and partial-override cases
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, ":4318", cfg.ListenAddr)
	assert.False(t, cfg.Verbose)
}

func TestLoadServerConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \"127.0.0.1:9000\"\nverbose: true\n"), 0o600))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "driftsync-server", cfg.ServiceName, "fields absent from the file keep their default")
}

func TestLoadServerConfigMissingFile(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	assert.Equal(t, 0.001, cfg.Scale)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.True(t, cfg.MeasureAccuracy)
}

func TestLoadClientConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_addr: \"drift.example:4318\"\nstream: true\n"), 0o600))

	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "drift.example:4318", cfg.ServerAddr)
	assert.True(t, cfg.Stream)
	assert.Equal(t, 10, cfg.Capacity, "fields absent from the file keep their default")
}
