package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
version: 1
backend:
  url: https://panel.example.com/api
  token: abc123
  timeout: 30s
clusters:
  pve-east:
    label: East
  pve-west: {}
default_cluster: pve-east
poll:
  interval: 5s
ssh:
  user: ops
  port: 2222
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://panel.example.com/api", cfg.Backend.URL)
	assert.Equal(t, "abc123", cfg.Backend.Token)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "pve-east", cfg.DefaultCluster)
	assert.Equal(t, 5*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "ops", cfg.SSH.User)
	assert.Equal(t, 2222, cfg.SSH.Port)

	assert.Equal(t, "East", cfg.Label("pve-east"))
	assert.Equal(t, "pve-west", cfg.Label("pve-west"), "label defaults to the id")
	assert.Equal(t, []string{"pve-east", "pve-west"}, cfg.ClusterIDs())
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
backend:
  url: http://localhost:8000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Poll.Interval)
	assert.Equal(t, 22, cfg.SSH.Port)
}

func TestLoad_TokenEnvOverridesFile(t *testing.T) {
	t.Setenv(TokenEnvVar, "from-env")
	path := writeConfig(t, t.TempDir(), `
backend:
  url: http://localhost:8000
  token: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Backend.Token)
}

func TestLoad_MissingBackendURL(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "version: 1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "backend URL")
}

func TestLoad_BadDefaultCluster(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
backend:
  url: http://localhost:8000
clusters:
  pve-east: {}
default_cluster: nope
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "nope")
}

func TestLoad_FutureVersion(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
version: 99
backend:
  url: http://localhost:8000
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "from the future")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "backend: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_ExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_CurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "backend:\n  url: http://localhost:8000\n")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found, err := Find("")
	require.NoError(t, err)

	// Resolve symlinks so macOS /var vs /private/var compares equal.
	wantReal, _ := filepath.EvalSymlinks(path)
	gotReal, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, wantReal, gotReal)
}

func TestValidate_NegativeInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.URL = "http://localhost:8000"
	cfg.Poll.Interval = -time.Second

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll.interval")
}
