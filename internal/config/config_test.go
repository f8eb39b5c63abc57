package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scand.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
static_devices:
  - name: office-scanner
    uri: "http://192.168.1.50/eSCL/"
    protocol: escl
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.Interval)
	assert.Equal(t, 5*time.Second, cfg.Discovery.ReadyTimeout)
	assert.Len(t, cfg.StaticDevices, 1)
	assert.Equal(t, "office-scanner", cfg.StaticDevices[0].Name)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
model_is_netname: true
retry:
  max_attempts: 3
  interval: 500ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.ModelIsNetname)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Interval)
}

func TestLoadRejectsDuplicateDeviceNames(t *testing.T) {
	path := writeConfig(t, `
static_devices:
  - name: dup
    uri: "http://a/eSCL/"
    protocol: escl
  - name: dup
    uri: "http://b/eSCL/"
    protocol: escl
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingURI(t *testing.T) {
	path := writeConfig(t, `
static_devices:
  - name: no-uri
    protocol: escl
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
