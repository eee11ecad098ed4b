package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "conan.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadStorageRemotesAndDefaults(t *testing.T) {
	path := writeConf(t, `
[storage]
path = /var/conan/data

[remotes]
conancenter = https://center.example.com
internal = https://artifactory.example.com/conan

[settings_defaults]
os = Linux
compiler = gcc
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/conan/data", cfg.StoragePath)
	require.Len(t, cfg.Remotes, 2)
	assert.Equal(t, "conancenter", cfg.Remotes[0].Name)
	assert.Equal(t, "gcc", cfg.SettingsDefault["compiler"])

	url, ok := cfg.RemoteURL("internal")
	assert.True(t, ok)
	assert.Equal(t, "https://artifactory.example.com/conan", url)
}

func TestLoadMissingSectionsToleratedWithDefaultStoragePath(t *testing.T) {
	path := writeConf(t, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.StoragePath)
	assert.Empty(t, cfg.Remotes)
}

func TestLoadMissingFileToleratedWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.conf")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.StoragePath)
	assert.Empty(t, cfg.Remotes)
}

func TestLoadEnvVarOverridesStoragePath(t *testing.T) {
	path := writeConf(t, `
[storage]
path = /var/conan/data
`)
	t.Setenv("CONAN_STORAGE_PATH", "/tmp/override-storage")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override-storage", cfg.StoragePath)
}
