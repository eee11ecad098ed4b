// Package config reads the client configuration file (conan.conf in the
// original tool): storage root, ordered remote list, and settings
// defaults, in the INI dialect original_source/conans/client/conf ships
// as its default template.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
	"gopkg.in/ini.v1"
)

const (
	storageSection  = "storage"
	storagePathKey  = "path"
	remotesSection  = "remotes"
	defaultsSection = "settings_defaults"
	storageEnvVar   = "CONAN_STORAGE_PATH"

	defaultStoragePath = "~/.conan/data"
)

// Remote is one entry of the [remotes] section; Go maps don't preserve
// insertion order, so this is a slice rather than a map to keep the
// preference order the file declares.
type Remote struct {
	Name string
	URL  string
}

// Config is the parsed client configuration.
type Config struct {
	StoragePath     string
	Remotes         []Remote
	SettingsDefault map[string]string
}

// Load parses the configuration file at path. A missing [storage] section
// is tolerated (falls back to defaultStoragePath); every other expected
// section missing entirely is also tolerated as empty, matching the
// original tool's lenient conan.conf handling. A path that does not exist
// at all is tolerated the same way, so a first CLI invocation with no
// conan.conf yet written still gets usable defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{SettingsDefault: make(map[string]string), StoragePath: defaultStoragePath}

	if _, statErr := os.Stat(path); statErr != nil {
		if expanded, err := expandHome(cfg.StoragePath); err == nil {
			cfg.StoragePath = expanded
		}
		if envPath := os.Getenv(storageEnvVar); envPath != "" {
			cfg.StoragePath = envPath
		}
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindConfiguration, err, "reading config file %s", path)
	}

	cfg.StoragePath = defaultStoragePath
	if file.HasSection(storageSection) {
		if key, err := file.Section(storageSection).GetKey(storagePathKey); err == nil {
			cfg.StoragePath = key.String()
		}
	}
	if expanded, err := expandHome(cfg.StoragePath); err == nil {
		cfg.StoragePath = expanded
	}
	if envPath := os.Getenv(storageEnvVar); envPath != "" {
		cfg.StoragePath = envPath
	}

	if file.HasSection(remotesSection) {
		for _, key := range file.Section(remotesSection).Keys() {
			cfg.Remotes = append(cfg.Remotes, Remote{Name: key.Name(), URL: key.String()})
		}
	}

	if file.HasSection(defaultsSection) {
		for _, key := range file.Section(defaultsSection).Keys() {
			cfg.SettingsDefault[key.Name()] = key.String()
		}
	}

	return cfg, nil
}

// expandHome resolves a leading "~" the way the original tool's
// os.path.expanduser does, since ini.v1 values are read verbatim.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// RemoteURL looks up a configured remote by name.
func (c *Config) RemoteURL(name string) (string, bool) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r.URL, true
		}
	}
	return "", false
}
