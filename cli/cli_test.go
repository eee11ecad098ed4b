package cli

import (
	"testing"

	"github.com/conan-go/conancore/install"
	"github.com/conan-go/conancore/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValuesSplitsOnFirstEquals(t *testing.T) {
	got := parseKeyValues([]string{"os=Linux", "pkg:shared=True", "compiler.version = 11"})
	assert.Equal(t, "Linux", got["os"])
	assert.Equal(t, "True", got["pkg:shared"])
	assert.Equal(t, "11", got["compiler.version"])
}

func TestParseKeyValuesEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, parseKeyValues(nil))
}

func TestParseBuildModeDefaultsToNeverWhenFlagUnset(t *testing.T) {
	mode, err := parseBuildMode("", false)
	require.NoError(t, err)
	assert.False(t, mode.AllowsBuild(reference.Reference{Name: "zlib"}))
}

func TestParseBuildModeBareFlagForces(t *testing.T) {
	mode, err := parseBuildMode("", true)
	require.NoError(t, err)
	assert.True(t, mode.Forces(reference.Reference{Name: "zlib"}))
}

func TestParseBuildModeMissing(t *testing.T) {
	mode, err := parseBuildMode("missing", true)
	require.NoError(t, err)
	assert.Equal(t, install.BuildModeMissing(), mode)
}

func TestParseBuildModePatternList(t *testing.T) {
	mode, err := parseBuildMode("zlib/*,openssl/*", true)
	require.NoError(t, err)
	assert.True(t, mode.AllowsBuild(reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}))
	assert.False(t, mode.AllowsBuild(reference.Reference{Name: "bzip2", Version: "1.0", User: "_", Channel: "_"}))
}

func TestGetCommandsRegistersEverySubcommand(t *testing.T) {
	commands := GetCommands(nil)
	names := make(map[string]bool, len(commands))
	for _, c := range commands {
		names[c.Name] = true
	}
	for _, want := range []string{"export", "install", "build", "upload", "search", "remove", "user"} {
		assert.True(t, names[want], "expected %s command to be registered", want)
	}
}
