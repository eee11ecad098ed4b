package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/conan-go/conancore/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTomlBasic(t *testing.T) {
	path := writeTemp(t, "conanfile.toml", `
name = "zlib"
version = "1.2.8"
settings = ["os", "compiler", "build_type"]
requires = ["openssl/1.1.1@user/stable"]
private_requires = ["helper/1.0@user/stable"]

[options.shared]
values = ["True", "False"]
default = "False"

[default_options]
shared = "False"

[build]
build = "make -j4"
package = "make install DESTDIR=$PACKAGE_FOLDER"

[package_info]
include_dirs = ["include"]
lib_dirs = ["lib"]
libs = ["z"]
defines = ["ZLIB_STATIC"]
`)
	r, err := LoadToml(path)
	require.NoError(t, err)
	assert.Equal(t, "zlib", r.Name)
	assert.Equal(t, "1.2.8", r.Version)
	assert.Equal(t, []string{"os", "compiler", "build_type"}, r.SettingsNames)
	require.Len(t, r.Requires, 2)
	assert.Equal(t, Public, r.Requires[0].Visibility)
	assert.Equal(t, Private, r.Requires[1].Visibility)
	assert.Equal(t, "make -j4", r.Hooks.BuildCommand)
	assert.Equal(t, "False", r.OptionDefs["shared"].Default)
	assert.Equal(t, []string{"z"}, r.PackageInfo.Libs)
	assert.Equal(t, []string{"ZLIB_STATIC"}, r.PackageInfo.Defines)
}

func TestLoadTomlMissingNameOrVersion(t *testing.T) {
	path := writeTemp(t, "conanfile.toml", `version = "1.0"`)
	_, err := LoadToml(path)
	assert.Error(t, err)
}

func TestLoadTomlNotFound(t *testing.T) {
	_, err := LoadToml(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConanfileTxt(t *testing.T) {
	path := writeTemp(t, "conanfile.txt", `
[requires]
zlib/1.2.8@user/stable
openssl/1.1.1

[generators]
cmake
txt

[options]
zlib:shared=True
`)
	r, generators, err := LoadConanfileTxt(path)
	require.NoError(t, err)
	assert.True(t, r.ConsumerOnly)
	assert.Equal(t, []string{SettingsWildcard}, r.SettingsNames)
	require.Len(t, r.Requires, 2)
	assert.Equal(t, "zlib", r.Requires[0].Ref.Name)
	assert.Equal(t, "_", r.Requires[1].Ref.User)
	assert.Equal(t, []string{"cmake", "txt"}, generators)
	assert.Equal(t, "True", r.DefaultOptions["zlib:shared"])
}

func TestLoadConanfileTxtNotFound(t *testing.T) {
	_, _, err := LoadConanfileTxt(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadPyBasic(t *testing.T) {
	path := writeTemp(t, "conanfile.py", `
class ZlibConan(ConanFile):
    name = "zlib"
    version = "1.2.8"
    settings = ("os", "compiler", "build_type")
    requires = ("openssl/1.1.1@user/stable", ("helper/1.0@user/stable", "private"))
    exports = ("*.patch",)
    options = {"shared": ["True", "False"]}
    default_options = "shared=False"

    # build-info-go: build = make -j4
    # build-info-go: package = make install

    def build(self):
        pass

    def package_info(self):
        self.cpp_info.includedirs = ["include"]
        self.cpp_info.libs = ["z"]
`)
	r, err := LoadPy(path)
	require.NoError(t, err)
	assert.Equal(t, "zlib", r.Name)
	assert.Equal(t, "1.2.8", r.Version)
	assert.ElementsMatch(t, []string{"os", "compiler", "build_type"}, r.SettingsNames)
	require.Len(t, r.Requires, 2)
	assert.Equal(t, "openssl", r.Requires[0].Ref.Name)
	assert.Equal(t, Public, r.Requires[0].Visibility)
	assert.Equal(t, "helper", r.Requires[1].Ref.Name)
	assert.Equal(t, Private, r.Requires[1].Visibility)
	assert.Equal(t, "make -j4", r.Hooks.BuildCommand)
	assert.Equal(t, "make install", r.Hooks.PackageCommand)
	assert.Equal(t, "False", r.DefaultOptions["shared"])
	assert.Equal(t, []string{"include"}, r.PackageInfo.IncludeDirs)
	assert.Equal(t, []string{"z"}, r.PackageInfo.Libs)
}

func TestLoadPyMissingNameOrVersion(t *testing.T) {
	path := writeTemp(t, "conanfile.py", `
class Broken(ConanFile):
    version = "1.0"
`)
	_, err := LoadPy(path)
	assert.Error(t, err)
}

func TestRecipeNewOptionsSeedsDefaults(t *testing.T) {
	r := &Recipe{
		OptionDefs: map[string]settings.OptionDef{
			"shared": {Universe: []string{"True", "False"}, Default: "False"},
		},
		DefaultOptions: map[string]string{"shared": "True"},
	}
	opts, err := r.NewOptions()
	require.NoError(t, err)
	assert.Equal(t, "True", opts.Get("shared"))
}
