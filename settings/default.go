package settings

// defaultSettingsYml is the bundled settings.yml shipped with the client
// configuration, matching the minimum shape spec §6 requires: os, arch,
// compiler{gcc,Visual Studio,clang,apple-clang}, build_type.
const defaultSettingsYml = `
os: [Windows, Linux, Macos, Android, iOS]
arch: [x86, x86_64, armv7, armv8]
compiler:
  gcc:
    version: ["4.9", "5", "6", "7", "8", "9", "10", "11", "12"]
  Visual Studio:
    runtime: [None, MD, MT, MTd, MDd]
    version: ["8", "9", "10", "11", "12", "14", "15", "16", "17"]
  clang:
    version: ["3.3", "3.4", "3.5", "3.6", "3.7", "3.8", "3.9", "4.0", "5.0", "6.0", "7", "8", "9", "10", "11", "12", "13"]
  apple-clang:
    version: ["5.0", "5.1", "6.0", "6.1", "7.0", "7.3", "8.0", "8.1", "9.0", "9.1", "10.0", "11.0", "12.0", "13.0", "14.0"]
build_type: [None, Debug, Release, RelWithDebInfo, MinSizeRel]
`

// DefaultDefinition returns the bundled default settings.yml, used when a
// storage directory has not yet had one written to it.
func DefaultDefinition() (*Definition, error) {
	return ParseDefinition(defaultSettingsYml)
}
