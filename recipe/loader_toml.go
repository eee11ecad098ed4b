package recipe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/settings"
)

// tomlRecipe is the on-disk shape of a declarative conanfile.toml, the
// alternative to embedding an interpreter that spec §9's design notes
// propose. It is parsed with the same library the corpus already uses for
// other ecosystems' declarative manifests (pyproject.toml, Cargo.toml).
type tomlRecipe struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Exports []string `toml:"exports"`

	Settings []string              `toml:"settings"`
	Options  map[string]tomlOption `toml:"options"`

	DefaultOptions map[string]string `toml:"default_options"`

	Requires []string `toml:"requires"`
	// PrivateRequires lists references required with private visibility,
	// mirroring the conanfile.py `"ref", "private"` tuple form (spec §6).
	PrivateRequires []string `toml:"private_requires"`

	Build struct {
		Source  string `toml:"source"`
		Build   string `toml:"build"`
		Package string `toml:"package"`
		Test    string `toml:"test"`
	} `toml:"build"`

	Imports []tomlImport         `toml:"imports"`
	Config  []tomlConfigOverride `toml:"config"`

	PackageInfo tomlPackageInfo `toml:"package_info"`
}

type tomlPackageInfo struct {
	IncludeDirs []string `toml:"include_dirs"`
	LibDirs     []string `toml:"lib_dirs"`
	Libs        []string `toml:"libs"`
	Defines     []string `toml:"defines"`
	CFlags      []string `toml:"cflags"`
	CXXFlags    []string `toml:"cxxflags"`
	LinkFlags   []string `toml:"linkflags"`
}

type tomlOption struct {
	Universe []string `toml:"values"`
	Default  string   `toml:"default"`
}

type tomlImport struct {
	SrcPattern string `toml:"src_pattern"`
	DstSubdir  string `toml:"dst_subdir"`
	SrcSubdir  string `toml:"src_subdir"`
}

type tomlConfigOverride struct {
	Target string `toml:"target"`
	Option string `toml:"option"`
	Value  string `toml:"value"`
}

var errMissingNameOrVersion = recipeError("conanfile.toml must declare name and version")

type recipeError string

func (e recipeError) Error() string { return string(e) }

// LoadToml loads a declarative conanfile.toml recipe file.
func LoadToml(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerrors.RecipeNotFoundError(path)
		}
		return nil, coreerrors.RecipeExecutionError(path, err)
	}

	var raw tomlRecipe
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, coreerrors.RecipeSyntaxError(path, err)
	}
	if raw.Name == "" || raw.Version == "" {
		return nil, coreerrors.RecipeSyntaxError(path, errMissingNameOrVersion)
	}

	r := &Recipe{
		Name:           raw.Name,
		Version:        raw.Version,
		SettingsNames:  raw.Settings,
		OptionDefs:     toOptionDefs(raw.Options),
		DefaultOptions: raw.DefaultOptions,
		Exports:        raw.Exports,
		Path:           path,
		Hooks: ShellHooks{
			SourceCommand:  raw.Build.Source,
			BuildCommand:   raw.Build.Build,
			PackageCommand: raw.Build.Package,
			TestCommand:    raw.Build.Test,
		},
		PackageInfo: PackageInfo{
			IncludeDirs: raw.PackageInfo.IncludeDirs,
			LibDirs:     raw.PackageInfo.LibDirs,
			Libs:        raw.PackageInfo.Libs,
			Defines:     raw.PackageInfo.Defines,
			CFlags:      raw.PackageInfo.CFlags,
			CXXFlags:    raw.PackageInfo.CXXFlags,
			LinkFlags:   raw.PackageInfo.LinkFlags,
		},
	}

	for _, reqText := range raw.Requires {
		ref, err := parseRequirement(reqText)
		if err != nil {
			return nil, coreerrors.RecipeSyntaxError(path, err)
		}
		r.Requires = append(r.Requires, Requirement{Ref: ref, Visibility: Public})
	}
	for _, reqText := range raw.PrivateRequires {
		ref, err := parseRequirement(reqText)
		if err != nil {
			return nil, coreerrors.RecipeSyntaxError(path, err)
		}
		r.Requires = append(r.Requires, Requirement{Ref: ref, Visibility: Private})
	}

	for _, imp := range raw.Imports {
		r.Imports = append(r.Imports, ImportPattern{SrcPattern: imp.SrcPattern, DstSubdir: imp.DstSubdir, SrcSubdir: imp.SrcSubdir})
	}
	for _, c := range raw.Config {
		r.ConfigOverrides = append(r.ConfigOverrides, ConfigOverride{
			TargetRef: c.Target,
			Option:    c.Option,
			Value:     c.Value,
		})
	}

	return r, nil
}

func toOptionDefs(m map[string]tomlOption) map[string]settings.OptionDef {
	out := make(map[string]settings.OptionDef, len(m))
	for name, o := range m {
		out[name] = settings.OptionDef{Universe: o.Universe, Default: o.Default}
	}
	return out
}

// parseRequirement parses "name/version@user/channel" or, lacking a user/
// channel suffix, "name/version" bound to the storage's implicit "_/_"
// recipe scope used for unreleased local dependencies.
func parseRequirement(text string) (reference.Reference, error) {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "@") {
		return reference.Parse(text)
	}
	name, version, hasSlash := strings.Cut(text, "/")
	if !hasSlash || name == "" || version == "" {
		return reference.Reference{}, coreerrors.ReferenceParseError(text)
	}
	return reference.Reference{Name: name, Version: version, User: "_", Channel: "_"}, nil
}

// recipeDir returns the directory containing the recipe file, used as the
// default working directory for shell hooks that don't specify their own.
func recipeDir(path string) string {
	return filepath.Dir(path)
}
