// Package recipe materialises a Recipe object from a recipe file plus a
// settings/options context (spec §4.2). Recipes carry four behavioral
// hooks (config, build, package, imports) plus an optional test hook.
// Since this rewrite does not embed a dynamic language interpreter (spec
// §9's "Dynamic recipe evaluation" design note), a recipe's hooks are
// either an opaque shell command (source/build/package/test) or, for
// config(), a static table of option overrides - the declarative
// alternative the design note calls out.
package recipe

import (
	"strings"

	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/settings"
)

// Visibility marks a requirement edge as public (visible to the consumer's
// consumers) or private (shielded, spec §3 "Private edge").
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// Requirement is one declared dependency: a reference plus its visibility.
type Requirement struct {
	Ref        reference.Reference
	Visibility Visibility
}

// ImportPattern is one imports() copy rule (spec §4.8).
type ImportPattern struct {
	SrcPattern string
	DstSubdir  string
	SrcSubdir  string
}

// ConfigOverride is one static option override a recipe's declarative
// config() table applies - to itself (TargetRef == "") or to a named
// dependency, mirroring the original's ability to mutate a child's option
// defaults from the parent's config() hook (spec §4.3).
type ConfigOverride struct {
	TargetRef string
	Option    string
	Value     string
}

// PackageInfo is a recipe's package_info() declaration: the cpp_info a
// built package exports to its consumers (spec §1's required package_info
// hook). Since this rewrite has no interpreter to run a dynamic
// package_info() body (spec §9), it is given as a static table alongside
// the recipe's other declarative fields (OptionDefs, ConfigOverrides); a
// recipe that declares none gets the conventional include/lib layout as a
// fallback (see recipe.DefaultPackageInfo).
type PackageInfo struct {
	IncludeDirs []string
	LibDirs     []string
	Libs        []string
	Defines     []string
	CFlags      []string
	CXXFlags    []string
	LinkFlags   []string
}

// IsZero reports whether no package_info() entry was declared at all.
func (p PackageInfo) IsZero() bool {
	return len(p.IncludeDirs) == 0 && len(p.LibDirs) == 0 && len(p.Libs) == 0 &&
		len(p.Defines) == 0 && len(p.CFlags) == 0 && len(p.CXXFlags) == 0 && len(p.LinkFlags) == 0
}

// DefaultPackageInfo is the conventional cpp_info layout a recipe without
// an explicit package_info() declaration falls back to: an "include"
// directory, a "lib" directory, and a single library named after the
// package, mirroring the original's default self.cpp_info behavior.
func DefaultPackageInfo(pkgName string) PackageInfo {
	return PackageInfo{
		IncludeDirs: []string{"include"},
		LibDirs:     []string{"lib"},
		Libs:        []string{pkgName},
	}
}

// ShellHooks are the opaque, shelled-out behavioral hooks. Each command
// runs with its working directory set by the caller (source dir for
// Source, a fresh build dir for Build, etc.) and is invoked as a single
// opaque callable producing files under that directory, per spec §1's
// "recipe execution sandboxing is out of scope" boundary.
type ShellHooks struct {
	SourceCommand  string
	BuildCommand   string
	PackageCommand string
	TestCommand    string
}

// SettingsWildcard is the sentinel SettingsNames value meaning "keep every
// assigned setting", used by the synthetic consumer recipe a conanfile.txt
// root produces (spec §9 Open Question 1, resolved per original_source).
const SettingsWildcard = "*"

// Recipe is the evaluated contents of a recipe file (spec §3).
type Recipe struct {
	Name    string
	Version string

	Requires        []Requirement
	SettingsNames   []string
	OptionDefs      map[string]settings.OptionDef
	DefaultOptions  map[string]string // pkg:opt -> value, pkg == "" means self
	Exports         []string
	Imports         []ImportPattern
	ConfigOverrides []ConfigOverride

	Hooks ShellHooks

	// PackageInfo is this recipe's package_info() declaration; zero value
	// means none was declared and DefaultPackageInfo(Name) applies.
	PackageInfo PackageInfo

	// Path is the recipe file's location on disk; its directory is the
	// recipe's source-adjacent working directory.
	Path string

	// ConsumerOnly marks a recipe with no build hooks, produced by the
	// text-mode loader (spec §4.2).
	ConsumerOnly bool
}

// ReadsSettings reports whether the recipe declares any settings at all
// (the wildcard sentinel counts as a declaration).
func (r *Recipe) ReadsSettings() bool {
	return len(r.SettingsNames) > 0
}

func (r *Recipe) IsWildcardSettings() bool {
	return len(r.SettingsNames) == 1 && r.SettingsNames[0] == SettingsWildcard
}

// NewOptions builds an Options instance for this recipe's declarations,
// seeded with its own default_options (entries with no "pkg:" prefix). A
// malformed default_options entry (undeclared name, value outside its
// universe) is returned as an error rather than silently applied.
func (r *Recipe) NewOptions() (*settings.Options, error) {
	opts := settings.NewOptions(r.OptionDefs)
	for name, value := range r.DefaultOptions {
		if strings.Contains(name, ":") {
			continue
		}
		if err := opts.SetInherited(name, value); err != nil {
			return nil, err
		}
	}
	return opts, nil
}
