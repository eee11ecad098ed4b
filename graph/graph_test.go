package graph

import (
	"testing"

	"github.com/conan-go/conancore/recipe"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader resolves references against an in-memory recipe table, the
// graph package's only dependency on recipe loading, so these tests never
// touch the filesystem. byVersion, when set, overrides the by-name lookup
// so a test can make the same package name resolve to distinct recipe
// versions depending on the exact reference requested.
type fakeLoader struct {
	recipes  map[string]*recipe.Recipe
	byVersion map[string]*recipe.Recipe
}

func (f *fakeLoader) LoadRecipe(ref reference.Reference) (*recipe.Recipe, error) {
	if f.byVersion != nil {
		if r, ok := f.byVersion[ref.String()]; ok {
			return r, nil
		}
	}
	return f.recipes[ref.Name], nil
}

func mustDef(t *testing.T) *settings.Definition {
	t.Helper()
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	return def
}

func TestBuildLinearChain(t *testing.T) {
	zlibRef := reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	loader := &fakeLoader{recipes: map[string]*recipe.Recipe{
		"zlib": {Name: "zlib", Version: "1.0"},
		"app": {Name: "app", Version: "1.0", Requires: []recipe.Requirement{
			{Ref: zlibRef, Visibility: recipe.Public},
		}},
	}}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	root, err := b.Build(appRef, loader.recipes["app"])
	require.NoError(t, err)

	require.Len(t, root.Edges, 1)
	assert.Equal(t, "zlib", root.Edges[0].Dependency.Ref.Name)
	assert.Equal(t, recipe.Public, root.Edges[0].Visibility)

	order := ReverseTopological(root)
	require.Len(t, order, 2)
	assert.Equal(t, "zlib", order[0].Ref.Name, "dependency must precede dependent")
	assert.Equal(t, "app", order[1].Ref.Name)
}

func TestBuildDetectsCycle(t *testing.T) {
	aRef := reference.Reference{Name: "a", Version: "1.0", User: "_", Channel: "_"}
	bRef := reference.Reference{Name: "b", Version: "1.0", User: "_", Channel: "_"}

	loader := &fakeLoader{recipes: map[string]*recipe.Recipe{
		"a": {Name: "a", Version: "1.0", Requires: []recipe.Requirement{{Ref: bRef, Visibility: recipe.Public}}},
		"b": {Name: "b", Version: "1.0", Requires: []recipe.Requirement{{Ref: aRef, Visibility: recipe.Public}}},
	}}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	_, err := b.Build(aRef, loader.recipes["a"])
	require.Error(t, err)
}

func TestBuildDetectsConflict(t *testing.T) {
	zlib1 := reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}
	zlib2 := reference.Reference{Name: "zlib", Version: "2.0", User: "_", Channel: "_"}
	midRef := reference.Reference{Name: "mid", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	zlibV1 := &recipe.Recipe{Name: "zlib", Version: "1.0"}
	zlibV2 := &recipe.Recipe{Name: "zlib", Version: "2.0"}

	loader := &fakeLoader{
		recipes: map[string]*recipe.Recipe{
			"mid": {Name: "mid", Version: "1.0", Requires: []recipe.Requirement{
				{Ref: zlib2, Visibility: recipe.Public},
			}},
			"app": {Name: "app", Version: "1.0", Requires: []recipe.Requirement{
				{Ref: zlib1, Visibility: recipe.Public},
				{Ref: midRef, Visibility: recipe.Public},
			}},
		},
		byVersion: map[string]*recipe.Recipe{
			zlib1.String(): zlibV1,
			zlib2.String(): zlibV2,
		},
	}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	_, err := b.Build(appRef, loader.recipes["app"])
	require.Error(t, err)
}

// sequencedLoader resolves most names from a static table but, for names
// listed in seq, returns successive entries on successive calls - used to
// model two requirers loading genuinely different recipe declarations for
// what is nominally "the same" reference (spec §4.3's "two nodes share a
// reference" case, with divergent option declarations rather than a
// version mismatch).
type sequencedLoader struct {
	recipes map[string]*recipe.Recipe
	seq     map[string][]*recipe.Recipe
	calls   map[string]int
}

func (l *sequencedLoader) LoadRecipe(ref reference.Reference) (*recipe.Recipe, error) {
	if entries, ok := l.seq[ref.Name]; ok {
		i := l.calls[ref.Name]
		if i >= len(entries) {
			i = len(entries) - 1
		}
		l.calls[ref.Name]++
		return entries[i], nil
	}
	return l.recipes[ref.Name], nil
}

func TestBuildDetectsDivergentOptionsDiamond(t *testing.T) {
	zlibRef := reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}
	midARef := reference.Reference{Name: "mida", Version: "1.0", User: "_", Channel: "_"}
	midBRef := reference.Reference{Name: "midb", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	zlibDefs := map[string]settings.OptionDef{"shared": {Universe: []string{"True", "False"}, Default: "False"}}
	zlibSharedTrue := &recipe.Recipe{Name: "zlib", Version: "1.0", OptionDefs: zlibDefs, DefaultOptions: map[string]string{"shared": "True"}}
	zlibSharedFalse := &recipe.Recipe{Name: "zlib", Version: "1.0", OptionDefs: zlibDefs, DefaultOptions: map[string]string{"shared": "False"}}

	loader := &sequencedLoader{
		recipes: map[string]*recipe.Recipe{
			"mida": {Name: "mida", Version: "1.0", Requires: []recipe.Requirement{{Ref: zlibRef, Visibility: recipe.Public}}},
			"midb": {Name: "midb", Version: "1.0", Requires: []recipe.Requirement{{Ref: zlibRef, Visibility: recipe.Public}}},
			"app": {Name: "app", Version: "1.0", Requires: []recipe.Requirement{
				{Ref: midARef, Visibility: recipe.Public},
				{Ref: midBRef, Visibility: recipe.Public},
			}},
		},
		seq:   map[string][]*recipe.Recipe{"zlib": {zlibSharedTrue, zlibSharedFalse}},
		calls: map[string]int{},
	}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	_, err := b.Build(appRef, loader.recipes["app"])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "option shared")
}

func TestConfigOverrideReachesChildOption(t *testing.T) {
	zlibRef := reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	loader := &fakeLoader{recipes: map[string]*recipe.Recipe{
		"zlib": {
			Name: "zlib", Version: "1.0",
			OptionDefs:     map[string]settings.OptionDef{"shared": {Universe: []string{"True", "False"}, Default: "False"}},
			DefaultOptions: map[string]string{},
		},
		"app": {
			Name: "app", Version: "1.0",
			Requires:        []recipe.Requirement{{Ref: zlibRef, Visibility: recipe.Public}},
			ConfigOverrides: []recipe.ConfigOverride{{TargetRef: "zlib", Option: "shared", Value: "True"}},
		},
	}}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	root, err := b.Build(appRef, loader.recipes["app"])
	require.NoError(t, err)

	zlib := root.Edges[0].Dependency
	assert.Equal(t, "True", zlib.Options.Get("shared"))
}

func TestConfigOverrideSettingsConstraintRejectsTooOldCompiler(t *testing.T) {
	zlibRef := reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	loader := &fakeLoader{recipes: map[string]*recipe.Recipe{
		"zlib": {Name: "zlib", Version: "1.0", SettingsNames: []string{recipe.SettingsWildcard}},
		"app": {
			Name: "app", Version: "1.0", SettingsNames: []string{recipe.SettingsWildcard},
			Requires:        []recipe.Requirement{{Ref: zlibRef, Visibility: recipe.Public}},
			ConfigOverrides: []recipe.ConfigOverride{{TargetRef: "zlib", Option: "settings:compiler.version", Value: ">=9.0"}},
		},
	}}

	def := mustDef(t)
	rootSettings := settings.New(def)
	require.NoError(t, rootSettings.Set("compiler", "gcc"))
	require.NoError(t, rootSettings.Set("compiler.version", "4.9"))

	b := &Builder{Loader: loader, SettingsDef: def, RootSettings: rootSettings}
	_, err := b.Build(appRef, loader.recipes["app"])
	assert.Error(t, err)
}

func TestPublicEdgesExcludePrivate(t *testing.T) {
	privRef := reference.Reference{Name: "priv", Version: "1.0", User: "_", Channel: "_"}
	pubRef := reference.Reference{Name: "pub", Version: "1.0", User: "_", Channel: "_"}
	appRef := reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}

	loader := &fakeLoader{recipes: map[string]*recipe.Recipe{
		"priv": {Name: "priv", Version: "1.0"},
		"pub":  {Name: "pub", Version: "1.0"},
		"app": {Name: "app", Version: "1.0", Requires: []recipe.Requirement{
			{Ref: privRef, Visibility: recipe.Private},
			{Ref: pubRef, Visibility: recipe.Public},
		}},
	}}

	b := &Builder{Loader: loader, SettingsDef: mustDef(t)}
	root, err := b.Build(appRef, loader.recipes["app"])
	require.NoError(t, err)

	visible := root.PublicEdges()
	require.Len(t, visible, 1)
	assert.Equal(t, "pub", visible[0].Ref.Name)
}
