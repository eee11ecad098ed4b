package info

import (
	"testing"

	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/recipe"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioS1Identity reproduces the worked example: exporting
// Hello/0.1@u/c with settings=(os,compiler), context os=Linux,
// compiler=gcc, compiler.version=4.9, no options, no deps.
func TestScenarioS1Identity(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)

	s := settings.New(def)
	require.NoError(t, s.Set("os", "Linux"))
	require.NoError(t, s.Set("compiler", "gcc"))
	require.NoError(t, s.Set("compiler.version", "4.9"))
	projected := s.Project([]string{"os", "compiler"})

	node := &graph.Node{
		Ref:      reference.Reference{Name: "Hello", Version: "0.1", User: "u", Channel: "c"},
		Settings: projected,
		Options:  settings.NewOptions(nil),
	}

	ci := Build(node)
	assert.Equal(t, "[settings]\ncompiler=gcc\ncompiler.version=4.9\nos=Linux\n[options]\n[requires]\n", ci.Text())
	assert.Equal(t, "73a68aeaea336165992b494bf8b0d4ff98bc82c6", Hash(ci))
}

func TestComputeHashesWholeGraph(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	s := settings.New(def)
	opts := settings.NewOptions(nil)

	zlib := &graph.Node{Ref: reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts}
	app := &graph.Node{
		Ref:      reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"},
		Settings: s.Clone(),
		Options:  opts,
		Edges:    []graph.Edge{{Dependency: zlib, Visibility: recipe.Public}},
	}

	Compute(app)
	assert.NotEmpty(t, zlib.PackageID)
	assert.NotEmpty(t, app.PackageID)
	assert.Len(t, zlib.PackageID, 40)

	ci := Build(app)
	require.Len(t, ci.Requires, 1)
	assert.Equal(t, zlib.Ref.String(), ci.Requires[0].Ref)
	assert.Equal(t, zlib.PackageID, ci.Requires[0].PackageID)
}

func TestPrivateEdgeShieldsTransitiveClosure(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	s := settings.New(def)
	opts := settings.NewOptions(nil)

	c := &graph.Node{Ref: reference.Reference{Name: "c", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts}
	b := &graph.Node{
		Ref: reference.Reference{Name: "b", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts,
		Edges: []graph.Edge{{Dependency: c, Visibility: recipe.Public}},
	}
	a := &graph.Node{
		Ref: reference.Reference{Name: "a", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts,
		Edges: []graph.Edge{{Dependency: b, Visibility: recipe.Private}},
	}

	Compute(a)
	ci := Build(a)
	assert.Empty(t, ci.Requires, "a private edge must shield b and its transitive closure c")
}

// TestScenarioS3PublicTransitivity: A -> B -> C, all public edges. A's
// requires must include both B's and C's package_id (spec §8 S3).
func TestScenarioS3PublicTransitivity(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	s := settings.New(def)
	opts := settings.NewOptions(nil)

	c := &graph.Node{Ref: reference.Reference{Name: "c", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts}
	b := &graph.Node{
		Ref: reference.Reference{Name: "b", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts,
		Edges: []graph.Edge{{Dependency: c, Visibility: recipe.Public}},
	}
	a := &graph.Node{
		Ref: reference.Reference{Name: "a", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts,
		Edges: []graph.Edge{{Dependency: b, Visibility: recipe.Public}},
	}

	Compute(a)
	ci := Build(a)
	require.Len(t, ci.Requires, 2)

	got := map[string]string{}
	for _, r := range ci.Requires {
		got[r.Ref] = r.PackageID
	}
	assert.Equal(t, b.PackageID, got[b.Ref.String()])
	assert.Equal(t, c.PackageID, got[c.Ref.String()])
}

// TestScenarioS4OptionOverrideReachesChild: overriding a dependency's
// option at the consuming node changes that dependency's serialized
// options and, therefore, its package_id (spec §8 S4).
func TestScenarioS4OptionOverrideReachesChild(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	s := settings.New(def)

	defs := map[string]settings.OptionDef{"shared": {Universe: []string{"True", "False"}, Default: "False"}}

	baseline := settings.NewOptions(defs)
	zlibBaseline := &graph.Node{
		Ref:      reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"},
		Settings: s.Clone(),
		Options:  baseline,
	}
	baselineID := Hash(Build(zlibBaseline))

	overridden := settings.NewOptions(defs)
	require.NoError(t, overridden.SetOverride("shared", "True"))
	zlibOverridden := &graph.Node{
		Ref:      reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"},
		Settings: s.Clone(),
		Options:  overridden,
	}
	overriddenID := Hash(Build(zlibOverridden))

	assert.NotEqual(t, baselineID, overriddenID, "an option override reaching the child must change its package_id")
}

func TestToCycloneDxBom(t *testing.T) {
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)
	s := settings.New(def)
	opts := settings.NewOptions(nil)

	zlib := &graph.Node{Ref: reference.Reference{Name: "zlib", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts}
	app := &graph.Node{
		Ref: reference.Reference{Name: "app", Version: "1.0", User: "_", Channel: "_"}, Settings: s.Clone(), Options: opts,
		Edges: []graph.Edge{{Dependency: zlib, Visibility: recipe.Public}},
	}
	Compute(app)

	bom := ToCycloneDxBom(app)
	require.NotNil(t, bom.Components)
	assert.Len(t, *bom.Components, 2)
	require.NotNil(t, bom.Dependencies)
	assert.Len(t, *bom.Dependencies, 1)
}
