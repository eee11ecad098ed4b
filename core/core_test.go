package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conan-go/conancore/install"
	"github.com/conan-go/conancore/settings"
	"github.com/conan-go/conancore/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopHooks struct{}

func (noopHooks) RunSource(ctx context.Context, command, workDir string) error { return nil }
func (noopHooks) RunBuild(ctx context.Context, command, workDir string, env []string) error {
	return nil
}
func (noopHooks) RunPackage(ctx context.Context, command, workDir string) error { return nil }
func (noopHooks) RunTest(ctx context.Context, command, workDir string) error    { return nil }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type trackingHooks struct {
	calls []string
}

func (h *trackingHooks) RunSource(ctx context.Context, command, workDir string) error {
	h.calls = append(h.calls, "source")
	return nil
}
func (h *trackingHooks) RunBuild(ctx context.Context, command, workDir string, env []string) error {
	h.calls = append(h.calls, "build")
	return nil
}
func (h *trackingHooks) RunPackage(ctx context.Context, command, workDir string) error {
	h.calls = append(h.calls, "package")
	return nil
}
func (h *trackingHooks) RunTest(ctx context.Context, command, workDir string) error {
	h.calls = append(h.calls, "test")
	return nil
}

func TestManagerBuildRunsHooksInOrderAndSkipsTestByDefault(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)

	hooks := &trackingHooks{}
	ctx := NewContext(paths, def, nil, hooks)
	mgr := NewManager(ctx)

	recipeDir := t.TempDir()
	writeFile(t, filepath.Join(recipeDir, "conanfile.toml"), `
name = "app"
version = "1.0"
`)

	require.NoError(t, mgr.Build(context.Background(), recipeDir, false))
	assert.Equal(t, []string{"source", "build", "package"}, hooks.calls)

	hooks.calls = nil
	require.NoError(t, mgr.Build(context.Background(), recipeDir, true))
	assert.Equal(t, []string{"source", "build", "package", "test"}, hooks.calls)
}

func TestManagerExportThenInstallResolvesGraph(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)

	ctx := NewContext(paths, def, nil, noopHooks{})

	mgr := NewManager(ctx)

	zlibDir := t.TempDir()
	writeFile(t, filepath.Join(zlibDir, "conanfile.toml"), `
name = "zlib"
version = "1.0"
`)
	_, err = mgr.Export(zlibDir, ExportOptions{User: "_", Channel: "_"})
	require.NoError(t, err)

	consumerDir := t.TempDir()
	writeFile(t, filepath.Join(consumerDir, "conanfile.toml"), `
name = "app"
version = "1.0"
requires = ["zlib/1.0"]
`)

	result, err := mgr.Install(context.Background(), consumerDir, InstallOptions{
		Mode:    install.BuildModeMissing(),
		Threads: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Root)
	require.Len(t, result.Root.Edges, 1)
	assert.Equal(t, "zlib", result.Root.Edges[0].Dependency.Ref.Name)
	assert.NotEmpty(t, result.Root.PackageID)
	assert.Len(t, result.Outcomes, 2)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, install.OutcomeBuilt, outcome)
	}

	destDir := t.TempDir()
	require.NoError(t, mgr.GenerateArtifacts(result.Root, destDir))
	for _, name := range []string{"conanbuildinfo.txt", "conanbuildinfo.cmake", "conangraph.json", "sbom.cdx.json"} {
		_, err := os.Stat(filepath.Join(destDir, name))
		assert.NoError(t, err, "expected %s to be written", name)
	}
}

func TestManagerInstallUsesRecipeDeclaredPackageInfo(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	def, err := settings.DefaultDefinition()
	require.NoError(t, err)

	ctx := NewContext(paths, def, nil, noopHooks{})
	mgr := NewManager(ctx)

	zlibDir := t.TempDir()
	writeFile(t, filepath.Join(zlibDir, "conanfile.toml"), `
name = "zlib"
version = "1.0"

[package_info]
include_dirs = ["inc"]
lib_dirs = ["stage/lib"]
libs = ["zlibstatic"]
`)
	_, err = mgr.Export(zlibDir, ExportOptions{User: "_", Channel: "_"})
	require.NoError(t, err)

	consumerDir := t.TempDir()
	writeFile(t, filepath.Join(consumerDir, "conanfile.toml"), `
name = "app"
version = "1.0"
requires = ["zlib/1.0"]
`)

	result, err := mgr.Install(context.Background(), consumerDir, InstallOptions{Mode: install.BuildModeMissing()})
	require.NoError(t, err)

	destDir := t.TempDir()
	require.NoError(t, mgr.GenerateArtifacts(result.Root, destDir))
	content, err := os.ReadFile(filepath.Join(destDir, "conanbuildinfo.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "zlibstatic")
	assert.Contains(t, string(content), "stage/lib")
	assert.NotContains(t, string(content), "\nlib\n", "the generic fallback lib dir must not leak in when package_info is declared")
}
