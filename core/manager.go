package core

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/export"
	"github.com/conan-go/conancore/generator"
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/importer"
	"github.com/conan-go/conancore/info"
	"github.com/conan-go/conancore/install"
	"github.com/conan-go/conancore/recipe"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/remove"
	"github.com/conan-go/conancore/search"
	"github.com/conan-go/conancore/settings"
	"github.com/conan-go/conancore/upload"
)

// Manager is the single facade each CLI subcommand calls into, mirroring
// the control flow of original_source's ConanManager: export, install,
// build, upload, search, remove, each built from the lower-level packages
// this rewrite organizes by concern.
type Manager struct {
	Ctx *Context
}

// NewManager wraps a Context.
func NewManager(ctx *Context) *Manager {
	return &Manager{Ctx: ctx}
}

// ExportOptions configures one Export call's user/channel scope.
type ExportOptions struct {
	User      string
	Channel   string
	Overwrite bool
}

// Export loads the recipe at recipeDir and exports it under user/channel:
// the recipe file itself plus every file matching its exports patterns.
func (m *Manager) Export(recipeDir string, opts ExportOptions) (export.Result, error) {
	rec, err := LoadLocalRecipe(recipeDir)
	if err != nil {
		return export.Result{}, err
	}
	ref := reference.Reference{Name: rec.Name, Version: rec.Version, User: opts.User, Channel: opts.Channel}
	exporter := &export.Exporter{Paths: m.Ctx.Paths}
	m.Ctx.Log.Info("Exporting", ref.String())
	patterns := append([]string{filepath.Base(rec.Path)}, rec.Exports...)
	return exporter.Export(ref, recipeDir, patterns, opts.Overwrite)
}

// InstallOptions configures one Install call.
type InstallOptions struct {
	Settings map[string]string // dotted path -> value
	Options  map[string]string // "opt" or "pkg:opt" -> value
	Mode     install.BuildMode
	Threads  int
}

// InstallResult is what Install returns for callers (CLI, tests) that
// want the resolved graph alongside the per-node build/reuse outcomes.
type InstallResult struct {
	Root     *graph.Node
	Outcomes map[string]install.NodeOutcome
}

// Install resolves recipeDirOrRef (a local directory holding a consumer
// recipe, or a reference string already exported to the store) into a
// full dependency graph, computes every node's package_id, and installs
// every node's binary.
func (m *Manager) Install(ctx context.Context, recipeDirOrRef string, opts InstallOptions) (InstallResult, error) {
	rootRef, rootRecipe, err := m.resolveRoot(recipeDirOrRef)
	if err != nil {
		return InstallResult{}, err
	}

	rootSettings := settings.New(m.Ctx.SettingsDef)
	for path, value := range opts.Settings {
		if err := rootSettings.Set(path, value); err != nil {
			return InstallResult{}, err
		}
	}

	builder := &graph.Builder{
		Loader:       &StoreRecipeLoader{Paths: m.Ctx.Paths},
		SettingsDef:  m.Ctx.SettingsDef,
		RootSettings: rootSettings,
		RootOptions:  opts.Options,
	}
	root, err := builder.Build(rootRef, rootRecipe)
	if err != nil {
		return InstallResult{}, err
	}

	info.Compute(root)

	installer := &install.Installer{
		Paths:   m.Ctx.Paths,
		Remote:  m.Ctx.Remote,
		Hooks:   m.Ctx.Hooks,
		Mode:    opts.Mode,
		Threads: opts.Threads,
	}
	outcomes, err := installer.InstallGraph(ctx, root)
	if err != nil {
		return InstallResult{}, err
	}

	return InstallResult{Root: root, Outcomes: outcomes}, nil
}

// resolveRoot loads either a local directory's recipe or an already
// exported reference's recipe, matching the original's "reference or
// path" install argument (spec §6).
func (m *Manager) resolveRoot(recipeDirOrRef string) (reference.Reference, *recipe.Recipe, error) {
	if ref, err := reference.Parse(recipeDirOrRef); err == nil {
		rec, err := (&StoreRecipeLoader{Paths: m.Ctx.Paths}).LoadRecipe(ref)
		return ref, rec, err
	}
	rec, err := LoadLocalRecipe(recipeDirOrRef)
	if err != nil {
		return reference.Reference{}, nil, err
	}
	return reference.Reference{Name: rec.Name, Version: rec.Version, User: "_", Channel: "_"}, rec, nil
}

// Build runs the local recipe's source(), build(), and package() hooks
// directly against path (spec §6's "build" command: a local development
// loop that does not touch the store or compute a package_id), optionally
// followed by test() when test is true.
func (m *Manager) Build(ctx context.Context, path string, test bool) error {
	rec, err := LoadLocalRecipe(path)
	if err != nil {
		return err
	}
	if err := m.Ctx.Hooks.RunSource(ctx, rec.Hooks.SourceCommand, path); err != nil {
		return err
	}
	if err := m.Ctx.Hooks.RunBuild(ctx, rec.Hooks.BuildCommand, path, nil); err != nil {
		return err
	}
	if err := m.Ctx.Hooks.RunPackage(ctx, rec.Hooks.PackageCommand, path); err != nil {
		return err
	}
	if test {
		return m.Ctx.Hooks.RunTest(ctx, rec.Hooks.TestCommand, path)
	}
	return nil
}

// GenerateArtifacts writes conanbuildinfo.txt, the CMake variables file,
// the JSON graph export, and a CycloneDX SBOM for root into destDir, then
// runs the root consumer recipe's imports() over the visible subgraph
// (spec §4.8 and §6).
func (m *Manager) GenerateArtifacts(root *graph.Node, destDir string) error {
	provider := &installCppInfoProvider{paths: m.Ctx.Paths}
	deps, err := install.ComposeDepsCppInfo(root, provider)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(destDir, "conanbuildinfo.txt"), []byte(generator.WriteBuildInfoText(deps)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(destDir, "conanbuildinfo.cmake"), []byte(generator.WriteCMake(deps)), 0o644); err != nil {
		return err
	}

	rawJSON, err := generator.WriteGraphJSONValidated(generator.BuildGraphJSON(root))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(destDir, "conangraph.json"), rawJSON, 0o644); err != nil {
		return err
	}

	sbom, err := generator.WriteCycloneDxJSON(root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(destDir, "sbom.cdx.json"), sbom, 0o644); err != nil {
		return err
	}

	if root.Recipe != nil && len(root.Recipe.Imports) > 0 {
		if _, err := importer.Run(root, root.Recipe, &importerPackageDirResolver{provider: provider}, destDir); err != nil {
			return err
		}
	}
	return nil
}

// installCppInfoProvider reads a built node's CppInfo from its recipe's
// package_info() declaration (spec §9: package_info() is itself dynamic
// code under the no-interpreter constraint, so this rewrite keeps it as a
// static recipe.PackageInfo table instead). A recipe that declares no
// package_info() at all falls back to the conventional include/lib layout.
type installCppInfoProvider struct {
	paths interface {
		PackageDir(pref reference.PackageReference) string
	}
}

func (p *installCppInfoProvider) CppInfoFor(n *graph.Node) (install.CppInfo, string, error) {
	pref := reference.PackageReference{Reference: n.Ref, PackageID: n.PackageID}
	dir := p.paths.PackageDir(pref)

	pi := n.Recipe.PackageInfo
	if pi.IsZero() {
		pi = recipe.DefaultPackageInfo(n.Ref.Name)
	}
	return install.CppInfo{
		IncludeDirs: pi.IncludeDirs,
		LibDirs:     pi.LibDirs,
		Libs:        pi.Libs,
		Defines:     pi.Defines,
		CFlags:      pi.CFlags,
		CXXFlags:    pi.CXXFlags,
		LinkFlags:   pi.LinkFlags,
	}, dir, nil
}

type importerPackageDirResolver struct {
	provider *installCppInfoProvider
}

func (r *importerPackageDirResolver) PackageDirFor(n *graph.Node) (string, error) {
	_, dir, err := r.provider.CppInfoFor(n)
	return dir, err
}

// Upload uploads ref's recipe (and, if all is true, every built package)
// to the configured remote.
func (m *Manager) Upload(ref reference.Reference, all, force bool) (upload.Report, error) {
	remote, ok := m.Ctx.Remote.(upload.Remote)
	if !ok {
		return upload.Report{}, coreerrors.ConfigurationError("no remote configured that supports upload")
	}
	u := &upload.Uploader{Paths: m.Ctx.Paths, Remote: remote}
	return u.Upload(ref, all, force)
}

// Search lists locally cached packages matching pattern.
func (m *Manager) Search(pattern string, opts search.Options) (search.Result, error) {
	s := &search.LocalSearcher{Paths: m.Ctx.Paths}
	return s.Search(pattern, opts)
}

// Remove deletes references/packages matching pattern.
func (m *Manager) Remove(pattern string, opts remove.Options) ([]reference.Reference, error) {
	r := &remove.Remover{Paths: m.Ctx.Paths}
	return r.Remove(pattern, opts)
}
