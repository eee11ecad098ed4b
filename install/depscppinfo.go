package install

import (
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/recipe"
)

// CppInfo is the build-system-facing surface a single package exports:
// include directories, library directories, library names, and extra
// compiler/linker flags, each relative to the package directory.
type CppInfo struct {
	IncludeDirs []string
	LibDirs     []string
	Libs        []string
	Defines     []string
	CFlags      []string
	CXXFlags    []string
	LinkFlags   []string
}

// DepsCppInfo is the composition of every visible dependency's CppInfo
// for one node, in first-seen BFS order (spec §4.4). Consumed by the
// generator package to emit build-system integration files.
type DepsCppInfo struct {
	Deps []ResolvedCppInfo
}

// ResolvedCppInfo pairs one dependency's exported CppInfo with its
// package directory and identity, for generators that need to name the
// library. The generators emit the CppInfo dirs as given, without joining
// them to PackageDir.
type ResolvedCppInfo struct {
	Ref        string
	PackageDir string
	CppInfo    CppInfo
}

// CppInfoProvider resolves a built package's exported CppInfo, reading
// it back from the package directory (conanbuildinfo metadata written at
// package() time, or a recipe-declared package_info()-equivalent table;
// this rewrite keeps it as a simple declarative map populated by the
// recipe loader, since package_info() is itself dynamic code under the
// no-interpreter constraint of spec §9).
type CppInfoProvider interface {
	CppInfoFor(n *graph.Node) (CppInfo, string, error)
}

// ComposeDepsCppInfo walks root's visible dependency graph breadth-first,
// skipping any edge marked private, and appends each visited dependency's
// CppInfo in first-seen order (spec §4.4's composition rule).
func ComposeDepsCppInfo(root *graph.Node, provider CppInfoProvider) (DepsCppInfo, error) {
	var result DepsCppInfo
	seen := make(map[*graph.Node]bool)
	queue := []*graph.Node{root}
	seen[root] = true

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		for _, e := range n.Edges {
			if e.Visibility != recipe.Public {
				continue
			}
			dep := e.Dependency
			if seen[dep] {
				continue
			}
			seen[dep] = true

			cppInfo, packageDir, err := provider.CppInfoFor(dep)
			if err != nil {
				return DepsCppInfo{}, err
			}
			result.Deps = append(result.Deps, ResolvedCppInfo{
				Ref:        dep.Ref.String(),
				PackageDir: packageDir,
				CppInfo:    cppInfo,
			})
			queue = append(queue, dep)
		}
	}
	return result, nil
}
