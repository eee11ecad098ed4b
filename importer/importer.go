// Package importer implements the imports() step (spec §4.8): copying
// files out of each visible dependency's package directory into the
// consumer's workspace, according to the consumer recipe's declared
// ImportPattern rules.
package importer

import (
	"io"
	"os"
	"path/filepath"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/recipe"
)

// PackageDirResolver locates the on-disk package directory for a built
// graph node, so Run can glob inside it.
type PackageDirResolver interface {
	PackageDirFor(n *graph.Node) (string, error)
}

// Result records every file imports() copied, destination path first.
type Result struct {
	Copied []string
}

// Run walks root's visible dependency subgraph (public edges only, same
// rule as install.ComposeDepsCppInfo) and, for each dependency, applies
// every ImportPattern the consumer recipe declares whose SrcSubdir
// resolves under that dependency's package directory.
//
// destRoot is the consumer's workspace directory the copied files land
// in, relative to each pattern's DstSubdir.
func Run(root *graph.Node, consumer *recipe.Recipe, resolver PackageDirResolver, destRoot string) (Result, error) {
	var result Result
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
			queue = append(queue, dep)

			pkgDir, err := resolver.PackageDirFor(dep)
			if err != nil {
				return Result{}, err
			}

			for _, pattern := range consumer.Imports {
				copied, err := applyPattern(pattern, pkgDir, destRoot)
				if err != nil {
					return Result{}, err
				}
				result.Copied = append(result.Copied, copied...)
			}
		}
	}
	return result, nil
}

// applyPattern copies every file under pkgDir/SrcSubdir matching
// SrcPattern into destRoot/DstSubdir, preserving the matched file's base
// name.
func applyPattern(pattern recipe.ImportPattern, pkgDir, destRoot string) ([]string, error) {
	srcDir := filepath.Join(pkgDir, pattern.SrcSubdir)
	matches, err := filepath.Glob(filepath.Join(srcDir, pattern.SrcPattern))
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindBuild, err, "evaluating imports() pattern %q", pattern.SrcPattern)
	}

	dstDir := filepath.Join(destRoot, pattern.DstSubdir)
	if len(matches) > 0 {
		if err := os.MkdirAll(dstDir, 0o755); err != nil {
			return nil, coreerrors.Wrap(coreerrors.KindBuild, err, "creating imports() destination %s", dstDir)
		}
	}

	var copied []string
	for _, src := range matches {
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		dst := filepath.Join(dstDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return nil, err
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindBuild, err, "reading import source %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return coreerrors.Wrap(coreerrors.KindBuild, err, "creating import destination %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return coreerrors.Wrap(coreerrors.KindBuild, err, "copying %s to %s", src, dst)
	}
	return nil
}
