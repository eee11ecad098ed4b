// Package export implements the exporter (spec §4.5): copying a local
// recipe's declared exports into the store under (name, version, user,
// channel) and writing its manifest.
package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/conan-go/conancore/utils"
)

// Exporter copies a recipe's declared export patterns into the store.
type Exporter struct {
	Paths store.ConanPaths
}

// Result reports what an Export call produced.
type Result struct {
	Ref      reference.Reference
	Manifest store.Manifest
}

// Export exports the recipe at recipeDir (matching the exports glob
// patterns against files relative to recipeDir) into the store under
// ref. If the destination already holds a different manifest and
// overwrite is false, it fails with ExportConflictError.
func (e *Exporter) Export(ref reference.Reference, recipeDir string, exports []string, overwrite bool) (Result, error) {
	destDir := e.Paths.ExportDir(ref)

	files, err := matchExports(recipeDir, exports)
	if err != nil {
		return Result{}, err
	}

	existing, hasExisting := readExistingManifest(e.Paths.ExportManifestPath(ref))
	if hasExisting && !overwrite {
		candidate, err := computeCandidateManifest(recipeDir, files)
		if err != nil {
			return Result{}, err
		}
		if !existing.Equal(candidate) {
			return Result{}, coreerrors.ExportConflictError(ref.String())
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, err
	}
	if err := os.RemoveAll(destDir); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, err
	}

	for _, rel := range files {
		if err := copyFile(filepath.Join(recipeDir, rel), filepath.Join(destDir, rel)); err != nil {
			return Result{}, err
		}
	}

	manifest, err := store.ComputeManifest(destDir)
	if err != nil {
		return Result{}, err
	}
	if err := store.WriteManifest(e.Paths.ExportManifestPath(ref), manifest); err != nil {
		return Result{}, err
	}

	return Result{Ref: ref, Manifest: manifest}, nil
}

func readExistingManifest(path string) (store.Manifest, bool) {
	m, err := store.ReadManifest(path)
	if err != nil {
		return store.Manifest{}, false
	}
	return m, true
}

func computeCandidateManifest(recipeDir string, files []string) (store.Manifest, error) {
	tmp, err := os.MkdirTemp("", "conancore-export-")
	if err != nil {
		return store.Manifest{}, err
	}
	defer os.RemoveAll(tmp)
	for _, rel := range files {
		if err := copyFile(filepath.Join(recipeDir, rel), filepath.Join(tmp, rel)); err != nil {
			return store.Manifest{}, err
		}
	}
	return store.ComputeManifest(tmp)
}

// matchExports expands each glob pattern relative to recipeDir, returning
// the matched paths as recipeDir-relative slash paths, deduplicated.
func matchExports(recipeDir string, patterns []string) ([]string, error) {
	seen := utils.NewStringSet()
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(recipeDir, pattern))
		if err != nil {
			return nil, coreerrors.RecipeSyntaxError(recipeDir, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(recipeDir, m)
			if err != nil {
				return nil, err
			}
			rel = filepath.ToSlash(rel)
			if !seen.Contains(rel) {
				seen.Add(rel)
				out = append(out, rel)
			}
		}
	}
	return out, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
