package core

import (
	"os"
	"path/filepath"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/recipe"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
)

// recipeFilenames is the priority order the original tool resolves a
// recipe by: the declarative conanfile.toml this rewrite introduces,
// then the directive-annotated conanfile.py, then the plain
// conanfile.txt consumer format.
var recipeFilenames = []string{"conanfile.toml", "conanfile.py", "conanfile.txt"}

// StoreRecipeLoader implements graph.RecipeLoader over a ConanPaths-backed
// store: expanding a reference loads the exported recipe file from that
// reference's export directory.
type StoreRecipeLoader struct {
	Paths store.ConanPaths
}

// LoadRecipe reads the exported recipe for ref, trying each known recipe
// filename in turn.
func (l *StoreRecipeLoader) LoadRecipe(ref reference.Reference) (*recipe.Recipe, error) {
	dir := l.Paths.ExportDir(ref)
	for _, name := range recipeFilenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadRecipeFile(path)
	}
	return nil, coreerrors.RecipeNotFoundError(dir)
}

// loadRecipeFile dispatches to the loader matching path's recipe format.
func loadRecipeFile(path string) (*recipe.Recipe, error) {
	switch filepath.Base(path) {
	case "conanfile.toml":
		return recipe.LoadToml(path)
	case "conanfile.py":
		return recipe.LoadPy(path)
	case "conanfile.txt":
		rec, _, err := recipe.LoadConanfileTxt(path)
		return rec, err
	default:
		return nil, coreerrors.RecipeNotFoundError(path)
	}
}

// LoadLocalRecipe reads the recipe a consumer has in dir (not yet
// exported to the store), for the install/build commands run against a
// local project directory.
func LoadLocalRecipe(dir string) (*recipe.Recipe, error) {
	for _, name := range recipeFilenames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadRecipeFile(path)
	}
	return nil, coreerrors.RecipeNotFoundError(dir)
}
