package recipe

import (
	"bufio"
	"os"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
)

// LoadConanfileTxt parses a lightweight conanfile.txt manifest: sections
// [requires], [generators], and [options], producing a synthetic consumer
// Recipe with no build hooks (spec §4.2). Its settings subset is the
// wildcard sentinel: a text-mode root persists its *full* settings context
// into ConanInfo rather than a declared projection (spec §9 Open Question
// 1, resolved against original_source/conans/client/manager.py, which never
// narrows settings for a txt-loaded conanfile).
func LoadConanfileTxt(path string) (*Recipe, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, coreerrors.RecipeNotFoundError(path)
		}
		return nil, nil, coreerrors.RecipeExecutionError(path, err)
	}
	defer file.Close()

	r := &Recipe{
		SettingsNames: []string{SettingsWildcard},
		ConsumerOnly:  true,
		Path:          path,
	}
	var generators []string
	var section string

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			continue
		}
		switch section {
		case "requires":
			ref, err := parseRequirement(line)
			if err != nil {
				return nil, nil, coreerrors.RecipeSyntaxError(path, err)
			}
			r.Requires = append(r.Requires, Requirement{Ref: ref, Visibility: Public})
		case "generators":
			generators = append(generators, line)
		case "options":
			name, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, nil, coreerrors.RecipeSyntaxError(path, recipeError("malformed option line: "+line))
			}
			if r.DefaultOptions == nil {
				r.DefaultOptions = make(map[string]string)
			}
			r.DefaultOptions[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, coreerrors.RecipeExecutionError(path, err)
	}

	return r, generators, nil
}
