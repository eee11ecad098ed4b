package graph

import (
	"strings"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/jfrog/gofrog/version"
)

// settingsOverridePrefix marks a ConfigOverride.Option as addressing a
// dotted settings path (e.g. "settings:compiler.version") rather than a
// declared recipe option, the convention this rewrite uses since
// recipe.ConfigOverride carries a single flat Option field for both.
const settingsOverridePrefix = "settings:"

// ApplyConfigOverrides is the second pass spec §4.3's design note calls
// for: "model it as a second pass over the graph that applies an ordered
// list of override records keyed by target reference." Each node's
// recipe may declare config() overrides aimed at its own direct
// dependencies; this walks every node after the graph is fully expanded
// and applies them against the already-resolved target node.
func ApplyConfigOverrides(root *Node) error {
	for _, n := range ReverseTopological(root) {
		if n.Recipe == nil {
			continue
		}
		for _, ov := range n.Recipe.ConfigOverrides {
			target := n
			if ov.TargetRef != "" {
				dep, ok := findDependency(n, ov.TargetRef)
				if !ok {
					continue
				}
				target = dep
			}
			if err := applyOverride(target, ov.Option, ov.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// findDependency resolves targetRef (a bare package name or a full
// reference string) against n's direct dependency edges.
func findDependency(n *Node, targetRef string) (*Node, bool) {
	for _, e := range n.Edges {
		if e.Dependency.Ref.Name == targetRef || e.Dependency.Ref.String() == targetRef {
			return e.Dependency, true
		}
	}
	return nil, false
}

func applyOverride(target *Node, option, value string) error {
	if name, ok := strings.CutPrefix(option, settingsOverridePrefix); ok {
		return applySettingsOverride(target, name, value)
	}
	return target.Options.SetOverride(option, value)
}

// applySettingsOverride either assigns a dotted settings path outright, or,
// when value is a ">="-style constraint, validates the target's existing
// setting against it without mutating it - the "config() hook constrains
// a child's compiler version range" case, compared with
// github.com/jfrog/gofrog/version the way the teacher's gradle/yarn
// flexpacks compare tool versions.
func applySettingsOverride(target *Node, name, value string) error {
	if want, ok := strings.CutPrefix(value, ">="); ok {
		current, err := target.Settings.Get(name)
		if err != nil {
			return err
		}
		if !version.NewVersion(current).AtLeast(strings.TrimSpace(want)) {
			return coreerrors.New(coreerrors.KindConflict,
				"%s: setting %s=%s does not satisfy constraint >=%s imposed by a parent config()",
				target.Ref.String(), name, current, strings.TrimSpace(want))
		}
		return nil
	}
	return target.Settings.Set(name, value)
}
