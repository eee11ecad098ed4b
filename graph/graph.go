// Package graph builds the dependency DAG a set of recipes describes
// (spec §4.3): one GraphNode per expanded reference, edges carrying the
// visibility that governs downstream include/lib propagation. The shape
// here mirrors the node/edge model the teacher's
// flexpack/conan/conan_flexpack.go ConanGraphOutput decodes from `conan
// graph info --format=json`, generalised from a read-only JSON mirror
// into the struct this core actually computes.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/recipe"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/settings"
)

// Edge is one requirement link from a node to a dependency node.
type Edge struct {
	Dependency *Node
	Visibility recipe.Visibility
}

// Node is one expanded reference in the graph: its recipe, its resolved
// settings and options (after configure()-style propagation), and its
// outgoing edges.
type Node struct {
	Ref      reference.Reference
	Recipe   *recipe.Recipe
	Settings *settings.Settings
	Options  *settings.Options

	Edges []Edge

	// PackageID is populated once info.Compute has hashed this node's
	// ConanInfo; the graph package itself never hashes.
	PackageID string
}

// Public edges visible to this node's own consumers, per spec §3's
// "Private edge" rule (a private dependency is shielded from everything
// above the node that declared it private).
func (n *Node) PublicEdges() []*Node {
	var out []*Node
	for _, e := range n.Edges {
		if e.Visibility == recipe.Public {
			out = append(out, e.Dependency)
		}
	}
	return out
}

// RecipeLoader resolves a reference to its recipe, used by Builder to
// expand the graph one level at a time. core.StoreRecipeLoader provides
// the concrete implementation over the local store.
type RecipeLoader interface {
	LoadRecipe(ref reference.Reference) (*recipe.Recipe, error)
}

// Builder expands a root recipe into the full dependency graph.
type Builder struct {
	Loader       RecipeLoader
	SettingsDef  *settings.Definition
	RootSettings *settings.Settings
	RootOptions  map[string]string // profile-level option overrides, by "pkg:opt" or "opt"
}

type buildState struct {
	loader  RecipeLoader
	rootOpt map[string]string

	visiting map[string]bool // DFS grey set, keyed by reference string, for cycle detection
	stack    []string        // current DFS path, for reporting a cycle
	done     map[string]*Node
}

// Build expands rootRef (already loaded as rootRecipe) into a full graph,
// returning its root node. Each node gets its own Settings.Clone() so
// sibling subtrees cannot see each other's mutations (spec §4.3).
func (b *Builder) Build(rootRef reference.Reference, rootRecipe *recipe.Recipe) (*Node, error) {
	st := &buildState{
		loader:   b.Loader,
		rootOpt:  b.RootOptions,
		visiting: make(map[string]bool),
		done:     make(map[string]*Node),
	}
	rootSettings := b.RootSettings
	if rootSettings == nil {
		rootSettings = settings.New(b.SettingsDef)
	}
	root, err := st.expand(rootRef, rootRecipe, rootSettings, nil)
	if err != nil {
		return nil, err
	}
	if err := ApplyConfigOverrides(root); err != nil {
		return nil, err
	}
	return root, nil
}

// ReverseTopological returns every node reachable from root in
// reverse-topological (dependencies before dependents) order, the order
// info.Compute must process nodes in so each node's ConanInfo can include
// its already-hashed dependencies' package_ids.
func ReverseTopological(root *Node) []*Node {
	seen := make(map[*Node]bool)
	var order []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, e := range n.Edges {
			visit(e.Dependency)
		}
		order = append(order, n)
	}
	visit(root)
	return order
}

func (st *buildState) expand(ref reference.Reference, rec *recipe.Recipe, parentSettings *settings.Settings, requiredBy *Node) (*Node, error) {
	key := ref.String()
	// identity is keyed without the version: two requirements for the same
	// name/user/channel pinning different versions must conflict (spec
	// §4.3), not silently resolve as two independent nodes.
	identity := fmt.Sprintf("%s@%s/%s", ref.Name, ref.User, ref.Channel)

	if st.visiting[key] {
		return nil, coreerrors.CyclicDependencyError(st.cyclePath(key))
	}

	// nodeSettings/opts are computed before the already-done check below so
	// a repeat requirement's projection can actually be compared against
	// the node already resolved for this identity (spec §4.3).
	nodeSettings := parentSettings.Clone()
	if !rec.IsWildcardSettings() {
		nodeSettings = nodeSettings.Project(rec.SettingsNames)
	}

	opts, err := rec.NewOptions()
	if err != nil {
		return nil, err
	}
	if err := st.applyOptionOverrides(opts, ref.Name); err != nil {
		return nil, err
	}

	if existing, ok := st.done[identity]; ok {
		if conflict := st.detectConflict(existing, rec, nodeSettings, opts); conflict != "" {
			return nil, coreerrors.ConflictError(ref.String(), conflict)
		}
		return existing, nil
	}

	st.visiting[key] = true
	st.stack = append(st.stack, key)
	defer func() {
		delete(st.visiting, key)
		st.stack = st.stack[:len(st.stack)-1]
	}()

	node := &Node{Ref: ref, Recipe: rec, Settings: nodeSettings, Options: opts}

	for _, req := range rec.Requires {
		depRecipe, err := st.loader.LoadRecipe(req.Ref)
		if err != nil {
			return nil, err
		}
		depNode, err := st.expand(req.Ref, depRecipe, nodeSettings, node)
		if err != nil {
			return nil, err
		}
		node.Edges = append(node.Edges, Edge{Dependency: depNode, Visibility: req.Visibility})
	}

	st.done[identity] = node
	return node, nil
}

// detectConflict reports a non-empty description when two uses of the same
// reference request an incompatible recipe identity (spec §4.3's
// "conflicting requirement" edge case): a differing version pinned under
// the same name/user/channel already resolved, or - a same-version diamond
// whose two requirers projected different effective settings or options
// onto it (spec §8's "diamond with divergent options" boundary case).
func (st *buildState) detectConflict(existing *Node, incoming *recipe.Recipe, incomingSettings *settings.Settings, incomingOptions *settings.Options) string {
	if existing.Recipe.Version != incoming.Version {
		return fmt.Sprintf("version %s vs %s", existing.Recipe.Version, incoming.Version)
	}
	if key := firstDivergentKey(existing.Settings.Values(), incomingSettings.Values()); key != "" {
		return fmt.Sprintf("setting %s", key)
	}
	if key := firstDivergentKey(existing.Options.Values(), incomingOptions.Values()); key != "" {
		return fmt.Sprintf("option %s", key)
	}
	return ""
}

// firstDivergentKey compares two canonical "path=value\n" projections (as
// produced by Settings.Values()/Options.Values()) and returns the name of
// the first key, in sorted order, whose value or presence differs between
// them; "" means the two projections match.
func firstDivergentKey(a, b string) string {
	am := parseValuesBlob(a)
	bm := parseValuesBlob(b)
	keys := make(map[string]bool, len(am)+len(bm))
	for k := range am {
		keys[k] = true
	}
	for k := range bm {
		keys[k] = true
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		if am[k] != bm[k] {
			return k
		}
	}
	return ""
}

func parseValuesBlob(text string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if ok {
			out[name] = value
		}
	}
	return out
}

func (st *buildState) cyclePath(closingKey string) []string {
	path := make([]string, len(st.stack), len(st.stack)+1)
	copy(path, st.stack)
	return append(path, closingKey)
}

func (st *buildState) applyOptionOverrides(opts *settings.Options, pkgName string) error {
	for key, value := range st.rootOpt {
		pkg, opt, hasPkg := splitPkgOption(key)
		if hasPkg && pkg != pkgName {
			continue
		}
		if !hasPkg {
			opt = key
		}
		if err := opts.SetOverride(opt, value); err != nil {
			return err
		}
	}
	return nil
}

func splitPkgOption(key string) (pkg, opt string, hasPkg bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i], key[i+1:], true
		}
	}
	return "", key, false
}

// SortedRefs returns every reference in the graph rooted at root, sorted
// for deterministic output (used by the search and JSON-export paths).
func SortedRefs(root *Node) []reference.Reference {
	nodes := ReverseTopological(root)
	refs := make([]reference.Reference, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, n.Ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].String() < refs[j].String() })
	return refs
}
