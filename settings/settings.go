// Package settings models the typed, constrained key -> value tree that
// describes build configuration (os, compiler, build_type, ...), loaded
// from a settings.yml definition document, plus the per-recipe Options
// model. Both expose the same canonical "path=value" serialized form used
// as input to the ConanInfo package-id hash.
package settings

import (
	"sort"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
	"gopkg.in/yaml.v3"
)

// None is the sentinel admissible value meaning "unset, but declared".
// Leaves assigned None are excluded from the canonical serialized form so
// that extending settings.yml with new, unrelated leaves never perturbs an
// existing package id.
const None = "None"

// Node is one point in a settings definition tree. A leaf node carries an
// explicit admissible-value list; a category node's admissible values are
// the keys of its per-value sub-trees (e.g. "compiler"'s values are
// "gcc"|"Visual Studio"|"clang"|"apple-clang", and choosing one exposes a
// different set of sub-settings, such as compiler.version).
type Node struct {
	leafValues []string
	categories map[string]Tree
}

// Tree is a definition scope: setting name -> Node.
type Tree map[string]*Node

// Values returns this node's admissible value universe.
func (n *Node) Values() []string {
	if n.leafValues != nil {
		return n.leafValues
	}
	values := make([]string, 0, len(n.categories))
	for v := range n.categories {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Definition is the parsed settings.yml document: the root Tree.
type Definition struct {
	root Tree
}

// ParseDefinition parses a settings.yml document as described in spec §6.
func ParseDefinition(text string) (*Definition, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, coreerrors.ConfigurationError("invalid settings.yml: %s", err)
	}
	tree, err := parseTree(raw)
	if err != nil {
		return nil, err
	}
	return &Definition{root: tree}, nil
}

func parseTree(raw map[string]interface{}) (Tree, error) {
	tree := make(Tree, len(raw))
	for name, value := range raw {
		node, err := parseNode(value)
		if err != nil {
			return nil, err
		}
		tree[name] = node
	}
	return tree, nil
}

func parseNode(raw interface{}) (*Node, error) {
	switch v := raw.(type) {
	case nil:
		return &Node{leafValues: []string{None}}, nil
	case []interface{}:
		values := make([]string, 0, len(v))
		for _, item := range v {
			values = append(values, stringOrNone(item))
		}
		return &Node{leafValues: values}, nil
	case map[string]interface{}:
		categories := make(map[string]Tree, len(v))
		for catValue, sub := range v {
			switch subTyped := sub.(type) {
			case nil:
				categories[catValue] = Tree{}
			case map[string]interface{}:
				tree, err := parseTree(subTyped)
				if err != nil {
					return nil, err
				}
				categories[catValue] = tree
			default:
				return nil, coreerrors.ConfigurationError("settings.yml: unexpected shape under %q", catValue)
			}
		}
		return &Node{categories: categories}, nil
	default:
		return nil, coreerrors.ConfigurationError("settings.yml: unsupported node type %T", raw)
	}
}

func stringOrNone(v interface{}) string {
	if v == nil {
		return None
	}
	return toString(v)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return ""
	}
}

// Settings is a live, assignable instance of a Definition: the values a
// recipe or command line has actually set.
type Settings struct {
	def    *Definition
	values map[string]string
}

// New creates an empty Settings instance bound to def.
func New(def *Definition) *Settings {
	return &Settings{def: def, values: make(map[string]string)}
}

// Clone returns an independent copy, so that sibling subtrees in the
// dependency graph cannot mutate each other's settings (spec §4.3).
func (s *Settings) Clone() *Settings {
	clone := New(s.def)
	for k, v := range s.values {
		clone.values[k] = v
	}
	return clone
}

// Get returns the value assigned at path, or "" if unset.
func (s *Settings) Get(path string) (string, error) {
	if _, err := s.resolve(path); err != nil {
		return "", err
	}
	return s.values[path], nil
}

// Set assigns value at path, failing if path is undeclared or value is
// outside the node's admissible universe.
func (s *Settings) Set(path, value string) error {
	node, err := s.resolve(path)
	if err != nil {
		return err
	}
	universe := node.Values()
	if !contains(universe, value) {
		return coreerrors.InvalidValueError(path, value, universe)
	}
	s.values[path] = value
	return nil
}

func (s *Settings) resolve(path string) (*Node, error) {
	parts := strings.Split(path, ".")
	tree := s.def.root
	for i, part := range parts {
		node, ok := tree[part]
		if !ok {
			return nil, coreerrors.UndefinedSettingError(path)
		}
		if i == len(parts)-1 {
			return node, nil
		}
		assigned, ok := s.values[strings.Join(parts[:i+1], ".")]
		if !ok {
			return nil, coreerrors.UndefinedSettingError(path)
		}
		sub, ok := node.categories[assigned]
		if !ok {
			return nil, coreerrors.UndefinedSettingError(path)
		}
		tree = sub
	}
	return nil, coreerrors.UndefinedSettingError(path)
}

// Values returns the canonical serialized form: lines "path=value", sorted
// by path, excluding leaves whose value is None.
func (s *Settings) Values() string {
	return serializeLines(s.values)
}

// Project returns a new Settings holding only the given dotted paths and
// the sub-settings nested under them (projecting "compiler" keeps
// "compiler.version"), used to derive a ConanInfo's settings section from
// the full context (spec §3).
func (s *Settings) Project(paths []string) *Settings {
	projected := New(s.def)
	for _, p := range paths {
		for k, v := range s.values {
			if k == p || strings.HasPrefix(k, p+".") {
				projected.values[k] = v
			}
		}
	}
	return projected
}

// Load restores a Settings instance from its canonical serialized form,
// validating each assignment against the definition.
func Load(def *Definition, text string) (*Settings, error) {
	s := New(def)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		path, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, coreerrors.ConfigurationError("malformed settings line: %q", line)
		}
		if err := s.Set(path, value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func serializeLines(values map[string]string) string {
	paths := make([]string, 0, len(values))
	for p, v := range values {
		if v == None {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteString("=")
		b.WriteString(values[p])
		b.WriteString("\n")
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
