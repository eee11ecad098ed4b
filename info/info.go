// Package info computes a graph node's ConanInfo - the canonical
// serialized settings/options/requires text that identifies one binary
// package of a recipe - and hashes it into a package_id (spec §3, §8
// Scenario S1). The serialization format matches the one
// settings.Settings.Values and settings.Options.Values already produce,
// assembled here into the three-section text block the original hashes.
package info

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/recipe"
)

// ConanInfo is the canonical identity of one built package: the subset of
// settings the recipe reads, its own options, and the package_ids of the
// requirements reachable from it through public edges, transitively
// (spec §3).
type ConanInfo struct {
	Settings string // already-serialized "path=value\n" lines
	Options  string // already-serialized "name=value\n" lines
	Requires []RequireEntry
}

// RequireEntry names one direct dependency's reference and resolved
// package_id, the two facts a change to either must invalidate this
// package's identity for (spec §3's "Requires" hash input).
type RequireEntry struct {
	Ref       string
	PackageID string
}

// Compute walks node's graph in reverse-topological order (dependencies
// first) so every dependency's PackageID is already populated by the time
// node's own ConanInfo is assembled, then hashes it into node.PackageID.
// Calling Compute on the root computes package_ids for the whole graph.
func Compute(root *graph.Node) {
	for _, n := range graph.ReverseTopological(root) {
		computeNode(n)
	}
}

func computeNode(n *graph.Node) {
	ci := Build(n)
	n.PackageID = Hash(ci)
}

// Build assembles n's ConanInfo from its already-resolved settings,
// options, and the public-only transitive closure of its dependencies'
// package_ids: n's direct public children, unioned with each of those
// children's own public transitive closure. A private edge terminates
// the union at the node it shields (spec §4.3 step 3).
func Build(n *graph.Node) ConanInfo {
	closure := make(map[string]string) // ref -> package_id
	var collect func(node *graph.Node)
	collect = func(node *graph.Node) {
		for _, e := range node.Edges {
			if e.Visibility != recipe.Public {
				continue
			}
			dep := e.Dependency
			if _, seen := closure[dep.Ref.String()]; seen {
				continue
			}
			closure[dep.Ref.String()] = dep.PackageID
			collect(dep)
		}
	}
	collect(n)

	requires := make([]RequireEntry, 0, len(closure))
	for ref, pkgID := range closure {
		requires = append(requires, RequireEntry{Ref: ref, PackageID: pkgID})
	}
	sort.Slice(requires, func(i, j int) bool { return requires[i].Ref < requires[j].Ref })

	return ConanInfo{
		Settings: n.Settings.Values(),
		Options:  n.Options.Values(),
		Requires: requires,
	}
}

// Text renders the three-section canonical form spec §8 Scenario S1
// expects verbatim:
//
//	[settings]
//	<sorted path=value lines>
//	[options]
//	<sorted name=value lines>
//	[requires]
//	<sorted ref: package_id lines>
func (ci ConanInfo) Text() string {
	var b strings.Builder
	b.WriteString("[settings]\n")
	b.WriteString(ci.Settings)
	b.WriteString("[options]\n")
	b.WriteString(ci.Options)
	b.WriteString("[requires]\n")
	for _, r := range ci.Requires {
		fmt.Fprintf(&b, "%s: %s\n", r.Ref, r.PackageID)
	}
	return b.String()
}

// Hash is the 40-character lowercase-hex SHA-1 of ci.Text(), the
// package_id this ConanInfo identifies (spec §3).
func Hash(ci ConanInfo) string {
	sum := sha1.Sum([]byte(ci.Text()))
	return hex.EncodeToString(sum[:])
}
