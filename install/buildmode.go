package install

import (
	"github.com/conan-go/conancore/reference"
	"github.com/jfrog/gofrog/stringutils"
)

// buildModeKind is BuildMode's discriminant.
type buildModeKind int

const (
	buildModeNever buildModeKind = iota
	buildModeMissing
	buildModeForce
	buildModePattern
)

// BuildMode unifies what the original implementation represents as a
// boolean in one code path (build=True/False) and a reference-pattern
// allow-list in another, folded here into one tagged type (spec §9 Open
// Question 2). Construct with one of the BuildMode* constructors; the
// zero value is BuildModeNever.
type BuildMode struct {
	kind     buildModeKind
	patterns []string
}

// BuildModeNever never builds; a missing binary is always a MissingBinaryError.
func BuildModeNever() BuildMode { return BuildMode{kind: buildModeNever} }

// BuildModeMissing builds only when no cached or remote binary exists.
func BuildModeMissing() BuildMode { return BuildMode{kind: buildModeMissing} }

// BuildModeForce always builds, even when a binary is already cached or
// available from a remote.
func BuildModeForce() BuildMode { return BuildMode{kind: buildModeForce} }

// BuildModePattern builds only references matching one of patterns
// (shell glob over "name/version@user/channel", where "*" also matches
// across "/" and "@", the same matching remove and search use), building unconditionally
// for those and never for anything else.
func BuildModePattern(patterns []string) BuildMode {
	return BuildMode{kind: buildModePattern, patterns: patterns}
}

// AllowsBuild reports whether mode permits building ref at all (ignoring
// whether a cached/remote binary already satisfies it).
func (m BuildMode) AllowsBuild(ref reference.Reference) bool {
	switch m.kind {
	case buildModeNever:
		return false
	case buildModeMissing:
		return true
	case buildModeForce:
		return true
	case buildModePattern:
		for _, p := range m.patterns {
			if ok, _ := stringutils.MatchWildcardPattern(p, ref.String()); ok {
				return true
			}
		}
		return false
	}
	return false
}

// Forces reports whether mode mandates rebuilding ref even when a cached
// or remote binary already exists.
func (m BuildMode) Forces(ref reference.Reference) bool {
	switch m.kind {
	case buildModeForce:
		return true
	case buildModePattern:
		return m.AllowsBuild(ref)
	default:
		return false
	}
}
