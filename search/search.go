// Package search implements the search command (spec §4.7): a glob
// pattern over references and an optional regex over package IDs,
// against the local store or a remote.
package search

import (
	"os"
	"regexp"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/conan-go/conancore/info"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/conan-go/conancore/utils"
	"github.com/jfrog/gofrog/stringutils"
)

// PackageMatch is one package found under a matching reference.
type PackageMatch struct {
	PackageID string
	Info      info.ConanInfo
}

// Result maps each matching reference to its matching packages. A
// reference with no --package filter applied, or whose packages were not
// requested, maps to a nil (not empty) package slice.
type Result map[string][]PackageMatch

// Options configures one search call.
type Options struct {
	// CaseSensitive disables the default case-insensitive glob match
	// (spec §9 Open Question 3).
	CaseSensitive bool
	// PackagePattern, if non-empty, is a regex filtering package_ids;
	// when set, matching references are resolved down to their packages.
	PackagePattern string
}

// LocalSearcher searches the local on-disk store.
type LocalSearcher struct {
	Paths store.ConanPaths
}

// Search finds every reference in the store matching refPattern (a shell
// glob over "name/version@user/channel"), optionally filtered to
// packages matching opts.PackagePattern.
func (s *LocalSearcher) Search(refPattern string, opts Options) (Result, error) {
	refs, err := s.Paths.References()
	if err != nil {
		return nil, err
	}

	var pkgRe *regexp.Regexp
	if opts.PackagePattern != "" {
		pkgRe, err = utils.GetRegExp(opts.PackagePattern)
		if err != nil {
			return nil, err
		}
	}

	result := make(Result)
	needle := refPattern
	for _, ref := range refs {
		haystack := ref.String()
		if !opts.CaseSensitive {
			needle = strings.ToLower(refPattern)
			haystack = strings.ToLower(haystack)
		}
		matched, err := stringutils.MatchWildcardPattern(needle, haystack)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		if pkgRe == nil {
			result[ref.String()] = nil
			continue
		}

		ids, err := s.Paths.PackageIDs(ref)
		if err != nil {
			return nil, err
		}
		var matches []PackageMatch
		for _, id := range ids {
			if !pkgRe.MatchString(id) {
				continue
			}
			pref := reference.PackageReference{Reference: ref, PackageID: id}
			ci, err := readPackageInfo(s.Paths, pref)
			if err != nil {
				continue
			}
			matches = append(matches, PackageMatch{PackageID: id, Info: ci})
		}
		if len(matches) > 0 {
			result[ref.String()] = matches
		}
	}
	return result, nil
}

// IndexFetcher fetches a remote's search index as raw JSON: a top-level
// object keyed by reference string, each value itself an object carrying
// at least a "package_ids" array.
type IndexFetcher interface {
	FetchIndex() ([]byte, error)
}

// RemoteSearcher searches a remote's JSON index without unmarshaling it
// into a Go struct first, walking it field-by-field the way the teacher's
// utils/npmutils.go walks an `npm ls --json` dependency tree with
// github.com/buger/jsonparser.ObjectEach/Get.
type RemoteSearcher struct {
	Index IndexFetcher
}

// Search matches refPattern against every key of the remote index.
func (s *RemoteSearcher) Search(refPattern string, opts Options) (Result, error) {
	data, err := s.Index.FetchIndex()
	if err != nil {
		return nil, err
	}

	result := make(Result)
	var walkErr error
	err = jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, offset int) error {
		refStr := string(key)
		needle, haystack := refPattern, refStr
		if !opts.CaseSensitive {
			needle = strings.ToLower(refPattern)
			haystack = strings.ToLower(refStr)
		}
		matched, matchErr := stringutils.MatchWildcardPattern(needle, haystack)
		if matchErr != nil {
			walkErr = matchErr
			return nil
		}
		if !matched {
			return nil
		}

		ids, _, _, idsErr := jsonparser.Get(value, "package_ids")
		if idsErr != nil {
			result[refStr] = nil
			return nil
		}
		var matches []PackageMatch
		_, _ = jsonparser.ArrayEach(ids, func(idValue []byte, idType jsonparser.ValueType, idOffset int, idErr error) {
			matches = append(matches, PackageMatch{PackageID: string(idValue)})
		})
		result[refStr] = matches
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, walkErr
}

func readPackageInfo(paths store.ConanPaths, pref reference.PackageReference) (info.ConanInfo, error) {
	data, err := os.ReadFile(paths.PackageInfoPath(pref))
	if err != nil {
		return info.ConanInfo{}, err
	}
	return parseConanInfoText(string(data)), nil
}

// parseConanInfoText reverses ConanInfo.Text()'s section layout back into
// a ConanInfo, used only to surface a found package's identity to search
// results; it does not need to round-trip exactly since the package_id
// itself, not this parse, is the package's identity.
func parseConanInfoText(text string) info.ConanInfo {
	var ci info.ConanInfo
	section := ""
	var settingsLines, optionsLines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line {
		case "[settings]":
			section = "settings"
			continue
		case "[options]":
			section = "options"
			continue
		case "[requires]":
			section = "requires"
			continue
		}
		switch section {
		case "settings":
			settingsLines = append(settingsLines, line)
		case "options":
			optionsLines = append(optionsLines, line)
		case "requires":
			ref, id, ok := strings.Cut(line, ": ")
			if ok {
				ci.Requires = append(ci.Requires, info.RequireEntry{Ref: ref, PackageID: id})
			}
		}
	}
	if len(settingsLines) > 0 {
		ci.Settings = strings.Join(settingsLines, "\n") + "\n"
	}
	if len(optionsLines) > 0 {
		ci.Options = strings.Join(optionsLines, "\n") + "\n"
	}
	return ci
}
