// Package generator renders a resolved DepsCppInfo into the build-system
// integration artifacts spec §6 names: the plain-text conanbuildinfo.txt,
// a CMake variables file, and a JSON graph export.
package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conan-go/conancore/install"
)

// aggregate is the union, in first-seen order with duplicates dropped,
// of every dependency's values for one CppInfo field.
func aggregate(deps []install.ResolvedCppInfo, pick func(install.CppInfo) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range deps {
		for _, v := range pick(d.CppInfo) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// WriteBuildInfoText renders the conanbuildinfo.txt format (spec §6):
// global aggregation sections first, then one subsection per dependency.
func WriteBuildInfoText(deps install.DepsCppInfo) string {
	var b strings.Builder

	sections := []struct {
		name string
		pick func(install.CppInfo) []string
	}{
		{"includedirs", func(c install.CppInfo) []string { return c.IncludeDirs }},
		{"libdirs", func(c install.CppInfo) []string { return c.LibDirs }},
		{"bindirs", func(c install.CppInfo) []string { return nil }},
		{"libs", func(c install.CppInfo) []string { return c.Libs }},
		{"defines", func(c install.CppInfo) []string { return c.Defines }},
		{"cxxflags", func(c install.CppInfo) []string { return c.CXXFlags }},
		{"cflags", func(c install.CppInfo) []string { return c.CFlags }},
		{"sharedlinkflags", func(c install.CppInfo) []string { return c.LinkFlags }},
		{"exelinkflags", func(c install.CppInfo) []string { return nil }},
	}

	for _, s := range sections {
		fmt.Fprintf(&b, "[%s]\n", s.name)
		for _, v := range aggregate(deps.Deps, s.pick) {
			fmt.Fprintf(&b, "%s\n", v)
		}
	}

	for _, d := range deps.Deps {
		depName := depSectionName(d.Ref)
		for _, s := range sections {
			fmt.Fprintf(&b, "[%s_%s]\n", s.name, depName)
			for _, v := range s.pick(d.CppInfo) {
				fmt.Fprintf(&b, "%s\n", v)
			}
		}
	}

	return b.String()
}

// depSectionName reduces a reference string to the bare package name
// conanbuildinfo.txt uses for its per-dependency subsection suffix.
func depSectionName(ref string) string {
	name, _, _ := strings.Cut(ref, "/")
	return name
}

// WriteCMake renders the same composed data as CMake set(CONAN_... ...)
// variable assignments (spec §6).
func WriteCMake(deps install.DepsCppInfo) string {
	var b strings.Builder

	vars := []struct {
		name string
		pick func(install.CppInfo) []string
	}{
		{"CONAN_INCLUDE_DIRS", func(c install.CppInfo) []string { return c.IncludeDirs }},
		{"CONAN_LIB_DIRS", func(c install.CppInfo) []string { return c.LibDirs }},
		{"CONAN_LIBS", func(c install.CppInfo) []string { return c.Libs }},
		{"CONAN_DEFINES", func(c install.CppInfo) []string { return c.Defines }},
		{"CONAN_CXX_FLAGS", func(c install.CppInfo) []string { return c.CXXFlags }},
		{"CONAN_C_FLAGS", func(c install.CppInfo) []string { return c.CFlags }},
	}

	for _, v := range vars {
		values := aggregate(deps.Deps, v.pick)
		fmt.Fprintf(&b, "set(%s %s)\n", v.name, quoteList(values))
	}

	for _, d := range deps.Deps {
		upper := strings.ToUpper(depSectionName(d.Ref))
		for _, v := range vars {
			fmt.Fprintf(&b, "set(%s_%s %s)\n", v.name, upper, quoteList(v.pick(d.CppInfo)))
		}
	}

	return b.String()
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	sort.Strings(quoted)
	return strings.Join(quoted, " ")
}
