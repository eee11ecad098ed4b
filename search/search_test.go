package search

import (
	"os"
	"testing"

	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMatchesGlobCaseInsensitiveByDefault(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "Zlib", Version: "1.2.8", User: "user", Channel: "stable"}
	require.NoError(t, os.MkdirAll(paths.ExportDir(ref), 0o755))

	s := &LocalSearcher{Paths: paths}
	result, err := s.Search("zlib/*@*/*", Options{})
	require.NoError(t, err)
	assert.Contains(t, result, ref.String())
}

func TestSearchCaseSensitiveExcludesMismatch(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "Zlib", Version: "1.2.8", User: "user", Channel: "stable"}
	require.NoError(t, os.MkdirAll(paths.ExportDir(ref), 0o755))

	s := &LocalSearcher{Paths: paths}
	result, err := s.Search("zlib/*@*/*", Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.NotContains(t, result, ref.String())
}

func TestSearchFiltersByPackagePattern(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "zlib", Version: "1.2.8", User: "user", Channel: "stable"}
	pref1 := reference.PackageReference{Reference: ref, PackageID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	pref2 := reference.PackageReference{Reference: ref, PackageID: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"}
	require.NoError(t, os.MkdirAll(paths.PackageDir(pref1), 0o755))
	require.NoError(t, os.MkdirAll(paths.PackageDir(pref2), 0o755))
	require.NoError(t, os.WriteFile(paths.PackageInfoPath(pref1), []byte("[settings]\n[options]\n[requires]\n"), 0o644))
	require.NoError(t, os.WriteFile(paths.PackageInfoPath(pref2), []byte("[settings]\n[options]\n[requires]\n"), 0o644))

	s := &LocalSearcher{Paths: paths}
	result, err := s.Search("zlib/*@*/*", Options{PackagePattern: "^aaa"})
	require.NoError(t, err)
	matches := result[ref.String()]
	require.Len(t, matches, 1)
	assert.Equal(t, pref1.PackageID, matches[0].PackageID)
}

type fakeIndexFetcher struct {
	body []byte
}

func (f *fakeIndexFetcher) FetchIndex() ([]byte, error) { return f.body, nil }

func TestRemoteSearcherMatchesIndexEntries(t *testing.T) {
	index := []byte(`{
		"zlib/1.2.8@user/stable": {"package_ids": ["aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"]},
		"openssl/1.1@user/stable": {"package_ids": ["bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"]}
	}`)
	s := &RemoteSearcher{Index: &fakeIndexFetcher{body: index}}

	result, err := s.Search("zlib/*@*/*", Options{})
	require.NoError(t, err)
	require.Contains(t, result, "zlib/1.2.8@user/stable")
	require.NotContains(t, result, "openssl/1.1@user/stable")
	require.Len(t, result["zlib/1.2.8@user/stable"], 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", result["zlib/1.2.8@user/stable"][0].PackageID)
}
