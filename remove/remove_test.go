package remove

import (
	"os"
	"testing"

	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovePreservesSourceByDefault(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "zlib", Version: "1.0", User: "u", Channel: "c"}
	require.NoError(t, os.MkdirAll(paths.ExportDir(ref), 0o755))
	require.NoError(t, os.MkdirAll(paths.SourceDir(ref), 0o755))

	r := &Remover{Paths: paths}
	removed, err := r.Remove("zlib/*@*/*", Options{})
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	_, err = os.Stat(paths.ExportDir(ref))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.SourceDir(ref))
	assert.NoError(t, err, "source dir must survive a remove without --src")
}

func TestRemoveWithSrcDeletesSource(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "zlib", Version: "1.0", User: "u", Channel: "c"}
	require.NoError(t, os.MkdirAll(paths.ExportDir(ref), 0o755))
	require.NoError(t, os.MkdirAll(paths.SourceDir(ref), 0o755))

	r := &Remover{Paths: paths}
	_, err = r.Remove("zlib/*@*/*", Options{Src: true})
	require.NoError(t, err)

	_, err = os.Stat(paths.SourceDir(ref))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveSpecificPackageIDs(t *testing.T) {
	paths, err := store.NewDiskLayout(t.TempDir())
	require.NoError(t, err)
	ref := reference.Reference{Name: "zlib", Version: "1.0", User: "u", Channel: "c"}
	pref := reference.PackageReference{Reference: ref, PackageID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	require.NoError(t, os.MkdirAll(paths.ExportDir(ref), 0o755))
	require.NoError(t, os.MkdirAll(paths.PackageDir(pref), 0o755))

	r := &Remover{Paths: paths}
	_, err = r.Remove("zlib/*@*/*", Options{PackageIDs: []string{pref.PackageID}})
	require.NoError(t, err)

	_, err = os.Stat(paths.PackageDir(pref))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(paths.ExportDir(ref))
	assert.NoError(t, err, "a package-id-scoped remove must not touch the recipe export")
}
