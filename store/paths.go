// Package store resolves the on-disk layout of the local package cache
// (spec §4.4): one export tree and zero or more package trees per
// reference, keyed by name/version/user/channel and package_id.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/conan-go/conancore/reference"
)

const (
	exportSubdir  = "export"
	packageSubdir = "package"
	sourceSubdir  = "source"
	buildSubdir   = "build"

	exportManifestName  = "conanmanifest.txt"
	packageManifestName = "conanmanifest.txt"
	conanInfoName       = "conaninfo.txt"
)

// ConanPaths resolves storage locations for a reference and, once built,
// a package within that reference. Implementations need not be
// filesystem-backed; the default DiskLayout is spec §4.4's on-disk tree.
type ConanPaths interface {
	// ExportDir is where the recipe's exported files live.
	ExportDir(ref reference.Reference) string
	// ExportManifestPath is the recipe manifest written at export time.
	ExportManifestPath(ref reference.Reference) string
	// SourceDir is the extracted-sources working directory for the recipe.
	SourceDir(ref reference.Reference) string
	// PackageDir is where a specific binary package's files live.
	PackageDir(pref reference.PackageReference) string
	// PackageManifestPath is the package manifest for a built package.
	PackageManifestPath(pref reference.PackageReference) string
	// PackageInfoPath is the canonical conaninfo.txt for a built package.
	PackageInfoPath(pref reference.PackageReference) string
	// BuildDir is the scratch build directory for a package build.
	BuildDir(pref reference.PackageReference) string
	// PackageIDs lists every package_id already present under ref.
	PackageIDs(ref reference.Reference) ([]string, error)
	// References lists every reference present in the store.
	References() ([]reference.Reference, error)
	// RemoveReference deletes a reference's entire tree (export + packages
	// + source).
	RemoveReference(ref reference.Reference) error
	// RemovePackage deletes a single package's tree.
	RemovePackage(pref reference.PackageReference) error
	// RemoveExport deletes only the recipe export tree, leaving any built
	// packages and extracted sources untouched.
	RemoveExport(ref reference.Reference) error
	// RemoveSource deletes only the extracted-sources working directory.
	RemoveSource(ref reference.Reference) error
}

// DiskLayout is the default ConanPaths implementation: a directory tree
// rooted at Root, one subtree per reference at
// Root/<name>/<version>/<user>/<channel>/, holding "export" and
// "package/<package_id>" subdirectories (spec §4.4).
type DiskLayout struct {
	Root string
}

// NewDiskLayout creates the layout rooted at root, creating the directory
// if it does not already exist.
func NewDiskLayout(root string) (*DiskLayout, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", root, err)
	}
	return &DiskLayout{Root: root}, nil
}

func (d *DiskLayout) refDir(ref reference.Reference) string {
	return filepath.Join(d.Root, ref.Name, ref.Version, ref.User, ref.Channel)
}

func (d *DiskLayout) ExportDir(ref reference.Reference) string {
	return filepath.Join(d.refDir(ref), exportSubdir)
}

func (d *DiskLayout) ExportManifestPath(ref reference.Reference) string {
	return filepath.Join(d.ExportDir(ref), exportManifestName)
}

func (d *DiskLayout) SourceDir(ref reference.Reference) string {
	return filepath.Join(d.refDir(ref), sourceSubdir)
}

func (d *DiskLayout) packagesDir(ref reference.Reference) string {
	return filepath.Join(d.refDir(ref), packageSubdir)
}

func (d *DiskLayout) PackageDir(pref reference.PackageReference) string {
	return filepath.Join(d.packagesDir(pref.Reference), pref.PackageID)
}

func (d *DiskLayout) PackageManifestPath(pref reference.PackageReference) string {
	return filepath.Join(d.PackageDir(pref), packageManifestName)
}

func (d *DiskLayout) PackageInfoPath(pref reference.PackageReference) string {
	return filepath.Join(d.PackageDir(pref), conanInfoName)
}

func (d *DiskLayout) BuildDir(pref reference.PackageReference) string {
	return filepath.Join(d.refDir(pref.Reference), buildSubdir, pref.PackageID)
}

func (d *DiskLayout) PackageIDs(ref reference.Reference) ([]string, error) {
	entries, err := os.ReadDir(d.packagesDir(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// References walks the storage root's four directory levels
// (name/version/user/channel) collecting every reference found.
func (d *DiskLayout) References() ([]reference.Reference, error) {
	var refs []reference.Reference
	names, err := listDirs(d.Root)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		versions, err := listDirs(filepath.Join(d.Root, name))
		if err != nil {
			return nil, err
		}
		for _, version := range versions {
			users, err := listDirs(filepath.Join(d.Root, name, version))
			if err != nil {
				return nil, err
			}
			for _, user := range users {
				channels, err := listDirs(filepath.Join(d.Root, name, version, user))
				if err != nil {
					return nil, err
				}
				for _, channel := range channels {
					refs = append(refs, reference.Reference{Name: name, Version: version, User: user, Channel: channel})
				}
			}
		}
	}
	return refs, nil
}

func listDirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (d *DiskLayout) RemoveReference(ref reference.Reference) error {
	return os.RemoveAll(d.refDir(ref))
}

func (d *DiskLayout) RemovePackage(pref reference.PackageReference) error {
	return os.RemoveAll(d.PackageDir(pref))
}

func (d *DiskLayout) RemoveExport(ref reference.Reference) error {
	return os.RemoveAll(d.ExportDir(ref))
}

func (d *DiskLayout) RemoveSource(ref reference.Reference) error {
	return os.RemoveAll(d.SourceDir(ref))
}
