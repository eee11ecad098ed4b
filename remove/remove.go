// Package remove implements the remove command (spec §4.6): a glob over
// references, optional package_id filters, local and/or remote deletion.
package remove

import (
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/jfrog/gofrog/stringutils"
)

// RemoteRemover is the capability a remote offers this command.
type RemoteRemover interface {
	RemoveReference(ref reference.Reference) error
	RemovePackage(pref reference.PackageReference) error
}

// Options configures one Remove call.
type Options struct {
	// PackageIDs restricts removal to these package IDs; empty means
	// "the whole reference" (recipe plus every package).
	PackageIDs []string
	// Src additionally removes the reference's source directory.
	Src bool
	// Remote, if non-nil, also removes from the named remote.
	Remote RemoteRemover
	// Force skips nothing today but is accepted for CLI-surface parity
	// with upload's force flag (spec §9's CLI surface enumeration).
	Force bool
}

// Remover deletes references and packages from the local store and,
// optionally, a remote.
type Remover struct {
	Paths store.ConanPaths
}

// Remove deletes every reference matching pattern (a shell glob over
// "name/version@user/channel"), honoring opts.
func (r *Remover) Remove(pattern string, opts Options) ([]reference.Reference, error) {
	refs, err := r.Paths.References()
	if err != nil {
		return nil, err
	}

	var removed []reference.Reference
	for _, ref := range refs {
		matched, err := stringutils.MatchWildcardPattern(pattern, ref.String())
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}

		if len(opts.PackageIDs) > 0 {
			if err := r.removePackages(ref, opts); err != nil {
				return nil, err
			}
			removed = append(removed, ref)
			continue
		}

		if err := r.removeWhole(ref, opts); err != nil {
			return nil, err
		}
		removed = append(removed, ref)
	}
	return removed, nil
}

func (r *Remover) removePackages(ref reference.Reference, opts Options) error {
	for _, id := range opts.PackageIDs {
		pref := reference.PackageReference{Reference: ref, PackageID: id}
		if err := r.Paths.RemovePackage(pref); err != nil {
			return err
		}
		if opts.Remote != nil {
			if err := opts.Remote.RemovePackage(pref); err != nil {
				return err
			}
		}
	}
	return nil
}

// removeWhole deletes the recipe export and every built package for ref.
// The source-tree working directory is left in place unless opts.Src is
// set (spec §4.6: "Source-tree removal is opt-in via a src flag").
func (r *Remover) removeWhole(ref reference.Reference, opts Options) error {
	ids, err := r.Paths.PackageIDs(ref)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Paths.RemovePackage(reference.PackageReference{Reference: ref, PackageID: id}); err != nil {
			return err
		}
	}
	if err := r.Paths.RemoveExport(ref); err != nil {
		return err
	}
	if opts.Src {
		if err := r.Paths.RemoveSource(ref); err != nil {
			return err
		}
	}
	if opts.Remote != nil {
		if err := opts.Remote.RemoveReference(ref); err != nil {
			return err
		}
	}
	return nil
}
