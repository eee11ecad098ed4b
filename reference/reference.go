// Package reference parses and formats Conan-style package identities:
// name/version@user/channel for recipes, plus the package_id suffix that
// identifies one built binary of that recipe.
package reference

import (
	"strings"

	"github.com/conan-go/conancore/coreerrors"
)

// DefaultChannel is used when a bare user is given to export without a
// "/channel" suffix, matching conans/client/manager.py's get_user_channel.
const DefaultChannel = "testing"

// Reference identifies one recipe: name/version@user/channel. All four
// components must be non-empty; equality is structural.
type Reference struct {
	Name    string
	Version string
	User    string
	Channel string
}

// Parse parses "name/version@user/channel". The "@user/channel" suffix is
// mandatory here; callers that accept a bare "user" (e.g. the export
// command) should split it themselves with SplitUserChannel.
func Parse(text string) (Reference, error) {
	namever, userchannel, hasAt := strings.Cut(text, "@")
	if !hasAt {
		return Reference{}, coreerrors.ReferenceParseError(text)
	}
	name, version, hasSlash := strings.Cut(namever, "/")
	if !hasSlash || name == "" || version == "" {
		return Reference{}, coreerrors.ReferenceParseError(text)
	}
	user, channel, hasSlash2 := strings.Cut(userchannel, "/")
	if !hasSlash2 || user == "" || channel == "" {
		return Reference{}, coreerrors.ReferenceParseError(text)
	}
	return Reference{Name: name, Version: version, User: user, Channel: channel}, nil
}

// SplitUserChannel splits "user/channel" or a bare "user", defaulting the
// channel to DefaultChannel in the latter case.
func SplitUserChannel(text string) (user, channel string) {
	user, channel, ok := strings.Cut(text, "/")
	if !ok {
		return text, DefaultChannel
	}
	return user, channel
}

func (r Reference) String() string {
	return r.Name + "/" + r.Version + "@" + r.User + "/" + r.Channel
}

func (r Reference) IsValid() bool {
	return r.Name != "" && r.Version != "" && r.User != "" && r.Channel != ""
}

func (r Reference) Equal(other Reference) bool {
	return r == other
}

// PackageReference extends a Reference with the package_id (lowercase hex
// SHA-1, 40 chars) that identifies a single built binary.
type PackageReference struct {
	Reference
	PackageID string
}

func (p PackageReference) String() string {
	return p.Reference.String() + ":" + p.PackageID
}

const packageIDLength = 40

// ValidPackageID reports whether id looks like a lowercase hex SHA-1.
func ValidPackageID(id string) bool {
	if len(id) != packageIDLength {
		return false
	}
	for _, c := range id {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		if !isDigit && !isLowerHex {
			return false
		}
	}
	return true
}
