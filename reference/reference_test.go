package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseValid(t *testing.T) {
	ref, err := Parse("Hello/0.1@user/channel")
	assert.NoError(t, err)
	assert.Equal(t, Reference{Name: "Hello", Version: "0.1", User: "user", Channel: "channel"}, ref)
	assert.Equal(t, "Hello/0.1@user/channel", ref.String())
}

func TestParseInvalid(t *testing.T) {
	for _, text := range []string{
		"Hello/0.1",
		"Hello@user/channel",
		"Hello/0.1@user",
		"",
	} {
		_, err := Parse(text)
		assert.Error(t, err, text)
	}
}

func TestSplitUserChannelDefaultsChannel(t *testing.T) {
	user, channel := SplitUserChannel("lasote")
	assert.Equal(t, "lasote", user)
	assert.Equal(t, DefaultChannel, channel)

	user, channel = SplitUserChannel("lasote/stable")
	assert.Equal(t, "lasote", user)
	assert.Equal(t, "stable", channel)
}

func TestValidPackageID(t *testing.T) {
	assert.True(t, ValidPackageID("da39a3ee5e6b4b0d3255bfef95601890afd80709"))
	assert.False(t, ValidPackageID("not-hex"))
	assert.False(t, ValidPackageID("abc"))
}

func TestPackageReferenceString(t *testing.T) {
	ref := Reference{Name: "Hello", Version: "0.1", User: "user", Channel: "channel"}
	pref := PackageReference{Reference: ref, PackageID: "da39a3ee5e6b4b0d3255bfef95601890afd80709"}
	assert.Equal(t, "Hello/0.1@user/channel:da39a3ee5e6b4b0d3255bfef95601890afd80709", pref.String())
}
