// Package core threads the ambient dependencies every command needs —
// storage, settings, a remote, a command runner, and a logger — through
// an explicit Context value (spec §9: "no implicit process-wide state
// beyond the store file-locks"), and exposes a Manager façade mirroring
// original_source/conans/client/manager.py's ConanManager entry points.
package core

import (
	"github.com/conan-go/conancore/install"
	"github.com/conan-go/conancore/settings"
	"github.com/conan-go/conancore/store"
	"github.com/conan-go/conancore/utils"
)

// Remote is the remote capability a Context carries: the installer's
// recipe/package existence checks and downloads (install.RemoteManager).
// Upload and search take their remote through their own interfaces, not
// through Context.
type Remote interface {
	install.RemoteManager
}

// Context bundles the dependencies threaded through every command, in
// place of package-level globals.
type Context struct {
	Paths       store.ConanPaths
	SettingsDef *settings.Definition
	Remote      Remote
	Hooks       install.Hooks
	Log         utils.Log
}

// NewContext builds a Context with a NullLog logger; callers that want
// output wire in utils.NewDefaultLogger or a LoggerAdapter instead.
func NewContext(paths store.ConanPaths, settingsDef *settings.Definition, remote Remote, hooks install.Hooks) *Context {
	return &Context{
		Paths:       paths,
		SettingsDef: settingsDef,
		Remote:      remote,
		Hooks:       hooks,
		Log:         &utils.NullLog{},
	}
}
