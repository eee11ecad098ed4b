// Package cli wires every conancore subcommand (spec §6) onto
// github.com/urfave/cli/v2, the teacher's own CLI dependency, driving
// every command through a single core.Manager built from the on-disk
// store and conan.conf the way the original tool's command layer drives
// its ConanManager.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/conan-go/conancore/config"
	"github.com/conan-go/conancore/core"
	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/install"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/remove"
	"github.com/conan-go/conancore/search"
	"github.com/conan-go/conancore/settings"
	"github.com/conan-go/conancore/store"
	"github.com/conan-go/conancore/utils"
	clitool "github.com/urfave/cli/v2"
)

const (
	settingFlag  = "setting"
	optionFlag   = "option"
	remoteFlag   = "remote"
	buildFlag    = "build"
	allFlag      = "all"
	forceFlag    = "force"
	packageFlag  = "package"
	srcFlag      = "src"
	buildsFlag   = "builds"
	packagesFlag = "packages"
	testFlag     = "test"
	passwordFlag = "password"
)

// GetCommands returns every conancore subcommand.
func GetCommands(logger utils.Log) []*clitool.Command {
	return []*clitool.Command{
		exportCommand(logger),
		installCommand(logger),
		buildCommand(logger),
		uploadCommand(logger),
		searchCommand(logger),
		removeCommand(logger),
		userCommand(logger),
	}
}

// newManager loads conan.conf from the user's conan home (~/.conan2,
// overridable with CONAN_USER_HOME) and builds a Manager over its
// configured storage path, mirroring the original tool's per-invocation
// ConanManager construction.
func newManager(logger utils.Log) (*core.Manager, error) {
	home, err := conanHome()
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindConfiguration, err, "resolving conan home directory")
	}
	cfg, err := config.Load(filepath.Join(home, "conan.conf"))
	if err != nil {
		return nil, err
	}
	paths, err := store.NewDiskLayout(cfg.StoragePath)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindConfiguration, err, "initializing storage at %s", cfg.StoragePath)
	}
	def, err := settings.DefaultDefinition()
	if err != nil {
		return nil, err
	}
	ctx := core.NewContext(paths, def, nil, install.ShellHookRunner{})
	ctx.Log = logger
	return core.NewManager(ctx), nil
}

func conanHome() (string, error) {
	if h := os.Getenv("CONAN_USER_HOME"); h != "" {
		return filepath.Join(h, ".conan2"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".conan2"), nil
}

func exportCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "export",
		Usage:     "Export a recipe to the local cache",
		UsageText: "conan export <path> <user>/<channel>",
		Flags: []clitool.Flag{
			&clitool.BoolFlag{Name: forceFlag, Usage: "overwrite an existing export with identical content"},
		},
		Action: func(c *clitool.Context) error {
			if c.Args().Len() < 2 {
				return coreerrors.ConfigurationError("usage: export <path> <user>/<channel>")
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			user, channel := reference.SplitUserChannel(c.Args().Get(1))
			result, err := mgr.Export(c.Args().Get(0), core.ExportOptions{User: user, Channel: channel, Overwrite: c.Bool(forceFlag)})
			if err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("Exported %s", result.Ref.String()))
			return nil
		},
	}
}

func installCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "install",
		Usage:     "Resolve the dependency graph and install every package's binary",
		UsageText: "conan install [ref|path] [--build[=mode]] [-s setting=value] [-o option=value] [-r remote]",
		Flags: []clitool.Flag{
			&clitool.StringSliceFlag{Name: settingFlag, Aliases: []string{"s"}, Usage: "setting=value, repeatable"},
			&clitool.StringSliceFlag{Name: optionFlag, Aliases: []string{"o"}, Usage: "option=value or pkg:option=value, repeatable"},
			&clitool.StringFlag{Name: buildFlag, Usage: "never|missing|force, or a comma-separated list of reference glob patterns"},
			&clitool.StringFlag{Name: remoteFlag, Aliases: []string{"r"}},
		},
		Action: func(c *clitool.Context) error {
			target := "."
			if c.Args().Len() > 0 {
				target = c.Args().Get(0)
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			mode, err := parseBuildMode(c.String(buildFlag), c.IsSet(buildFlag))
			if err != nil {
				return err
			}
			result, err := mgr.Install(context.Background(), target, core.InstallOptions{
				Settings: parseKeyValues(c.StringSlice(settingFlag)),
				Options:  parseKeyValues(c.StringSlice(optionFlag)),
				Mode:     mode,
				Threads:  runtime.NumCPU(),
			})
			if err != nil {
				return err
			}
			for ref, outcome := range result.Outcomes {
				logger.Info(fmt.Sprintf("%s: %s", ref, outcome))
			}
			destDir := target
			if info, statErr := os.Stat(target); statErr != nil || !info.IsDir() {
				destDir = "."
			}
			return mgr.GenerateArtifacts(result.Root, destDir)
		},
	}
}

func buildCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "build",
		Usage:     "Run a local recipe's source/build/package (and optionally test) hooks",
		UsageText: "conan build [path] [--test]",
		Flags: []clitool.Flag{
			&clitool.BoolFlag{Name: testFlag},
		},
		Action: func(c *clitool.Context) error {
			path := "."
			if c.Args().Len() > 0 {
				path = c.Args().Get(0)
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			return mgr.Build(context.Background(), path, c.Bool(testFlag))
		},
	}
}

func uploadCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "upload",
		Usage:     "Upload a recipe, and optionally its built packages, to a remote",
		UsageText: "conan upload <ref> [--all] [--force] [-r remote]",
		Flags: []clitool.Flag{
			&clitool.BoolFlag{Name: allFlag, Usage: "also upload every built package"},
			&clitool.BoolFlag{Name: forceFlag, Usage: "bypass the remote timestamp conflict check"},
			&clitool.StringFlag{Name: remoteFlag, Aliases: []string{"r"}, Required: true},
		},
		Action: func(c *clitool.Context) error {
			if c.Args().Len() < 1 {
				return coreerrors.ConfigurationError("usage: upload <ref>")
			}
			ref, err := reference.Parse(c.Args().Get(0))
			if err != nil {
				return err
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			report, err := mgr.Upload(ref, c.Bool(allFlag), c.Bool(forceFlag))
			if err != nil {
				return err
			}
			logger.Info(fmt.Sprintf("Uploaded %d recipe file(s) and %d package(s), %d bytes total",
				len(report.RecipeFiles), len(report.PackageFiles), report.TotalBytes))
			return nil
		},
	}
}

func searchCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "search",
		Usage:     "List references (and optionally packages) matching a pattern",
		UsageText: "conan search [pattern] [-r remote] [--package pattern]",
		Flags: []clitool.Flag{
			&clitool.StringFlag{Name: remoteFlag, Aliases: []string{"r"}},
			&clitool.StringFlag{Name: packageFlag},
		},
		Action: func(c *clitool.Context) error {
			pattern := "*/*@*/*"
			if c.Args().Len() > 0 {
				pattern = c.Args().Get(0)
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			result, err := mgr.Search(pattern, search.Options{PackagePattern: c.String(packageFlag)})
			if err != nil {
				return err
			}
			for ref, matches := range result {
				logger.Output(ref)
				for _, m := range matches {
					logger.Output(fmt.Sprintf("  %s", m.PackageID))
				}
			}
			return nil
		},
	}
}

func removeCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "remove",
		Usage:     "Delete references or packages matching a pattern",
		UsageText: "conan remove <pattern> [--src] [--builds ids] [--packages ids] [--force] [-r remote]",
		Flags: []clitool.Flag{
			&clitool.BoolFlag{Name: srcFlag},
			&clitool.StringSliceFlag{Name: buildsFlag},
			&clitool.StringSliceFlag{Name: packagesFlag},
			&clitool.BoolFlag{Name: forceFlag},
			&clitool.StringFlag{Name: remoteFlag, Aliases: []string{"r"}},
		},
		Action: func(c *clitool.Context) error {
			if c.Args().Len() < 1 {
				return coreerrors.ConfigurationError("usage: remove <pattern>")
			}
			if !c.Bool(forceFlag) {
				return coreerrors.ConfigurationError("remove requires --force in non-interactive use")
			}
			mgr, err := newManager(logger)
			if err != nil {
				return err
			}
			removed, err := mgr.Remove(c.Args().Get(0), remove.Options{
				PackageIDs: c.StringSlice(packagesFlag),
				Src:        c.Bool(srcFlag),
			})
			if err != nil {
				return err
			}
			for _, ref := range removed {
				logger.Info(fmt.Sprintf("Removed %s", ref.String()))
			}
			return nil
		},
	}
}

// userCommand handles remote credentials (spec §6's "user" command). This
// rewrite carries no network client (the teacher's jfrog-client-go remote
// transport was dropped, see DESIGN.md), so it only reports the identity
// conan.conf already names for a remote rather than performing a live
// login handshake.
func userCommand(logger utils.Log) *clitool.Command {
	return &clitool.Command{
		Name:      "user",
		Usage:     "Show or set the active user for a remote",
		UsageText: "conan user [name] [-p password] [-r remote]",
		Flags: []clitool.Flag{
			&clitool.StringFlag{Name: passwordFlag, Aliases: []string{"p"}},
			&clitool.StringFlag{Name: remoteFlag, Aliases: []string{"r"}, Required: true},
		},
		Action: func(c *clitool.Context) error {
			home, err := conanHome()
			if err != nil {
				return err
			}
			cfg, err := config.Load(filepath.Join(home, "conan.conf"))
			if err != nil {
				return err
			}
			url, ok := cfg.RemoteURL(c.String(remoteFlag))
			if !ok {
				return coreerrors.NotFoundError("remote %q is not configured in conan.conf", c.String(remoteFlag))
			}
			if c.Args().Len() == 0 {
				logger.Output(fmt.Sprintf("remote %q (%s): no authentication state tracked in this build", c.String(remoteFlag), utils.MaskCredentialsInURL(url)))
				return nil
			}
			return coreerrors.ConfigurationError("logging in to %q is not supported without a configured remote transport", c.String(remoteFlag))
		},
	}
}

func parseKeyValues(pairs []string) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, _ := strings.Cut(p, "=")
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}

func parseBuildMode(value string, isSet bool) (install.BuildMode, error) {
	if !isSet {
		return install.BuildModeNever(), nil
	}
	switch value {
	case "", "force":
		return install.BuildModeForce(), nil
	case "never":
		return install.BuildModeNever(), nil
	case "missing":
		return install.BuildModeMissing(), nil
	default:
		return install.BuildModePattern(strings.Split(value, ",")), nil
	}
}
