// Package install implements the installer (spec §4.4): for each node in
// a resolved graph, reuse a cached binary, download one from a remote,
// build it locally, or fail, subject to the node's on-disk package
// identity and the active BuildMode. Concurrent work across independent
// nodes is bounded with the teacher's existing worker-pool dependency,
// github.com/jfrog/gofrog/parallel, rather than a hand-rolled
// goroutine/channel pool.
package install

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/reference"
	"github.com/conan-go/conancore/store"
	"github.com/conan-go/conancore/utils"
	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/gofrog/parallel"
)

// RemoteManager is the capability surface a remote package server offers
// the installer: existence checks and downloads. A nil RemoteManager
// means "no remotes configured": every lookup reports not found.
type RemoteManager interface {
	HasBinary(ref reference.PackageReference) (bool, error)
	DownloadPackage(ref reference.PackageReference, destDir string) (store.Manifest, error)
	DownloadRecipe(ref reference.Reference, destDir string) (store.Manifest, error)
}

// Hooks runs a recipe's behavioral shell hooks. The default implementation
// shells out via os/exec; tests substitute a fake.
type Hooks interface {
	RunSource(ctx context.Context, command, workDir string) error
	RunBuild(ctx context.Context, command, workDir string, env []string) error
	RunPackage(ctx context.Context, command, workDir string) error
	RunTest(ctx context.Context, command, workDir string) error
}

// ShellHookRunner is the default Hooks implementation: each hook is an
// opaque shell command run with workDir as its working directory (spec
// §1's recipe-sandboxing boundary: this core does not sandbox the hook,
// it only sequences and bounds concurrency around it).
type ShellHookRunner struct{}

func (ShellHookRunner) RunSource(ctx context.Context, command, workDir string) error {
	return runShell(ctx, command, workDir, nil)
}

func (ShellHookRunner) RunBuild(ctx context.Context, command, workDir string, env []string) error {
	return runShell(ctx, command, workDir, env)
}

func (ShellHookRunner) RunPackage(ctx context.Context, command, workDir string) error {
	return runShell(ctx, command, workDir, nil)
}

func (ShellHookRunner) RunTest(ctx context.Context, command, workDir string) error {
	return runShell(ctx, command, workDir, nil)
}

func runShell(ctx context.Context, command, workDir string, env []string) error {
	return utils.RunShellCommand(ctx, command, workDir, env)
}

// Installer drives one node's reuse/download/build decision and, given a
// whole graph, fans that out across nodes with a bounded worker pool.
type Installer struct {
	Paths   store.ConanPaths
	Remote  RemoteManager // nil means no remote configured
	Hooks   Hooks
	Mode    BuildMode
	Threads int // worker pool size for InstallGraph; 0 defaults to 1
}

// NodeOutcome records how one node's package was satisfied.
type NodeOutcome string

const (
	OutcomeReused     NodeOutcome = "reuse"
	OutcomeDownloaded NodeOutcome = "download"
	OutcomeBuilt      NodeOutcome = "build"
)

// InstallNode resolves a single node's package, returning how it was
// satisfied. It holds the store package's per-(reference, package_id)
// build lock while it runs, so concurrent calls for the same pair are
// serialized and calls for distinct pairs proceed in parallel.
func (ins *Installer) InstallNode(ctx context.Context, n *graph.Node) (NodeOutcome, error) {
	if n.PackageID == "" {
		return "", coreerrors.New(coreerrors.KindBuild, "node %s has no computed package_id; run info.Compute first", n.Ref)
	}
	pref := reference.PackageReference{Reference: n.Ref, PackageID: n.PackageID}

	lock, err := store.AcquireBuildLock(ctx, ins.Paths.BuildDir(pref))
	if err != nil {
		return "", err
	}
	defer lock.Release()

	forced := ins.Mode.Forces(n.Ref)

	if !forced {
		if manifest, ok, err := ins.readCachedManifest(pref); err != nil {
			return "", err
		} else if ok {
			_ = manifest
			log.Debug(fmt.Sprintf("%s: reusing cached package %s", pref.Reference.String(), pref.PackageID))
			return OutcomeReused, nil
		}
	}

	if !forced && ins.Remote != nil {
		has, err := ins.Remote.HasBinary(pref)
		if err != nil {
			return "", coreerrors.RemoteError(err, "checking remote binary for %s", pref)
		}
		if has {
			downloaded, err := ins.Remote.DownloadPackage(pref, ins.Paths.PackageDir(pref))
			if err != nil {
				return "", coreerrors.RemoteError(err, "downloading package %s", pref)
			}
			local, err := store.ComputeManifest(ins.Paths.PackageDir(pref))
			if err != nil {
				return "", err
			}
			if !local.Equal(downloaded) {
				if err := ins.Paths.RemovePackage(pref); err != nil {
					return "", err
				}
				log.Warn(fmt.Sprintf("%s: downloaded package manifest did not match local content, removing", pref.String()))
				return "", coreerrors.ManifestMismatchError(pref.String())
			}
			log.Debug(fmt.Sprintf("%s: downloaded package %s from remote", pref.Reference.String(), pref.PackageID))
			return OutcomeDownloaded, nil
		}
	}

	if !ins.Mode.AllowsBuild(n.Ref) {
		return "", coreerrors.MissingBinaryError(pref.String())
	}

	log.Debug(fmt.Sprintf("%s: building package %s from source", pref.Reference.String(), pref.PackageID))
	if err := ins.build(ctx, n, pref); err != nil {
		return "", err
	}
	return OutcomeBuilt, nil
}

func (ins *Installer) readCachedManifest(pref reference.PackageReference) (store.Manifest, bool, error) {
	path := ins.Paths.PackageManifestPath(pref)
	m, err := store.ReadManifest(path)
	if err != nil {
		return store.Manifest{}, false, nil
	}
	return m, true, nil
}

func (ins *Installer) build(ctx context.Context, n *graph.Node, pref reference.PackageReference) error {
	sourceDir := ins.Paths.SourceDir(n.Ref)
	for _, dir := range []string{sourceDir, ins.Paths.BuildDir(pref), ins.Paths.PackageDir(pref)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := ins.Hooks.RunSource(ctx, n.Recipe.Hooks.SourceCommand, sourceDir); err != nil {
		return coreerrors.BuildError(n.Ref.String(), err, nil, sourceDir)
	}

	buildDir := ins.Paths.BuildDir(pref)
	env := []string{
		"CONAN_PACKAGE_FOLDER=" + ins.Paths.PackageDir(pref),
		"CONAN_SOURCE_FOLDER=" + sourceDir,
	}
	if err := ins.Hooks.RunBuild(ctx, n.Recipe.Hooks.BuildCommand, buildDir, env); err != nil {
		return coreerrors.BuildError(n.Ref.String(), err, nil, buildDir)
	}

	if err := ins.Hooks.RunPackage(ctx, n.Recipe.Hooks.PackageCommand, buildDir); err != nil {
		return coreerrors.BuildError(n.Ref.String(), err, nil, buildDir)
	}

	manifest, err := store.ComputeManifest(ins.Paths.PackageDir(pref))
	if err != nil {
		return err
	}
	return store.WriteManifest(ins.Paths.PackageManifestPath(pref), manifest)
}

// InstallGraph installs every node reachable from root, running up to
// ins.Threads nodes concurrently via a bounded gofrog/parallel runner - the
// same worker-pool dependency the teacher's own build simulation uses for
// parallel module processing. Each node's task waits on a per-node "done"
// channel for all of its own dependencies before calling InstallNode, so a
// node is only ever installed once every dependency it reads
// (include/lib dirs, package_id) has finished successfully - the only
// ordering guarantee this package makes, regardless of ins.Threads. Run
// blocks until every task has been dispatched and completed; the first
// error recorded by any task's error handler is returned, and every node
// downstream of a failed dependency is skipped rather than started.
func (ins *Installer) InstallGraph(ctx context.Context, root *graph.Node) (map[string]NodeOutcome, error) {
	nodes := graph.ReverseTopological(root)
	threads := ins.Threads
	if threads <= 0 {
		threads = 1
	}
	log.Debug(fmt.Sprintf("installing %d nodes with %d worker(s)", len(nodes), threads))

	var (
		outcomesMu sync.Mutex
		outcomes   = make(map[string]NodeOutcome, len(nodes))
		firstErr   error
		errMu      sync.Mutex
	)
	recordErr := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	// done[n] closes once n's task has finished (success or failure), so
	// any task blocked on n as a dependency can proceed. nodeErr[n] records
	// why n's own task failed, so a dependent can tell a dependency failure
	// apart from a sibling subtree's unrelated one.
	done := make(map[*graph.Node]chan struct{}, len(nodes))
	for _, n := range nodes {
		done[n] = make(chan struct{})
	}
	var nodeErrMu sync.Mutex
	nodeErr := make(map[*graph.Node]error, len(nodes))

	runner := parallel.NewBounedRunner(threads, false)
	go func() {
		defer runner.Done()
		for _, n := range nodes {
			n := n
			_, _ = runner.AddTaskWithError(func(int) error {
				defer close(done[n])
				fail := func(err error) error {
					nodeErrMu.Lock()
					nodeErr[n] = err
					nodeErrMu.Unlock()
					return err
				}

				for _, e := range n.Edges {
					select {
					case <-done[e.Dependency]:
					case <-ctx.Done():
						return fail(ctx.Err())
					}
					nodeErrMu.Lock()
					depErr := nodeErr[e.Dependency]
					nodeErrMu.Unlock()
					if depErr != nil {
						return fail(coreerrors.New(coreerrors.KindBuild,
							"skipping %s: dependency %s failed to install", n.Ref, e.Dependency.Ref))
					}
				}

				outcome, err := ins.InstallNode(ctx, n)
				if err != nil {
					return fail(err)
				}
				outcomesMu.Lock()
				outcomes[n.Ref.String()] = outcome
				outcomesMu.Unlock()
				return nil
			}, recordErr)
		}
	}()
	runner.Run()

	if firstErr != nil {
		return outcomes, firstErr
	}
	return outcomes, nil
}
