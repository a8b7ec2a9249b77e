package bootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"gsctl-setup/internal/config"
	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
)

// RemoteRef identifies the upstream source of the gsctl checkout.
type RemoteRef struct {
	URL    string
	Branch string
}

// Bootstrapper brings a local directory to match a remote git reference using
// a fixed, merge-free command sequence. Every step is a pure overwrite, so
// re-running after an interrupted or stale prior run converges to the same
// end state without manual conflict resolution:
//
//  1. init with the fixed default branch (no-op when already initialized)
//  2. set remote.origin.url via config, which unlike `remote add` cannot
//     fail on a pre-existing remote
//  3. set the fetch refspec to mirror all remote branches
//  4. disable line-ending translation and preserve symlinks, so checkouts
//     are byte-identical across runs and platforms
//  5. force-fetch branches, then tags, discarding local divergence
//  6. hard-reset the working tree to the remote default branch tip
type Bootstrapper struct {
	runner execx.Runner
}

// New creates a bootstrapper over the given runner.
func New(runner execx.Runner) *Bootstrapper {
	return &Bootstrapper{runner: runner}
}

// steps returns the fixed git argument sequence for the ref. The order is
// load-bearing: later steps depend on earlier steps' postconditions.
func steps(ref RemoteRef) [][]string {
	return [][]string{
		{"init", "-b", ref.Branch},
		{"config", "remote.origin.url", ref.URL},
		{"config", "remote.origin.fetch", "+refs/heads/*:refs/remotes/origin/*"},
		{"config", "core.autocrlf", "false"},
		{"config", "core.symlinks", "true"},
		{"fetch", "--force", "origin"},
		{"fetch", "--force", "--tags", "origin"},
		{"reset", "--hard", "origin/" + ref.Branch},
	}
}

// Sync runs the bootstrap sequence against dir, creating it if absent. The
// sequence is not interruptible from within: the first failing command
// aborts with the exact command line for manual retry.
func (b *Bootstrapper) Sync(ref RemoteRef, dir string) error {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return &errs.OperationError{Path: dir, Cmd: "mkdir -p " + dir, Msg: err.Error()}
	}

	for _, step := range steps(ref) {
		args := append([]string{"-C", dir}, step...)
		line := execx.CommandLine("git", args)

		res, err := b.runner.Run("git", args...)
		if err != nil {
			return &errs.OperationError{Path: dir, Cmd: line, Msg: err.Error()}
		}
		if res.ExitCode != 0 {
			return &errs.OperationError{Path: dir, Cmd: line, Msg: strings.TrimSpace(res.Stderr)}
		}
	}

	logger.Debug("[DEBUG] Bootstrapped %s from %s (%s)\n", dir, ref.URL, ref.Branch)
	return nil
}

// Head returns the commit hash the checkout currently points at.
func (b *Bootstrapper) Head(dir string) (string, error) {
	res, err := b.runner.Run("git", "-C", dir, "rev-parse", "HEAD")
	if err != nil || res.ExitCode != 0 {
		return "", &errs.OperationError{Path: dir, Cmd: "git -C " + dir + " rev-parse HEAD", Msg: strings.TrimSpace(res.Stderr)}
	}
	return strings.TrimSpace(res.Stdout), nil
}

// LinkLauncher (re)creates the bin/gsctl symlink pointing at the launcher
// script inside the checkout, overwriting any stale link. When the checkout
// is the prefix itself no link is needed. A repository location that is
// neither the prefix nor the fixed subdirectory beneath it violates the
// layout invariant and is fatal, never silently corrected.
func LinkLauncher(target config.InstallTarget) error {
	if target.RepoDir != target.Prefix && target.RepoDir != filepath.Join(target.Prefix, config.RepoSubdir) {
		return &errs.PreconditionError{
			Msg:    "repository location " + target.RepoDir + " violates the install layout invariant",
			Remedy: "reinstall with the default layout or fix repo_dir in the config file",
		}
	}
	if !target.LinkNeeded() {
		return nil
	}

	link := filepath.Join(target.BinDir, "gsctl")
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return &errs.OperationError{Path: link, Cmd: "rm " + link, Msg: err.Error()}
	}
	if err := os.Symlink(target.Launcher(), link); err != nil {
		return &errs.OperationError{Path: link, Cmd: "ln -s " + target.Launcher() + " " + link, Msg: err.Error()}
	}
	logger.Debug("[DEBUG] Linked %s -> %s\n", link, target.Launcher())
	return nil
}
