package installer

import (
	"io"
	"path/filepath"
	"strings"

	"gsctl-setup/internal/config"
	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
	"gsctl-setup/internal/privilege"
	"gsctl-setup/internal/profile"
	"gsctl-setup/internal/reaper"
	"gsctl-setup/internal/reconcile"
	"gsctl-setup/internal/state"
)

// Uninstaller reverses an install: drain running servers, remove the prefix
// and data trees, strip the PATH line, drop the receipt. The drain phase
// must fully succeed before the destructive phase is reached at all; a
// server that will not stop blocks removal rather than being abandoned.
type Uninstaller struct {
	Target      config.InstallTarget
	Flags       config.Flags
	Runner      execx.Runner
	Broker      *privilege.Broker
	Reconciler  *reconcile.Reconciler
	Reaper      *reaper.Reaper
	In          io.Reader
	ReceiptPath string
}

// Run performs the uninstall.
func (u *Uninstaller) Run() error {
	receiptPath := u.ReceiptPath
	if receiptPath == "" {
		receiptPath = state.DefaultPath()
	}
	receipt := state.Load(receiptPath)

	logger.Warn("[WARN] This removes %s and the server data in %s.\n", u.Target.Prefix, u.Target.CacheDir)
	if !confirm(u.In, u.Flags, "Continue with the uninstall?") {
		return &errs.PreconditionError{
			Msg:    "uninstall declined",
			Remedy: "re-run `gsctl-setup uninstall` when ready",
		}
	}

	// Drain phase: every registered server must stop before anything is
	// deleted from disk.
	names, err := u.Reaper.List()
	if err != nil {
		// No gsctl binary left (broken half-install): nothing can be
		// running under it, continue with filesystem removal.
		logger.Warn("[WARN] Cannot list servers (%v); assuming none are running.\n", err)
		names = nil
	}
	if len(names) > 0 {
		logger.Info("[INFO] Draining %d server(s)...\n", len(names))
		result := u.Reaper.Drain(names)
		if !result.OK() {
			var remedies []string
			for _, f := range result.Failed {
				remedies = append(remedies, f.Name+" ("+f.Remedy+")")
			}
			return &errs.OperationError{
				Cmd: "drain running servers",
				Msg: "failed to stop: " + strings.Join(remedies, ", "),
			}
		}
	}

	// Destructive phase, reached only after a fully successful drain.
	for _, path := range []string{u.Target.Prefix, u.Target.CacheDir} {
		logger.Info("[INFO] Removing %s...\n", path)
		if err := u.Reconciler.RemoveTree(path); err != nil {
			return err
		}
	}

	rcPath := receipt.RCFile
	if rcPath == "" {
		rcPath, err = profile.DefaultRCPath()
		if err != nil {
			logger.Warn("[WARN] Cannot resolve the shell rc file: %v\n", err)
			rcPath = ""
		}
	}
	if rcPath != "" {
		if err := profile.RemovePathLine(rcPath); err != nil {
			logger.Warn("[WARN] Failed to clean %s: %v\n", rcPath, err)
		}
	}

	state.Remove(receiptPath)
	logger.Info("[INFO] gsctl uninstalled.\n")
	return nil
}

// NewReaper builds the reaper for the installed CLI location.
func NewReaper(runner execx.Runner, target config.InstallTarget) *reaper.Reaper {
	return reaper.New(runner, filepath.Join(target.BinDir, "gsctl"))
}
