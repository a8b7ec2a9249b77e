package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
	"gsctl-setup/internal/privilege"
)

// Op is a single kind of filesystem correction.
type Op string

const (
	OpMkdir      Op = "mkdir"
	OpChmodGroup Op = "chmod-group"
	OpChown      Op = "chown"
	OpChgrp      Op = "chgrp"
)

// Action pairs a path with the correction it needs.
type Action struct {
	Path string
	Op   Op
}

// Plan is the ordered list of corrections that brings the target paths to
// the desired state. A plan is empty exactly when the filesystem already
// matches, which is what makes repeat runs no-ops.
type Plan []Action

// Empty reports whether no corrections are needed.
func (p Plan) Empty() bool { return len(p) == 0 }

// Describe renders the plan for the confirmation prompt, one line per action.
func (p Plan) Describe() string {
	var b strings.Builder
	for _, a := range p {
		fmt.Fprintf(&b, "  %-12s %s\n", a.Op, a.Path)
	}
	return b.String()
}

// Ownership is the desired owner and group for the install tree, carried as
// both names (for the chown/chgrp command lines) and numeric ids (for the
// comparison against what stat reports).
type Ownership struct {
	User  string
	UID   int
	Group string
	GID   int
}

// Disposition is the observed state of one path. It is computed fresh before
// every planning decision and never cached, because the filesystem is
// external mutable state.
type Disposition struct {
	Exists   bool
	Dir      bool
	UID      int
	GID      int
	Mode     os.FileMode
	Writable bool // Writable by the current user without elevation
}

// Stat computes the disposition of a path.
func Stat(path string) (Disposition, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Disposition{}, nil
		}
		return Disposition{}, &errs.OperationError{Path: path, Cmd: "stat " + path, Msg: err.Error()}
	}

	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Disposition{}, &errs.OperationError{Path: path, Cmd: "stat " + path, Msg: "no ownership information available"}
	}

	d := Disposition{
		Exists: true,
		Dir:    info.IsDir(),
		UID:    int(sys.Uid),
		GID:    int(sys.Gid),
		Mode:   info.Mode(),
	}
	d.Writable = writableBy(d, os.Getuid(), os.Getgroups)
	return d, nil
}

// writableBy checks the permission bits against the current user's uid and
// groups. Root writes everywhere.
func writableBy(d Disposition, uid int, groups func() ([]int, error)) bool {
	if uid == 0 {
		return true
	}
	perm := d.Mode.Perm()
	if d.UID == uid {
		return perm&0200 != 0
	}
	if perm&0020 != 0 {
		if gs, err := groups(); err == nil {
			for _, g := range gs {
				if g == d.GID {
					return true
				}
			}
		}
	}
	return perm&0002 != 0
}

// groupAccessOK reports whether a directory's group bits already match one of
// the accepted group-writable patterns (group rwx, with or without setgid).
func groupAccessOK(mode os.FileMode) bool {
	return mode.Perm()&0070 == 0070
}

// Reconciler computes and applies the minimal set of corrections for the
// install tree. All mutations go through the command runner, elevated via
// the broker only when the target is outside the current user's writable set.
type Reconciler struct {
	runner execx.Runner
	broker *privilege.Broker
}

// New creates a reconciler over the given runner and privilege broker.
func New(runner execx.Runner, broker *privilege.Broker) *Reconciler {
	return &Reconciler{runner: runner, broker: broker}
}

// PlanFor evaluates each target path independently against the desired
// ownership and returns the ordered correction plan:
//   - absent paths are scheduled for mkdir
//   - existing directories lacking group rwx get a chmod-group fix
//   - existing paths with the wrong owner or group get chown/chgrp
//
// All mkdirs come first; for each existing path the group-writability fix
// precedes the ownership fixes. Paths created by this plan are not
// re-examined afterwards because the creation primitive sets ownership and
// mode atomically.
func (r *Reconciler) PlanFor(paths []string, own Ownership) (Plan, error) {
	var creates, fixes Plan

	for _, path := range paths {
		d, err := Stat(path)
		if err != nil {
			return nil, err
		}
		if !d.Exists {
			creates = append(creates, Action{Path: path, Op: OpMkdir})
			continue
		}
		if d.Dir && !groupAccessOK(d.Mode) {
			fixes = append(fixes, Action{Path: path, Op: OpChmodGroup})
		}
		if d.UID != own.UID {
			fixes = append(fixes, Action{Path: path, Op: OpChown})
		}
		if d.GID != own.GID {
			fixes = append(fixes, Action{Path: path, Op: OpChgrp})
		}
	}

	return append(creates, fixes...), nil
}

// Apply executes the plan in order. Each operation runs elevated when the
// path (or, for mkdir, its nearest existing ancestor) is not writable by the
// current user. The first failure aborts the remaining plan.
func (r *Reconciler) Apply(plan Plan, own Ownership) error {
	for _, a := range plan {
		name, args := a.command(own)
		elevated, err := needsElevation(a)
		if err != nil {
			return err
		}

		var res execx.Result
		if elevated {
			res, err = r.broker.RunElevated(name, args...)
		} else {
			res, err = r.runner.Run(name, args...)
		}
		line := execx.CommandLine(name, args)
		if err != nil {
			return &errs.OperationError{Path: a.Path, Cmd: line, Msg: err.Error()}
		}
		if res.ExitCode != 0 {
			return &errs.OperationError{Path: a.Path, Cmd: line, Msg: strings.TrimSpace(res.Stderr)}
		}
		logger.Debug("[DEBUG] Applied %s on %s\n", a.Op, a.Path)
	}
	return nil
}

// command maps an action to its external command line. Directory creation
// uses install(1) so the mode, owner, and group are set in the same step as
// the creation, leaving no window with wrong ownership.
func (a Action) command(own Ownership) (string, []string) {
	switch a.Op {
	case OpMkdir:
		return "install", []string{"-d", "-m", "0775", "-o", own.User, "-g", own.Group, a.Path}
	case OpChmodGroup:
		return "chmod", []string{"g+rwx", a.Path}
	case OpChown:
		return "chown", []string{own.User, a.Path}
	case OpChgrp:
		return "chgrp", []string{own.Group, a.Path}
	}
	return "", nil
}

// needsElevation decides whether an action requires the broker. For mkdir
// the check walks up to the nearest existing ancestor, since that is the
// directory the new entry is written into.
func needsElevation(a Action) (bool, error) {
	probe := a.Path
	if a.Op == OpMkdir {
		probe = filepath.Dir(a.Path)
		for {
			d, err := Stat(probe)
			if err != nil {
				return false, err
			}
			if d.Exists {
				return !d.Writable, nil
			}
			parent := filepath.Dir(probe)
			if parent == probe {
				return true, nil
			}
			probe = parent
		}
	}

	d, err := Stat(probe)
	if err != nil {
		return false, err
	}
	if !d.Exists {
		return true, nil
	}
	// chmod/chown require ownership, not writability.
	return d.UID != os.Getuid() && os.Getuid() != 0, nil
}

// RemoveTree recursively deletes path, elevating when necessary, and then
// re-checks that the path is actually gone. A path that survives a
// "successful" removal is a consistency error and is never silently ignored.
func (r *Reconciler) RemoveTree(path string) error {
	d, err := Stat(path)
	if err != nil {
		return err
	}
	if !d.Exists {
		logger.Debug("[DEBUG] RemoveTree: %s already absent\n", path)
		return nil
	}

	args := []string{"-rf", path}
	line := execx.CommandLine("rm", args)

	var res execx.Result
	if d.Writable {
		res, err = r.runner.Run("rm", args...)
	} else {
		res, err = r.broker.RunElevated("rm", args...)
	}
	if err != nil {
		return &errs.OperationError{Path: path, Cmd: line, Msg: err.Error()}
	}
	if res.ExitCode != 0 {
		return &errs.OperationError{Path: path, Cmd: line, Msg: strings.TrimSpace(res.Stderr)}
	}

	// Trust the filesystem, not the exit code.
	after, err := Stat(path)
	if err != nil {
		return err
	}
	if after.Exists {
		return &errs.PostconditionError{Path: path, Msg: "path still exists after removal reported success"}
	}
	return nil
}
