package installer

import (
	"bufio"
	"io"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"gsctl-setup/internal/archive"
	"gsctl-setup/internal/bootstrap"
	"gsctl-setup/internal/config"
	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
	"gsctl-setup/internal/privilege"
	"gsctl-setup/internal/profile"
	"gsctl-setup/internal/reconcile"
	"gsctl-setup/internal/state"
)

// Installer wires the provisioning pipeline together: preflight checks,
// filesystem reconciliation, repository bootstrap, launcher symlink, data
// directory, and shell PATH line. Every field is set up once by the cmd
// layer.
type Installer struct {
	Target      config.InstallTarget
	Remote      bootstrap.RemoteRef
	Flags       config.Flags
	Runner      execx.Runner
	Broker      *privilege.Broker
	Reconciler  *reconcile.Reconciler
	Boot        *bootstrap.Bootstrapper
	In          io.Reader // Confirmation input, os.Stdin in production
	ArchivePath string    // Optional offline release archive (path or URL)
	ReceiptPath string
	GOOS        string // Test override for the preflight platform check
}

// CurrentOwnership resolves the invoking user as the desired owner of the
// install tree. Running the installer under sudo directly is the classic way
// to end up with a root-owned tree the user cannot operate, so the tree is
// always reconciled toward the real user.
func CurrentOwnership() (reconcile.Ownership, error) {
	u, err := user.Current()
	if err != nil {
		return reconcile.Ownership{}, &errs.PreconditionError{
			Msg:    "cannot determine the current user: " + err.Error(),
			Remedy: "check that your user account resolves via `id`",
		}
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return reconcile.Ownership{}, &errs.PreconditionError{Msg: "non-numeric uid " + u.Uid, Remedy: "check `id -u`"}
	}
	gid := os.Getgid()
	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return reconcile.Ownership{}, &errs.PreconditionError{
			Msg:    "cannot resolve group " + strconv.Itoa(gid) + ": " + err.Error(),
			Remedy: "check `id -g`",
		}
	}
	return reconcile.Ownership{User: u.Username, UID: uid, Group: g.Name, GID: gid}, nil
}

// confirm asks a yes/no question on the installer's input. Non-interactive
// runs never prompt and proceed.
func confirm(in io.Reader, flags config.Flags, question string) bool {
	if !flags.Interactive() {
		return true
	}
	logger.Plain("%s [y/N] ", question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// Run performs the install. It is safe to re-run: a completed install yields
// an empty reconciliation plan and a converging repository bootstrap.
func (i *Installer) Run() error {
	pf := &Preflight{Runner: i.Runner, Broker: i.Broker, Flags: i.Flags, GOOS: i.GOOS}
	if err := pf.Run(); err != nil {
		return err
	}

	own, err := CurrentOwnership()
	if err != nil {
		return err
	}

	// The prefix tree is reconciled; the data dir is handled separately
	// below because it is user-owned and needs different permissions.
	paths := []string{i.Target.Prefix, i.Target.BinDir, i.Target.RepoDir}
	plan, err := i.Reconciler.PlanFor(paths, own)
	if err != nil {
		return err
	}

	if plan.Empty() {
		logger.Info("[INFO] Filesystem already matches the desired state.\n")
	} else {
		logger.Info("[INFO] The following filesystem changes are needed:\n")
		logger.Plain("%s", plan.Describe())
		if !confirm(i.In, i.Flags, "Proceed with installation?") {
			logger.Info("[INFO] Installation cancelled.\n")
			return errs.ErrUserDeclined
		}
		if err := i.Reconciler.Apply(plan, own); err != nil {
			return err
		}
	}

	if i.ArchivePath != "" {
		logger.Info("[INFO] Seeding %s from archive %s...\n", i.Target.RepoDir, i.ArchivePath)
		if err := archive.Seed(i.ArchivePath, i.Target.RepoDir); err != nil {
			return err
		}
	} else {
		logger.Info("[INFO] Fetching gsctl from %s (%s)...\n", i.Remote.URL, i.Remote.Branch)
		if err := i.Boot.Sync(i.Remote, i.Target.RepoDir); err != nil {
			return err
		}
	}

	if err := bootstrap.LinkLauncher(i.Target); err != nil {
		return err
	}

	// Server data directory: user rwx, group read. Created in the user's
	// home, so no elevation is involved.
	if err := os.MkdirAll(i.Target.CacheDir, 0750); err != nil {
		return &errs.OperationError{Path: i.Target.CacheDir, Cmd: "mkdir -p " + i.Target.CacheDir, Msg: err.Error()}
	}

	rcPath, err := profile.DefaultRCPath()
	if err != nil {
		return &errs.OperationError{Cmd: "resolve shell rc file", Msg: err.Error()}
	}
	if err := profile.AddPathLine(rcPath, i.Target.BinDir); err != nil {
		return &errs.OperationError{Path: rcPath, Cmd: "append PATH line", Msg: err.Error()}
	}

	receiptPath := i.ReceiptPath
	if receiptPath == "" {
		receiptPath = state.DefaultPath()
	}
	state.Save(receiptPath, &state.Receipt{
		Prefix:        i.Target.Prefix,
		DataDir:       i.Target.CacheDir,
		RCFile:        rcPath,
		PathLineAdded: true,
		InstalledAt:   time.Now(),
	})

	logger.Info("[INFO] gsctl installed under %s\n", i.Target.Prefix)
	logger.Info("[INFO] Open a new shell (or `source %s`) and run: gsctl start <server-name>\n", rcPath)
	return nil
}
