package installer

import (
	"runtime"
	"strings"

	"gsctl-setup/internal/config"
	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
	"gsctl-setup/internal/privilege"
	"gsctl-setup/internal/version"
)

// Minimum tool and OS versions, compared on MAJOR.MINOR only.
const (
	minGitVersion   = "2.0"
	minMacOSVersion = "10.10"
)

// Preflight runs every check that must pass before any mutation occurs.
// All failures here are precondition failures: nothing has been touched yet
// and the message tells the user exactly what to fix.
type Preflight struct {
	Runner execx.Runner
	Broker *privilege.Broker
	Flags  config.Flags
	GOOS   string // Defaults to runtime.GOOS; overridable for tests
}

// Run executes the checks in order: platform, git presence and version,
// OS version (macOS only), and the privilege probe.
func (p *Preflight) Run() error {
	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if goos != "darwin" && goos != "linux" {
		return &errs.PreconditionError{
			Msg:    "unsupported platform " + goos,
			Remedy: "gsctl-setup supports macOS and Linux only",
		}
	}

	if err := p.checkGit(goos); err != nil {
		return err
	}

	if goos == "darwin" {
		if err := p.checkMacOSVersion(); err != nil {
			return err
		}
	}

	// Probe elevation before any destructive work so a missing password is
	// caught here, not mid-plan. Denied is fatal on every platform; a
	// partial install is worse than no install.
	if p.Broker.CheckAccess() == privilege.StatusDenied {
		return &errs.PreconditionError{
			Msg:    "privilege elevation is not available",
			Remedy: "run `sudo -v` first, or set SUDO_ASKPASS to a credential helper",
		}
	}

	logger.Debug("[DEBUG] Preflight checks passed\n")
	return nil
}

// checkGit verifies git is installed and recent enough.
func (p *Preflight) checkGit(goos string) error {
	remedy := "install git: apt install git (or your distribution's equivalent)"
	if goos == "darwin" {
		remedy = "install the Xcode command-line tools: xcode-select --install"
	}

	res, err := p.Runner.Run("git", "--version")
	if err != nil || res.ExitCode != 0 {
		return &errs.PreconditionError{Msg: "git is not installed", Remedy: remedy}
	}

	// Output shape: "git version 2.39.2 (Apple Git-143)".
	fields := strings.Fields(res.Stdout)
	if len(fields) < 3 {
		return &errs.PreconditionError{Msg: "cannot parse `git --version` output: " + strings.TrimSpace(res.Stdout), Remedy: remedy}
	}
	cmp, err := version.CompareStrings(fields[2], minGitVersion)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return &errs.PreconditionError{
			Msg:    "git " + fields[2] + " is older than the required " + minGitVersion,
			Remedy: remedy,
		}
	}
	return nil
}

// checkMacOSVersion verifies the running macOS is at least the supported
// minimum, via sw_vers.
func (p *Preflight) checkMacOSVersion() error {
	res, err := p.Runner.Run("sw_vers", "-productVersion")
	if err != nil || res.ExitCode != 0 {
		return &errs.PreconditionError{
			Msg:    "cannot determine the macOS version",
			Remedy: "run `sw_vers -productVersion` and check it is at least " + minMacOSVersion,
		}
	}

	cmp, err := version.CompareStrings(strings.TrimSpace(res.Stdout), minMacOSVersion)
	if err != nil {
		return err
	}
	if cmp < 0 {
		return &errs.PreconditionError{
			Msg:    "macOS " + strings.TrimSpace(res.Stdout) + " is older than the supported minimum " + minMacOSVersion,
			Remedy: "upgrade macOS to " + minMacOSVersion + " or newer",
		}
	}
	return nil
}
