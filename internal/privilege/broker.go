package privilege

import (
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
)

// Status is the broker's view of whether sudo elevation is available.
type Status int

const (
	// StatusUnknown means no probe has run yet.
	StatusUnknown Status = iota
	// StatusGranted means the probe succeeded and elevated commands will be
	// prefixed with sudo.
	StatusGranted
	// StatusDenied means the probe failed; elevated commands run directly
	// and their own failures signal the missing privilege.
	StatusDenied
)

func (s Status) String() string {
	switch s {
	case StatusGranted:
		return "granted"
	case StatusDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Broker decides once per run whether privilege elevation is available and
// executes commands accordingly. The probe result is cached for the life of
// the process and never re-derived, so the user is asked for credentials at
// most once even if privileges change mid-run.
type Broker struct {
	runner      execx.Runner
	interactive bool
	askpass     bool // SUDO_ASKPASS helper configured; pass -A to sudo
	status      Status
}

// NewBroker creates a broker over the given runner. In non-interactive mode
// the capability probe must never block on a credential prompt.
func NewBroker(runner execx.Runner, interactive, askpass bool) *Broker {
	return &Broker{runner: runner, interactive: interactive, askpass: askpass}
}

// CheckAccess probes elevation capability with a harmless command, caching
// the result. Interactive runs use `sudo -v`, which may prompt for a
// password; non-interactive runs use `sudo -n true`, which fails immediately
// instead of prompting, and a failed probe is treated as denied.
func (b *Broker) CheckAccess() Status {
	if b.status != StatusUnknown {
		return b.status
	}

	var res execx.Result
	var err error
	if b.interactive {
		res, err = b.runner.Run("sudo", b.sudoArgs("-v")...)
	} else {
		res, err = b.runner.Run("sudo", b.sudoArgs("-n", "true")...)
	}

	if err != nil || res.ExitCode != 0 {
		b.status = StatusDenied
	} else {
		b.status = StatusGranted
	}
	logger.Debug("[DEBUG] Privilege probe result: %s\n", b.status)
	return b.status
}

// RunElevated executes the command with sudo when the cached probe granted
// access, and directly otherwise, relying on the command's own failure to
// surface insufficient privilege.
func (b *Broker) RunElevated(name string, args ...string) (execx.Result, error) {
	if b.CheckAccess() == StatusGranted {
		return b.runner.Run("sudo", b.sudoArgs(append([]string{name}, args...)...)...)
	}
	return b.runner.Run(name, args...)
}

// sudoArgs prepends the askpass flag when an askpass helper is configured.
func (b *Broker) sudoArgs(args ...string) []string {
	if b.askpass {
		return append([]string{"-A"}, args...)
	}
	return args
}
