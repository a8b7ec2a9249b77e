package reaper

import (
	"strings"

	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
)

// ServicePrefix is the label prefix gsctl registers its per-server launchd
// services under.
const ServicePrefix = "gsctl."

// Reaper drains running game servers through the external gsctl CLI before
// the uninstaller removes anything. It is best-effort-with-visibility: a
// server that fails to stop is reported with the exact manual recovery
// command and recorded, never silently dropped.
type Reaper struct {
	runner execx.Runner
	cli    string // Path to the gsctl executable
}

// New creates a reaper that drives the gsctl binary at cliPath.
func New(runner execx.Runner, cliPath string) *Reaper {
	return &Reaper{runner: runner, cli: cliPath}
}

// List returns the names of all registered server instances, one per line of
// `gsctl list` output. The first whitespace-separated field of each line is
// the name; status columns are ignored.
func (r *Reaper) List() ([]string, error) {
	res, err := r.runner.Run(r.cli, "list")
	line := r.cli + " list"
	if err != nil {
		return nil, &errs.OperationError{Cmd: line, Msg: err.Error()}
	}
	if res.ExitCode != 0 {
		return nil, &errs.OperationError{Cmd: line, Msg: strings.TrimSpace(res.Stderr)}
	}

	var names []string
	for _, l := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names, nil
}

// Failure records one server that could not be drained, with the exact
// manual command that recovers it.
type Failure struct {
	Name   string
	Remedy string
}

// DrainResult summarizes a drain pass.
type DrainResult struct {
	Stopped []string
	Failed  []Failure
}

// OK reports whether every server was stopped and deregistered.
func (d DrainResult) OK() bool { return len(d.Failed) == 0 }

// Drain stops each named server and removes its service registration when
// one exists. Stopping an already-stopped server is not an error (the stop
// command is idempotent). Each removal is verified by re-checking the
// registration; survivors are reported and the pass continues to the next
// server.
func (r *Reaper) Drain(names []string) DrainResult {
	var result DrainResult

	for _, name := range names {
		logger.Info("[INFO] Stopping server %s...\n", name)

		res, err := r.runner.Run(r.cli, "stop", name)
		if err != nil || res.ExitCode != 0 {
			remedy := r.cli + " stop " + name
			logger.Error("[ERROR] Failed to stop %s. Run manually: %s\n", name, remedy)
			result.Failed = append(result.Failed, Failure{Name: name, Remedy: remedy})
			continue
		}

		service := ServicePrefix + name
		if r.serviceRegistered(service) {
			_, _ = r.runner.Run("launchctl", "remove", service)

			// The removal command's exit code is not trusted; only the
			// absence of the registration counts.
			if r.serviceRegistered(service) {
				remedy := "launchctl remove " + service
				logger.Error("[ERROR] Service %s is still registered. Run manually: %s\n", service, remedy)
				result.Failed = append(result.Failed, Failure{Name: name, Remedy: remedy})
				continue
			}
		}

		logger.Info("[INFO] Stopped %s\n", name)
		result.Stopped = append(result.Stopped, name)
	}
	return result
}

// serviceRegistered checks whether launchd still knows the service label.
func (r *Reaper) serviceRegistered(service string) bool {
	res, err := r.runner.Run("launchctl", "list", service)
	return err == nil && res.ExitCode == 0
}
