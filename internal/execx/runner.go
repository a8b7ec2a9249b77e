package execx

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"

	"gsctl-setup/internal/logger"
)

// Result captures everything the installer needs from an external command:
// the exit code and both output streams. Exit codes are trusted; the few
// places where they cannot be (tree removal) re-check the filesystem instead.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner is the narrow seam between the installer logic and real external
// processes. The reconciler, bootstrapper, and reaper all take a Runner so
// tests can drive them with a fake instead of a real filesystem and git.
type Runner interface {
	// Run executes name with args and waits for completion. The returned
	// error is non-nil only when the command could not be started at all
	// (e.g. binary not found); a non-zero exit is reported via ExitCode.
	Run(name string, args ...string) (Result, error)
}

// ShellRunner executes commands via os/exec, inheriting the parent
// environment. It is the only Runner used outside of tests.
type ShellRunner struct{}

// Run executes the command, capturing stdout and stderr separately.
func (ShellRunner) Run(name string, args ...string) (Result, error) {
	logger.Debug("[DEBUG] Running command: %s\n", CommandLine(name, args))

	cmd := exec.Command(name, args...)
	cmd.Env = os.Environ()
	// Interactive sudo needs the terminal for its password prompt.
	cmd.Stdin = os.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Start failure: the command itself never ran.
		res.ExitCode = -1
		return res, err
	}
	return res, nil
}

// CommandLine renders a command and its arguments as a single shell-style
// line, used in error messages and remediation hints.
func CommandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
