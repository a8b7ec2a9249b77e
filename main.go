package main

import (
	"gsctl-setup/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// The gsctl-setup project installs and uninstalls gsctl, a command-line manager
// for local game-server instances:
//   - Provisions the install prefix (bin directory plus source checkout) and a
//     per-user data directory, computing the minimal set of mkdir/chmod/chown
//     corrections needed and applying only those, so repeat runs are no-ops
//   - Escalates privileges through sudo only for paths the invoking user cannot
//     write, caching the privilege probe so the user is prompted at most once
//   - Materializes the gsctl source tree from a git remote using a fixed,
//     merge-free command sequence that converges even after interrupted runs,
//     or seeds it from an offline release archive when requested
//   - On uninstall, stops every registered game server through the gsctl CLI
//     before any destructive filesystem removal, and verifies each removal
//     actually happened rather than trusting exit codes
//
// Error handling strategy:
//   - Precondition failures (wrong platform, missing git, conflicting flags,
//     denied privileges) abort before any mutation occurs
//   - A single failed operation aborts the remaining plan; every fatal message
//     names the exact manual command to run for recovery
//   - Exit status is 0 on success or an install-prompt decline, 1 otherwise
func main() {
	cmd.Execute()
}
