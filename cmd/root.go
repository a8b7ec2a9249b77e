package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"gsctl-setup/internal/bootstrap"
	"gsctl-setup/internal/config"
	"gsctl-setup/internal/errs"
	"gsctl-setup/internal/execx"
	"gsctl-setup/internal/logger"
	"gsctl-setup/internal/privilege"
	"gsctl-setup/internal/reconcile"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the path to the optional YAML settings file,
// passed via the `--config` or `-c` flag.
var configPath string

// rootCmd is the base command for the CLI tool `gsctl-setup`.
// It sets up the root-level CLI structure and provides global flags.
var rootCmd = &cobra.Command{
	Use:   "gsctl-setup",
	Short: "Installer for the gsctl game-server manager",

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute initializes flags and starts command execution.
// It's the entry point for the CLI when invoked by the user.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to an optional settings file")

	_ = rootCmd.Execute()
}

// env bundles everything a subcommand needs, resolved once per invocation.
type env struct {
	flags      config.Flags
	target     config.InstallTarget
	remote     bootstrap.RemoteRef
	runner     execx.Runner
	broker     *privilege.Broker
	reconciler *reconcile.Reconciler
}

// buildEnv resolves environment flags, the settings file, and the install
// target, and wires the runner/broker/reconciler stack on top.
func buildEnv() (*env, error) {
	// The mutually exclusive flag check runs before everything else.
	flags, err := config.FlagsFromEnv()
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(configPath)
	if err != nil {
		return nil, err
	}
	if flags.RemoteURL != "" {
		settings.Remote.URL = flags.RemoteURL
	}

	target, err := config.NewInstallTarget(settings)
	if err != nil {
		return nil, err
	}

	runner := execx.ShellRunner{}
	broker := privilege.NewBroker(runner, flags.Interactive(), flags.Askpass)

	return &env{
		flags:      flags,
		target:     target,
		remote:     bootstrap.RemoteRef{URL: settings.Remote.URL, Branch: settings.Remote.Branch},
		runner:     runner,
		broker:     broker,
		reconciler: reconcile.New(runner, broker),
	}, nil
}

// exitOn maps an error to the process exit status: declines at the install
// prompt are a normal exit, everything else is fatal with the remediation
// line printed last.
func exitOn(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, errs.ErrUserDeclined) {
		os.Exit(0)
	}

	logger.Error("[ERROR] %v\n", err)

	var opErr *errs.OperationError
	if errors.As(err, &opErr) && opErr.Cmd != "" {
		logger.Error("[ERROR] To recover: %s\n", opErr.Remediation())
	}
	var preErr *errs.PreconditionError
	if errors.As(err, &preErr) && preErr.Remedy != "" {
		logger.Error("[ERROR] %s\n", preErr.Remedy)
	}
	os.Exit(1)
}
