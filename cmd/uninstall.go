package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gsctl-setup/internal/installer"
)

// uninstallCmd drains running game servers and then removes the install
// prefix, the server data directory, and the PATH line. Filesystem removal
// is reached only after every server stopped cleanly.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop all managed servers and remove gsctl",
	Run: func(cmd *cobra.Command, args []string) {
		e, err := buildEnv()
		if err != nil {
			exitOn(err)
		}

		u := &installer.Uninstaller{
			Target:     e.target,
			Flags:      e.flags,
			Runner:     e.runner,
			Broker:     e.broker,
			Reconciler: e.reconciler,
			Reaper:     installer.NewReaper(e.runner, e.target),
			In:         os.Stdin,
		}
		exitOn(u.Run())
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
