package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gsctl-setup/internal/bootstrap"
	"gsctl-setup/internal/installer"
)

// fromArchive optionally points at an offline release archive (local path or
// URL) used to seed the source tree instead of the git remote.
var fromArchive string

// installCmd provisions the install prefix, fetches the gsctl source, and
// wires up the launcher and PATH line. Re-running after a partial or
// completed install converges to the same end state.
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install gsctl into the configured prefix",
	Run: func(cmd *cobra.Command, args []string) {
		e, err := buildEnv()
		if err != nil {
			exitOn(err)
		}

		inst := &installer.Installer{
			Target:      e.target,
			Remote:      e.remote,
			Flags:       e.flags,
			Runner:      e.runner,
			Broker:      e.broker,
			Reconciler:  e.reconciler,
			Boot:        bootstrap.New(e.runner),
			In:          os.Stdin,
			ArchivePath: fromArchive,
		}
		exitOn(inst.Run())
	},
}

func init() {
	installCmd.Flags().StringVar(&fromArchive, "from-archive", "", "Seed the source tree from a release archive instead of the git remote")
	rootCmd.AddCommand(installCmd)
}
