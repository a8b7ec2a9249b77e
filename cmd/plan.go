package cmd

import (
	"github.com/spf13/cobra"

	"gsctl-setup/internal/installer"
	"gsctl-setup/internal/logger"
)

// planCmd prints the filesystem corrections an install would apply, without
// applying anything. An empty plan means the tree already matches.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the filesystem changes an install would make",
	Run: func(cmd *cobra.Command, args []string) {
		e, err := buildEnv()
		if err != nil {
			exitOn(err)
		}

		own, err := installer.CurrentOwnership()
		if err != nil {
			exitOn(err)
		}

		paths := []string{e.target.Prefix, e.target.BinDir, e.target.RepoDir}
		plan, err := e.reconciler.PlanFor(paths, own)
		if err != nil {
			exitOn(err)
		}

		if plan.Empty() {
			logger.Info("[INFO] Filesystem already matches the desired state.\n")
			return
		}
		logger.Info("[INFO] An install would apply:\n")
		logger.Plain("%s", plan.Describe())
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
