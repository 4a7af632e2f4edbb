package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Reset the account level and XP, mission progress, or both. Without flags both are reset.",
	RunE: func(cmd *cobra.Command, args []string) error {
		resetAccount, _ := cmd.Flags().GetBool("account")
		resetMissions, _ := cmd.Flags().GetBool("missions")
		if !resetAccount && !resetMissions {
			resetAccount, resetMissions = true, true
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		w := cmd.OutOrStdout()
		if resetAccount {
			rt.engine.ResetAccount(cmd.Context())
			fmt.Fprintln(w, "Account reset to level 1.")
		}
		if resetMissions {
			rt.engine.ResetMissions(cmd.Context())
			fmt.Fprintln(w, "Mission progress cleared.")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("account", false, "Reset level and XP")
	resetCmd.Flags().Bool("missions", false, "Reset mission progress and completions")
}
