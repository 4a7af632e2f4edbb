package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/engine"
	"github.com/slayken/slayken/internal/ui/components"
)

const boardWidth = 72

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the account level and the mission board",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		printStatus(cmd, rt.engine.State(cmd.Context()))
		return nil
	},
}

func printStatus(cmd *cobra.Command, st engine.State) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, components.AccountCard(st.Account, boardWidth-8))
	fmt.Fprintln(w)
	fmt.Fprintln(w, components.MissionBoard(st.Missions, boardWidth))
}
