package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/ui/components"
)

var xpCmd = &cobra.Command{
	Use:   "xp <amount>",
	Short: "Add XP to the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		if amount < 0 {
			return fmt.Errorf("amount must not be negative")
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out := rt.engine.AddXP(cmd.Context(), amount)
		w := cmd.OutOrStdout()
		if len(out.Awards) > 0 || len(out.LevelChanges) > 0 {
			fmt.Fprintln(w, components.Awards(out.Awards, out.LevelChanges))
		}
		fmt.Fprintln(w, components.AccountCard(out.Account, boardWidth-8))
		return nil
	},
}
