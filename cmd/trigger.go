package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/ui/components"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <kind> [n]",
	Short: "Dispatch a progress event",
	Long: "Dispatch a progress event. Kinds: " + strings.Join(missions.AllKinds(), ", ") + ".\n" +
		"learning_minutes, xp_gained and level_changed take an integer argument.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := args[0]
		n := 0
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid argument %q: %w", args[1], err)
			}
			n = v
		}

		event, err := missions.ParseEvent(kind, n)
		if err != nil {
			return err
		}
		if missions.TakesArgument(event.Kind()) && len(args) < 2 {
			return fmt.Errorf("%s requires an integer argument", event.Kind())
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := rt.engine.Dispatch(cmd.Context(), event)
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", event.Kind(), err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.Awards(out.Awards, out.LevelChanges))
		return nil
	},
}

func init() {
	triggerCmd.Flags().Bool("json", false, "Print the dispatch outcome as JSON")
}
