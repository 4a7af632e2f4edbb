package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/config"
	"github.com/slayken/slayken/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent mission awards and level-ups",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.cfg.Store.Backend != config.BackendSQLite {
			return fmt.Errorf("award history is only kept by the %s backend", config.BackendSQLite)
		}

		records, err := rt.engine.History(cmd.Context(), store.QueryOpts{Limit: limit, Kind: kind})
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(w, "No awards yet.")
			return nil
		}

		fmt.Fprintf(w, "%-5s  %-19s  %-7s  %-24s  %-11s  %s\n",
			"Seq", "Timestamp", "Kind", "Mission", "Category", "Reward")
		fmt.Fprintln(w, strings.Repeat("─", 84))

		for _, r := range records {
			reward := fmt.Sprintf("+%d XP", r.XP)
			if r.Kind == store.AwardKindLevel {
				reward = fmt.Sprintf("level %d", r.Level)
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-7s  %-24s  %-11s  %s\n",
				r.Sequence,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Kind,
				r.MissionID,
				r.Category,
				reward,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of records")
	historyCmd.Flags().String("kind", "", "Filter by kind (mission, level)")
}
