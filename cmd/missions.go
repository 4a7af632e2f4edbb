package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/logging"
	"github.com/slayken/slayken/internal/missions"
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "List the mission catalog (optionally filtered by category)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		catalogPath, _ := cmd.Flags().GetString("catalog")

		var catalog *missions.Catalog
		if catalogPath != "" {
			c, err := missions.LoadCatalog(catalogPath)
			if err != nil {
				return err
			}
			catalog = c
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.Must(cfg.Logging)
			defer func() { _ = logger.Sync() }()
			catalog = missions.LoadCatalogOrEmpty(cfg.Missions.Catalog, logger)
		}

		list := catalog.All()
		if category != "" {
			cat := missions.Category(category)
			if !cat.IsValid() {
				return fmt.Errorf("unknown category %q (want daily, weekly or progression)", category)
			}
			list = catalog.ByCategory(cat)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-24s  %-24s  %-11s  %6s  %5s\n",
			"ID", "Title", "Category", "Target", "XP")
		fmt.Fprintln(w, strings.Repeat("─", 78))

		for _, m := range list {
			fmt.Fprintf(w, "%-24s  %-24s  %-11s  %6d  %5d\n",
				m.ID, truncate(m.Title, 24), m.Category.DisplayName(), m.Target, m.XPReward)
		}

		fmt.Fprintf(w, "\n%d missions\n", len(list))
		return nil
	},
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func init() {
	missionsCmd.Flags().String("category", "", "Filter by category (daily, weekly, progression)")
	missionsCmd.Flags().String("catalog", "", "Validate and list this catalog file instead of the configured one")
}
