package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slayken/slayken/internal/config"
	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/store"
	"github.com/slayken/slayken/internal/ui/components"
)

var rootCmd = &cobra.Command{
	Use:   "slayken",
	Short: "Missions and levels for Slayken Learn",
	Long: "Slayken tracks daily, weekly and progression missions and the account level they feed.\n" +
		"Run without a subcommand to open the app: the daily check-in is recorded and the board shown.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		out, err := rt.engine.Dispatch(cmd.Context(), missions.AppOpened{})
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", missions.KindAppOpened, err)
		}
		if len(out.Awards) > 0 || len(out.LevelChanges) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), components.Awards(out.Awards, out.LevelChanges))
			fmt.Fprintln(cmd.OutOrStdout())
		}
		printStatus(cmd, rt.engine.State(cmd.Context()))
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SLAYKEN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/slayken/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(missionsCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(xpCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config (or the default path) and applies the
// --log-level and --db flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the configured SQLite path, or the default XDG path
// when none is set.
func resolveDBPath(cfg *config.Config) (string, error) {
	if p := cfg.Store.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// configPath returns --config, falling back to the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}
