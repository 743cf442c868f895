package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmate/internal/config"
	"github.com/abhisek/quizmate/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizmate",
	Short: "Terminal quiz practice backed by a progress server",
	Long: "Quizmate is a terminal quiz client. Answers, starred questions and\n" +
		"positions are kept by a quizmate server so practice resumes anywhere.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default $XDG_CONFIG_HOME/quizmate/config.toml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZMATE_DB env var)")
	addClientFlags(rootCmd)

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the --config file, .env and the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then QUIZMATE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// stringFlag copies a flag into dst when it was given on the command line.
func stringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}
