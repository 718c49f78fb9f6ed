package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Version will be set during build with ldflags
var Version = "1.0.0"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "todoflowd",
		Short:   "todoflow API server",
		Version: Version,
		Long: `todoflowd serves the todoflow REST API backed by PostgreSQL or SQLite.
Settings come from config.yaml, .env and TODOFLOW_* environment variables.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newMigrateCmd(&configPath))
	rootCmd.AddCommand(newRollupCmd(&configPath))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
}
