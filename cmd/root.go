package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "trading-journal",
	Short:         "Trading journal API, telegram bot and job scheduler",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
