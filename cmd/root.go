package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagDB     string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "societyledger",
	Short: "Double-entry accounting for housing society finances",
	Long:  "A double-entry accounting ledger for residential societies backed by SQLite, covering maintenance billing, financial year closing, and audited reports.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "societyledger.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (YAML)")
}

func Execute() error {
	return rootCmd.Execute()
}
