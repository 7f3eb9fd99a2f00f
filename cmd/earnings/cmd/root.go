package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Earnings surprise backtester",
	Long: `earnings replays historical earnings announcements against daily bars
and simulates a portfolio that trades the surprise: long on beats,
short on misses, with per-day margin, stops and commissions.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
