package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the earnings CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("earnings version %s\n", version)
		fmt.Println("An event-driven earnings surprise backtesting engine")
		fmt.Println("https://github.com/rustyeddy/earnings")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
