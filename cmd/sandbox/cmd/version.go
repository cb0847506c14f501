package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nWish8/Sandbox/strategies"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the sandbox CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sandbox version %s\n", version)
		fmt.Fprintf(out, "strategies: %v\n", strategies.Names())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
