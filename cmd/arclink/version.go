package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const arclinkVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the arclink version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arclink version %s\n", arclinkVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
