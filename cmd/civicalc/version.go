package main

import (
	"fmt"

	"CiviAI/internal/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of civicalc",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "civicalc v%s (%s, built %s, %s)\n", info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
