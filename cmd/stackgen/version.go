package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.eggybyte.com/stackgen/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show stackgen version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionString())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
