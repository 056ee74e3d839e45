package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemacheck"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of schemacheck",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemacheck version %s\n", schemacheck.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
