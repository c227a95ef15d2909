package main

import (
	"fmt"

	"github.com/spf13/cobra"

	datastore "github.com/Archelyst/jsonapi-datastore"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of jsonapi-datastore",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jsonapi-datastore version %s\n", datastore.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
