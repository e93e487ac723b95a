package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reqgraph version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reqgraph %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
