package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/store"
)

var exportCmd = &cobra.Command{
	Use:     "export <file>",
	GroupID: "graph",
	Short:   "Export the snapshot as a single plan document",
	Args:    cobra.ExactArgs(1),
	Long: `Collect the current requirements into one plan document.

The output format follows the file extension: .json for a JSON plan,
.yaml/.yml for YAML. Plan documents are the inverse of per-file
requirements: one file holding a requirements list, convenient for review
diffs and for seeding a new graph elsewhere.

Example usage:
  reqgraph export plan.yaml
  reqgraph export --dir ./reqs backup.json`,
	Run: func(cmd *cobra.Command, args []string) {
		snap := loadSnapshot()

		path := args[0]
		if err := store.WritePlan(path, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing plan: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d requirements to %s\n", snap.Len(), path)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
