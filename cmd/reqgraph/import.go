package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/migrate"
)

var importCmd = &cobra.Command{
	Use:     "import <plan>",
	GroupID: "graph",
	Short:   "Split a plan document into per-requirement files",
	Args:    cobra.ExactArgs(1),
	Long: `Import a plan document (JSON or YAML) into the requirements directory,
one requirements/{id}.json file per requirement.

Existing requirement files are skipped so local edits survive; pass --force
to overwrite them. Use --dry-run to preview what would be written.

Example usage:
  reqgraph import plan.yaml
  reqgraph import plan.yaml --dry-run
  reqgraph import plan.yaml --force --dir ./reqs`,
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")

		result, err := migrate.Run(migrate.Options{
			FromPlan: args[0],
			ToDir:    cfg.Requirements.Dir,
			DryRun:   dryRun,
			Force:    force,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		verb := "Imported"
		if dryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d requirements into %s\n", verb, result.Converted, cfg.Requirements.Dir)
		for _, id := range result.Skipped {
			fmt.Printf("  skipped %s (file exists, use --force to overwrite)\n", id)
		}
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
		if len(result.Errors) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	importCmd.Flags().Bool("dry-run", false, "Preview without writing files")
	importCmd.Flags().Bool("force", false, "Overwrite existing requirement files")

	rootCmd.AddCommand(importCmd)
}
