package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/ui"
	"github.com/gsdkit/reqgraph/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	GroupID: "graph",
	Short:   "Check the dependency graph for cycles and dangling references",
	Long: `Validate the requirement graph and report statistics.

Reports the first dependency cycle found (as a closed id path), dangling
dependsOn references, node and edge counts, root requirements, and the
longest dependency chain.

Validation failures never block the layout or show commands; cycles land in
a trailing layer there. This command exists for CI gates and pre-commit
checks, so it exits 1 when the graph is invalid.

Example usage:
  reqgraph validate                    # Styled report
  reqgraph validate --json             # Machine-readable report`,
	Run: func(cmd *cobra.Command, args []string) {
		snap := loadSnapshot()
		result := validate.Check(snap, requirement.BuildGraph(snap))

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error encoding report: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
		} else {
			fmt.Println(ui.ValidationReport(result))
		}

		if !result.Valid {
			os.Exit(1)
		}
	},
}

func init() {
	validateCmd.Flags().Bool("json", false, "Emit the report as JSON")

	rootCmd.AddCommand(validateCmd)
}
