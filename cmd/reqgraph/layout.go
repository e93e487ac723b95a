package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/config"
	"github.com/gsdkit/reqgraph/internal/layout"
	"github.com/gsdkit/reqgraph/internal/requirement"
)

var layoutCmd = &cobra.Command{
	Use:     "layout",
	GroupID: "graph",
	Short:   "Compute the layered layout and emit it as JSON",
	Long: `Compute positioned nodes and edges for the current requirements.

The output is the same JSON document the serve API returns from /api/graph's
layout field: nodes with layer, position, and readiness annotations, plus
directed edges. A rendering layer consumes it directly.

Example usage:
  reqgraph layout                      # JSON to stdout
  reqgraph layout -o graph.json        # JSON to a file
  reqgraph layout --geometry wide.toml # Custom node geometry preset`,
	Run: func(cmd *cobra.Command, args []string) {
		snap := loadSnapshot()

		geo := loadGeometry(cmd)
		result := layout.Compute(snap, requirement.BuildGraph(snap), geo)

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding layout: %v\n", err)
			os.Exit(1)
		}
		data = append(data, '\n')

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, _ = os.Stdout.Write(data)
			return
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d nodes and %d edges to %s\n", len(result.Nodes), len(result.Edges), output)
	},
}

// loadGeometry resolves the geometry preset from the --geometry flag or the
// config file, exiting on a broken preset.
func loadGeometry(cmd *cobra.Command) layout.Geometry {
	path := cfg.Layout.Geometry
	if cmd.Flags().Changed("geometry") {
		path, _ = cmd.Flags().GetString("geometry")
	}

	geo, err := config.LoadGeometry(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return geo
}

func init() {
	layoutCmd.Flags().StringP("output", "o", "", "Write JSON to a file instead of stdout")
	layoutCmd.Flags().String("geometry", "", "TOML geometry preset (nodeWidth, nodeHeight, hSpacing, vSpacing)")

	rootCmd.AddCommand(layoutCmd)
}
