package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/store"
	"github.com/gsdkit/reqgraph/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show",
	GroupID: "graph",
	Short:   "Render the layered graph in the terminal",
	Long: `Render the requirement graph as colored layers in the terminal.

Each layer is one row of chips. A chip's color follows the requirement's
state: green done, cyan in progress, yellow ready to start, red blocked.
A validity banner appears above the graph when the validator finds a cycle,
and aggregate counts follow it.

Example usage:
  reqgraph show
  reqgraph show --plan release.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		snap := loadSnapshot()

		st := store.New(loadGeometry(cmd))
		defer st.Close()
		state := st.Replace(snap)

		if !state.Validation.Valid {
			fmt.Println(ui.ValidationReport(state.Validation))
			fmt.Println()
		}
		fmt.Println(ui.GraphView(snap, state.Layout, ui.TerminalWidth()))
		fmt.Println()
		fmt.Println(ui.StatsLine(state.Stats))
	},
}

func init() {
	showCmd.Flags().String("geometry", "", "TOML geometry preset (nodeWidth, nodeHeight, hSpacing, vSpacing)")

	rootCmd.AddCommand(showCmd)
}
