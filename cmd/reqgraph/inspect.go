package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gsdkit/reqgraph/internal/layout"
	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [id]",
	GroupID: "graph",
	Short:   "Show one requirement with its graph annotations",
	Args:    cobra.MaximumNArgs(1),
	Long: `Show one requirement as a detail card: stored fields, derived
readiness, what blocks it, and what it blocks.

With no ID and an interactive terminal, a picker lists all requirements.

Example usage:
  reqgraph inspect req-auth
  reqgraph inspect                     # Interactive picker`,
	Run: func(cmd *cobra.Command, args []string) {
		snap := loadSnapshot()

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			id = pickRequirement(snap)
		}

		req, ok := snap.Get(id)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: requirement %s not found\n", id)
			os.Exit(1)
		}

		result := layout.Compute(snap, requirement.BuildGraph(snap), layout.DefaultGeometry())
		var node layout.Node
		for _, n := range result.Nodes {
			if n.ID == id {
				node = n
				break
			}
		}

		fmt.Println(ui.DetailCard(req, node))
	},
}

// pickRequirement runs an interactive selector over all requirement IDs.
// Without a terminal there is nothing to select on, so the ID is required.
func pickRequirement(snap *requirement.Snapshot) string {
	if snap.Len() == 0 {
		fmt.Fprintf(os.Stderr, "Error: no requirements found\n")
		os.Exit(1)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: requirement ID required when stdin is not a terminal\n")
		os.Exit(1)
	}

	options := make([]huh.Option[string], 0, snap.Len())
	for _, id := range snap.IDs() {
		r, _ := snap.Get(id)
		options = append(options, huh.NewOption(fmt.Sprintf("%-20s %s", id, r.Title), id))
	}

	var id string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Select a requirement").
			Options(options...).
			Value(&id),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return id
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
