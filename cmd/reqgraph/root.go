package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/config"
	"github.com/gsdkit/reqgraph/internal/requirement"
	"github.com/gsdkit/reqgraph/internal/store"
	"github.com/gsdkit/reqgraph/internal/ui"
)

// version is stamped by the build.
var version = "dev"

var (
	cfgFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reqgraph",
	Short: "Requirement dependency graph engine",
	Long: `reqgraph reads requirement files maintained by an external planning store,
derives the dependency graph, and lays it out in topological layers for
rendering.

Requirements live as requirements/{id}.json files (one per requirement) or
as a single plan document (JSON or YAML). Each requirement lists the IDs it
depends on; reqgraph derives everything else: layers, positions, readiness,
blocked-by and blocks relations, and validation diagnostics.

Cycles never break the layout. Requirements caught in a dependency cycle
are placed together in a trailing layer and reported by the validator.

Example usage:
  reqgraph show                        # Styled graph in the terminal
  reqgraph layout -o graph.json        # Positioned nodes and edges as JSON
  reqgraph validate                    # Cycle and consistency report
  reqgraph serve                       # Live graph API for a rendering layer`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		v := config.NewViper()
		flags := cmd.Root().PersistentFlags()
		_ = v.BindPFlag("requirements.dir", flags.Lookup("dir"))
		_ = v.BindPFlag("requirements.plan", flags.Lookup("plan"))
		_ = v.BindPFlag("log.file", flags.Lookup("log-file"))

		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ui.ConfigureOutput()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./reqgraph.yaml, ~/.config/reqgraph/reqgraph.yaml)")
	rootCmd.PersistentFlags().String("dir", "", "Requirements directory (default: requirements)")
	rootCmd.PersistentFlags().String("plan", "", "Plan document (JSON or YAML) instead of a directory")
	rootCmd.PersistentFlags().String("log-file", "", "Rotating log file (default: stderr only)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "graph", Title: "Graph Commands:"},
		&cobra.Group{ID: "server", Title: "Server Commands:"},
	)
}

// newLoader picks the snapshot source from configuration. A plan document
// wins over the requirements directory when both are set.
func newLoader() store.Loader {
	if cfg.Requirements.Plan != "" {
		return store.NewPlanLoader(cfg.Requirements.Plan)
	}
	return store.NewDirLoader(cfg.Requirements.Dir)
}

// loadSnapshot loads one snapshot from the configured source, exiting on
// failure.
func loadSnapshot() *requirement.Snapshot {
	loader := newLoader()
	snap, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading requirements: %v\n", err)
		os.Exit(1)
	}
	return snap
}
