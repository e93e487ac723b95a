package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gsdkit/reqgraph/internal/server"
	"github.com/gsdkit/reqgraph/internal/store"
	"github.com/gsdkit/reqgraph/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "server",
	Short:   "Serve the live graph to rendering clients",
	Long: `Start the graph server: load the requirements, watch the source for
changes, and push recomputed state to connected clients.

Endpoints:
  /api/graph              Current layout, validation, and stats as JSON
  /api/requirements       Requirement summaries
  /api/requirements/{id}  One requirement with graph annotations
  /ws                     WebSocket push: full state on connect and on change
  /health                 Liveness and client count
  /metrics                Prometheus metrics

Edits arriving from the external planning store are debounced and applied
atomically; a half-written or broken source keeps the last good state.

Example usage:
  reqgraph serve                       # Default port 8080
  reqgraph serve --port 9000
  reqgraph serve --plan release.yaml   # Watch a plan document instead`,
	Run: func(cmd *cobra.Command, args []string) {
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		st := store.New(loadGeometry(cmd))
		defer st.Close()

		watcher, err := watch.NewWithConfig(newLoader(), st, &watch.Config{
			Debounce: cfg.Watch.Debounce,
			Logger:   cfg.Logger("[watch] "),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		srv := server.NewServer(st, &server.Config{
			Port:   port,
			Logger: cfg.Logger("[server] "),
		})
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to start server: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Graph server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// Blocks until the context is cancelled. The initial load must
		// succeed; after that, reload failures keep the last good state.
		if err := watcher.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			_ = srv.Stop()
			os.Exit(1)
		}

		fmt.Println("\nShutting down...")
		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Graph server stopped")
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("geometry", "", "TOML geometry preset (nodeWidth, nodeHeight, hSpacing, vSpacing)")

	rootCmd.AddCommand(serveCmd)
}
