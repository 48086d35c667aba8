package main

import (
	"github.com/spf13/cobra"

	"go.eggybyte.com/stackgen/internal/preview"
	"go.eggybyte.com/stackgen/internal/ui"
)

var serveAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the render preview API",
	Long: `Serve an HTTP API that renders a schema in memory.

Endpoints:
  GET  /healthz      liveness
  GET  /v1/targets   supported targets
  POST /v1/render    {"entities": [...], "project": {...}, "targets": [...]}

The server stops gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := preview.NewServer(preview.WithLogger(newLogger()))
		ui.Info("Preview API listening on %s", serveAddr)
		return srv.ListenAndServe(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", envDefaults.Addr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}
