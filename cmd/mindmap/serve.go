package main

import (
	"github.com/spf13/cobra"

	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/server"
	"github.com/npratt/mindmap/internal/shutdown"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mind-map layout and export over HTTP",
		Long: `Run an HTTP service that lays out and renders mind-maps for web clients.

Endpoints:
  GET  /health   service status
  POST /layout   positioned visible nodes and edges for an expansion
  POST /export   PNG or SVG image of the visible subgraph

Requests carry the mind-map and the toggles to replay, so the service keeps
no per-client state. Layouts are memoized across requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			srv := server.New(pixelAdapter(cfg, a.logger), server.Options{
				Addr:         cfg.Serve.Addr,
				CORSOrigins:  cfg.Serve.CORSOrigins,
				MaxBodyBytes: cfg.Serve.MaxBodyBytes,
				Direction:    mindmap.ParseDirection(cfg.Layout.Direction),
				Export:       exportOptions(cfg),
				Strict:       cfg.Source.Strict,
			}, a.logger)

			printInfo(cmd.OutOrStdout(), "Serving mind-maps on http://%s (Ctrl+C to stop)", cfg.Serve.Addr)

			return shutdown.RunWithGracefulShutdown(
				cmd.Context(),
				a.logger,
				cfg.Serve.ShutdownTimeout,
				srv.Run,
				srv.Shutdown,
			)
		},
	}

	cmd.Flags().String(FlagAddr, "", "Listen address (default from config: 127.0.0.1:8088)")
	cmd.Flags().String(FlagDirection, "", "Default layout direction (TB or LR)")
	cmd.Flags().Bool(FlagStrict, false, "Reject mind-maps that fail schema validation")
	return cmd
}
