package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaurav-prasanna/reportpipe/server"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report HTTP API",
	Long: `Serve runs the HTTP API:

  POST   /api/reports/generate
  GET    /api/reports/{id}
  GET    /api/reports/{id}/download
  DELETE /api/reports/{id}
  GET    /api/reports/by-source?sourceUrl=...`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default: server.addr from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := flagAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	return server.New(app.orchestrator, app.queries).Run(ctx, addr)
}
