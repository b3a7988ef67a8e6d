package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studx/homefeed/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the home screen view state",
	Long: `Run the local view-state API. Both feeds are loaded on start and the
current view is served at /api/home along with refresh and mutation routes.

Examples:
  homefeed serve                        # Listen on server.addr
  homefeed serve --addr 127.0.0.1:9000  # Override the listen address`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(a.controller, a.executor, a.store, logger)
	return srv.Start(ctx, addr)
}
