package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"financegateway/internal/logging"
	"financegateway/internal/mcpserver"
	"financegateway/internal/server"
)

func newServeCmd(version string) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API, Swagger UI, metrics and MCP over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}

			opts := server.Options{
				Logger:   logger,
				Metrics:  a.metrics,
				Gatherer: a.registry,
				Debug:    logging.ParseLevel(cfg.Log.Level) == slog.LevelDebug,
			}
			if cfg.MCP.Enabled {
				opts.MCPHandler = mcpserver.New(a.service, version, logger).HTTPHandler(cfg.MCP.Path)
				opts.MCPPath = cfg.MCP.Path
			}
			srv := server.New(cfg.Server, a.service, opts)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				return a.Close()
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides SERVER_ADDRESS)")
	return cmd
}

// contextOrBackground returns cmd's context, which is nil when Execute was used.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
