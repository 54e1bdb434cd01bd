// Package cli implements the financegateway command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"financegateway/internal/config"
	"financegateway/internal/logging"
)

// NewRootCmd creates the root command with the serve and mcp subcommands.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "financegateway",
		Short:         "Aggregated market data over HTTP and MCP",
		Long:          "financegateway fans multi-symbol requests out to an upstream market data provider, reports per-symbol failures and caches the aggregated results.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  # Serve the REST API, Swagger UI and MCP over HTTP on :8080
  financegateway serve

  # Serve MCP over stdio for a local assistant
  financegateway mcp

  # Disable caching
  CACHE_ENABLED=false financegateway serve`,
	}

	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().String("log-format", "", "log format: text or json (overrides LOG_FORMAT)")
	cmd.AddCommand(newServeCmd(version), newMCPCmd(version))

	return cmd
}

// loadConfig loads configuration and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
