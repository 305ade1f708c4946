package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/ordo/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/ordo/internal/mcp"
	"github.com/felixgeelhaar/ordo/pkg/config"
	"github.com/felixgeelhaar/ordo/pkg/observability"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the task list over MCP (streamable HTTP).

Set MCP_AUTH_TOKEN to require a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app := cli.GetApp()
		if err := app.Ready(); err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		logCfg := observability.DefaultLogConfig()
		logCfg.Output = cmd.ErrOrStderr()
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
		logCfg.FilePath = cfg.LogFile
		logCfg.ServiceVersion = cli.Version
		logger := observability.NewLogger(logCfg)

		err = mcpinternal.Serve(ctx, cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from MCP_ADDR)")
}
