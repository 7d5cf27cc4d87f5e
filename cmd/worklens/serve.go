package main

import (
	"github.com/spf13/cobra"

	"worklens/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over MCP on stdio",
	Long: `serve exposes the assistant as an MCP server speaking JSON-RPC over
stdin/stdout, for use from MCP-capable editors and agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coordinator, err := buildCoordinator(cmd.Context())
		if err != nil {
			return err
		}
		var opts []mcp.Option
		if saveState != nil {
			opts = append(opts, mcp.WithAfterTurn(saveState))
		}
		logger.Info("starting MCP server on stdio")
		return mcp.ServeStdio(mcp.New(coordinator, logger, opts...))
	},
}
