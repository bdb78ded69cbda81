package cmd

import (
	"github.com/huangsam/donorlens/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd starts the MCP stdio server.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Donorlens MCP server",
	Long:  `Launch an MCP server that allows AI agents to build donor reports via standard tools.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// The tools supply their own file paths, and headers stay
		// suppressed since stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
