package cmd

import (
	"github.com/huangsam/foilact/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the foilact MCP server",
	Long:  `Launch an MCP server that allows AI agents to predict activities, compute line activities and parse reports via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logging always goes to stderr, stdio is used for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
