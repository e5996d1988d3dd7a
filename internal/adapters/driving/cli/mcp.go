package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ubuzima/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about NISR data.

Tools:      ask, search
Resources:  ubuzima://stats, ubuzima://datasets/summary

By default the server communicates over stdio using JSON-RPC. Use --port to
serve streamable HTTP instead.

Examples:
  # Stdio mode (default, for desktop assistants)
  ubuzima mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  ubuzima mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "ubuzima": {
        "command": "/path/to/ubuzima",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	a, err := loadApp(cmd.Context(), levelAnswers)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:    a.chat,
		Index:   a.index,
		Dataset: a.dataset,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.Printf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
