package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skt-team4/lsj-skt-teamproject-2-sub001/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

While the server runs, expired sessions are swept periodically and the
corpus file is watched; edits are reloaded into the search index.

Examples:
  # Stdio mode (default)
  naviyam mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  naviyam mcp serve --port 8080`,
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
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	ports := &mcp.Ports{
		Chat:     chatService,
		Search:   searchService,
		Sessions: sessionService,
		Corpus:   corpusService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	stop := runBackground(ctx, backgroundTasks)
	defer stop()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
