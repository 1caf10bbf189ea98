package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	vespermcp "github.com/vesperhq/vesper/internal/mcp"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp-serve",
		Usage:  "Expose Vesper skill intents as an MCP server (stdio)",
		Action: runMCPServe,
	}
}

func runMCPServe(ctx context.Context, cmd *cli.Command) error {
	// Logging goes to stderr; stdout carries the MCP stdio transport.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := loadConfig(cmd)
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.Background())

	server := vespermcp.NewServer(rt.Assistant.Registry(), rt.Assistant)
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
