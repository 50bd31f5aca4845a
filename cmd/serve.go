package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP on stdio (the default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := configOrDefault()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcp.NewServer(mcp.Options{
		Name:         mcp.DefaultName,
		Version:      appVersion,
		Instructions: mcp.DefaultInstructions,
		Tools:        a.registry,
		Logger:       logger,
	})

	logger.Info("Starting Minecraft MCP Server...")
	err = server.Serve(cmd.Context(), os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
