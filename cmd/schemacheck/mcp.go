package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemacheck/internal/cli"
	"github.com/aretw0/schemacheck/internal/config"
	"github.com/aretw0/schemacheck/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes schemacheck to AI agents as MCP tools (validate_json, get_report)
and a keywords resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.buildChecker()
		defer a.Close()

		transport := a.cfg.MCP.Transport
		if cmd.Flags().Changed("transport") {
			transport, _ = cmd.Flags().GetString("transport")
		}
		port := a.cfg.MCP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		srv := mcp.NewServer(a.checker, a.logger)

		switch transport {
		case config.TransportStdio:
			// Stdout carries JSON-RPC.
			log.SetOutput(cmd.ErrOrStderr())
			a.logger.Info("starting MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		case config.TransportSSE:
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()
			a.logger.Info("starting MCP server (sse)", "port", port)
			return srv.ServeSSE(sigCtx, port)
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	mcpCmd.Flags().String("transport", config.TransportStdio, "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8081, "Port for the sse transport")
	rootCmd.AddCommand(mcpCmd)
}
