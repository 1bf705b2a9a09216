package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/mcp"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/output"
)

func newMCPCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start Model Context Protocol (MCP) server",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP).
AI agents can infer client context, classify hosts and decode session
tokens while triaging feedback reports.

Communication happens over standard input/output (stdio); logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			progress := output.NewVerboseProgress(verbose, verbose)
			progress.Debug("mcp server %s on stdio", version)
			return mcp.NewServer(version).Start(ctx)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	return cmd
}
