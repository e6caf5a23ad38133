package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ccindex/internal/index"
	"github.com/Aman-CERP/ccindex/internal/logging"
	"github.com/Aman-CERP/ccindex/internal/mcp"
)

type serveFlags struct {
	cacheFlags
	transport string
	source    string
}

func newServeCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the indexes to MCP clients over stdio",
		Long: `Start an MCP server exposing the tools get_component, get_search_entry,
match_formula, and index_status, and the ccindex://status resource.

stdout carries the JSON-RPC stream, so logs go only to ~/.ccindex/logs/.
Indexes are loaded on first use. When --source is set a missing index is
built from it; otherwise a missing index is served empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, &f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&f.transport, "transport", "", "Transport protocol: stdio (default from config)")
	cmd.Flags().StringVar(&f.source, "source", "", "JSON Lines definition source for missing indexes")

	return cmd
}

func runServe(ctx context.Context, f *serveFlags) error {
	cfg, opts, err := indexOptions(&f.cacheFlags)
	if err != nil {
		return err
	}

	level := cfg.Server.LogLevel
	if debugMode {
		level = "debug"
	}
	cleanup, err := logging.Install(logging.ServerConfig(level))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer cleanup()

	deps := index.Deps{}
	sourcePath := cfg.Source.Path
	if f.source != "" {
		sourcePath = f.source
	}
	if sourcePath != "" {
		deps.Source = index.SQLiteSource(opts, sourcePath)
	}

	srv, err := mcp.NewServer(index.NewRegistry(), opts, deps)
	if err != nil {
		return err
	}

	transport := cfg.Server.Transport
	if f.transport != "" {
		transport = f.transport
	}
	err = srv.Serve(ctx, transport)
	if errors.Is(err, context.Canceled) {
		slog.Info("serve interrupted")
		return nil
	}
	return err
}
