package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	launchmcp "github.com/deixis/launcher/internal/mcp"
	"github.com/deixis/launcher/internal/report"
	"github.com/deixis/launcher/internal/runner"
)

var (
	serveHTTPAddr     string
	serveInstructions bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio, or over HTTP with --http",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveInstructions {
			fmt.Fprint(cmd.OutOrStdout(), launchmcp.Instructions)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		server := newMCPServer()
		if serveHTTPAddr != "" {
			return serveHTTP(ctx, server, serveHTTPAddr)
		}
		return server.Run(ctx, &mcpsdk.StdioTransport{})
	},
}

func newMCPServer() *mcpsdk.Server {
	var back report.Store = report.NewDiskStore(afero.NewMemMapFs(), "")
	if disk := historyStore(); disk != nil {
		back = disk
	}
	store := report.NewLRUStore(cfg.HistoryCache(), back)

	l := &runner.Launcher{
		Timeout:   cfg.Timeout(),
		MaxOutput: cfg.MaxOutputBytes(),
		Logger:    logger,
	}
	return launchmcp.NewServer(cfg, l, store, launchmcp.WithLogger(logger))
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		return httpServer.Close()
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http", "", "serve streamable HTTP on this address (e.g. :9090)")
	serveCmd.Flags().BoolVar(&serveInstructions, "instructions", false, "print model instructions and exit")
}
