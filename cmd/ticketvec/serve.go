package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/ticketvec-mcp/internal/mcp"
	"github.com/dshills/ticketvec-mcp/internal/metrics"
)

func serveCmd(load func() (*app, error)) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Logs go to stderr or LOG_FILE; stdout carries the protocol. With
--metrics-addr (or METRICS_ADDR) a Prometheus endpoint is served as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				if metricsAddr == "" {
					metricsAddr = a.cfg.MetricsAddr
				}
				return runServe(cmd.Context(), a, metricsAddr)
			})
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for the /metrics endpoint, e.g. :9090")
	return cmd
}

func runServe(parent context.Context, a *app, metricsAddr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("ticketvec MCP server starting",
		"version", version,
		"db_dir", a.cfg.DBDir,
		"provider", a.embedder.Provider())

	g, ctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, metricsAddr, a.logger)
		})
	}
	g.Go(func() error {
		// stdio returning (stdin closed or signal) ends the whole process
		defer stop()
		err := mcp.NewServer(a.svc, version, a.logger).Serve(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err := g.Wait()
	a.logger.Info("server stopped")
	return err
}
