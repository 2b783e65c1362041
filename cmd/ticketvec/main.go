// Command ticketvec serves project-scoped ticket vector stores over MCP and
// mirrors every tool as a CLI subcommand.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/ticketvec-mcp/internal/config"
	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/ingester"
	"github.com/dshills/ticketvec-mcp/internal/logging"
	"github.com/dshills/ticketvec-mcp/internal/searcher"
	"github.com/dshills/ticketvec-mcp/internal/service"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/internal/tracker"
)

// Version information set via ldflags during build.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "ticketvec",
		Short:         "Project-scoped vector search over issue-tracker tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default .env, skipped when missing)")

	load := func() (*app, error) { return newApp(envFile) }

	cmd.AddCommand(serveCmd(load))
	cmd.AddCommand(projectCmd(load))
	cmd.AddCommand(ingestCmd(load))
	cmd.AddCommand(searchCmd(load))
	cmd.AddCommand(syncCmd(load))
	cmd.AddCommand(seedCmd(load))
	cmd.AddCommand(versionCmd())

	return cmd
}

// app holds the process-wide components shared by every subcommand
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	embedder embedder.Embedder
	svc      *service.Service
	closeLog func() error
}

func newApp(envFile string) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.Open(cfg.LogFile, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.New(cfg.EmbedderConfig())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if emb.Dimension() != cfg.EmbeddingDimension {
		logger.Warn("embedding provider dimension differs from EMBEDDING_DIMENSION",
			"provider", emb.Provider(),
			"provider_dimension", emb.Dimension(),
			"configured", cfg.EmbeddingDimension)
	}

	var trackerClient tracker.Client
	jira, err := tracker.NewJiraClient(cfg.JiraConfig(), logger)
	switch {
	case err == nil:
		trackerClient = jira
	default:
		logger.Warn("issue tracker disabled, running against local stores only", "reason", err)
	}

	stores := storage.NewManager(cfg.DBDir, cfg.EmbeddingDimension, logger)
	pipeline := ingester.New(stores, emb, cfg.IngesterConfig(), logger)
	svc := service.New(stores, pipeline, searcher.New(stores, emb, logger), service.Options{
		Tracker:      trackerClient,
		DefaultLimit: cfg.SearchDefaultLimit,
	}, logger)

	logger.Debug("components ready",
		"db_dir", cfg.DBDir,
		"provider", emb.Provider(),
		"model", emb.Model(),
		"dimension", cfg.EmbeddingDimension,
		"dedup", pipeline.Dedup(),
		"storage", storage.BuildMode)

	return &app{
		cfg:      cfg,
		logger:   logger,
		embedder: emb,
		svc:      svc,
		closeLog: closeLog,
	}, nil
}

// Close releases the embedder and the log file.
func (a *app) Close() {
	if err := a.embedder.Close(); err != nil {
		a.logger.Warn("closing embedder", "error", err)
	}
	_ = a.closeLog()
}

// withApp builds the app, runs fn and tears the app down.
func withApp(load func() (*app, error), fn func(*app) error) error {
	a, err := load()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
