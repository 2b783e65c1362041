package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/dshills/ticketvec-mcp/internal/ingester"
	"github.com/dshills/ticketvec-mcp/internal/searcher"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/internal/tracker"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// DefaultSearchLimit is used when a search passes no positive top_n and the
// service was built without one.
const DefaultSearchLimit = 5

// Options holds the optional collaborators of a Service
type Options struct {
	// Tracker enables Sync. Nil means local-only mode.
	Tracker tracker.Client

	// DefaultLimit replaces a zero top_n in SearchDefault.
	DefaultLimit int
}

// Service is the caller-facing surface shared by the MCP tools and the CLI.
// Typed methods return errors carrying a kind; the status methods render
// those errors as "Err<code>: ..." strings.
type Service struct {
	stores       *storage.Manager
	pipeline     *ingester.Pipeline
	searcher     *searcher.Searcher
	tracker      tracker.Client
	locks        *ingester.ProjectLocks
	defaultLimit int
	logger       *slog.Logger
}

// New wires a Service from its components.
func New(stores *storage.Manager, pipeline *ingester.Pipeline, s *searcher.Searcher, opts Options, logger *slog.Logger) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultSearchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		stores:       stores,
		pipeline:     pipeline,
		searcher:     s,
		tracker:      opts.Tracker,
		locks:        ingester.NewProjectLocks(),
		defaultLimit: opts.DefaultLimit,
		logger:       logger,
	}
}

// DefaultLimit returns the top_n used when callers omit one.
func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// TrackerEnabled reports whether Sync can reach an issue tracker.
func (s *Service) TrackerEnabled() bool {
	return s.tracker != nil
}

func wrap(err error, project, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.In("service").With("project", project).Wrapf(err, format, args...)
}

// Create creates the project's store and returns its path.
func (s *Service) Create(ctx context.Context, project string) (string, error) {
	path, err := s.stores.Create(ctx, project)
	if err != nil {
		return "", wrap(err, project, "create project %s", project)
	}
	s.logger.Info("project created", "project", project, "path", path)
	return path, nil
}

// Delete removes the project's store.
func (s *Service) Delete(ctx context.Context, project string) error {
	if err := s.stores.Delete(ctx, project); err != nil {
		return wrap(err, project, "delete project %s", project)
	}
	s.logger.Info("project deleted", "project", project)
	return nil
}

// IngestRecords ingests raw records. Per-record failures are in the result;
// the error is reserved for store-level failures such as a missing project.
func (s *Service) IngestRecords(ctx context.Context, project string, records []any) (*ingester.Result, error) {
	result, err := s.pipeline.IngestMany(ctx, project, records)
	if err != nil {
		return nil, wrap(err, project, "ingest into %s", project)
	}
	return result, nil
}

// Query runs a hybrid search and returns typed results.
func (s *Service) Query(ctx context.Context, req searcher.Request) ([]types.ScoredTicket, error) {
	results, err := s.searcher.Search(ctx, req)
	if err != nil {
		return nil, wrap(err, req.Project, "search %s", req.Project)
	}
	return results, nil
}

// CountTickets returns the project's row count.
func (s *Service) CountTickets(ctx context.Context, project string) (int, error) {
	n, err := s.stores.CountTickets(ctx, project)
	if err != nil {
		return 0, wrap(err, project, "count %s", project)
	}
	return n, nil
}

// List returns every project with a store, sorted by name.
func (s *Service) List() ([]string, error) {
	projects, err := s.stores.List()
	if err != nil {
		return nil, oops.In("service").Wrapf(err, "list projects")
	}
	return projects, nil
}

// Sync pulls issues matching jql from the tracker and ingests them. Only one
// sync per project runs at a time; a second one fails with ErrBusy.
func (s *Service) Sync(ctx context.Context, project, jql string) (*ingester.Result, error) {
	if s.tracker == nil {
		return nil, wrap(fmt.Errorf("%w: %w", types.ErrTrackerConnect, tracker.ErrNotConfigured), project, "sync %s", project)
	}
	if strings.TrimSpace(jql) == "" {
		return nil, wrap(types.Errorf(types.ErrEmptyQuery, "jql is empty"), project, "sync %s", project)
	}
	if !s.stores.Exists(project) {
		return nil, wrap(types.Errorf(types.ErrNotFound, "project %s does not exist", project), project, "sync %s", project)
	}

	release, ok := s.locks.TryAcquire(project)
	if !ok {
		return nil, wrap(types.Errorf(types.ErrBusy, "sync already running for %s", project), project, "sync %s", project)
	}
	defer release()

	issues, err := s.tracker.Search(ctx, jql)
	if err != nil {
		return nil, wrap(err, project, "fetch issues for %s", project)
	}
	s.logger.Info("fetched tracker issues", "project", project, "issues", len(issues))

	records := make([]any, len(issues))
	for i := range issues {
		records[i] = &issues[i]
	}
	return s.IngestRecords(ctx, project, records)
}
