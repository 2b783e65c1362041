package service

import (
	"context"

	"github.com/dshills/ticketvec-mcp/internal/render"
	"github.com/dshills/ticketvec-mcp/internal/searcher"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// CreateProject creates a project and reports the outcome as a status line.
func (s *Service) CreateProject(ctx context.Context, project string) string {
	path, err := s.Create(ctx, project)
	if err != nil {
		return s.fail(err)
	}
	return types.Succ("project %s created at %s", project, path)
}

// DeleteProject deletes a project and reports the outcome as a status line.
func (s *Service) DeleteProject(ctx context.Context, project string) string {
	if err := s.Delete(ctx, project); err != nil {
		return s.fail(err)
	}
	return types.Succ("project %s deleted", project)
}

// Ingest ingests serialized records and returns how many were stored.
// Failures are logged, never returned.
func (s *Service) Ingest(ctx context.Context, project string, sources []string) int {
	records := make([]any, len(sources))
	for i, src := range sources {
		records[i] = src
	}
	result, err := s.IngestRecords(ctx, project, records)
	if err != nil {
		s.logger.Error("ingest failed", "project", project, "code", types.Code(err), "error", err)
		return 0
	}
	return result.Succeeded
}

// Search runs a hybrid search and renders the results in format ("json" or
// "readable"). Failures come back as status lines.
func (s *Service) Search(ctx context.Context, project, query, predicate string, topN int, format string) string {
	f, err := render.ParseFormat(format)
	if err != nil {
		return s.fail(wrap(err, project, "search %s", project))
	}

	results, err := s.Query(ctx, searcher.Request{
		Project:   project,
		Query:     query,
		Predicate: predicate,
		TopN:      topN,
	})
	if err != nil {
		return s.fail(err)
	}

	out, err := render.Results(results, f)
	if err != nil {
		return s.fail(wrap(err, project, "render results"))
	}
	return out
}

// Count returns the project's row count, or 0 when it cannot be read.
func (s *Service) Count(ctx context.Context, project string) int {
	return s.stores.Count(ctx, project)
}

// SyncProject runs Sync and reports the outcome as a status line.
func (s *Service) SyncProject(ctx context.Context, project, jql string) string {
	result, err := s.Sync(ctx, project, jql)
	if err != nil {
		return s.fail(err)
	}
	return types.Succ("synced %d tickets into %s (%d failed)", result.Succeeded, project, result.Failed)
}

func (s *Service) fail(err error) string {
	s.logger.Warn("operation failed", "code", types.Code(err), "error", err)
	return types.Status(err)
}
