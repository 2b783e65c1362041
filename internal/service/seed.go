package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// FixtureTickets are the two canonical test tickets: TICKET-1 (Open) and
// TICKET-2 (In Progress).
var FixtureTickets = []string{
	`{"ticket_id": "TICKET-1", "summary": "Test Ticket", "description": "This is a test ticket.", "status": "Open", "priority": "High", "reporter": "Marry", "assignee": "John Doe", "created": "2025-05-01", "updated": "2025-05-03"}`,
	`{"ticket_id": "TICKET-2", "summary": "Another Ticket", "description": "This is finished ticket.", "status": "In Progress", "priority": "Medium", "reporter": "Alice", "assignee": "Bob", "created": "2025-05-01", "updated": "2025-05-02"}`,
}

// Seed recreates project from scratch and fills it with FixtureTickets.
// It returns the number of tickets stored. Failures carry ErrSeedFailed.
func (s *Service) Seed(ctx context.Context, project string) (int, error) {
	n, err := s.seed(ctx, project)
	if err != nil {
		return n, fmt.Errorf("%w: %w", types.ErrSeedFailed, err)
	}
	return n, nil
}

func (s *Service) seed(ctx context.Context, project string) (int, error) {
	if err := s.Delete(ctx, project); err != nil && !errors.Is(err, types.ErrNotFound) {
		return 0, err
	}
	if _, err := s.Create(ctx, project); err != nil {
		return 0, err
	}

	records := make([]any, len(FixtureTickets))
	for i, ticket := range FixtureTickets {
		records[i] = ticket
	}
	result, err := s.IngestRecords(ctx, project, records)
	if err != nil {
		return 0, err
	}
	if result.Failed > 0 {
		return result.Succeeded, wrap(errors.Join(result.Errors...), project, "seed %s", project)
	}
	return result.Succeeded, nil
}
