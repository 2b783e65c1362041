package storage

import (
	"context"
	"fmt"

	"github.com/samber/oops"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// TicketStore defines the operations on one opened project store
type TicketStore interface {
	// Write operations
	Insert(ctx context.Context, ticket *types.Ticket) (int64, error)
	Upsert(ctx context.Context, ticket *types.Ticket) (int64, error)

	// Read operations
	Count(ctx context.Context) (int, error)
	Query(ctx context.Context, q Query) ([]types.ScoredTicket, error)

	// Dimension is the embedding length every row of the store carries
	Dimension() int
	Project() string
	Close() error
}

// Query is a compiled hybrid query against one store
type Query struct {
	// Vector ranks results by L2 distance when non-nil
	Vector []float32

	// Where is a parameterized boolean fragment over ticket columns, combined
	// with AND. Empty means no restriction.
	Where string
	Args  []any

	Limit int
}

// Store metadata keys
const (
	metaDimension = "dimension"
	metaProject   = "project"
)

// ticketColumns lists the scalar columns in serialization order
const ticketColumns = `ticket_id, summary, description, status, priority, assignee, reporter,
	created, updated, due_date, estimate_seconds, raw_payload`

// storeError wraps a kind sentinel, and optionally the underlying cause, with
// project context. errors.Is sees both the kind and the cause.
func storeError(kind error, project string, cause error, format string, args ...any) error {
	builder := oops.In("storage").With("project", project)
	if cause == nil {
		return builder.Wrapf(kind, format, args...)
	}
	return builder.Wrapf(fmt.Errorf("%w: %w", kind, cause), format, args...)
}
