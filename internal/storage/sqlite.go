package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// busyTimeoutMillis bounds how long a connection waits on another writer
const busyTimeoutMillis = 5000

// Store is one opened project store. It owns a single connection and must be
// closed by the caller; stores are not cached across operations.
type Store struct {
	db        *sql.DB
	project   string
	path      string
	dimension int
}

var _ TicketStore = (*Store)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// One connection per store keeps PRAGMAs and transactions on the same handle
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA busy_timeout=" + strconv.Itoa(busyTimeoutMillis),
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// verifyVectorSupport fails when the vector functions are not available on db
func verifyVectorSupport(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	if err := db.QueryRowContext(ctx, "SELECT vec_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("vector extension unavailable (%s build): %w", BuildMode, err)
	}
	return version, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Project returns the project name the store belongs to
func (s *Store) Project() string {
	return s.project
}

// Dimension returns the embedding length fixed at creation
func (s *Store) Dimension() int {
	return s.dimension
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert appends a ticket row and returns its row id
func (s *Store) Insert(ctx context.Context, ticket *types.Ticket) (int64, error) {
	blob, err := s.encodeEmbedding(ticket)
	if err != nil {
		return 0, err
	}
	id, err := s.insertWithQuerier(ctx, s.db, ticket, blob)
	if err != nil {
		return 0, storeError(types.ErrWriteFailed, s.project, err, "insert ticket %s", ticket.TicketID)
	}
	return id, nil
}

// Upsert replaces the earliest row carrying the ticket's id in place and
// drops any later duplicates, or inserts when none exists. The row keeps its
// original position in id order.
func (s *Store) Upsert(ctx context.Context, ticket *types.Ticket) (int64, error) {
	blob, err := s.encodeEmbedding(ticket)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeError(types.ErrWriteFailed, s.project, err, "begin upsert of %s", ticket.TicketID)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM tickets WHERE ticket_id = ? ORDER BY id ASC LIMIT 1",
		ticket.TicketID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id, err = s.insertWithQuerier(ctx, tx, ticket, blob)
	case err == nil:
		err = s.updateWithQuerier(ctx, tx, id, ticket, blob)
	}
	if err != nil {
		return 0, storeError(types.ErrWriteFailed, s.project, err, "upsert ticket %s", ticket.TicketID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM tickets WHERE ticket_id = ? AND id > ?", ticket.TicketID, id); err != nil {
		return 0, storeError(types.ErrWriteFailed, s.project, err, "drop duplicates of %s", ticket.TicketID)
	}
	if err := tx.Commit(); err != nil {
		return 0, storeError(types.ErrWriteFailed, s.project, err, "commit upsert of %s", ticket.TicketID)
	}
	return id, nil
}

func (s *Store) encodeEmbedding(ticket *types.Ticket) ([]byte, error) {
	if len(ticket.Embedding) != s.dimension {
		return nil, storeError(types.ErrDimensionMismatch, s.project, nil,
			"ticket %s has %d-dimensional embedding, store expects %d",
			ticket.TicketID, len(ticket.Embedding), s.dimension)
	}
	blob, err := encodeVector(ticket.Embedding)
	if err != nil {
		return nil, storeError(types.ErrWriteFailed, s.project, err, "encode embedding of %s", ticket.TicketID)
	}
	return blob, nil
}

func (s *Store) insertWithQuerier(ctx context.Context, q querier, t *types.Ticket, blob []byte) (int64, error) {
	query := `
		INSERT INTO tickets (` + ticketColumns + `, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		t.TicketID, t.Summary, t.Description, t.Status, t.Priority, t.Assignee, t.Reporter,
		t.Created, t.Updated, t.DueDate, t.EstimateSeconds, t.RawPayload, blob)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) updateWithQuerier(ctx context.Context, q querier, id int64, t *types.Ticket, blob []byte) error {
	query := `
		UPDATE tickets
		SET summary = ?, description = ?, status = ?, priority = ?, assignee = ?, reporter = ?,
		    created = ?, updated = ?, due_date = ?, estimate_seconds = ?, raw_payload = ?, embedding = ?
		WHERE id = ?
	`
	_, err := q.ExecContext(ctx, query,
		t.Summary, t.Description, t.Status, t.Priority, t.Assignee, t.Reporter,
		t.Created, t.Updated, t.DueDate, t.EstimateSeconds, t.RawPayload, blob, id)
	return err
}

// Count returns the number of ticket rows
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets").Scan(&n); err != nil {
		return 0, storeError(types.ErrReadFailed, s.project, err, "count tickets")
	}
	return n, nil
}

// Query runs a compiled hybrid query. With a vector, rows are ordered by
// ascending L2 distance and ties by row id; without one, by row id and the
// distance is left nil.
func (s *Store) Query(ctx context.Context, q Query) ([]types.ScoredTicket, error) {
	if q.Limit <= 0 {
		return nil, storeError(types.ErrInvalidLimit, s.project, nil, "limit %d", q.Limit)
	}

	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT " + ticketColumns + ", ")
	if q.Vector != nil {
		if len(q.Vector) != s.dimension {
			return nil, storeError(types.ErrDimensionMismatch, s.project, nil,
				"query embedding has %d dimensions, store expects %d", len(q.Vector), s.dimension)
		}
		blob, err := encodeVector(q.Vector)
		if err != nil {
			return nil, storeError(types.ErrReadFailed, s.project, err, "encode query embedding")
		}
		sb.WriteString("vec_distance_l2(embedding, ?) AS distance")
		args = append(args, blob)
	} else {
		sb.WriteString("NULL AS distance")
	}
	sb.WriteString(" FROM tickets")

	if strings.TrimSpace(q.Where) != "" {
		sb.WriteString(" WHERE (" + q.Where + ")")
		args = append(args, q.Args...)
	}

	if q.Vector != nil {
		sb.WriteString(" ORDER BY distance ASC, id ASC")
	} else {
		sb.WriteString(" ORDER BY id ASC")
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, storeError(types.ErrReadFailed, s.project, err, "execute search")
	}
	defer func() { _ = rows.Close() }()

	results := make([]types.ScoredTicket, 0, q.Limit)
	for rows.Next() {
		var r types.ScoredTicket
		var distance sql.NullFloat64
		if err := rows.Scan(
			&r.TicketID, &r.Summary, &r.Description, &r.Status, &r.Priority, &r.Assignee, &r.Reporter,
			&r.Created, &r.Updated, &r.DueDate, &r.EstimateSeconds, &r.RawPayload, &distance,
		); err != nil {
			return nil, storeError(types.ErrReadFailed, s.project, err, "scan search result")
		}
		if distance.Valid {
			d := distance.Float64
			r.Distance = &d
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(types.ErrReadFailed, s.project, err, "iterate search results")
	}
	return results, nil
}

func readMeta(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", key).Scan(&value)
	return value, err
}

func writeMeta(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO store_meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}
