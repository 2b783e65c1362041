package ingester

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/metrics"
	"github.com/dshills/ticketvec-mcp/internal/normalizer"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Stage names a step of the per-record pipeline
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageEmbed     Stage = "embed"
	StageDimension Stage = "dimension"
	StageWrite     Stage = "write"
)

// StageError reports which step a record failed at
type StageError struct {
	Stage    Stage
	TicketID string // empty when normalization failed before an id was known
	Err      error
}

func (e *StageError) Error() string {
	if e.TicketID == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.TicketID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// DedupPolicy decides what happens when a ticket_id is ingested twice
type DedupPolicy string

const (
	// DedupUpsert replaces the earliest row with the same ticket_id in place
	DedupUpsert DedupPolicy = "upsert"
	// DedupAppend always adds a new row
	DedupAppend DedupPolicy = "append"
)

// ParseDedupPolicy accepts "upsert" or "append"; empty means upsert.
func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch DedupPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DedupUpsert, "":
		return DedupUpsert, nil
	case DedupAppend:
		return DedupAppend, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", s)
	}
}

// Config contains configuration for the pipeline
type Config struct {
	Dedup   DedupPolicy // default: DedupUpsert
	Workers int         // concurrent embedding calls (default: runtime.NumCPU())
}

// Result summarizes one batch
type Result struct {
	Succeeded int
	Failed    int
	Errors    []error
	Duration  time.Duration
}

// ErrorMessages renders the per-record failures.
func (r *Result) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

// Pipeline coordinates ingestion: normalize -> embed -> dimension check -> write
type Pipeline struct {
	stores   *storage.Manager
	embedder embedder.Embedder
	dedup    DedupPolicy
	workers  int
	logger   *slog.Logger
}

// New creates a pipeline over the given stores and embedding handle.
func New(stores *storage.Manager, emb embedder.Embedder, cfg Config, logger *slog.Logger) *Pipeline {
	if cfg.Dedup == "" {
		cfg.Dedup = DedupUpsert
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		stores:   stores,
		embedder: emb,
		dedup:    cfg.Dedup,
		workers:  cfg.Workers,
		logger:   logger,
	}
}

// Dedup returns the active dedup policy.
func (p *Pipeline) Dedup() DedupPolicy {
	return p.dedup
}

// IngestOne runs a single record through the pipeline. A missing store
// fails with ErrNotFound; record failures are *StageError.
func (p *Pipeline) IngestOne(ctx context.Context, project string, src any) (*types.Ticket, error) {
	store, err := p.stores.Open(ctx, project)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	ticket, err := p.prepare(ctx, src, store.Dimension())
	if err == nil {
		err = p.write(ctx, store, ticket)
	}
	p.record(project, err)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// IngestMany ingests records in input order. Individual failures are
// logged and counted, never returned. Embeddings are computed concurrently;
// writes happen one at a time on a single connection.
func (p *Pipeline) IngestMany(ctx context.Context, project string, srcs []any) (*Result, error) {
	startTime := time.Now()
	result := &Result{}
	if len(srcs) == 0 {
		return result, nil
	}

	store, err := p.stores.Open(ctx, project)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	type prepared struct {
		ticket *types.Ticket
		err    error
	}
	batch := make([]prepared, len(srcs))
	dimension := store.Dimension()

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, src := range srcs {
		g.Go(func() error {
			ticket, err := p.prepare(ctx, src, dimension)
			batch[i] = prepared{ticket: ticket, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range batch {
		err := item.err
		if err == nil {
			err = p.write(ctx, store, item.ticket)
		}
		p.record(project, err)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Succeeded++
	}

	result.Duration = time.Since(startTime)
	p.logger.Info("ingested batch",
		"project", project,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration)
	return result, nil
}

// prepare normalizes and embeds one record and checks its dimension.
func (p *Pipeline) prepare(ctx context.Context, src any, dimension int) (*types.Ticket, error) {
	ticket, err := normalizer.Normalize(src)
	if err != nil {
		return nil, &StageError{
			Stage: StageNormalize,
			Err:   fmt.Errorf("%w: %w", types.ErrNormalizeFailed, err),
		}
	}

	start := time.Now()
	emb, err := p.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: ticket.EmbeddingText()})
	metrics.ObserveEmbed(p.embedder.Provider(), start)
	if err != nil {
		return nil, &StageError{Stage: StageEmbed, TicketID: ticket.TicketID, Err: fmt.Errorf("%w: %w", types.ErrEmbedFailed, err)}
	}
	if emb == nil || len(emb.Vector) == 0 {
		return nil, &StageError{Stage: StageEmbed, TicketID: ticket.TicketID, Err: types.Errorf(types.ErrEmbedFailed, "empty vector")}
	}
	if len(emb.Vector) != dimension {
		return nil, &StageError{
			Stage:    StageDimension,
			TicketID: ticket.TicketID,
			Err:      types.Errorf(types.ErrDimensionMismatch, "got %d, store expects %d", len(emb.Vector), dimension),
		}
	}

	ticket.Embedding = emb.Vector
	return ticket, nil
}

func (p *Pipeline) write(ctx context.Context, store *storage.Store, ticket *types.Ticket) error {
	var err error
	if p.dedup == DedupAppend {
		_, err = store.Insert(ctx, ticket)
	} else {
		_, err = store.Upsert(ctx, ticket)
	}
	if err == nil {
		return nil
	}
	if !errors.Is(err, types.ErrWriteFailed) && !errors.Is(err, types.ErrDimensionMismatch) {
		err = fmt.Errorf("%w: %w", types.ErrWriteFailed, err)
	}
	return &StageError{Stage: StageWrite, TicketID: ticket.TicketID, Err: err}
}

// record updates counters and logs a failed record.
func (p *Pipeline) record(project string, err error) {
	if err == nil {
		metrics.IngestRecordsTotal.WithLabelValues("success").Inc()
		return
	}
	metrics.IngestRecordsTotal.WithLabelValues("failure").Inc()

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		metrics.IngestFailuresTotal.WithLabelValues(string(stageErr.Stage)).Inc()
		p.logger.Warn("ticket ingestion failed",
			"project", project,
			"stage", stageErr.Stage,
			"ticket_id", stageErr.TicketID,
			"code", types.Code(err),
			"error", err)
		return
	}
	p.logger.Warn("ticket ingestion failed", "project", project, "error", err)
}
