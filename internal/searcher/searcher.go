package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/filter"
	"github.com/dshills/ticketvec-mcp/internal/metrics"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Search modes, used as metric labels
const (
	ModeRanked = "ranked" // query text present, ordered by distance
	ModeFilter = "filter" // predicate only, ordered by insertion
)

// Request contains parameters for a search operation
type Request struct {
	Project string

	// Query is free text ranked by embedding distance. Optional when a
	// predicate is given.
	Query string

	// Predicate is filter grammar text, e.g. "status = 'Open' AND priority IN ('High')".
	Predicate string

	// Filter is a programmatic predicate, combined with Predicate by AND.
	Filter filter.Expr

	TopN int
}

// Mode reports whether the request ranks by distance or only filters
func (r Request) Mode() string {
	if strings.TrimSpace(r.Query) != "" {
		return ModeRanked
	}
	return ModeFilter
}

// Searcher runs hybrid (vector + predicate) queries against project stores
type Searcher struct {
	stores   *storage.Manager
	embedder embedder.Embedder
	logger   *slog.Logger
}

// New creates a Searcher. The embedder should be the same handle used for
// ingestion so query and ticket vectors live in one space.
func New(stores *storage.Manager, emb embedder.Embedder, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{stores: stores, embedder: emb, logger: logger}
}

// Search validates the request, compiles its predicate and runs it. Request
// errors (ErrEmptyQuery, ErrInvalidLimit, ErrInvalidPredicate) are reported
// before any store is opened.
func (s *Searcher) Search(ctx context.Context, req Request) (results []types.ScoredTicket, err error) {
	startTime := time.Now()
	mode := req.Mode()
	defer func() { metrics.ObserveSearch(mode, startTime, err) }()

	q, err := s.compile(req)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.Open(ctx, req.Project)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if mode == ModeRanked {
		q.Vector, err = s.embedQuery(ctx, req.Query, store.Dimension())
		if err != nil {
			return nil, err
		}
	}

	results, err = store.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("search completed",
		"project", req.Project,
		"mode", mode,
		"results", len(results),
		"duration", time.Since(startTime))
	return results, nil
}

// compile checks the request and turns it into a store query without a vector
func (s *Searcher) compile(req Request) (storage.Query, error) {
	predicate := strings.TrimSpace(req.Predicate)
	if strings.TrimSpace(req.Query) == "" && predicate == "" && req.Filter == nil {
		return storage.Query{}, types.Errorf(types.ErrEmptyQuery, "query and predicate are both empty")
	}
	if req.TopN <= 0 {
		return storage.Query{}, types.Errorf(types.ErrInvalidLimit, "top_n must be positive, got %d", req.TopN)
	}

	parsed, err := filter.Parse(predicate)
	if err != nil {
		return storage.Query{}, err
	}
	where, args, err := filter.Compile(filter.And(parsed, req.Filter))
	if err != nil {
		return storage.Query{}, err
	}
	return storage.Query{Where: where, Args: args, Limit: req.TopN}, nil
}

func (s *Searcher) embedQuery(ctx context.Context, text string, dimension int) ([]float32, error) {
	start := time.Now()
	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
	metrics.ObserveEmbed(s.embedder.Provider(), start)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", types.ErrEmbedFailed, err)
	}
	if emb == nil || len(emb.Vector) == 0 {
		return nil, types.Errorf(types.ErrEmbedFailed, "empty query vector")
	}
	if len(emb.Vector) != dimension {
		return nil, types.Errorf(types.ErrDimensionMismatch, "query vector has %d dimensions, store expects %d", len(emb.Vector), dimension)
	}
	return emb.Vector, nil
}
