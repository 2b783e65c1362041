package searcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/filter"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

const testDimension = 3

// mapEmbedder returns a fixed vector per query text
type mapEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (m *mapEmbedder) GenerateEmbedding(_ context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	m.calls++
	vec, ok := m.vectors[req.Text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return &embedder.Embedding{Vector: vec, Dimension: len(vec), Provider: "map"}, nil
}

func (m *mapEmbedder) GenerateBatch(context.Context, embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	return nil, errors.New("not used")
}

func (m *mapEmbedder) Dimension() int   { return testDimension }
func (m *mapEmbedder) Provider() string { return "map" }
func (m *mapEmbedder) Model() string    { return "map" }
func (m *mapEmbedder) Close() error     { return nil }

func setup(t *testing.T) (*Searcher, *storage.Manager, *mapEmbedder) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := storage.NewManager(t.TempDir(), testDimension, logger)
	_, err := mgr.Create(ctx, "P")
	require.NoError(t, err)

	store, err := mgr.Open(ctx, "P")
	require.NoError(t, err)
	defer store.Close()

	for _, ticket := range []*types.Ticket{
		{TicketID: "TICKET-1", Summary: "Login page broken", Status: "Open", Priority: "High", EstimateSeconds: 3600, Embedding: []float32{1, 0, 0}},
		{TicketID: "TICKET-2", Summary: "Slow dashboard", Status: "In Progress", Priority: "Low", EstimateSeconds: 7200, Embedding: []float32{0, 1, 0}},
		{TicketID: "TICKET-3", Summary: "Login timeout", Status: "Open", Priority: "Low", Embedding: []float32{0.9, 0.1, 0}},
	} {
		_, err := store.Insert(ctx, ticket)
		require.NoError(t, err)
	}

	emb := &mapEmbedder{vectors: map[string][]float32{
		"login":     {1, 0, 0},
		"dashboard": {0, 1, 0},
		"wrong":     {1, 0},
	}}
	return New(mgr, emb, logger), mgr, emb
}

func ids(results []types.ScoredTicket) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.TicketID
	}
	return out
}

func TestSearch_Ranked(t *testing.T) {
	s, _, _ := setup(t)

	results, err := s.Search(context.Background(), Request{Project: "P", Query: "login", TopN: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"TICKET-1", "TICKET-3", "TICKET-2"}, ids(results))
	for _, r := range results {
		require.NotNil(t, r.Distance)
	}
	assert.InDelta(t, 0, *results[0].Distance, 1e-6)
}

func TestSearch_TopNLimits(t *testing.T) {
	s, _, _ := setup(t)

	results, err := s.Search(context.Background(), Request{Project: "P", Query: "login", TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"TICKET-1"}, ids(results))
}

func TestSearch_PredicateOnly(t *testing.T) {
	s, _, emb := setup(t)

	results, err := s.Search(context.Background(), Request{
		Project:   "P",
		Predicate: "(status = 'In Progress')",
		TopN:      5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "TICKET-2", results[0].TicketID)
	assert.Nil(t, results[0].Distance)
	assert.Zero(t, emb.calls, "no query text means no embedding")
}

func TestSearch_Hybrid(t *testing.T) {
	s, _, _ := setup(t)

	results, err := s.Search(context.Background(), Request{
		Project:   "P",
		Query:     "login",
		Predicate: "priority = 'Low'",
		TopN:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TICKET-3", "TICKET-2"}, ids(results))
}

func TestSearch_ProgrammaticFilter(t *testing.T) {
	s, _, _ := setup(t)

	results, err := s.Search(context.Background(), Request{
		Project:   "P",
		Predicate: "status = 'Open'",
		Filter:    filter.Ge("estimate_seconds", 3600),
		TopN:      5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TICKET-1"}, ids(results))
}

func TestSearch_FieldRoundTrip(t *testing.T) {
	s, _, _ := setup(t)

	results, err := s.Search(context.Background(), Request{Project: "P", Predicate: "ticket_id = 'TICKET-2'", TopN: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	got := results[0]
	assert.Equal(t, "Slow dashboard", got.Summary)
	assert.Equal(t, "In Progress", got.Status)
	assert.Equal(t, "Low", got.Priority)
	assert.Equal(t, int64(7200), got.EstimateSeconds)
}

func TestSearch_IdempotentRead(t *testing.T) {
	s, _, _ := setup(t)
	req := Request{Project: "P", Query: "dashboard", TopN: 3}

	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearch_RequestErrorsBeforeStoreAccess(t *testing.T) {
	s, _, emb := setup(t)

	tests := []struct {
		name string
		req  Request
		kind error
	}{
		{"empty query", Request{Project: "missing", Query: "  ", TopN: 5}, types.ErrEmptyQuery},
		{"zero limit", Request{Project: "missing", Query: "login", TopN: 0}, types.ErrInvalidLimit},
		{"negative limit", Request{Project: "missing", Predicate: "status = 'Open'", TopN: -1}, types.ErrInvalidLimit},
		{"bad predicate", Request{Project: "missing", Predicate: "status = ", TopN: 5}, types.ErrInvalidPredicate},
		{"unknown column", Request{Project: "missing", Predicate: "id = 1", TopN: 5}, types.ErrInvalidPredicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Search(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.kind)
			assert.NotErrorIs(t, err, types.ErrNotFound)
		})
	}
	assert.Zero(t, emb.calls)
}

func TestSearch_MissingProject(t *testing.T) {
	s, _, _ := setup(t)

	_, err := s.Search(context.Background(), Request{Project: "nope", Query: "login", TopN: 5})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSearch_EmbedFailures(t *testing.T) {
	s, _, _ := setup(t)

	_, err := s.Search(context.Background(), Request{Project: "P", Query: "unknown text", TopN: 5})
	assert.ErrorIs(t, err, types.ErrEmbedFailed)

	_, err = s.Search(context.Background(), Request{Project: "P", Query: "wrong", TopN: 5})
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
}

func TestSearch_ProjectIsolation(t *testing.T) {
	s, mgr, _ := setup(t)
	_, err := mgr.Create(context.Background(), "Q")
	require.NoError(t, err)

	results, err := s.Search(context.Background(), Request{Project: "Q", Query: "login", TopN: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}
