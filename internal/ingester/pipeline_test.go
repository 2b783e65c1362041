package ingester

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/storage"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

const testDimension = 3

// fakeEmbedder returns a fixed vector per text. Texts containing "fail"
// error out; texts containing "wide" get one extra component.
type fakeEmbedder struct {
	calls atomic.Int32
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(req.Text, "fail") {
		return nil, errors.New("provider unavailable")
	}
	vec := []float32{float32(len(req.Text)), 1, 0}
	if strings.Contains(req.Text, "wide") {
		vec = append(vec, 1)
	}
	return &embedder.Embedding{Vector: vec, Dimension: len(vec), Provider: "fake"}, nil
}

func (f *fakeEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	resp := &embedder.BatchEmbeddingResponse{Provider: "fake"}
	for _, text := range req.Texts {
		emb, err := f.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: text})
		if err != nil {
			return nil, err
		}
		resp.Embeddings = append(resp.Embeddings, emb)
	}
	return resp, nil
}

func (f *fakeEmbedder) Dimension() int   { return testDimension }
func (f *fakeEmbedder) Provider() string { return "fake" }
func (f *fakeEmbedder) Model() string    { return "fake" }
func (f *fakeEmbedder) Close() error     { return nil }

func setup(t *testing.T, cfg Config) (*Pipeline, *storage.Manager, *fakeEmbedder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := storage.NewManager(t.TempDir(), testDimension, logger)
	_, err := mgr.Create(context.Background(), "P")
	require.NoError(t, err)

	emb := &fakeEmbedder{}
	return New(mgr, emb, cfg, logger), mgr, emb
}

func record(id, summary string) string {
	return fmt.Sprintf(`{"ticket_id": %q, "summary": %q, "description": "d", "status": "Open"}`, id, summary)
}

func TestIngestOne(t *testing.T) {
	p, mgr, _ := setup(t, Config{})
	ctx := context.Background()

	ticket, err := p.IngestOne(ctx, "P", record("TICKET-1", "Test Ticket"))
	require.NoError(t, err)
	assert.Equal(t, "TICKET-1", ticket.TicketID)
	assert.Len(t, ticket.Embedding, testDimension)
	assert.Equal(t, 1, mgr.Count(ctx, "P"))
}

func TestIngestOne_Stages(t *testing.T) {
	tests := []struct {
		name  string
		src   any
		stage Stage
		kind  error
		code  int
	}{
		{"missing summary", `{"ticket_id": "T-1", "summary": "  "}`, StageNormalize, types.ErrMissingField, 8},
		{"bad json", `{"ticket_id":`, StageNormalize, types.ErrParse, 9},
		{"embed failure", record("T-2", "please fail"), StageEmbed, types.ErrEmbedFailed, 5},
		{"wrong dimension", record("T-3", "too wide"), StageDimension, types.ErrDimensionMismatch, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, mgr, _ := setup(t, Config{})
			ctx := context.Background()

			_, err := p.IngestOne(ctx, "P", tt.src)
			require.Error(t, err)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, types.Code(err))
			assert.Equal(t, 0, mgr.Count(ctx, "P"), "nothing may be written")
		})
	}
}

func TestIngestOne_MissingProject(t *testing.T) {
	p, _, emb := setup(t, Config{})

	_, err := p.IngestOne(context.Background(), "nope", record("T-1", "x"))
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Zero(t, emb.calls.Load())
}

func TestIngestMany_EmptyInput(t *testing.T) {
	p, _, _ := setup(t, Config{})

	// Empty input must not touch the store, so even an absent project is fine.
	result, err := p.IngestMany(context.Background(), "absent", nil)
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestIngestMany_MissingProject(t *testing.T) {
	p, _, _ := setup(t, Config{})

	_, err := p.IngestMany(context.Background(), "absent", []any{record("T-1", "x")})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestIngestMany_BatchResilience(t *testing.T) {
	p, mgr, _ := setup(t, Config{Workers: 2})
	ctx := context.Background()

	srcs := []any{
		record("T-1", "one"),
		record("T-2", "two"),
		`{"ticket_id": "T-3"}`,
		record("T-4", "four"),
		record("T-5", "five"),
	}
	result, err := p.IngestMany(ctx, "P", srcs)
	require.NoError(t, err)

	assert.Equal(t, len(srcs)-1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], types.ErrMissingField)
	assert.Len(t, result.ErrorMessages(), 1)
	assert.Equal(t, len(srcs)-1, mgr.Count(ctx, "P"))
}

func TestIngestMany_DimensionGuardKeepsCount(t *testing.T) {
	p, mgr, _ := setup(t, Config{})
	ctx := context.Background()

	_, err := p.IngestOne(ctx, "P", record("T-1", "one"))
	require.NoError(t, err)

	result, err := p.IngestMany(ctx, "P", []any{record("T-2", "wide one")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.ErrorIs(t, result.Errors[0], types.ErrDimensionMismatch)
	assert.Equal(t, 1, mgr.Count(ctx, "P"))
}

func TestIngestMany_PreservesInputOrder(t *testing.T) {
	p, mgr, _ := setup(t, Config{Workers: 4})
	ctx := context.Background()

	var srcs []any
	for i := 0; i < 20; i++ {
		srcs = append(srcs, record(fmt.Sprintf("T-%02d", i), "ticket"))
	}
	_, err := p.IngestMany(ctx, "P", srcs)
	require.NoError(t, err)

	store, err := mgr.Open(ctx, "P")
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.Query(ctx, storage.Query{Limit: 100})
	require.NoError(t, err)
	require.Len(t, rows, 20)
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("T-%02d", i), row.TicketID)
	}
}

func TestDedupPolicies(t *testing.T) {
	tests := []struct {
		policy DedupPolicy
		want   int
	}{
		{DedupUpsert, 1},
		{DedupAppend, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			p, mgr, _ := setup(t, Config{Dedup: tt.policy})
			ctx := context.Background()

			result, err := p.IngestMany(ctx, "P", []any{
				record("T-1", "first"),
				record("T-1", "second"),
			})
			require.NoError(t, err)
			assert.Equal(t, 2, result.Succeeded)
			assert.Equal(t, tt.want, mgr.Count(ctx, "P"))
		})
	}
}

func TestParseDedupPolicy(t *testing.T) {
	for in, want := range map[string]DedupPolicy{"": DedupUpsert, "UPSERT": DedupUpsert, " append ": DedupAppend} {
		got, err := ParseDedupPolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDedupPolicy("replace")
	assert.Error(t, err)
}

func TestIngestMany_CancelledContext(t *testing.T) {
	p, mgr, _ := setup(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Opening the store honors the cancelled context too, so either the
	// batch fails up front or every record fails at the embed stage.
	result, err := p.IngestMany(ctx, "P", []any{record("T-1", "x")})
	if err == nil {
		assert.Equal(t, 1, result.Failed)
	}
	assert.Equal(t, 0, mgr.Count(context.Background(), "P"))
}
