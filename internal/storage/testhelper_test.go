package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

const testDimension = 3

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(t.TempDir(), testDimension, logger)
}

func openTestStore(t *testing.T, mgr *Manager, project string) *Store {
	t.Helper()
	ctx := context.Background()
	if !mgr.Exists(project) {
		_, err := mgr.Create(ctx, project)
		require.NoError(t, err)
	}
	store, err := mgr.Open(ctx, project)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTicket(id, summary string, vec ...float32) *types.Ticket {
	return &types.Ticket{
		TicketID:  id,
		Summary:   summary,
		Status:    "Open",
		Embedding: vec,
	}
}
