package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/internal/embedder"
	"github.com/dshills/ticketvec-mcp/internal/ingester"
	"github.com/dshills/ticketvec-mcp/internal/searcher"
	"github.com/dshills/ticketvec-mcp/internal/service"
	"github.com/dshills/ticketvec-mcp/internal/storage"
)

const testDimension = 16

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	emb, err := embedder.New(embedder.Config{Provider: embedder.ProviderLocal, Dimension: testDimension})
	require.NoError(t, err)
	t.Cleanup(func() { _ = emb.Close() })

	stores := storage.NewManager(t.TempDir(), testDimension, logger)
	svc := service.New(stores,
		ingester.New(stores, emb, ingester.Config{}, logger),
		searcher.New(stores, emb, logger),
		service.Options{DefaultLimit: 5},
		logger)
	return NewServer(svc, "test", logger)
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), makeCallToolRequest(name, args))
	require.NoError(t, err)
	return result
}

func TestToolsRegistered(t *testing.T) {
	s := newTestServer(t)

	response := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`))
	data, err := json.Marshal(response)
	require.NoError(t, err)

	for _, name := range []string{
		"create_project", "delete_project", "ingest_tickets", "search_tickets",
		"count_tickets", "list_projects", "sync_project", "echo",
	} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestServer(t)

	result := call(t, s.handleCreateProject, "create_project", map[string]interface{}{"project": "P"})
	assert.False(t, result.IsError)
	assert.Regexp(t, `^Succ: `, resultText(t, result))

	result = call(t, s.handleCreateProject, "create_project", map[string]interface{}{"project": "P"})
	assert.True(t, result.IsError)
	assert.Regexp(t, `^Err001: `, resultText(t, result))

	result = call(t, s.handleIngestTickets, "ingest_tickets", map[string]interface{}{
		"project": "P",
		"tickets": []interface{}{
			map[string]interface{}{"ticket_id": "TICKET-1", "summary": "Test Ticket", "status": "Open"},
			`{"ticket_id": "TICKET-2", "summary": "Another Ticket", "status": "In Progress"}`,
			map[string]interface{}{"ticket_id": "BROKEN"},
		},
	})
	require.False(t, result.IsError, resultText(t, result))
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summary))
	assert.EqualValues(t, 2, summary["succeeded"])
	assert.EqualValues(t, 1, summary["failed"])
	assert.Len(t, summary["errors"], 1)

	result = call(t, s.handleCountTickets, "count_tickets", map[string]interface{}{"project": "P"})
	assert.Equal(t, "2", resultText(t, result))

	result = call(t, s.handleSearchTickets, "search_tickets", map[string]interface{}{
		"project":   "P",
		"predicate": "(status = 'In Progress')",
		"format":    "readable",
	})
	require.False(t, result.IsError, resultText(t, result))
	assert.Equal(t, "TICKET-2: Another Ticket", resultText(t, result))

	result = call(t, s.handleListProjects, "list_projects", map[string]interface{}{})
	assert.JSONEq(t, `["P"]`, resultText(t, result))

	result = call(t, s.handleDeleteProject, "delete_project", map[string]interface{}{"project": "P"})
	assert.False(t, result.IsError)

	result = call(t, s.handleCountTickets, "count_tickets", map[string]interface{}{"project": "P"})
	assert.Equal(t, "0", resultText(t, result))

	result = call(t, s.handleSearchTickets, "search_tickets", map[string]interface{}{
		"project":   "P",
		"predicate": "(status = 'In Progress')",
	})
	assert.True(t, result.IsError)
	assert.Regexp(t, `^Err010: `, resultText(t, result))
}

func TestSearchTickets_Errors(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreateProject, "create_project", map[string]interface{}{"project": "P"})

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"empty query", map[string]interface{}{"project": "P"}, `^Err105: `},
		{"bad limit", map[string]interface{}{"project": "P", "query": "x", "top_n": 0}, `^Err106: `},
		{"bad format", map[string]interface{}{"project": "P", "query": "x", "format": "csv"}, `^Err107: `},
		{"bad predicate", map[string]interface{}{"project": "P", "predicate": "status = 'x"}, `^Err112: `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, s.handleSearchTickets, "search_tickets", tt.args)
			assert.True(t, result.IsError)
			assert.Regexp(t, tt.want, resultText(t, result))
		})
	}
}

func TestIngestTickets_Validation(t *testing.T) {
	s := newTestServer(t)

	result := call(t, s.handleIngestTickets, "ingest_tickets", map[string]interface{}{"project": "P", "tickets": "nope"})
	assert.True(t, result.IsError)

	result = call(t, s.handleIngestTickets, "ingest_tickets", map[string]interface{}{
		"project": "ghost",
		"tickets": []interface{}{`{"ticket_id": "T-1", "summary": "x"}`},
	})
	assert.True(t, result.IsError)
	assert.Regexp(t, `^Err010: `, resultText(t, result))
}

func TestSyncProject_NotConfigured(t *testing.T) {
	s := newTestServer(t)
	call(t, s.handleCreateProject, "create_project", map[string]interface{}{"project": "P"})

	result := call(t, s.handleSyncProject, "sync_project", map[string]interface{}{"project": "P", "jql": "project = P"})
	assert.True(t, result.IsError)
	assert.Regexp(t, `^Err108: `, resultText(t, result))
}

func TestMissingArguments(t *testing.T) {
	s := newTestServer(t)

	for name, handler := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"create_project": s.handleCreateProject,
		"delete_project": s.handleDeleteProject,
		"count_tickets":  s.handleCountTickets,
		"search_tickets": s.handleSearchTickets,
		"sync_project":   s.handleSyncProject,
		"echo":           s.handleEcho,
	} {
		result := call(t, handler, name, map[string]interface{}{})
		assert.True(t, result.IsError, name)
	}
}

func TestEcho(t *testing.T) {
	s := newTestServer(t)

	handler := s.instrument("echo", s.handleEcho)
	result := call(t, handler, "echo", map[string]interface{}{"message": "ping"})
	assert.False(t, result.IsError)
	assert.Equal(t, "Echo from ticketvec-mcp: ping", resultText(t, result))
}
