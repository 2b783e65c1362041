package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// maxReportedErrors caps the per-record errors echoed back to the client
const maxReportedErrors = 5

// handleCreateProject handles the create_project tool invocation
func (s *Server) handleCreateProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return statusResult(s.svc.CreateProject(ctx, project)), nil
}

// handleDeleteProject handles the delete_project tool invocation
func (s *Server) handleDeleteProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return statusResult(s.svc.DeleteProject(ctx, project)), nil
}

// handleIngestTickets handles the ingest_tickets tool invocation
func (s *Server) handleIngestTickets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, ok := request.GetArguments()["tickets"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("tickets must be an array of ticket objects or JSON strings"), nil
	}

	records := make([]any, len(raw))
	for i, item := range raw {
		// Objects go to the normalizer as decoded maps; strings as serialized records.
		switch v := item.(type) {
		case string, map[string]interface{}:
			records[i] = v
		default:
			records[i] = fmt.Sprint(v)
		}
	}

	result, err := s.svc.IngestRecords(ctx, project, records)
	if err != nil {
		return mcp.NewToolResultError(types.Status(err)), nil
	}

	response := map[string]interface{}{
		"project":     project,
		"succeeded":   result.Succeeded,
		"failed":      result.Failed,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if msgs := result.ErrorMessages(); len(msgs) > 0 {
		if len(msgs) > maxReportedErrors {
			response["errors"] = msgs[:maxReportedErrors]
			response["error_count"] = len(msgs)
		} else {
			response["errors"] = msgs
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchTickets handles the search_tickets tool invocation
func (s *Server) handleSearchTickets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := s.svc.Search(ctx,
		project,
		request.GetString("query", ""),
		request.GetString("predicate", ""),
		request.GetInt("top_n", s.svc.DefaultLimit()),
		request.GetString("format", "json"),
	)
	if _, failed := types.StatusCode(out); failed {
		return mcp.NewToolResultError(out), nil
	}
	return mcp.NewToolResultText(out), nil
}

// handleCountTickets handles the count_tickets tool invocation
func (s *Server) handleCountTickets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.Itoa(s.svc.Count(ctx, project))), nil
}

// handleListProjects handles the list_projects tool invocation
func (s *Server) handleListProjects(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.svc.List()
	if err != nil {
		return mcp.NewToolResultError(types.Status(err)), nil
	}
	if projects == nil {
		projects = []string{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleSyncProject handles the sync_project tool invocation
func (s *Server) handleSyncProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := request.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jql, err := request.RequireString("jql")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return statusResult(s.svc.SyncProject(ctx, project, jql)), nil
}

// handleEcho handles the echo tool invocation
func (s *Server) handleEcho(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Echo from %s: %s", ServerName, message)), nil
}

// statusResult marks "Err..." status lines as tool errors
func statusResult(status string) *mcp.CallToolResult {
	if strings.HasPrefix(status, types.ErrorPrefix) {
		return mcp.NewToolResultError(status)
	}
	return mcp.NewToolResultText(status)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
