package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/ticketvec-mcp/internal/logging"
	"github.com/dshills/ticketvec-mcp/internal/metrics"
	"github.com/dshills/ticketvec-mcp/internal/service"
)

// ServerName is the MCP server name
const ServerName = "ticketvec-mcp"

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp    *server.MCPServer
	svc    *service.Service
	logger *slog.Logger
}

// NewServer creates an MCP server exposing svc as tools.
func NewServer(svc *service.Service, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:    mcpServer,
		svc:    svc,
		logger: logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdio until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	s.logger.Info("MCP server listening on stdio", "name", ServerName)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(createProjectTool(), s.instrument("create_project", s.handleCreateProject))
	s.mcp.AddTool(deleteProjectTool(), s.instrument("delete_project", s.handleDeleteProject))
	s.mcp.AddTool(ingestTicketsTool(), s.instrument("ingest_tickets", s.handleIngestTickets))
	s.mcp.AddTool(searchTicketsTool(s.svc.DefaultLimit()), s.instrument("search_tickets", s.handleSearchTickets))
	s.mcp.AddTool(countTicketsTool(), s.instrument("count_tickets", s.handleCountTickets))
	s.mcp.AddTool(listProjectsTool(), s.instrument("list_projects", s.handleListProjects))
	s.mcp.AddTool(syncProjectTool(), s.instrument("sync_project", s.handleSyncProject))
	s.mcp.AddTool(echoTool(), s.instrument("echo", s.handleEcho))
}

// instrument tags each call with a request id and records its outcome.
func (s *Server) instrument(tool string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logging.WithRequestID(ctx, logging.NewRequestID())
		logger := logging.FromContext(ctx, s.logger).With("tool", tool)
		logger.Debug("tool called")

		result, err := next(ctx, request)

		status := metrics.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = metrics.StatusError
		}
		metrics.ToolCallsTotal.WithLabelValues(tool, status).Inc()
		if status == metrics.StatusError {
			logger.Warn("tool failed", "error", err)
		}
		return result, err
	}
}
