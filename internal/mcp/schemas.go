package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var projectProperty = map[string]interface{}{
	"type":        "string",
	"description": "Project name (1-64 bytes); each project is an isolated ticket store",
}

// createProjectTool returns the tool definition for create_project
func createProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_project",
		Description: "Create an empty ticket store for a project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
			},
			Required: []string{"project"},
		},
	}
}

// deleteProjectTool returns the tool definition for delete_project
func deleteProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project's ticket store and everything in it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
			},
			Required: []string{"project"},
		},
	}
}

// ingestTicketsTool returns the tool definition for ingest_tickets
func ingestTicketsTool() mcp.Tool {
	return mcp.Tool{
		Name: "ingest_tickets",
		Description: "Embed and store tickets. Each ticket is a canonical record " +
			"(ticket_id, summary, description, status, priority, assignee, reporter, created, updated) " +
			"or a tracker issue (key + fields), given as an object or a JSON string",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
				"tickets": map[string]interface{}{
					"type":        "array",
					"description": "Tickets to ingest; malformed ones are skipped and reported",
					"items": map[string]interface{}{
						"type": []string{"object", "string"},
					},
					"minItems": 1,
				},
			},
			Required: []string{"project", "tickets"},
		},
	}
}

// searchTicketsTool returns the tool definition for search_tickets
func searchTicketsTool(defaultLimit int) mcp.Tool {
	return mcp.Tool{
		Name:        "search_tickets",
		Description: "Search a project's tickets by semantic similarity, a structured predicate, or both",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Free text ranked by embedding distance (smaller is closer)",
				},
				"predicate": map[string]interface{}{
					"type": "string",
					"description": "Filter over ticket columns, e.g. \"status = 'Open' AND priority IN ('High', 'Critical')\". " +
						"Supports = != < <= > >= LIKE, NOT LIKE, IN, NOT IN, AND, OR, NOT and parentheses",
				},
				"top_n": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results",
					"default":     defaultLimit,
					"minimum":     1,
				},
				"format": map[string]interface{}{
					"type":        "string",
					"description": "json (array of ticket objects) or readable (one \"id: summary\" line per ticket)",
					"enum":        []string{"json", "readable"},
					"default":     "json",
				},
			},
			Required: []string{"project"},
		},
	}
}

// countTicketsTool returns the tool definition for count_tickets
func countTicketsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "count_tickets",
		Description: "Count the tickets stored for a project (0 when the project does not exist)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
			},
			Required: []string{"project"},
		},
	}
}

// listProjectsTool returns the tool definition for list_projects
func listProjectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_projects",
		Description: "List all projects that have a ticket store",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// syncProjectTool returns the tool definition for sync_project
func syncProjectTool() mcp.Tool {
	return mcp.Tool{
		Name:        "sync_project",
		Description: "Fetch issues from the configured issue tracker with a JQL query and ingest them into a project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"project": projectProperty,
				"jql": map[string]interface{}{
					"type":        "string",
					"description": "Tracker query, e.g. \"project = ABC AND updated >= -7d\"",
				},
			},
			Required: []string{"project", "jql"},
		},
	}
}

// echoTool returns the tool definition for echo
func echoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "echo",
		Description: "Return the message prefixed with the server name; use it to check connectivity",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Text to echo back",
				},
			},
			Required: []string{"message"},
		},
	}
}
