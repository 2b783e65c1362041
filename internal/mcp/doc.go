// Package mcp exposes the ticket store as Model Context Protocol tools.
//
// The server speaks MCP over stdio and registers these tools:
//
//   - create_project: create an empty project store
//   - delete_project: remove a project store
//   - ingest_tickets: embed and store ticket records
//   - search_tickets: hybrid similarity + predicate search
//   - count_tickets: number of stored tickets
//   - list_projects: every project with a store
//   - sync_project: pull issues from the tracker with JQL and ingest them
//   - echo: connectivity check
//
// Failures are returned as tool errors whose text is a status line of the
// form "Err<code>: message", with the numeric codes defined in pkg/types.
// Every call is tagged with a request_id in the logs.
//
// # Example
//
//	{
//	  "name": "search_tickets",
//	  "arguments": {
//	    "project": "web",
//	    "query": "login page broken",
//	    "predicate": "status != 'Done'",
//	    "top_n": 5,
//	    "format": "readable"
//	  }
//	}
package mcp
