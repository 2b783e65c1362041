// Package types provides shared type definitions for the ticketvec MCP server.
//
// # Core Types
//
// Ticket is the canonical record every issue-tracker source is normalized
// into before it is embedded and stored:
//
//	ticket := &types.Ticket{
//	    TicketID: "PROJ-42",
//	    Summary:  "Login page times out",
//	    Status:   "Open",
//	}
//	text := ticket.EmbeddingText() // "Login page times out:"
//
// ScoredTicket is a search result: every scalar ticket field, the raw payload
// and the distance to the query embedding (nil when the search was a pure
// predicate filter). Smaller distances mean closer matches.
//
// # Errors and Status Codes
//
// Failures wrap one of the kind sentinels (ErrNotFound, ErrAlreadyExists,
// ErrDimensionMismatch, ...). Code maps an error chain to a stable numeric
// code and Status renders it for callers that branch on a string prefix:
//
//	types.Status(err)      // "Err010: not found: project \"P\""
//	types.Succ("created")  // "Succ: created"
package types
