// Package service exposes the ticket store operations to callers.
//
// Every operation has a typed form returning an error that carries one of
// the kinds in pkg/types, and a status form returning text that starts with
// "Succ:" or "Err<code>:". The MCP tools and the CLI share one Service.
package service
