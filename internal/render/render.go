// Package render serializes search results as a JSON array or as readable
// "ticket_id: summary" lines.
package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Format selects the output shape of a search
type Format string

const (
	FormatJSON     Format = "json"
	FormatReadable Format = "readable"
)

// ParseFormat accepts "json" or "readable". Anything else, including an
// empty string, is ErrInvalidFormat.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatReadable:
		return FormatReadable, nil
	default:
		return "", types.Errorf(types.ErrInvalidFormat, "unknown format %q (want json or readable)", s)
	}
}

// JSON encodes results as an array of objects in column order. No results
// encode as "[]".
func JSON(results []types.ScoredTicket) ([]byte, error) {
	if results == nil {
		results = []types.ScoredTicket{}
	}
	data, err := json.Marshal(results)
	if err != nil {
		return nil, types.Errorf(types.ErrFormat, "encode results: %v", err)
	}
	return data, nil
}

// Readable renders one "ticket_id: summary" line per result.
func Readable(results []types.ScoredTicket) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(r.TicketID)
		sb.WriteString(": ")
		sb.WriteString(r.Summary)
	}
	return sb.String()
}

// ReadableFromJSON converts a JSON result array produced by JSON into the
// readable form. Anything other than an array of objects is ErrFormat.
func ReadableFromJSON(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return "", types.Errorf(types.ErrFormat, "expected a JSON array of results")
	}
	var results []types.ScoredTicket
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return "", types.Errorf(types.ErrFormat, "decode results: %v", err)
	}
	return Readable(results), nil
}

// Results renders results in the requested format.
func Results(results []types.ScoredTicket, format Format) (string, error) {
	if format == FormatReadable {
		return Readable(results), nil
	}
	data, err := JSON(results)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
