// Package normalizer maps heterogeneous ticket sources onto types.Ticket.
//
// Sources come in three shapes: serialized JSON (canonical ticket fields or a
// serialized tracker issue with "key" and "fields"), tracker.Issue values,
// and already-decoded maps. Every shape yields the same canonical ticket.
// Field values are copied verbatim; timestamps are never reformatted.
package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/dshills/ticketvec-mcp/internal/tracker"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

// Normalize converts a source record into a canonical ticket without an
// embedding. It fails with types.ErrParse on malformed input and
// types.ErrMissingField when ticket_id or summary is blank.
func Normalize(src any) (*types.Ticket, error) {
	var (
		ticket *types.Ticket
		err    error
	)
	switch v := src.(type) {
	case string:
		ticket, err = fromJSON([]byte(v))
	case []byte:
		ticket, err = fromJSON(v)
	case json.RawMessage:
		ticket, err = fromJSON(v)
	case tracker.Issue:
		ticket, err = fromIssue(&v)
	case *tracker.Issue:
		if v == nil {
			return nil, types.Errorf(types.ErrParse, "nil issue")
		}
		ticket, err = fromIssue(v)
	case map[string]any:
		raw, merr := json.Marshal(v)
		if merr != nil {
			return nil, types.Errorf(types.ErrParse, "cannot serialize record: %v", merr)
		}
		ticket, err = fromJSON(raw)
	case nil:
		return nil, types.Errorf(types.ErrParse, "empty source")
	default:
		return nil, types.Errorf(types.ErrParse, "unsupported source type %T", src)
	}
	if err != nil {
		return nil, err
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	return ticket, nil
}

func fromJSON(data []byte) (*types.Ticket, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, types.Errorf(types.ErrParse, "record is not a JSON object: %v", err)
	}
	if dec.More() {
		return nil, types.Errorf(types.ErrParse, "trailing data after record")
	}
	if record == nil {
		return nil, types.Errorf(types.ErrParse, "record is null")
	}

	if isTrackerIssue(record) {
		var issue tracker.Issue
		if err := json.Unmarshal(data, &issue); err != nil {
			return nil, types.Errorf(types.ErrParse, "malformed tracker issue: %v", err)
		}
		issue.Raw = data
		return fromIssue(&issue)
	}
	return fromCanonical(record, string(data))
}

func isTrackerIssue(record map[string]any) bool {
	_, hasKey := record["key"]
	fields, hasFields := record["fields"]
	if !hasKey || !hasFields {
		return false
	}
	_, isObject := fields.(map[string]any)
	return isObject
}

// canonicalFields are the string columns read from a canonical record
var canonicalFields = []string{
	"ticket_id", "summary", "description", "status", "priority",
	"assignee", "reporter", "created", "updated", "due_date",
}

func fromCanonical(record map[string]any, raw string) (*types.Ticket, error) {
	values := make(map[string]string, len(canonicalFields))
	for _, name := range canonicalFields {
		s, err := stringField(record, name)
		if err != nil {
			return nil, err
		}
		values[name] = s
	}
	estimate, err := intField(record, "estimate_seconds")
	if err != nil {
		return nil, err
	}

	// A record may carry its own original payload; keep it when present
	if payload, ok := record["raw_payload"].(string); ok && payload != "" {
		raw = payload
	}

	return &types.Ticket{
		TicketID:        values["ticket_id"],
		Summary:         values["summary"],
		Description:     values["description"],
		Status:          values["status"],
		Priority:        values["priority"],
		Assignee:        values["assignee"],
		Reporter:        values["reporter"],
		Created:         values["created"],
		Updated:         values["updated"],
		DueDate:         values["due_date"],
		EstimateSeconds: estimate,
		RawPayload:      raw,
	}, nil
}

func fromIssue(issue *tracker.Issue) (*types.Ticket, error) {
	raw := string(issue.Raw)
	if len(issue.Raw) == 0 {
		data, err := json.Marshal(issue)
		if err != nil {
			return nil, types.Errorf(types.ErrParse, "cannot serialize issue %s: %v", issue.Key, err)
		}
		raw = string(data)
	}

	f := issue.Fields
	ticket := &types.Ticket{
		TicketID:    issue.Key,
		Summary:     f.Summary,
		Description: deref(f.Description),
		Created:     f.Created,
		Updated:     f.Updated,
		DueDate:     deref(f.DueDate),
		RawPayload:  raw,
	}
	if f.Status != nil {
		ticket.Status = f.Status.Name
	}
	if f.Priority != nil {
		ticket.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		ticket.Assignee = f.Assignee.DisplayName
	}
	if f.Reporter != nil {
		ticket.Reporter = f.Reporter.DisplayName
	}
	if f.TimeOriginalEstimate != nil {
		ticket.EstimateSeconds = *f.TimeOriginalEstimate
	}
	return ticket, nil
}

func stringField(record map[string]any, name string) (string, error) {
	v, ok := record[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", types.Errorf(types.ErrParse, "field %s must be a string, got %s", name, jsonKind(v))
	}
	return s, nil
}

func intField(record map[string]any, name string) (int64, error) {
	v, ok := record[name]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			return int64(f), nil
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, nil
		}
	}
	return 0, types.Errorf(types.ErrParse, "field %s must be an integer, got %v", name, v)
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
