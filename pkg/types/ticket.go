package types

import "strings"

// EmbeddingSeparator joins summary and description into the embedded text.
const EmbeddingSeparator = ":"

// Ticket is the canonical, normalized form of an issue-tracker record
type Ticket struct {
	// Identification
	TicketID string
	Summary  string

	// Content
	Description string

	// Metadata
	Status          string
	Priority        string
	Assignee        string
	Reporter        string
	Created         string // Verbatim tracker timestamp
	Updated         string // Verbatim tracker timestamp
	DueDate         string
	EstimateSeconds int64

	// RawPayload is the full source record, preserved verbatim for display
	RawPayload string

	// Embedding is computed from EmbeddingText and sized to the store dimension
	Embedding []float32
}

// Validate checks the required fields of a ticket
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.TicketID) == "" {
		return Errorf(ErrMissingField, "ticket_id is required")
	}
	if strings.TrimSpace(t.Summary) == "" {
		return Errorf(ErrMissingField, "summary is required for ticket %s", t.TicketID)
	}
	return nil
}

// EmbeddingText returns the text the embedding is computed from
func (t *Ticket) EmbeddingText() string {
	return t.Summary + EmbeddingSeparator + t.Description
}

// ScoredTicket is a ticket returned by a search together with its distance.
// Field order matches the serialized shape.
type ScoredTicket struct {
	TicketID        string   `json:"ticket_id"`
	Summary         string   `json:"summary"`
	Description     string   `json:"description"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	Assignee        string   `json:"assignee"`
	Reporter        string   `json:"reporter"`
	Created         string   `json:"created"`
	Updated         string   `json:"updated"`
	DueDate         string   `json:"due_date"`
	EstimateSeconds int64    `json:"estimate_seconds"`
	RawPayload      string   `json:"raw_payload"`
	Distance        *float64 `json:"distance"` // nil when similarity ranking was not requested
}

// Ranked reports whether the result carries a similarity distance
func (s *ScoredTicket) Ranked() bool {
	return s.Distance != nil
}
