// Package tracker fetches issues from a remote issue tracker.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotConfigured is returned when tracker credentials are missing; the
// server then runs against local stores only.
var ErrNotConfigured = errors.New("issue tracker credentials not configured")

// Client queries an issue tracker with a tracker-specific filter expression
type Client interface {
	Search(ctx context.Context, jql string) ([]Issue, error)
}

// Issue is a tracker-native issue as returned by the REST API
type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`

	// Raw is the issue exactly as received; empty for issues built in code
	Raw json.RawMessage `json:"-"`
}

// IssueFields holds the issue attributes that map onto ticket columns
type IssueFields struct {
	Summary              string     `json:"summary"`
	Description          *string    `json:"description"`
	Status               *NamedItem `json:"status"`
	Priority             *NamedItem `json:"priority"`
	Assignee             *User      `json:"assignee"`
	Reporter             *User      `json:"reporter"`
	Created              string     `json:"created"`
	Updated              string     `json:"updated"`
	DueDate              *string    `json:"duedate"`
	TimeOriginalEstimate *int64     `json:"timeoriginalestimate"`
}

// NamedItem is any tracker object identified by a display name
type NamedItem struct {
	Name string `json:"name"`
}

// User is a tracker account
type User struct {
	DisplayName string `json:"displayName"`
}
