package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/ticketvec-mcp/internal/retry"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

const (
	searchPath       = "/rest/api/2/search"
	defaultPageSize  = 50
	defaultMaxIssues = 1000
	requestTimeout   = 30 * time.Second
)

// searchFields limits the payload to what normalization reads
var searchFields = []string{
	"summary", "description", "status", "priority", "assignee", "reporter",
	"created", "updated", "duedate", "timeoriginalestimate",
}

// JiraConfig holds connection settings for a Jira server
type JiraConfig struct {
	Server    string
	User      string
	APIToken  string
	PageSize  int
	MaxIssues int
}

// JiraClient searches a Jira server through its REST API
type JiraClient struct {
	cfg        JiraConfig
	httpClient *http.Client
	retry      retry.Config
	logger     *slog.Logger
}

var _ Client = (*JiraClient)(nil)

// NewJiraClient creates a client. It returns ErrNotConfigured when any of
// server, user or token is missing.
func NewJiraClient(cfg JiraConfig, logger *slog.Logger) (*JiraClient, error) {
	if cfg.Server == "" || cfg.User == "" || cfg.APIToken == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.ParseRequestURI(cfg.Server); err != nil {
		return nil, types.Errorf(types.ErrTrackerConnect, "invalid server URL %q: %v", cfg.Server, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxIssues <= 0 {
		cfg.MaxIssues = defaultMaxIssues
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Server = strings.TrimRight(cfg.Server, "/")

	return &JiraClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		retry:      retry.DefaultConfig(),
		logger:     logger,
	}, nil
}

type searchPage struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Issues     []json.RawMessage `json:"issues"`
}

// Search runs a JQL query and returns every matching issue, following
// pagination up to the configured maximum.
func (c *JiraClient) Search(ctx context.Context, jql string) ([]Issue, error) {
	var issues []Issue
	startAt := 0
	for {
		page, err := retry.Do(ctx, c.retry, func() (*searchPage, error) {
			return c.fetchPage(ctx, jql, startAt)
		})
		if err != nil {
			kind := types.ErrTracker
			if errors.Is(err, types.ErrTrackerConnect) {
				kind = types.ErrTrackerConnect
			}
			return nil, types.Errorf(kind, "jql %q: %v", jql, err)
		}

		for _, raw := range page.Issues {
			var issue Issue
			if err := json.Unmarshal(raw, &issue); err != nil {
				return nil, types.Errorf(types.ErrTracker, "decode issue: %v", err)
			}
			issue.Raw = raw
			issues = append(issues, issue)
		}

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total || len(issues) >= c.cfg.MaxIssues {
			break
		}
	}

	if len(issues) > c.cfg.MaxIssues {
		issues = issues[:c.cfg.MaxIssues]
	}
	c.logger.Debug("jira search complete", "jql", jql, "issues", len(issues))
	return issues, nil
}

func (c *JiraClient) fetchPage(ctx context.Context, jql string, startAt int) (*searchPage, error) {
	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(c.cfg.PageSize))
	params.Set("fields", strings.Join(searchFields, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Server+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.SetBasicAuth(c.cfg.User, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrTrackerConnect, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, retry.Permanent(fmt.Errorf("%w: %w", types.ErrTrackerConnect, err))
		}
		// Client errors (bad JQL, bad credentials) will not improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return &page, nil
}
