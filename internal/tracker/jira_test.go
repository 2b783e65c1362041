package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/ticketvec-mcp/internal/retry"
	"github.com/dshills/ticketvec-mcp/pkg/types"
)

func issueJSON(key, summary, status string) string {
	return fmt.Sprintf(`{"key":%q,"fields":{"summary":%q,"status":{"name":%q},"assignee":null,"timeoriginalestimate":7200}}`,
		key, summary, status)
}

func newTestClient(t *testing.T, srv *httptest.Server, pageSize int) *JiraClient {
	t.Helper()
	c, err := NewJiraClient(JiraConfig{Server: srv.URL + "/", User: "u", APIToken: "tok", PageSize: pageSize}, nil)
	require.NoError(t, err)
	c.retry = retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return c
}

func TestNewJiraClient_NotConfigured(t *testing.T) {
	_, err := NewJiraClient(JiraConfig{Server: "https://example.atlassian.net"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestJiraClient_SearchPaginates(t *testing.T) {
	all := []string{
		issueJSON("PROJ-1", "first", "Open"),
		issueJSON("PROJ-2", "second", "Done"),
		issueJSON("PROJ-3", "third", "In Progress"),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "tok", pass)
		assert.Equal(t, "project = PROJ", r.URL.Query().Get("jql"))

		start, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		max, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))
		end := start + max
		if end > len(all) {
			end = len(all)
		}
		page := fmt.Sprintf(`{"startAt":%d,"maxResults":%d,"total":%d,"issues":[`, start, max, len(all))
		for i := start; i < end; i++ {
			if i > start {
				page += ","
			}
			page += all[i]
		}
		page += "]}"
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	issues, err := newTestClient(t, srv, 2).Search(context.Background(), "project = PROJ")
	require.NoError(t, err)
	require.Len(t, issues, 3)

	assert.Equal(t, "PROJ-1", issues[0].Key)
	assert.Equal(t, "first", issues[0].Fields.Summary)
	require.NotNil(t, issues[0].Fields.Status)
	assert.Equal(t, "Open", issues[0].Fields.Status.Name)
	assert.Nil(t, issues[0].Fields.Assignee)
	require.NotNil(t, issues[0].Fields.TimeOriginalEstimate)
	assert.Equal(t, int64(7200), *issues[0].Fields.TimeOriginalEstimate)
	assert.JSONEq(t, all[0], string(issues[0].Raw))
	assert.Equal(t, "PROJ-3", issues[2].Key)
}

func TestJiraClient_SearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"startAt": 0, "maxResults": 50, "total": 0, "issues": []any{}})
	}))
	defer srv.Close()

	issues, err := newTestClient(t, srv, 0).Search(context.Background(), "project = NONE")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestJiraClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":50,"total":1,"issues":[` + issueJSON("A-1", "s", "Open") + `]}`))
	}))
	defer srv.Close()

	issues, err := newTestClient(t, srv, 0).Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestJiraClient_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"errorMessages":["bad jql"]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 0).Search(context.Background(), "bad ((")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTracker)
	assert.Contains(t, err.Error(), "bad jql")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestJiraClient_AuthFailureIsConnectError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, 0).Search(context.Background(), "project = A")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTrackerConnect)
	assert.Equal(t, 108, types.Code(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestJiraClient_UnreachableIsConnectError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, srv, 0).Search(context.Background(), "project = A")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTrackerConnect)
}
