package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mike-a-ellis/course-rag/internal/rag"
	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// fakeService scripts the RAG system surface.
type fakeService struct {
	answer        string
	sources       []tools.Source
	queryErr      error
	lastQuery     string
	lastSessionID string
	cleared       []string
	analytics     *rag.Analytics
	analyticsErr  error
}

func (f *fakeService) Query(_ context.Context, query, sessionID string) (string, []tools.Source, error) {
	f.lastQuery = query
	f.lastSessionID = sessionID
	if f.queryErr != nil {
		return "", nil, f.queryErr
	}
	return f.answer, f.sources, nil
}

func (f *fakeService) CreateSession() string { return "session_new" }

func (f *fakeService) ClearSession(id string) { f.cleared = append(f.cleared, id) }

func (f *fakeService) CourseAnalytics(context.Context) (*rag.Analytics, error) {
	return f.analytics, f.analyticsErr
}

func newTestServer(t *testing.T, service *fakeService) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	mux := http.NewServeMux()
	NewHandler(service, logger).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleQuery_NewSessionAssigned(t *testing.T) {
	service := &fakeService{
		answer:  "The answer.",
		sources: []tools.Source{{Text: "Course A - Lesson 1", Link: "https://example.com/1"}},
	}
	srv := newTestServer(t, service)

	resp := postJSON(t, srv.URL+"/api/query", `{"query":"what is X"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "The answer.", body.Answer)
	assert.Equal(t, "session_new", body.SessionID)
	require.Len(t, body.Sources, 1)
	assert.Equal(t, "Course A - Lesson 1", body.Sources[0].Text)

	assert.Equal(t, "what is X", service.lastQuery)
	assert.Equal(t, "session_new", service.lastSessionID)
}

func TestHandleQuery_ExistingSessionKept(t *testing.T) {
	service := &fakeService{answer: "ok"}
	srv := newTestServer(t, service)

	resp := postJSON(t, srv.URL+"/api/query", `{"query":"q","session_id":"session_abc"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session_abc", body.SessionID)
	assert.Equal(t, "session_abc", service.lastSessionID)
}

func TestHandleQuery_BadRequests(t *testing.T) {
	srv := newTestServer(t, &fakeService{})

	resp := postJSON(t, srv.URL+"/api/query", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/query", `{"session_id":"s"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleQuery_ServiceError(t *testing.T) {
	srv := newTestServer(t, &fakeService{queryErr: errors.New("llm unavailable")})

	resp := postJSON(t, srv.URL+"/api/query", `{"query":"q"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleQuery_NilSourcesSerializeAsEmptyArray(t *testing.T) {
	srv := newTestServer(t, &fakeService{answer: "plain"})

	resp := postJSON(t, srv.URL+"/api/query", `{"query":"q"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["sources"]))
}

func TestHandleCourses(t *testing.T) {
	service := &fakeService{analytics: &rag.Analytics{
		TotalCourses: 2,
		CourseTitles: []string{"Course A", "Course B"},
	}}
	srv := newTestServer(t, service)

	resp, err := http.Get(srv.URL + "/api/courses")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body rag.Analytics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.TotalCourses)
	assert.Equal(t, []string{"Course A", "Course B"}, body.CourseTitles)
}

func TestHandleClearSession(t *testing.T) {
	service := &fakeService{}
	srv := newTestServer(t, service)

	resp := postJSON(t, srv.URL+"/api/session/clear", `{"session_id":"session_abc"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"session_abc"}, service.cleared)

	resp = postJSON(t, srv.URL+"/api/session/clear", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
