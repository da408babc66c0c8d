// Package api serves the JSON HTTP endpoints for querying course materials.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mike-a-ellis/course-rag/internal/rag"
	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// QueryService is the slice of the RAG system the HTTP layer depends on.
type QueryService interface {
	Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error)
	CreateSession() string
	ClearSession(id string)
	CourseAnalytics(ctx context.Context) (*rag.Analytics, error)
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// QueryResponse is the reply to POST /api/query.
type QueryResponse struct {
	Answer    string         `json:"answer"`
	Sources   []tools.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

// ClearSessionRequest is the body of POST /api/session/clear.
type ClearSessionRequest struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler holds the endpoint dependencies.
type Handler struct {
	service QueryService
	logger  *slog.Logger
}

// NewHandler creates the API handler set.
func NewHandler(service QueryService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.handleQuery)
	mux.HandleFunc("GET /api/courses", h.handleCourses)
	mux.HandleFunc("POST /api/session/clear", h.handleClearSession)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleQuery answers one question. A request without a session ID gets a new
// session, returned in the response so the client can continue the
// conversation.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.service.CreateSession()
	}

	answer, sources, err := h.service.Query(r.Context(), req.Query, sessionID)
	if err != nil {
		h.logger.Error("query failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if sources == nil {
		sources = []tools.Source{}
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// handleCourses reports catalog analytics.
func (h *Handler) handleCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.service.CourseAnalytics(r.Context())
	if err != nil {
		h.logger.Error("course analytics failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}
	writeJSON(w, http.StatusOK, analytics)
}

// handleClearSession drops a session's conversation history.
func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	var req ClearSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
		return
	}

	h.service.ClearSession(req.SessionID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
