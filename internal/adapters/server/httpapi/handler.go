// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hylla/jdeck/internal/adapters/server/common"
)

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	reader common.Reader
	mux    *http.ServeMux
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over reader.
func NewHandler(reader common.Reader) *Handler {
	h := &Handler{reader: reader, mux: http.NewServeMux()}
	h.mux.HandleFunc("/projects", get(h.handleProjects))
	h.mux.HandleFunc("/boards", get(h.handleBoards))
	h.mux.HandleFunc("/boards/{board}", get(h.handleBoard))
	h.mux.HandleFunc("/boards/{board}/sprints", get(h.handleBoardSprints))
	h.mux.HandleFunc("/boards/{board}/sprints/{sprint}/issues", get(h.handleSprintIssues))
	h.mux.HandleFunc("/boards/{board}/backlog", get(h.handleBacklog))
	h.mux.HandleFunc("/boards/{board}/epics", get(h.handleBoardEpics))
	h.mux.HandleFunc("/sprints/{sprint}", get(h.handleSprint))
	h.mux.HandleFunc("/epics/{epic}/issues", get(h.handleEpicIssues))
	h.mux.HandleFunc("/issues/{key}", get(h.handleIssue))
	h.mux.HandleFunc("/issues/{key}/transitions", get(h.handleTransitions))
	h.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	})
	return h
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "tracker service is not configured",
		})
		return
	}
	if r.URL.Path == "" {
		r.URL.Path = "/"
	}
	h.mux.ServeHTTP(w, r)
}

// get restricts fn to GET requests.
func get(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		fn(w, r)
	}
}

// handleProjects serves GET `/projects`.
func (h *Handler) handleProjects(w http.ResponseWriter, r *http.Request) {
	respond(w, func() (any, error) {
		projects, err := h.reader.ListProjects(r.Context())
		return map[string]any{"projects": projects}, err
	})
}

// handleBoards serves GET `/boards`.
func (h *Handler) handleBoards(w http.ResponseWriter, r *http.Request) {
	respond(w, func() (any, error) {
		boards, err := h.reader.ListBoards(r.Context())
		return map[string]any{"boards": boards}, err
	})
}

// handleBoard serves GET `/boards/{board}`.
func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "board", func(ctx context.Context, boardID int) (any, error) {
		return h.reader.GetBoard(ctx, boardID)
	})
}

// handleBoardSprints serves GET `/boards/{board}/sprints`.
func (h *Handler) handleBoardSprints(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "board", func(ctx context.Context, boardID int) (any, error) {
		sprints, err := h.reader.ListBoardSprints(ctx, boardID)
		return map[string]any{"sprints": sprints}, err
	})
}

// handleSprintIssues serves GET `/boards/{board}/sprints/{sprint}/issues`.
func (h *Handler) handleSprintIssues(w http.ResponseWriter, r *http.Request) {
	boardID, err := pathID(r, "board")
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	withID(w, r, "sprint", func(ctx context.Context, sprintID int) (any, error) {
		issues, err := h.reader.ListSprintIssues(ctx, boardID, sprintID)
		return map[string]any{"issues": issues}, err
	})
}

// handleBacklog serves GET `/boards/{board}/backlog`.
func (h *Handler) handleBacklog(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "board", func(ctx context.Context, boardID int) (any, error) {
		issues, err := h.reader.ListBacklog(ctx, boardID)
		return map[string]any{"issues": issues}, err
	})
}

// handleBoardEpics serves GET `/boards/{board}/epics`.
func (h *Handler) handleBoardEpics(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "board", func(ctx context.Context, boardID int) (any, error) {
		epics, err := h.reader.ListBoardEpics(ctx, boardID)
		return map[string]any{"epics": epics}, err
	})
}

// handleSprint serves GET `/sprints/{sprint}`.
func (h *Handler) handleSprint(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "sprint", func(ctx context.Context, sprintID int) (any, error) {
		return h.reader.GetSprint(ctx, sprintID)
	})
}

// handleEpicIssues serves GET `/epics/{epic}/issues`.
func (h *Handler) handleEpicIssues(w http.ResponseWriter, r *http.Request) {
	withID(w, r, "epic", func(ctx context.Context, epicID int) (any, error) {
		issues, err := h.reader.ListEpicIssues(ctx, epicID)
		return map[string]any{"issues": issues}, err
	})
}

// handleIssue serves GET `/issues/{key}`.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	respond(w, func() (any, error) {
		return h.reader.GetIssue(r.Context(), r.PathValue("key"))
	})
}

// handleTransitions serves GET `/issues/{key}/transitions`.
func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	respond(w, func() (any, error) {
		transitions, err := h.reader.ListTransitions(r.Context(), r.PathValue("key"))
		return map[string]any{"transitions": transitions}, err
	})
}

// respond writes the result of fn as 200 JSON or as a mapped error.
func respond(w http.ResponseWriter, fn func() (any, error)) {
	payload, err := fn()
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// withID parses one numeric path value and passes it to fn.
func withID(w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, int) (any, error)) {
	id, err := pathID(r, name)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	respond(w, func() (any, error) {
		return fn(r.Context(), id)
	})
}

// pathID parses the named path value as a positive integer.
func pathID(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s id %q must be a positive integer: %w", name, raw, common.ErrInvalidRequest)
	}
	return id, nil
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrUpstream):
		writeJSONError(w, http.StatusBadGateway, APIError{
			Code:    "upstream_error",
			Message: err.Error(),
			Hint:    "Check the tracker host and credentials in config.toml.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}
