package api

import (
	"context"
	"net/http"

	"github.com/okian/challengeboard/internal/pipeline"
)

// SessionDependencies defines the session read and reset operations.
type SessionDependencies interface {
	Snapshot(ctx context.Context) (pipeline.View, error)
	Session(ctx context.Context) (pipeline.Info, error)
	Reset(ctx context.Context) (pipeline.Info, error)
}

// SessionHandler handles session-wide requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleGetEntries handles GET /entries: the whole store in submission order.
func (h *SessionHandler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_entries"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Entries)
}

// HandleGetSession handles GET /session.
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	info, err := h.deps.Session(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandlePostReset handles POST /session/reset.
func (h *SessionHandler) HandlePostReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session_reset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	info, err := h.deps.Reset(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
