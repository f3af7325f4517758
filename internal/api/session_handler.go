package api

import (
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/service"
)

// SessionHandler drives the identity's focus session machine.
type SessionHandler struct {
	workspaces WorkspaceSource
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(workspaces WorkspaceSource) *SessionHandler {
	if workspaces == nil {
		panic("workspace source cannot be nil")
	}
	return &SessionHandler{workspaces: workspaces}
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, workspaceFor(r, h.workspaces), http.StatusOK)
}

// Start handles POST /api/session/start.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ws := workspaceFor(r, h.workspaces)
	if err := ws.Machine().Start(req.Task, req.Minutes); err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}
	h.respond(w, r, ws, http.StatusOK)
}

// Cancel handles POST /api/session/cancel.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r, h.workspaces)
	if err := ws.Machine().Cancel(); err != nil {
		HandleAPIError(w, r, err, "Failed to cancel session")
		return
	}
	h.respond(w, r, ws, http.StatusOK)
}

// RateMastery handles POST /api/session/mastery.
func (h *SessionHandler) RateMastery(w http.ResponseWriter, r *http.Request) {
	var req MasteryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	review, err := workspaceFor(r, h.workspaces).Machine().RateMastery(*req.Level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record mastery")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, review)
}

// SetDuration handles PUT /api/session/duration.
func (h *SessionHandler) SetDuration(w http.ResponseWriter, r *http.Request) {
	var req DurationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ws := workspaceFor(r, h.workspaces)
	if err := ws.Machine().SetDuration(req.Minutes); err != nil {
		HandleAPIError(w, r, err, "Failed to change duration")
		return
	}
	h.respond(w, r, ws, http.StatusOK)
}

func (h *SessionHandler) respond(w http.ResponseWriter, r *http.Request, ws *service.Workspace, status int) {
	shared.RespondWithJSON(w, r, status, SessionResponse{
		Status: ws.Machine().Status(),
		Cues:   ws.Cues(),
	})
}
