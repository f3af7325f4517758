package api

import (
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/service"
)

// MentorHandler handles /api/mentor requests.
type MentorHandler struct {
	workspaces WorkspaceSource
	mentor     *service.MentorService
}

// NewMentorHandler creates a MentorHandler.
func NewMentorHandler(workspaces WorkspaceSource, mentor *service.MentorService) *MentorHandler {
	if workspaces == nil || mentor == nil {
		panic("mentor handler dependencies cannot be nil")
	}
	return &MentorHandler{workspaces: workspaces, mentor: mentor}
}

// Tip handles GET /api/mentor/tip.
func (h *MentorHandler) Tip(w http.ResponseWriter, r *http.Request) {
	tip, err := h.mentor.Tip(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to fetch a tip")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TipResponse{Tip: tip})
}

// History handles GET /api/mentor/chat.
func (h *MentorHandler) History(w http.ResponseWriter, r *http.Request) {
	h.respondHistory(w, r, workspaceFor(r, h.workspaces), http.StatusOK)
}

// Ask handles POST /api/mentor/chat. The question costs neurons whether or
// not the model answers.
func (h *MentorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ws := workspaceFor(r, h.workspaces)
	if _, err := h.mentor.Ask(r.Context(), ws, req.Text); err != nil {
		HandleAPIError(w, r, err, "Failed to send message")
		return
	}
	h.respondHistory(w, r, ws, http.StatusCreated)
}

// Clear handles DELETE /api/mentor/chat.
func (h *MentorHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.mentor.Clear(workspaceFor(r, h.workspaces)); err != nil {
		HandleAPIError(w, r, err, "Failed to clear chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MentorHandler) respondHistory(w http.ResponseWriter, r *http.Request, ws *service.Workspace, status int) {
	shared.RespondWithJSON(w, r, status, ChatResponse{
		Messages:     h.mentor.History(ws),
		QuickPrompts: domain.MentorQuickPrompts,
		Cost:         domain.MentorMessageCost,
	})
}
