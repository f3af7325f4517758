package api

import (
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/service"
)

// ProgressHandler serves the read-only stats views.
type ProgressHandler struct {
	workspaces WorkspaceSource
	progress   *service.ProgressService
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(workspaces WorkspaceSource, progress *service.ProgressService) *ProgressHandler {
	if workspaces == nil || progress == nil {
		panic("progress handler dependencies cannot be nil")
	}
	return &ProgressHandler{workspaces: workspaces, progress: progress}
}

// Stats handles GET /api/stats.
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.progress.Overview(workspaceFor(r, h.workspaces)))
}

// Summary handles GET /api/stats/summary.
func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.progress.Summary(workspaceFor(r, h.workspaces)))
}

// Reviews handles GET /api/reviews.
func (h *ProgressHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.progress.Reviews(workspaceFor(r, h.workspaces)))
}
