package api

import (
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/service"
)

// PreferencesHandler handles /api/preferences requests. Every mutation
// answers with the full snapshot.
type PreferencesHandler struct {
	workspaces WorkspaceSource
	prefs      *service.PreferencesService
}

// NewPreferencesHandler creates a PreferencesHandler.
func NewPreferencesHandler(workspaces WorkspaceSource, prefs *service.PreferencesService) *PreferencesHandler {
	if workspaces == nil || prefs == nil {
		panic("preferences handler dependencies cannot be nil")
	}
	return &PreferencesHandler{workspaces: workspaces, prefs: prefs}
}

// SelectTheme handles PUT /api/preferences/theme.
func (h *PreferencesHandler) SelectTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.apply(w, r, func(ws *service.Workspace) (domain.UserStats, error) {
		return h.prefs.SelectTheme(ws, req.Theme)
	})
}

// SetSound handles PUT /api/preferences/sound.
func (h *PreferencesHandler) SetSound(w http.ResponseWriter, r *http.Request) {
	var req SoundRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.apply(w, r, func(ws *service.Workspace) (domain.UserStats, error) {
		return h.prefs.SetAmbientSound(ws, req.Sound)
	})
}

// SetAlarm handles PUT /api/preferences/alarm.
func (h *PreferencesHandler) SetAlarm(w http.ResponseWriter, r *http.Request) {
	var req AlarmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.apply(w, r, func(ws *service.Workspace) (domain.UserStats, error) {
		return h.prefs.SetAlarm(ws, req.Alarm)
	})
}

// ToggleSidebar handles POST /api/preferences/sidebar/toggle.
func (h *PreferencesHandler) ToggleSidebar(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.prefs.ToggleSidebar)
}

// UploadAudio handles POST /api/preferences/audio.
func (h *PreferencesHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	var req AudioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	audio, err := h.prefs.AddCustomAudio(workspaceFor(r, h.workspaces), req.Name, req.Data, req.Kind)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to store audio")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, audio)
}

// DeleteAudio handles DELETE /api/preferences/audio/{id}.
func (h *PreferencesHandler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.apply(w, r, func(ws *service.Workspace) (domain.UserStats, error) {
		return h.prefs.DeleteCustomAudio(ws, id)
	})
}

func (h *PreferencesHandler) apply(
	w http.ResponseWriter,
	r *http.Request,
	fn func(*service.Workspace) (domain.UserStats, error),
) {
	stats, err := fn(workspaceFor(r, h.workspaces))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update preferences")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
