package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/service"
)

// SubjectResponse is a subject with its lesson progress.
type SubjectResponse struct {
	domain.Subject
	Progress int `json:"progress"`
}

// SubjectListResponse is returned by GET /api/planner/subjects.
type SubjectListResponse struct {
	Subjects        []SubjectResponse `json:"subjects"`
	OverallProgress int               `json:"overall_progress"`
}

// PlannerHandler handles /api/planner requests.
type PlannerHandler struct {
	workspaces WorkspaceSource
	planner    *service.PlannerService
	logger     *slog.Logger
}

// NewPlannerHandler creates a PlannerHandler.
func NewPlannerHandler(workspaces WorkspaceSource, planner *service.PlannerService, logger *slog.Logger) *PlannerHandler {
	if workspaces == nil || planner == nil {
		panic("planner handler dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlannerHandler{
		workspaces: workspaces,
		planner:    planner,
		logger:     logger.With(slog.String("component", "planner_handler")),
	}
}

// ListSubjects handles GET /api/planner/subjects?q=.
func (h *PlannerHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r, h.workspaces)
	subjects := h.planner.Subjects(ws, r.URL.Query().Get("q"))

	resp := SubjectListResponse{
		Subjects:        make([]SubjectResponse, 0, len(subjects)),
		OverallProgress: domain.OverallProgress(ws.Stats()),
	}
	for _, s := range subjects {
		resp.Subjects = append(resp.Subjects, toSubjectResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateSubject handles POST /api/planner/subjects.
func (h *PlannerHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	subj, err := h.planner.AddSubject(workspaceFor(r, h.workspaces), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toSubjectResponse(subj))
}

// DeleteSubject handles DELETE /api/planner/subjects/{id}.
func (h *PlannerHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return
	}
	if err := h.planner.DeleteSubject(workspaceFor(r, h.workspaces), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete subject")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateLesson handles POST /api/planner/subjects/{id}/lessons.
func (h *PlannerHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return
	}
	var req NameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	lesson, err := h.planner.AddLesson(workspaceFor(r, h.workspaces), id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create lesson")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, lesson)
}

// ToggleLesson handles POST .../lessons/{lessonID}/toggle.
func (h *PlannerHandler) ToggleLesson(w http.ResponseWriter, r *http.Request) {
	id, lessonID, ok := h.params(w, r, "lessonID")
	if !ok {
		return
	}
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.ToggleLesson(ws, id, lessonID)
	})
}

// SetLessonLink handles PUT .../lessons/{lessonID}/link.
func (h *PlannerHandler) SetLessonLink(w http.ResponseWriter, r *http.Request) {
	id, lessonID, ok := h.params(w, r, "lessonID")
	if !ok {
		return
	}
	var req LinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.SetLessonLink(ws, id, lessonID, req.Link)
	})
}

// DeleteLesson handles DELETE .../lessons/{lessonID}.
func (h *PlannerHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, lessonID, ok := h.params(w, r, "lessonID")
	if !ok {
		return
	}
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.DeleteLesson(ws, id, lessonID)
	})
}

// CreateExercise handles POST /api/planner/subjects/{id}/exercises.
func (h *PlannerHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return
	}
	var req NameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ex, err := h.planner.AddExercise(workspaceFor(r, h.workspaces), id, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create exercise")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, ex)
}

// ToggleExercise handles POST .../exercises/{exerciseID}/toggle.
func (h *PlannerHandler) ToggleExercise(w http.ResponseWriter, r *http.Request) {
	id, exerciseID, ok := h.params(w, r, "exerciseID")
	if !ok {
		return
	}
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.ToggleExercise(ws, id, exerciseID)
	})
}

// CreateFlashcard handles POST /api/planner/subjects/{id}/flashcards.
func (h *PlannerHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return
	}
	var req FlashcardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	card, err := h.planner.AddFlashcard(workspaceFor(r, h.workspaces), id, req.Question, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create flashcard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// DeleteFlashcard handles DELETE .../flashcards/{cardID}.
func (h *PlannerHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	id, cardID, ok := h.params(w, r, "cardID")
	if !ok {
		return
	}
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.DeleteFlashcard(ws, id, cardID)
	})
}

// GenerateStrategy handles POST /api/planner/subjects/{id}/strategy.
func (h *PlannerHandler) GenerateStrategy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("generating strategy", slog.String("subject_id", id))
	h.respondSubject(w, r, func(ws *service.Workspace) (domain.Subject, error) {
		return h.planner.GenerateStrategy(r.Context(), ws, id)
	})
}

func (h *PlannerHandler) respondSubject(
	w http.ResponseWriter,
	r *http.Request,
	fn func(*service.Workspace) (domain.Subject, error),
) {
	subj, err := fn(workspaceFor(r, h.workspaces))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toSubjectResponse(subj))
}

func (h *PlannerHandler) param(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, err := pathParam(r, name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return "", false
	}
	return v, true
}

// params returns the subject id and one nested id.
func (h *PlannerHandler) params(w http.ResponseWriter, r *http.Request, child string) (string, string, bool) {
	id, ok := h.param(w, r, "id")
	if !ok {
		return "", "", false
	}
	childID, ok := h.param(w, r, child)
	return id, childID, ok
}

func toSubjectResponse(s domain.Subject) SubjectResponse {
	return SubjectResponse{Subject: s, Progress: s.Progress()}
}
