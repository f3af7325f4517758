package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/service"
)

// WorkspaceSource resolves an identity to its workspace.
// *service.WorkspaceRegistry satisfies it.
type WorkspaceSource interface {
	Get(ctx context.Context, identity *uuid.UUID) *service.Workspace
	Drop(identity *uuid.UUID)
}

func workspaceFor(r *http.Request, src WorkspaceSource) *service.Workspace {
	return src.Get(r.Context(), shared.Identity(r.Context()))
}

// decodeAndValidate reads the body into req and validates it, writing a 400
// and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		msg := "Invalid request format"
		if errors.Is(err, shared.ErrEmptyBody) {
			msg = GetSafeErrorMessage(err)
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msg, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// pathParam returns a required, non-blank path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return v, nil
}
