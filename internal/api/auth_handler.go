package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/service/auth"
)

// AccountService registers, signs in and signs out users.
// *auth.Service satisfies it.
type AccountService interface {
	Register(ctx context.Context, email, password, confirm string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, claims *auth.Claims)
}

// AuthHandler handles /api/auth requests.
type AuthHandler struct {
	accounts   AccountService
	workspaces WorkspaceSource
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(accounts AccountService, workspaces WorkspaceSource, logger *slog.Logger) *AuthHandler {
	if accounts == nil || workspaces == nil {
		panic("auth handler dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		accounts:   accounts,
		workspaces: workspaces,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, toAuthResponse(sess))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toAuthResponse(sess))
}

// Logout handles POST /api/auth/logout. The token is revoked and the
// account's workspace is dropped, so the next sign-in reloads it from
// storage.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := shared.Claims(r.Context())
	if claims == nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
		return
	}

	h.accounts.Logout(r.Context(), claims)
	h.workspaces.Drop(&claims.UserID)
	logger.FromContextOrDefault(r.Context(), h.logger).Info("user signed out",
		slog.String("user_id", claims.UserID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func toAuthResponse(sess *auth.Session) AuthResponse {
	return AuthResponse{UserID: sess.User.ID, Email: sess.User.Email, Token: sess.Token}
}
