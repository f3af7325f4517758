package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/focus-api/internal/api/shared"
	"github.com/phrazzld/focus-api/internal/service/auth"
)

// TokenValidator checks a bearer token. *auth.Service satisfies it.
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware resolves the request identity from the Authorization header.
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	if tokens == nil {
		panic("token validator cannot be nil")
	}
	return &AuthMiddleware{tokens: tokens}
}

// Identify lets requests without an Authorization header through as the
// anonymous local identity. A header that is present must carry a valid
// bearer token; otherwise the request is rejected with 401.
func (m *AuthMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := m.validate(w, r, header)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.WithClaims(r.Context(), claims)))
	})
}

// Require rejects requests that Identify left anonymous.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.Claims(r.Context()) == nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) validate(w http.ResponseWriter, r *http.Request, header string) (*auth.Claims, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
		return nil, false
	}

	claims, err := m.tokens.Authenticate(r.Context(), token)
	switch {
	case err == nil:
		return claims, true
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrRevokedToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token revoked")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
	}
	return nil, false
}
