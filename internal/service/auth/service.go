package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/platform/logger"
	"github.com/phrazzld/focus-api/internal/store"
)

// Session is the result of a successful register or login.
type Session struct {
	User  *domain.User
	Token string
}

// Service registers accounts and signs users in.
type Service struct {
	users  store.UserStore
	hasher PasswordHasher
	tokens JWTService
	logger *slog.Logger
}

// NewService creates the account service.
func NewService(users store.UserStore, hasher PasswordHasher, tokens JWTService, logger *slog.Logger) *Service {
	if users == nil || hasher == nil || tokens == nil {
		panic("auth service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Register creates an account and returns a signed-in session.
func (s *Service) Register(ctx context.Context, email, password, confirm string) (*Session, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, err
	}

	user.HashedPassword, err = s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))

	return s.issue(ctx, user)
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

// Logout revokes the caller's token.
func (s *Service) Logout(ctx context.Context, claims *Claims) {
	s.tokens.Revoke(ctx, claims)
}

// Authenticate validates a bearer token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.tokens.ValidateToken(ctx, token)
}

func (s *Service) issue(ctx context.Context, user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}
