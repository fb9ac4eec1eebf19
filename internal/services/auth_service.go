package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
)

// CredentialStore is the interface that wraps user account operations used by the auth service
type CredentialStore interface {
	Create(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// TokenIssuer issues session tokens
type TokenIssuer interface {
	Issue(identity models.Identity) (string, error)
}

// authService implements registration and login
type authService struct {
	store  CredentialStore
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store CredentialStore, tokens TokenIssuer, logger *zap.Logger) *authService {
	return &authService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new account with the requested role (community-member by default)
// and returns a session token for it
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return nil, models.NewValidationError("username, email, password and name are required")
	}

	user, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.respond(user)
}

// Login authenticates a user by username and password and returns a session token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, models.NewValidationError("username and password are required")
	}

	user, err := s.store.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("user logged in", zap.String("user_id", user.ID))
	return s.respond(user)
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthResponse{
		Token: token,
		User:  user.ToResponse(),
	}, nil
}
