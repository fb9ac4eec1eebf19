package handlers

import (
	"context"
	"net/http"

	"github.com/energycommunities/backend/internal/auth/middleware"
	"github.com/energycommunities/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register creates a user and returns a session token together with the public user.
	//
	// "req" parameter contains username, email, password, name and an optional role.
	//
	// If the request is invalid, or such user already exists, or some other error occurs, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	// Method Login checks the credentials and returns a session token together with the public user.
	//
	// "req" parameter contains username and password.
	//
	// If credentials are missing or invalid, or some other error occurs, the error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes.
// loginLimiter guards the login endpoint against credential guessing.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware, loginLimiter func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.With(authMiddleware).Get("/verify", h.Verify)
	})
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with username and password. Returns a bearer token and the user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Missing credentials"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Register a new user. Returns a bearer token and the created user.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register request"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request or user already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, resp)
}

// Verify handles GET /auth/verify
// @Summary Verify token
// @Description Returns the identity asserted by the bearer token.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]models.Identity
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]models.Identity{"user": identity})
}
