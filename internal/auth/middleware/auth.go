package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier verifies a session token and returns the identity it asserts
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// AuthMiddleware requires a valid bearer token and attaches the identity to the request context
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return RoleMiddleware(verifier, nil, logger)
}

// RoleMiddleware requires a valid bearer token whose role is in the required set.
// An empty set allows any authenticated identity.
func RoleMiddleware(verifier TokenVerifier, required models.RoleSet, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token verification failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if !models.Authorize(identity, required) {
				logger.Debug("insufficient permissions",
					zap.String("user_id", identity.ID),
					zap.String("role", string(identity.Role)),
					zap.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying the identity
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the identity from context
func GetIdentity(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
