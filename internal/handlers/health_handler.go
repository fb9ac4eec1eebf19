package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// HealthHandler reports service health
type HealthHandler struct {
	BaseHandler
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler running the given named checks
func NewHealthHandler(checks map[string]HealthCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		checks:      checks,
	}
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string "A dependency is unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.Logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			h.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  name + " unreachable",
			})
			return
		}
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
