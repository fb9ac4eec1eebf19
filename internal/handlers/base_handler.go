package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error to its HTTP status.
// Unclassified errors are logged and answered with an opaque message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForKind(models.KindOf(err))
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, status, "internal server error")
		return
	}

	h.RespondError(w, status, err.Error())
}

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindConflict, models.KindInvalidTransition:
		return http.StatusBadRequest
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst, answering 400 on failure
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
