package handlers

import (
	"errors"
	"net/http"

	"collab_notes/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFromError maps the service error taxonomy to HTTP status codes.
// Anything outside the taxonomy is an internal failure.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// jsonError recovers a service failure into a structured error response.
// Internal failures keep a generic message; taxonomy errors pass through.
func (h *Handler) jsonError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code := statusFromError(err)
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Infow(logKey, fields...)
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(code, gin.H{"error": msg})
}
