package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-tracker/internal/service"
)

// respondError maps a service error onto a status code. Unexpected
// errors are logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCategory):
		s.logger.Debug("category rejected", "error", err, "request_id", c.GetString(contextReqIDKey))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrLastCategory),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidResetToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	default:
		s.logger.Error("request failed", "error", err, "path", c.FullPath(), "request_id", c.GetString(contextReqIDKey))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}
