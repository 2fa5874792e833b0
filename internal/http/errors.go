package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/domain"
)

const uniformLoginMessage = "invalid username or password"

// writeError translates a service error into a status code and a short
// message. Unclassified errors are logged in full and reported as 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var invalid *domain.ValidationError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Msg})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
	case errors.Is(err, domain.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
	case errors.Is(err, domain.ErrUserNotFound):
		if h.uniformLoginErrors {
			c.JSON(http.StatusUnauthorized, gin.H{"error": uniformLoginMessage})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		if h.uniformLoginErrors {
			c.JSON(http.StatusUnauthorized, gin.H{"error": uniformLoginMessage})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrNotFoundOrForbidden):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFoundOrForbidden.Error()})
	default:
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error("unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// outcome labels an auth failure for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid_request"
	case errors.Is(err, domain.ErrDuplicateUser):
		return "duplicate"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "bad_password"
	default:
		return "error"
	}
}
