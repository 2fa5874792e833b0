package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
)

// RequireAuth rejects requests without a valid bearer token and attaches the
// verified claim to the request context. It does nothing else.
func RequireAuth(tokens TokenVerifier, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			authAttempts.WithLabelValues("guard", "missing_token").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token not provided"})
			return
		}

		claim, err := tokens.Verify(raw)
		if err != nil {
			authAttempts.WithLabelValues("guard", "invalid_token").Inc()
			logger.WithField("path", c.Request.URL.Path).Debugf("rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaim(c.Request.Context(), claim))
		c.Next()
	}
}

// callerID returns the authenticated user id, aborting with 401 when the
// guard did not run.
func callerID(c *gin.Context) (int64, bool) {
	claim, ok := auth.ClaimFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return claim.UserID, true
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		if claim, ok := auth.ClaimFromContext(c.Request.Context()); ok {
			entry = entry.WithField("user_id", claim.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
