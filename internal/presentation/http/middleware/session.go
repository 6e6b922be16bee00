// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

const sessionKey = "session"

// SessionMiddleware resolves the request's session token and stores the
// session in the gin context. Requests without a token use the default
// session; unusable tokens are rejected with 401.
func SessionMiddleware(sessions *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		marker := perfTracker.StartOperation("middleware_session_resolution", "")
		defer marker.Complete()

		marker.AddMetadata("path", c.Request.URL.Path)
		marker.AddMetadata("method", c.Request.Method)

		sess, err := sessions.Resolve(TokenFromRequest(c))
		if err != nil {
			logger.Session().Warn("Rejected session token", "path", c.Request.URL.Path, "error", err)
			marker.SetError(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid or expired session token"})
			return
		}

		marker.AddMetadata("sessionId", sess.ID)
		logger.Session().Debug("Session resolved", "sessionId", sess.ID, "duration", time.Since(start))
		marker.SetSuccess(true)

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// TokenFromRequest looks for a token in the Authorization bearer header,
// then the session header, then the session query parameter.
func TokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if token := c.GetHeader(SessionHeader); token != "" {
		return strings.TrimSpace(token)
	}
	return c.Query("session")
}

// GetSession retrieves the session from gin context.
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
