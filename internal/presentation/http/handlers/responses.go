// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/media"
	"github.com/tonecanvas/tonecanvas-go/internal/presentation/http/middleware"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, record.ErrInvalidUserID),
		errors.Is(err, session.ErrNoActiveUser),
		errors.Is(err, record.ErrMissingTrace),
		errors.Is(err, record.ErrMissingButton),
		errors.Is(err, record.ErrEmptyUpload),
		errors.Is(err, services.ErrInvalidIconRequest),
		errors.Is(err, media.ErrInvalidWidth):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrEmptyPlaylist),
		errors.Is(err, media.ErrIconNotFound):
		return http.StatusNotFound
	case errors.Is(err, media.ErrInvalidFormat):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error body. Internal failures get a
// generic message so paths and I/O details stay in the logs.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(code, gin.H{"status": "error", "message": message})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// requireSession fetches the resolved session or writes a 500.
func requireSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		respondMessage(c, http.StatusInternalServerError, "session context not found")
		return nil, false
	}
	return sess, true
}
