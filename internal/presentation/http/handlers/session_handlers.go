package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// SessionHandlers issues participant sessions.
type SessionHandlers struct {
	sessions    *services.SessionService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionHandlers creates session handlers with injected dependencies
func NewSessionHandlers(sessions *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessions:    sessions,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// CreateSession handles POST /api/sessions
func (h *SessionHandlers) CreateSession(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("create_session_request", "")
	defer marker.Complete()

	token, err := h.sessions.CreateSession()
	if err != nil {
		marker.SetError(err)
		h.logger.Session().Error("Failed to create session", "error", err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for CreateSession request", "duration", time.Since(start), "sessionId", token.SessionID, "success", true)

	c.JSON(http.StatusCreated, token)
}
