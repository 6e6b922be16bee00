package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// SendUserIDRequest is the body of POST /api/send-user-id.
type SendUserIDRequest struct {
	UserID string `json:"user_id"`
}

// ParticipantHandlers binds participants to sessions.
type ParticipantHandlers struct {
	participants *services.ParticipantService
	sessions     *services.SessionService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewParticipantHandlers creates participant handlers with injected dependencies
func NewParticipantHandlers(participants *services.ParticipantService, sessions *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ParticipantHandlers {
	return &ParticipantHandlers{
		participants: participants,
		sessions:     sessions,
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// SendUserID handles POST /api/send-user-id
func (h *ParticipantHandlers) SendUserID(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("send_user_id_request", sess.ID)
	defer marker.Complete()

	var req SendUserIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		respondError(c, fmt.Errorf("%w: invalid request body", record.ErrInvalidUserID))
		return
	}

	res, err := h.participants.SetUser(sess, req.UserID)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	token, err := h.sessions.TokenFor(sess)
	if err != nil {
		marker.SetError(err)
		h.logger.Session().Error("Failed to sign session token", "sessionId", sess.ID, "error", err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for SendUserID request", "duration", time.Since(start), "sessionId", sess.ID, "success", true)

	c.JSON(http.StatusCreated, gin.H{
		"status":     "ok",
		"message":    fmt.Sprintf("User ID %s set", res.UserID),
		"user_id":    res.UserID,
		"data_file":  res.Path,
		"session_id": sess.ID,
		"token":      token,
	})
}
