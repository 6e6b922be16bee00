package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// PitchHandlers serves pitch contours and their sine resynthesis.
type PitchHandlers struct {
	pitch       *services.PitchService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewPitchHandlers creates pitch handlers with injected dependencies
func NewPitchHandlers(pitch *services.PitchService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PitchHandlers {
	return &PitchHandlers{
		pitch:       pitch,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetPitchJSON handles GET /api/get-pitch-json
func (h *PitchHandlers) GetPitchJSON(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_pitch_json_request", sess.ID)
	defer marker.Complete()

	path, err := h.pitch.JSONPath(sess)
	if err != nil {
		marker.SetError(err)
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Pitch().Error("Pitch extraction failed", "sessionId", sess.ID, "error", err)
		}
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetPitchJSON request", "duration", time.Since(start), "sessionId", sess.ID, "success", true)

	c.Header("Content-Type", "application/json")
	c.File(path)
}

// GetPitchAudio handles GET /api/get-pitch-audio
func (h *PitchHandlers) GetPitchAudio(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_pitch_audio_request", sess.ID)
	defer marker.Complete()

	path, err := h.pitch.AudioPath(sess)
	if err != nil {
		marker.SetError(err)
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Pitch().Error("Pitch resynthesis failed", "sessionId", sess.ID, "error", err)
		}
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetPitchAudio request", "duration", time.Since(start), "sessionId", sess.ID, "success", true)

	c.Header("Content-Type", "audio/wav")
	c.File(path)
}
