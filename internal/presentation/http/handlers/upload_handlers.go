package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/record"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// AudioFormField is the multipart part holding the recording.
const AudioFormField = "audio"

// UploadHandlers accept participant recordings.
type UploadHandlers struct {
	uploads     *services.UploadService
	maxBytes    int64
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewUploadHandlers creates upload handlers with injected dependencies.
// Request bodies larger than maxBytes are rejected.
func NewUploadHandlers(uploads *services.UploadService, maxBytes int64, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UploadHandlers {
	return &UploadHandlers{
		uploads:     uploads,
		maxBytes:    maxBytes,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// UploadAudio handles POST /api/upload-audio
func (h *UploadHandlers) UploadAudio(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("upload_audio_request", sess.ID)
	defer marker.Complete()

	if _, _, err := sess.RequireUser(); err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	header, err := c.FormFile(AudioFormField)
	if err != nil {
		marker.SetError(err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondMessage(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, fmt.Errorf("%w: missing %q part", record.ErrEmptyUpload, AudioFormField))
		return
	}

	file, err := header.Open()
	if err != nil {
		marker.SetError(err)
		h.logger.Uploads().Error("Failed to open multipart file", "sessionId", sess.ID, "error", err)
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := h.uploads.Save(sess, header.Filename, header.Size, file)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for UploadAudio request", "duration", time.Since(start), "sessionId", sess.ID, "success", true, "size", result.Size)

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"message":  fmt.Sprintf("Audio saved as %s", result.File),
		"file":     result.File,
		"path":     result.Path,
		"sequence": result.Sequence,
	})
}
