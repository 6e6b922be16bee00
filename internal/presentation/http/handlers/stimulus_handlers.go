package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// StimulusHandlers serves the current stimulus and moves sessions through
// the playlist.
type StimulusHandlers struct {
	navigation  *services.NavigationService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewStimulusHandlers creates stimulus handlers with injected dependencies
func NewStimulusHandlers(navigation *services.NavigationService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *StimulusHandlers {
	return &StimulusHandlers{
		navigation:  navigation,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetWavFile handles GET /api/get-wav-file
func (h *StimulusHandlers) GetWavFile(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_wav_file_request", sess.ID)
	defer marker.Complete()

	stim, err := h.navigation.Current(sess)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	h.logger.Corpus().Debug("Serving stimulus", "sessionId", sess.ID, "fileName", stim.FileName, "index", stim.Index)
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for GetWavFile request", "duration", time.Since(start), "sessionId", sess.ID, "success", true)

	c.Header("Content-Type", "audio/wav")
	c.File(stim.Path)
}

// SwitchWavFile handles POST /api/switch-wav-file
func (h *StimulusHandlers) SwitchWavFile(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("switch_wav_file_request", sess.ID)
	defer marker.Complete()

	index, err := h.navigation.Advance(sess)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for SwitchWavFile request", "duration", time.Since(start), "sessionId", sess.ID, "success", true)

	c.JSON(http.StatusOK, gin.H{"currentIndex": index})
}

// GetFileName handles GET /api/get-file-name
func (h *StimulusHandlers) GetFileName(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("get_file_name_request", sess.ID)
	defer marker.Complete()

	stim, err := h.navigation.Current(sess)
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}
	marker.SetSuccess(true)

	c.JSON(http.StatusOK, gin.H{"fileName": stim.FileName})
}

// GetProgress handles GET /api/get-progress
func (h *StimulusHandlers) GetProgress(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	marker := h.perfTracker.StartOperation("get_progress_request", sess.ID)
	defer marker.Complete()
	marker.SetSuccess(true)

	c.JSON(http.StatusOK, h.navigation.Progress(sess))
}
