package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// IconHandlers serves UI icons.
type IconHandlers struct {
	icons       *services.IconService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewIconHandlers creates icon handlers with injected dependencies
func NewIconHandlers(icons *services.IconService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *IconHandlers {
	return &IconHandlers{
		icons:       icons,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetIcon handles GET /api/get-icon/:filename with optional width and
// format query parameters.
func (h *IconHandlers) GetIcon(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_icon_request", "")
	defer marker.Complete()

	filename := c.Param("filename")
	marker.AddMetadata("filename", filename)

	variant, err := services.ParseVariant(c.Query("width"), c.Query("format"))
	if err != nil {
		marker.SetError(err)
		respondError(c, err)
		return
	}

	path, err := h.icons.Icon(filename, variant)
	if err != nil {
		marker.SetError(err)
		h.logger.Media().Debug("Icon request failed", "filename", filename, "error", err)
		respondError(c, err)
		return
	}

	marker.SetSuccess(true)
	h.logger.Perf().Debug("Performance for GetIcon request", "duration", time.Since(start), "filename", filename, "success", true)

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
