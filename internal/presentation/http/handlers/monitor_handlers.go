package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/messaging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// MonitorHandlers expose session progress, health and performance to the
// experimenter.
type MonitorHandlers struct {
	monitor     *services.MonitorService
	broadcaster *messaging.ProgressBroadcaster
	enabled     bool
	upgrader    websocket.Upgrader
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewMonitorHandlers creates monitor handlers. Websocket upgrades are only
// accepted from allowedOrigins or from clients that send no Origin.
func NewMonitorHandlers(monitor *services.MonitorService, broadcaster *messaging.ProgressBroadcaster, enabled bool, allowedOrigins []string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MonitorHandlers {
	origins := slices.Clone(allowedOrigins)
	return &MonitorHandlers{
		monitor:     monitor,
		broadcaster: broadcaster,
		enabled:     enabled && broadcaster != nil,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin)
			},
		},
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Health handles GET /api/health
func (h *MonitorHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Health())
}

// RequireEnabled answers 404 for monitor routes when monitoring is off.
func (h *MonitorHandlers) RequireEnabled() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": "error", "message": "monitor disabled"})
			return
		}
		c.Next()
	}
}

// GetSessions handles GET /api/monitor/sessions
func (h *MonitorHandlers) GetSessions(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("monitor_sessions_request", "")
	defer marker.Complete()

	snapshots := h.monitor.Snapshots()

	marker.SetSuccess(true)
	h.logger.Monitor().Debug("Monitor sessions request completed", "count", len(snapshots), "duration", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"sessions": snapshots,
		"count":    len(snapshots),
	})
}

// GetPerformance handles GET /api/monitor/performance
func (h *MonitorHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": h.perfTracker.Uptime().Seconds(),
		"operations":     h.monitor.Performance(),
	})
}

// Stream handles GET /api/monitor/ws. The connection stays open until the
// client leaves or the server shuts down.
func (h *MonitorHandlers) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Monitor().Warn("Websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}
	h.logger.Monitor().Info("Monitor client connected", "remote", c.ClientIP())
	h.broadcaster.Serve(conn)
	h.logger.Monitor().Info("Monitor client disconnected", "remote", c.ClientIP())
}

// GetLogLevels handles GET /api/monitor/logs/levels
func (h *MonitorHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

// SetLogLevel handles POST /api/monitor/logs/levels
func (h *MonitorHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "channel and level are required")
		return
	}

	level, ok := logging.LookupLevel(req.Level)
	if !ok {
		respondMessage(c, http.StatusBadRequest, "invalid log level specified")
		return
	}
	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Monitor().Info("Log level changed", "channel", req.Channel, "level", req.Level)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "log level updated"})
}
