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

// SendTraceRequest is the body of POST /api/send-trace. The trace is stored
// as sent.
type SendTraceRequest struct {
	Trace any `json:"trace"`
}

// SendButtonLogRequest is the body of POST /api/send-button-log.
type SendButtonLogRequest struct {
	ButtonName string `json:"button_name"`
}

// LogHandlers append participant traces and button presses to records.
type LogHandlers struct {
	traces      *services.TraceService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLogHandlers creates log handlers with injected dependencies
func NewLogHandlers(traces *services.TraceService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LogHandlers {
	return &LogHandlers{
		traces:      traces,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// SendTrace handles POST /api/send-trace
func (h *LogHandlers) SendTrace(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("send_trace_request", sess.ID)
	defer marker.Complete()

	var req SendTraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		respondError(c, fmt.Errorf("%w: invalid request body", record.ErrMissingTrace))
		return
	}

	result := h.traces.LogTrace(sess, req.Trace)
	h.respond(c, marker, result, "Trace")
	h.logger.Perf().Info("Performance for SendTrace request", "duration", time.Since(start), "sessionId", sess.ID, "success", result.Logged)
}

// SendButtonLog handles POST /api/send-button-log
func (h *LogHandlers) SendButtonLog(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	start := time.Now()
	marker := h.perfTracker.StartOperation("send_button_log_request", sess.ID)
	defer marker.Complete()

	var req SendButtonLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		marker.SetError(err)
		respondError(c, fmt.Errorf("%w: invalid request body", record.ErrMissingButton))
		return
	}

	result := h.traces.LogButton(sess, req.ButtonName)
	h.respond(c, marker, result, "Button log")
	h.logger.Perf().Info("Performance for SendButtonLog request", "duration", time.Since(start), "sessionId", sess.ID, "success", result.Logged)
}

func (h *LogHandlers) respond(c *gin.Context, marker *performance.Marker, result record.LogResult, kind string) {
	if !result.Logged {
		marker.SetError(result.Err)
		respondError(c, result.Err)
		return
	}
	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": fmt.Sprintf("%s logged (index=%d)", kind, result.Index),
	})
}
