// Package cleanup provides background worker
package cleanup

import (
	"context"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
)

// Purger removes expired entries and reports how many were dropped.
type Purger interface {
	PurgeExpired() int
	Len() int
}

// Worker periodically purges expired sessions.
type Worker struct {
	store  Purger
	config *Config
	logger *logging.ChanneledLogger
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(store Purger, config *Config, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.Session().Info("Session cleanup worker started",
		"interval", w.config.CleanupInterval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Session().Info("Session cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *Worker) RunOnce() int {
	start := time.Now()
	removed := w.store.PurgeExpired()
	duration := time.Since(start)

	if removed > 0 {
		w.logger.Session().Info("Session cleanup finished",
			"removed", removed, "remaining", w.store.Len(), "duration", duration)
	} else if w.config.VerboseReporting {
		w.logger.Session().Debug("Session cleanup completed - no expired sessions found",
			"remaining", w.store.Len(), "duration", duration)
	}
	return removed
}
