// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/container"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/corpus"
	"github.com/tonecanvas/tonecanvas-go/internal/presentation/http/server"
	"github.com/tonecanvas/tonecanvas-go/pkg/config"
)

// Initialize performs the complete startup sequence and blocks until the
// process receives SIGINT or SIGTERM.
func Initialize(cfg *config.Config) error {
	setupLogging(cfg)

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[36m" + `
  ▀█▀ █▀█ █▄ █ █▀▀   █▀▀ ▄▀█ █▄ █ █ █ ▄▀█ █▀
   █  █▄█ █ ▀█ ██▄   █▄▄ █▀█ █ ▀█ ▀▄▀ █▀█ ▄█
` + "\033[0m")

	// Step 1: Logging
	log.Println("Initializing channeled logging...")
	logger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Startup().Info("Channeled logging initialized", "level", cfg.Logging.Level, "toFile", cfg.Logging.ToFile)

	// Step 2: Working directories
	phaseStart := time.Now()
	if err := ensureDirectories(cfg); err != nil {
		logger.LogStartupPhase("directories", time.Since(phaseStart), false, map[string]any{"error": err.Error()})
		return err
	}
	logger.LogStartupPhase("directories", time.Since(phaseStart), true, map[string]any{
		"dataDir":    cfg.Paths.DataDir,
		"uploadsDir": cfg.Paths.UploadsDir,
		"tempDir":    cfg.Paths.TempDir,
	})

	// Step 3: Playlist. A missing corpus is logged, not fatal.
	phaseStart = time.Now()
	playlist := corpus.LoadPlaylist(cfg.Paths.CorpusDir, corpus.Options{
		Prefix:    cfg.Corpus.Prefix,
		FixedHead: cfg.Corpus.FixedHead,
		Seed:      cfg.Corpus.Seed,
	}, logger)
	logger.LogStartupPhase("playlist", time.Since(phaseStart), true, map[string]any{"files": playlist.Len()})

	// Step 4: Create dependency injection container
	phaseStart = time.Now()
	perfTracker := performance.NewTracker(nil)
	appContainer, err := container.NewContainer(cfg, logger, perfTracker, playlist, nil)
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.LogStartupPhase("container", time.Since(phaseStart), true, map[string]any{
		"transcription": appContainer.TranscriptionService.Enabled(),
		"monitor":       appContainer.Broadcaster != nil,
	})

	// Step 5: Background workers
	logger.Startup().Info("Starting background cleanup worker...")
	go appContainer.CleanupWorker.Start(ctx)
	if appContainer.Broadcaster != nil {
		logger.Startup().Info("Starting progress broadcaster...", "interval", cfg.MonitorInterval())
		go appContainer.Broadcaster.Run(ctx)
	}

	// Step 6: Start HTTP server
	httpServer := server.New(appContainer)
	logger.Startup().Info("HTTP server initialized", "address", httpServer.Addr())

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.System().Info("Starting HTTP server", "address", httpServer.Addr())
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"stimuli", playlist.Len(),
		"port", cfg.Server.Port)

	// Wait for shutdown signal or a listener failure
	var runErr error
	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case runErr = <-serverErr:
		if runErr != nil {
			logger.System().Error("HTTP server failed", "error", runErr)
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err)
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Waiting for pending transcriptions...")
	if err := appContainer.TranscriptionService.Shutdown(shutdownCtx); err != nil {
		logger.Shutdown().Warn("Transcriptions still running at shutdown", "error", err)
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return runErr
}

// NewLogger builds the channeled logger described by cfg.
func NewLogger(cfg *config.Config) (*logging.ChanneledLogger, error) {
	lc := logging.DefaultLoggerConfig()
	lc.OutputToFile = cfg.Logging.ToFile
	lc.OutputToConsole = cfg.Logging.ToConsole
	lc.LogDirectory = cfg.Logging.Dir
	lc.JSONFormat = cfg.Logging.Format != "text"
	lc.DefaultLevel = logging.ParseLevel(cfg.Logging.Level)
	return logging.NewChanneledLogger(lc)
}

func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{
		cfg.Paths.DataDir,
		cfg.Paths.UploadsDir,
		cfg.Paths.TempDir,
		filepath.Join(cfg.Paths.TempDir, "icons"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// setupLogging configures the standard logger and gin mode
func setupLogging(cfg *config.Config) {
	if cfg.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
