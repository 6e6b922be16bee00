// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"
	"path/filepath"

	"github.com/tonecanvas/tonecanvas-go/internal/application/services"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/caching/cleanup"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/caching/stores"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/media"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/messaging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/records"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/uploads"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/pitch"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/security"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/transcription"
	"github.com/tonecanvas/tonecanvas-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Config      *config.Config
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	Playlist    *corpus.Playlist

	// Experiment Services
	SessionService       *services.SessionService
	NavigationService    *services.NavigationService
	ParticipantService   *services.ParticipantService
	TraceService         *services.TraceService
	UploadService        *services.UploadService
	TranscriptionService *services.TranscriptionService
	PitchService         *services.PitchService
	IconService          *services.IconService
	MonitorService       *services.MonitorService

	// Infrastructure Dependencies
	SessionsStore    *stores.SessionsStore
	RecordRepository *records.Repository
	UploadRepository *uploads.Repository
	Broadcaster      *messaging.ProgressBroadcaster // nil when the monitor is disabled
	CleanupWorker    *cleanup.Worker
}

// NewContainer creates and wires all singleton services. A nil transcriber
// falls back to AssemblyAI when a key is configured.
func NewContainer(cfg *config.Config, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, playlist *corpus.Playlist, transcriber transcription.Transcriber) (*Container, error) {
	secret := cfg.Session.Secret
	if secret == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = key
		logger.Startup().Warn("No session secret configured, tokens will not survive a restart")
	}
	if transcriber == nil && cfg.TranscriptionEnabled() {
		transcriber = transcription.NewAssemblyAIClient(cfg.Transcription.AssemblyAIKey, cfg.Transcription.LanguageCode)
	}

	c := &Container{
		Config:           cfg,
		Logger:           logger,
		PerfTracker:      perfTracker,
		Playlist:         playlist,
		SessionsStore:    stores.NewSessionsStore(cfg.SessionTTL(), logger),
		RecordRepository: records.NewRepository(cfg.Paths.DataDir, logger),
		UploadRepository: uploads.NewRepository(cfg.Paths.UploadsDir, logger),
	}
	c.CleanupWorker = cleanup.NewWorker(c.SessionsStore, cleanup.NewConfig(cfg), logger)

	// The broadcaster reads from the monitor service, which is built after
	// the services that notify it.
	var notifier services.ProgressNotifier
	if cfg.Monitor.Enabled {
		source := messaging.SnapshotFunc(func() []session.Snapshot { return c.MonitorService.Snapshots() })
		c.Broadcaster = messaging.NewProgressBroadcaster(source, cfg.MonitorInterval(), logger)
		notifier = c.Broadcaster
	}

	c.SessionService = services.NewSessionService(c.SessionsStore, secret, logger, perfTracker)
	c.NavigationService = services.NewNavigationService(playlist, notifier, logger, perfTracker)
	c.ParticipantService = services.NewParticipantService(c.RecordRepository, notifier, logger, perfTracker)
	c.TraceService = services.NewTraceService(playlist, c.RecordRepository, logger, perfTracker)
	c.TranscriptionService = services.NewTranscriptionService(transcriber, c.RecordRepository, cfg.TranscriptionTimeout(), logger)
	c.UploadService = services.NewUploadService(c.UploadRepository, c.RecordRepository, c.TranscriptionService, logger, perfTracker)
	c.PitchService = services.NewPitchService(c.NavigationService, cfg.Paths.TempDir, PitchParams(cfg), logger, perfTracker)
	c.IconService = services.NewIconService(
		media.NewIconProcessor(cfg.Paths.IconsDir, filepath.Join(cfg.Paths.TempDir, "icons")),
		logger, perfTracker,
	)
	c.MonitorService = services.NewMonitorService(c.SessionService, c.NavigationService, perfTracker)

	return c, nil
}

// PitchParams converts the pitch configuration section.
func PitchParams(cfg *config.Config) pitch.Params {
	return pitch.Params{
		Tracker: pitch.TrackerParams{
			MinFrequency:     cfg.Pitch.MinFrequency,
			MaxFrequency:     cfg.Pitch.MaxFrequency,
			TimeStep:         cfg.Pitch.TimeStep,
			VoicingThreshold: cfg.Pitch.VoicingThreshold,
			SilenceThreshold: cfg.Pitch.SilenceThreshold,
		},
		InterpolationStep: cfg.Pitch.InterpolationStep,
		SynthSampleRate:   cfg.Pitch.SynthSampleRate,
		SynthAmplitude:    cfg.Pitch.SynthAmplitude,
	}
}
