// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tonecanvas/tonecanvas-go/internal/application/container"
	"github.com/tonecanvas/tonecanvas-go/internal/presentation/http/handlers"
	"github.com/tonecanvas/tonecanvas-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		container.Logger.Startup().Warn("Ignoring invalid trusted proxies", "error", err)
	}
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	r.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	// Initialize handlers
	stimulusHandlers := handlers.NewStimulusHandlers(container.NavigationService, container.Logger, container.PerfTracker)
	pitchHandlers := handlers.NewPitchHandlers(container.PitchService, container.Logger, container.PerfTracker)
	iconHandlers := handlers.NewIconHandlers(container.IconService, container.Logger, container.PerfTracker)
	participantHandlers := handlers.NewParticipantHandlers(container.ParticipantService, container.SessionService, container.Logger, container.PerfTracker)
	logHandlers := handlers.NewLogHandlers(container.TraceService, container.Logger, container.PerfTracker)
	uploadHandlers := handlers.NewUploadHandlers(container.UploadService, cfg.MaxUploadBytes(), container.Logger, container.PerfTracker)
	sessionHandlers := handlers.NewSessionHandlers(container.SessionService, container.Logger, container.PerfTracker)
	monitorHandlers := handlers.NewMonitorHandlers(
		container.MonitorService,
		container.Broadcaster,
		cfg.Monitor.Enabled,
		cfg.Server.AllowedOrigins,
		container.Logger,
		container.PerfTracker,
	)

	api := r.Group("/api")
	{
		// Routes that do not depend on a session
		api.GET("/health", monitorHandlers.Health)
		api.POST("/sessions", sessionHandlers.CreateSession)
		api.GET("/get-icon/:filename", iconHandlers.GetIcon)

		monitor := api.Group("/monitor")
		monitor.Use(monitorHandlers.RequireEnabled())
		{
			monitor.GET("/sessions", monitorHandlers.GetSessions)
			monitor.GET("/ws", monitorHandlers.Stream)
			monitor.GET("/performance", monitorHandlers.GetPerformance)
			monitor.GET("/logs/levels", monitorHandlers.GetLogLevels)
			monitor.POST("/logs/levels", monitorHandlers.SetLogLevel)
		}

		// Participant routes with session middleware
		participant := api.Group("")
		participant.Use(middleware.SessionMiddleware(container.SessionService, container.Logger, container.PerfTracker))
		{
			participant.GET("/get-wav-file", stimulusHandlers.GetWavFile)
			participant.POST("/switch-wav-file", stimulusHandlers.SwitchWavFile)
			participant.GET("/get-file-name", stimulusHandlers.GetFileName)
			participant.GET("/get-progress", stimulusHandlers.GetProgress)

			participant.GET("/get-pitch-json", pitchHandlers.GetPitchJSON)
			participant.GET("/get-pitch-audio", pitchHandlers.GetPitchAudio)

			participant.POST("/send-user-id", participantHandlers.SendUserID)
			participant.POST("/send-trace", logHandlers.SendTrace)
			participant.POST("/send-button-log", logHandlers.SendButtonLog)
			participant.POST("/upload-audio", uploadHandlers.UploadAudio)
		}
	}

	return r
}
