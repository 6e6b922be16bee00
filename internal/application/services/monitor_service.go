package services

import (
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// Health is the payload of the health endpoint.
type Health struct {
	Status         string  `json:"status"`
	TotalFiles     int     `json:"total_files"`
	ActiveSessions int     `json:"active_sessions"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// MonitorService reports session progress and service health to the
// experimenter. It also feeds the progress broadcaster.
type MonitorService struct {
	sessions    *SessionService
	navigation  *NavigationService
	perfTracker *performance.Tracker
}

// NewMonitorService creates a new monitor service
func NewMonitorService(sessions *SessionService, navigation *NavigationService, perfTracker *performance.Tracker) *MonitorService {
	return &MonitorService{sessions: sessions, navigation: navigation, perfTracker: perfTracker}
}

// Snapshots lists every live session with its progress.
func (s *MonitorService) Snapshots() []session.Snapshot {
	return s.navigation.Snapshots(s.sessions.Sessions())
}

// Health summarises the service state.
func (s *MonitorService) Health() Health {
	return Health{
		Status:         "ok",
		TotalFiles:     s.navigation.Playlist().Len(),
		ActiveSessions: s.sessions.ActiveCount(),
		UptimeSeconds:  s.perfTracker.Uptime().Seconds(),
	}
}

// Performance returns per-operation timing summaries.
func (s *MonitorService) Performance() []performance.OperationSummary {
	return s.perfTracker.Summary()
}
