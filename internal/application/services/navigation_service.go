package services

import (
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
)

// Stimulus is the playlist entry a session currently points at.
type Stimulus struct {
	FileName string
	Path     string
	Index    int
}

// NavigationService moves sessions through the playlist.
type NavigationService struct {
	playlist    *corpus.Playlist
	notifier    ProgressNotifier
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewNavigationService creates a new navigation service
func NewNavigationService(playlist *corpus.Playlist, notifier ProgressNotifier, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *NavigationService {
	return &NavigationService{
		playlist:    playlist,
		notifier:    notifierOrNoop(notifier),
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Playlist returns the shared playlist.
func (s *NavigationService) Playlist() *corpus.Playlist {
	return s.playlist
}

// Current returns the stimulus the session points at.
func (s *NavigationService) Current(sess *session.Session) (*Stimulus, error) {
	name, index, err := sess.Current(s.playlist)
	if err != nil {
		return nil, err
	}
	return &Stimulus{FileName: name, Path: s.playlist.Path(name), Index: index}, nil
}

// Advance moves the session to the next stimulus, wrapping at the end.
func (s *NavigationService) Advance(sess *session.Session) (int, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("advance_session", sess.ID)
	defer marker.Complete()

	index, err := sess.Advance(s.playlist)
	if err != nil {
		marker.SetError(err)
		s.logger.Session().Warn("Cannot advance session", "sessionId", sess.ID, "error", err)
		return 0, err
	}

	s.notifier.Notify()
	s.logger.Session().Info("Successfully advanced session", "sessionId", sess.ID, "currentIndex", index, "totalFiles", s.playlist.Len(), "duration", time.Since(start))
	return index, nil
}

// Progress reports the session's position.
func (s *NavigationService) Progress(sess *session.Session) session.Progress {
	return sess.Progress(s.playlist)
}

// Snapshots returns a progress snapshot of every session in sessions.
func (s *NavigationService) Snapshots(sessions []*session.Session) []session.Snapshot {
	out := make([]session.Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Snapshot(s.playlist))
	}
	return out
}
