package services

import (
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/persistence/records"
)

// ParticipantService binds participants to sessions and their records.
type ParticipantService struct {
	records     *records.Repository
	notifier    ProgressNotifier
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewParticipantService creates a new participant service
func NewParticipantService(repo *records.Repository, notifier ProgressNotifier, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ParticipantService {
	return &ParticipantService{
		records:     repo,
		notifier:    notifierOrNoop(notifier),
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// SetUser resolves userID to its record and makes it the session's active
// user. Repeated calls with the same id reuse the same record file.
func (s *ParticipantService) SetUser(sess *session.Session, userID string) (*records.Resolution, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("set_user", sess.ID)
	defer marker.Complete()

	res, err := s.records.Resolve(userID)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	sess.BindUser(res.UserID, res.Path)
	s.notifier.Notify()

	s.logger.WithSession(logging.ChannelRecords, sess.ID, userID).Info("Successfully set active user",
		"created", res.Created, "dataFile", res.Path, "duration", time.Since(start))
	return res, nil
}
